// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mpt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt/rlp"
)

func TestDecoder_CanDecodeNodesOfBuiltTrie(t *testing.T) {
	for name, entries := range map[string][]TrieEntry{
		"accounts":  makeAccountEntries(100),
		"shortKeys": makeEntries(200, 3, 1),
	} {
		t.Run(name, func(t *testing.T) {
			_, nodes, err := BuildTrie(entries)
			if err != nil {
				t.Fatalf("failed to build trie: %v", err)
			}
			for _, node := range nodes {
				encoded := EncodeCanonical(node)
				decoded, err := DecodeCanonical(encoded)
				if err != nil {
					t.Fatalf("failed to decode %v: %v", node, err)
				}
				if !nodesEqual(node, decoded) {
					t.Errorf("unexpected node, wanted %v, got %v", node, decoded)
				}
				if got := EncodeCanonical(decoded); !bytes.Equal(got, encoded) {
					t.Errorf("re-encoding differs, wanted %x, got %x", encoded, got)
				}
			}
		})
	}
}

func TestDecoder_DecodeEmbeddedNode_CanDecode(t *testing.T) {
	leaf := &LeafNode{Partial: Nibbles{5}, Value: []byte{7}}
	branch := &BranchNode{}
	branch.Children[2] = RefToNode(leaf)
	branch.Children[9] = hashedRef(1)

	decoded, err := DecodeCanonical(EncodeCanonical(branch))
	if err != nil {
		t.Fatalf("failed to decode branch: %v", err)
	}
	child := decoded.(*BranchNode).Children[2]
	if child.ComputeHash().IsHashed() {
		t.Fatalf("embedded child should be decoded as inline reference")
	}
	embedded, found, err := child.Resolve(NodeSet{})
	if err != nil || !found {
		t.Fatalf("failed to resolve embedded child: %v", err)
	}
	if !nodesEqual(embedded, leaf) {
		t.Errorf("unexpected embedded node, wanted %v, got %v", leaf, embedded)
	}
	if !decoded.(*BranchNode).Children[9].ComputeHash().IsHashed() {
		t.Errorf("hashed child should be decoded as hash reference")
	}
}

func TestDecoder_CorruptedRlp(t *testing.T) {
	str := rlp.String{Str: []byte{0xFF}}
	hash := common.Keccak256([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})
	longStr := rlp.String{Str: hash[:]}
	strLongerThan32 := rlp.String{Str: bytes.Repeat([]byte{0xFF}, 33)}
	list := rlp.List{Items: []rlp.Item{strLongerThan32, str, str, str}}

	childrenTooLongHashes := make([]rlp.Item, 17)
	for i := 0; i < len(childrenTooLongHashes); i++ {
		childrenTooLongHashes[i] = strLongerThan32
	}

	childrenNotStrings := make([]rlp.Item, 17)
	for i := 0; i < len(childrenNotStrings); i++ {
		childrenNotStrings[i] = list
	}

	branchValueIsList := make([]rlp.Item, 17)
	for i := 0; i < 16; i++ {
		branchValueIsList[i] = rlp.String{}
	}
	branchValueIsList[16] = rlp.List{}

	tests := map[string]struct {
		rlp []byte
	}{
		"":                               {},
		"single string":                  {rlp: rlp.Encode(str)},
		"3 items list":                   {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{str, str, str}})},
		"two items node, path is list":   {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{list, str}})},
		"empty path":                     {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{}, str}})},
		"invalid path flags":             {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x41}}, str}})},
		"non-zero even path padding":     {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x21}}, str}})},
		"leaf with nested list":          {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x31, 0x23, 0x45}}, rlp.List{}}})},
		"ext emb list too long":          {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x00, 0x12, 0x34}}, rlp.List{Items: []rlp.Item{str, strLongerThan32}}}})},
		"ext but too long hash":          {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x00, 0x12, 0x34}}, strLongerThan32}})},
		"ext without child":              {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x00, 0x12, 0x34}}, rlp.String{}}})},
		"ext with empty path":            {rlp: rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x00}}, longStr}})},
		"branch too long child":          {rlp: rlp.Encode(rlp.List{Items: childrenTooLongHashes})},
		"branch child not strings":       {rlp: rlp.Encode(rlp.List{Items: childrenNotStrings})},
		"branch value is list":           {rlp: rlp.Encode(rlp.List{Items: branchValueIsList})},
		"trailing bytes after node":      {rlp: append(rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x20}}, str}}), 0x01)},
		"truncated list":                 {rlp: []byte{0xc5, 0x82, 0x20}},
		"non-canonical single byte leaf": {rlp: []byte{0xc3, 0x81, 0x20, 0x01}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeCanonical(test.rlp); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestDecoder_StructuralErrorsAreMalformedData(t *testing.T) {
	data := rlp.Encode(rlp.List{Items: []rlp.Item{rlp.String{Str: []byte{0x41}}, rlp.String{Str: []byte{1}}}})
	if _, err := DecodeCanonical(data); !errors.Is(err, rlp.ErrMalformedData) {
		t.Errorf("unexpected error, wanted %v, got %v", rlp.ErrMalformedData, err)
	}
}

func Test_compactPathToNibbles(t *testing.T) {
	tests := map[string]struct {
		path    []byte
		nibbles Nibbles
		isLeaf  bool
	}{
		"empty extension": {[]byte{0x00}, Nibbles{}, false},
		"empty leaf":      {[]byte{0x20}, Nibbles{}, true},
		"even extension":  {[]byte{0x00, 0x12, 0x34}, Nibbles{0x1, 0x2, 0x3, 0x4}, false},
		"odd extension":   {[]byte{0x11, 0x23, 0x45}, Nibbles{0x1, 0x2, 0x3, 0x4, 0x5}, false},
		"even leaf":       {[]byte{0x20, 0x12, 0x34}, Nibbles{0x1, 0x2, 0x3, 0x4}, true},
		"odd leaf":        {[]byte{0x31, 0x23, 0x45}, Nibbles{0x1, 0x2, 0x3, 0x4, 0x5}, true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, isLeaf, err := compactPathToNibbles(test.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(test.nibbles) || isLeaf != test.isLeaf {
				t.Errorf("unexpected result, got %v/%t, want %v/%t", got, isLeaf, test.nibbles, test.isLeaf)
			}
		})
	}
}
