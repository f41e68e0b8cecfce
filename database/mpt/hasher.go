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
	"sync"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt/rlp"
)

// The canonical encoding of nodes is the Ethereum node encoding. It defines
// the content address of every node and is the format nodes are exchanged in
// with peers. It differs from the persistence format in codec.go.
//
// see https://ethereum.org/en/developers/docs/data-structures-and-encoding/patricia-merkle-trie

// EmptyTrieHash is the hash of a trie without any nodes.
var EmptyTrieHash = common.Keccak256(emptyStringRlpEncoded)

var emptyStringRlpEncoded = rlp.Encode(rlp.String{})

// ComputeHash computes the reference of the given node as it is used by its
// parent: the Keccak256 hash of its canonical encoding, or the encoding itself
// if it is shorter than 32 bytes.
func ComputeHash(node Node) NodeHash {
	encoded := EncodeCanonical(node)
	if len(encoded) < common.HashSize {
		return NodeHash{inline: encoded}
	}
	return HashedNodeHash(common.Keccak256(encoded))
}

// RootHash computes the hash of a node used as the root of a trie. Roots are
// always hashed, independently of the size of their encoding.
func RootHash(node Node) common.Hash {
	return common.Keccak256(EncodeCanonical(node))
}

// EncodeCanonical produces the Ethereum encoding of the given node. Children
// are encoded by their NodeHash: hashed children by their 32-byte hash and
// small children by embedding their encoding.
func EncodeCanonical(node Node) []byte {
	switch n := node.(type) {
	case *BranchNode:
		return encodeBranch(n)
	case *ExtensionNode:
		return encodeExtension(n)
	case *LeafNode:
		return encodeLeaf(n)
	}
	return emptyStringRlpEncoded
}

// This pools stores not only the slice, but also its pointer, to reduce calls to runtime.convTslice().
var branchRlpStreamPool = sync.Pool{New: func() any {
	s := make([]rlp.Item, 16+1)
	return &s
},
}

func encodeBranch(node *BranchNode) []byte {
	ptr := branchRlpStreamPool.Get().(*[]rlp.Item)
	items := *ptr

	for i := 0; i < len(node.Children); i++ {
		items[i] = encodeChild(node.Children[i])
	}
	items[len(node.Children)] = rlp.String{Str: node.Value}

	res := rlp.Encode(rlp.List{Items: items})
	branchRlpStreamPool.Put(ptr)
	return res
}

func encodeExtension(node *ExtensionNode) []byte {
	return rlp.Encode(rlp.List{Items: []rlp.Item{
		rlp.String{Str: encodePartialPath(node.Prefix, false)},
		encodeChild(node.Child),
	}})
}

func encodeLeaf(node *LeafNode) []byte {
	return rlp.Encode(rlp.List{Items: []rlp.Item{
		rlp.String{Str: encodePartialPath(node.Partial, true)},
		rlp.String{Str: node.Value},
	}})
}

// encodeChild produces the item representing a child in its parent's
// encoding: an empty string for absent children, the hash for hashed children,
// and the embedded encoding for small children.
func encodeChild(child NodeRef) rlp.Item {
	if !child.IsValid() {
		return rlp.String{}
	}
	hash := child.ComputeHash()
	if hash.IsHashed() {
		return rlp.String{Str: hash.Bytes()}
	}
	return rlp.Encoded{Data: hash.Bytes()}
}

// encodePartialPath produces the compact (hex-prefix) encoding of a path.
// Path encoding derived from Ethereum.
// see https://github.com/ethereum/go-ethereum/blob/v1.12.0/trie/encoding.go#L37
func encodePartialPath(path Nibbles, targetsValue bool) []byte {
	numNibbles := len(path)
	compact := make([]byte, getEncodedPartialPathSize(numNibbles))

	// The high nibble of the first byte encodes the 'is-value' mark
	// and whether the length is even or odd.
	if targetsValue {
		compact[0] |= 1 << 5
	}
	compact[0] |= (byte(numNibbles) % 2) << 4 // odd flag

	// If there is an odd number of nibbles, the first is included in the
	// low-part of the compact path encoding.
	if numNibbles%2 == 1 {
		compact[0] |= byte(path[0]) & 0xf
		path = path[1:]
	}
	for i := 0; i+1 < len(path); i += 2 {
		compact[1+i/2] = byte(path[i])<<4 | byte(path[i+1])&0xf
	}
	return compact
}

func getEncodedPartialPathSize(numNibbles int) int {
	return numNibbles/2 + 1
}
