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
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt/rlp"
)

// The persistence format of nodes stored in a node store. Every encoded node
// starts with a tag byte identifying its kind, followed by an RLP list of its
// fields:
//
//	Branch:    0x00 ++ [ [child_0, ..., child_15], value ]
//	Extension: 0x01 ++ [ prefix, child ]
//	Leaf:      0x02 ++ [ partial, value ]
//
// Children are stored in their NodeHash form (32-byte hash, inlined encoding,
// or an empty string for absent children). Paths are stored with one nibble
// per byte. This format is durable; any change requires a new version.

// PersistenceFormatVersion identifies the format produced by EncodeNode.
const PersistenceFormatVersion = 1

const (
	branchNodeTag    = byte(0)
	extensionNodeTag = byte(1)
	leafNodeTag      = byte(2)
)

// ErrBranchArity is reported when a stored branch node does not have exactly
// 16 children.
const ErrBranchArity = common.ConstError("branch node must have exactly 16 children")

// EncodeNode serializes a node into its persistence format.
func EncodeNode(node Node) ([]byte, error) {
	switch n := node.(type) {
	case *BranchNode:
		children := make([]rlp.Item, len(n.Children))
		for i, child := range n.Children {
			children[i] = rlp.String{Str: child.ComputeHash().Bytes()}
		}
		return encodeTagged(branchNodeTag,
			rlp.List{Items: children},
			rlp.String{Str: n.Value},
		), nil
	case *ExtensionNode:
		return encodeTagged(extensionNodeTag,
			rlp.String{Str: n.Prefix.Raw()},
			rlp.String{Str: n.Child.ComputeHash().Bytes()},
		), nil
	case *LeafNode:
		return encodeTagged(leafNodeTag,
			rlp.String{Str: n.Partial.Raw()},
			rlp.String{Str: n.Value},
		), nil
	}
	return nil, fmt.Errorf("unsupported node type: %T", node)
}

func encodeTagged(tag byte, fields ...rlp.Item) []byte {
	list := rlp.List{Items: fields}
	return rlp.EncodeInto([]byte{tag}, list)
}

// DecodeNode restores a node from its persistence format. Children of the
// resulting node are always hash references, never resolved nodes.
func DecodeNode(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: missing node tag", rlp.ErrInvalidLength)
	}
	tag := data[0]
	if tag > leafNodeTag {
		return nil, fmt.Errorf("%w: unknown node tag %d", rlp.ErrMalformedData, tag)
	}
	decoder, err := rlp.NewListDecoder(data[1:])
	if err != nil {
		return nil, err
	}

	var res Node
	switch tag {
	case branchNodeTag:
		res, err = decodeBranch(decoder)
	case extensionNodeTag:
		res, err = decodeExtension(decoder)
	default:
		res, err = decodeLeaf(decoder)
	}
	if err != nil {
		return nil, err
	}

	rest, err := decoder.Finish()
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after node", rlp.ErrMalformedData, len(rest))
	}
	return res, nil
}

func decodeBranch(decoder *rlp.Decoder) (Node, error) {
	choices, err := decoder.List("choices")
	if err != nil {
		return nil, err
	}
	res := &BranchNode{}
	if len(choices) != len(res.Children) {
		return nil, &rlp.FieldError{Field: "choices", Err: fmt.Errorf("%w: got %d", ErrBranchArity, len(choices))}
	}
	for i, choice := range choices {
		str, ok := choice.(rlp.String)
		if !ok {
			return nil, &rlp.FieldError{Field: "choices", Err: fmt.Errorf("%w: child %d is a %T", rlp.ErrMalformedData, i, choice)}
		}
		hash, err := decodeStoredHash("choices", str.Str)
		if err != nil {
			return nil, err
		}
		res.Children[i] = RefToHash(hash)
	}
	value, err := decoder.Bytes("value")
	if err != nil {
		return nil, err
	}
	res.Value = nonEmptyOrNil(value)
	return res, nil
}

func decodeExtension(decoder *rlp.Decoder) (Node, error) {
	prefix, err := decodeStoredNibbles(decoder, "prefix")
	if err != nil {
		return nil, err
	}
	child, err := decoder.Bytes("child")
	if err != nil {
		return nil, err
	}
	hash, err := decodeStoredHash("child", child)
	if err != nil {
		return nil, err
	}
	return &ExtensionNode{Prefix: prefix, Child: RefToHash(hash)}, nil
}

func decodeLeaf(decoder *rlp.Decoder) (Node, error) {
	partial, err := decodeStoredNibbles(decoder, "partial")
	if err != nil {
		return nil, err
	}
	value, err := decoder.Bytes("value")
	if err != nil {
		return nil, err
	}
	return &LeafNode{Partial: partial, Value: nonEmptyOrNil(value)}, nil
}

func decodeStoredNibbles(decoder *rlp.Decoder, field string) (Nibbles, error) {
	data, err := decoder.Bytes(field)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	res, err := NibblesFromRaw(data)
	if err != nil {
		return nil, &rlp.FieldError{Field: field, Err: fmt.Errorf("%w: %v", rlp.ErrMalformedData, err)}
	}
	return res, nil
}

func decodeStoredHash(field string, data []byte) (NodeHash, error) {
	if len(data) > common.HashSize {
		return NodeHash{}, &rlp.FieldError{Field: field, Err: fmt.Errorf("%w: node hash of %d bytes", rlp.ErrMalformedData, len(data))}
	}
	return NodeHashFromBytes(data), nil
}
