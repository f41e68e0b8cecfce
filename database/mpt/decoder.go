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

// DecodeCanonical decodes a node from its canonical (Ethereum) encoding, as
// received from peers. Hashed children are decoded into hash references,
// embedded children into inline references.
// It checks for malformed data and returns an error if the data is not valid.
func DecodeCanonical(data []byte) (Node, error) {
	item, err := rlp.Decode(data)
	if err != nil {
		return nil, err
	}

	list, ok := item.(rlp.List)
	if !ok {
		return nil, fmt.Errorf("%w: invalid node type: got: %T, wanted: List", rlp.ErrMalformedData, item)
	}

	switch len(list.Items) {
	case 2:
		path, ok := list.Items[0].(rlp.String)
		if !ok {
			return nil, fmt.Errorf("%w: invalid prefix type: got: %T, wanted: String", rlp.ErrMalformedData, list.Items[0])
		}
		nibbles, isLeaf, err := compactPathToNibbles(path.Str)
		if err != nil {
			return nil, err
		}
		if isLeaf {
			return decodeLeafNodeFromRlp(nibbles, list.Items[1])
		}
		return decodeExtensionNodeFromRlp(nibbles, list.Items[1])
	case 17:
		return decodeBranchNodeFromRlp(list)
	}

	return nil, fmt.Errorf("%w: invalid number of list elements: got: %v, wanted: either 2 or 17", rlp.ErrMalformedData, len(list.Items))
}

func decodeExtensionNodeFromRlp(path Nibbles, payload rlp.Item) (Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: extension node with empty path", rlp.ErrMalformedData)
	}
	child, err := decodeEmbeddedOrHashedNode(payload)
	if err != nil {
		return nil, err
	}
	if !child.IsValid() {
		return nil, fmt.Errorf("%w: extension node without child", rlp.ErrMalformedData)
	}
	return &ExtensionNode{Prefix: path, Child: child}, nil
}

func decodeLeafNodeFromRlp(path Nibbles, payload rlp.Item) (Node, error) {
	str, ok := payload.(rlp.String)
	if !ok {
		return nil, fmt.Errorf("%w: invalid leaf payload: got: %T, wanted: String", rlp.ErrMalformedData, payload)
	}
	return &LeafNode{Partial: path, Value: nonEmptyOrNil(str.Str)}, nil
}

func decodeBranchNodeFromRlp(list rlp.List) (Node, error) {
	res := &BranchNode{}
	for i := 0; i < len(res.Children); i++ {
		child, err := decodeEmbeddedOrHashedNode(list.Items[i])
		if err != nil {
			return nil, err
		}
		res.Children[i] = child
	}
	value, ok := list.Items[16].(rlp.String)
	if !ok {
		return nil, fmt.Errorf("%w: invalid branch value: got: %T, wanted: String", rlp.ErrMalformedData, list.Items[16])
	}
	res.Value = nonEmptyOrNil(value.Str)
	return res, nil
}

// decodeEmbeddedOrHashedNode decodes the reference to a child. Empty strings
// denote absent children, 32-byte strings hashes, and lists embedded nodes.
func decodeEmbeddedOrHashedNode(payload rlp.Item) (NodeRef, error) {
	switch item := payload.(type) {
	case rlp.String:
		switch len(item.Str) {
		case 0:
			return NodeRef{}, nil
		case common.HashSize:
			return RefToHash(HashedNodeHash(common.Hash(item.Str))), nil
		}
		return NodeRef{}, fmt.Errorf("%w: invalid node hash length: got: %v, wanted: 0 or 32", rlp.ErrMalformedData, len(item.Str))
	case rlp.List:
		encoded := rlp.Encode(item)
		if len(encoded) >= common.HashSize {
			return NodeRef{}, fmt.Errorf("%w: embedded node is too long: got: %v, wanted: < 32", rlp.ErrMalformedData, len(encoded))
		}
		return RefToHash(NodeHash{inline: encoded}), nil
	}
	return NodeRef{}, fmt.Errorf("%w: unsupported child item %T", rlp.ErrMalformedData, payload)
}

// compactPathToNibbles converts a compact path to nibbles.
// The compact path packs two nibbles into a single byte.
// The higher nibble of first byte contains the oddness of the path and if the node is a leaf node.
// If the payload is odd, the lower nibble of the first byte contains already payload.
// If the payload is even, the lower nibble of the first byte is padded with zero.
// The encoding is as follows:
// - 0b_0000_0000 (0x00): extension node, even path
// - 0b_0001_xxxx (0x1_): extension node, odd path
// - 0b_0010_0000 (0x20): leaf node, even path
// - 0b_0011_xxxx (0x3_): leaf node, odd path
// Examples:
//
//	[5,6,7,8,9] -> [15,67,89] extension node, or [35,67,89] leaf node
//	[4,5,6,7,8,9] -> [00,45,67,89] extension node, or [20,45,67,89] leaf node
func compactPathToNibbles(path []byte) (Nibbles, bool, error) {
	if len(path) == 0 {
		return nil, false, fmt.Errorf("%w: empty compact path", rlp.ErrMalformedData)
	}
	flags := path[0] >> 4
	if flags > 3 {
		return nil, false, fmt.Errorf("%w: invalid compact path flags %x", rlp.ErrMalformedData, flags)
	}
	isLeaf := flags&0b10 != 0
	odd := int(flags & 0b01)
	if odd == 0 && path[0]&0xF != 0 {
		return nil, false, fmt.Errorf("%w: invalid compact path padding", rlp.ErrMalformedData)
	}

	res := make(Nibbles, 0, len(path)*2)
	for _, b := range path {
		res = append(res, Nibble(b>>4), Nibble(b&0xF))
	}
	return res[2-odd:], isLeaf, nil
}

func nonEmptyOrNil(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	return data
}
