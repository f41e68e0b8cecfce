// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package syncstore

import (
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	"github.com/Fantom-foundation/mpt-heal/database/mpt/rlp"
)

// encodePaths serializes a list of trie paths as an RLP list of strings, each
// string holding one nibble per byte.
func encodePaths(paths []mpt.Nibbles) []byte {
	items := make([]rlp.Item, len(paths))
	for i, path := range paths {
		items[i] = rlp.String{Str: path.Raw()}
	}
	return rlp.Encode(rlp.List{Items: items})
}

// decodePaths is the inverse of encodePaths.
func decodePaths(data []byte) ([]mpt.Nibbles, error) {
	item, err := rlp.Decode(data)
	if err != nil {
		return nil, err
	}
	list, ok := item.(rlp.List)
	if !ok {
		return nil, fmt.Errorf("%w: invalid path list type: got: %T, wanted: List", rlp.ErrMalformedData, item)
	}
	res := make([]mpt.Nibbles, 0, len(list.Items))
	for _, cur := range list.Items {
		str, ok := cur.(rlp.String)
		if !ok {
			return nil, fmt.Errorf("%w: invalid path type: got: %T, wanted: String", rlp.ErrMalformedData, cur)
		}
		path, err := mpt.NibblesFromRaw(str.Str)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rlp.ErrMalformedData, err)
		}
		res = append(res, path)
	}
	return res, nil
}

// encodeNodes converts the given nodes into their persistence format.
func encodeNodes(nodes mpt.NodeSet) (map[common.Hash][]byte, error) {
	res := make(map[common.Hash][]byte, len(nodes))
	for hash, node := range nodes {
		encoded, err := mpt.EncodeNode(node)
		if err != nil {
			return nil, fmt.Errorf("failed to encode node %v: %w", hash, err)
		}
		res[hash] = encoded
	}
	return res, nil
}

// NodeWriter is implemented by stores accepting encoded nodes.
type NodeWriter interface {
	PutNodes(nodes map[common.Hash][]byte) error
}

// WriteTrie stores all nodes of the given set, e.g. obtained from mpt.BuildTrie,
// in the given store.
func WriteTrie(store NodeWriter, nodes mpt.NodeSet) error {
	encoded, err := encodeNodes(nodes)
	if err != nil {
		return err
	}
	return store.PutNodes(encoded)
}
