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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// TrieEntry is a key/value pair to be stored in a trie.
type TrieEntry struct {
	Key   []byte
	Value []byte
}

// NodeSet is an in-memory collection of nodes indexed by their hash.
// NodeSets are not safe for concurrent modification.
type NodeSet map[common.Hash]Node

// GetNode implements NodeReader.
func (s NodeSet) GetNode(hash NodeHash) (Node, bool, error) {
	if !hash.IsHashed() {
		return GetNode(s, hash)
	}
	node, found := s[hash.Hash()]
	return node, found, nil
}

// BuildTrie constructs the trie containing the given entries. It returns the
// root hash and all nodes referenced by hash, including the root. Inlined
// nodes are only contained in their parents. All keys must have the same
// length and must be unique; values must not be empty.
func BuildTrie(entries []TrieEntry) (common.Hash, NodeSet, error) {
	values := make(map[string][]byte, len(entries))
	keyLength := -1
	for _, entry := range entries {
		if keyLength >= 0 && len(entry.Key) != keyLength {
			return common.Hash{}, nil, fmt.Errorf("inconsistent key length: got: %d, wanted: %d", len(entry.Key), keyLength)
		}
		keyLength = len(entry.Key)
		if len(entry.Value) == 0 {
			return common.Hash{}, nil, fmt.Errorf("empty value for key %x", entry.Key)
		}
		if _, found := values[string(entry.Key)]; found {
			return common.Hash{}, nil, fmt.Errorf("duplicate key %x", entry.Key)
		}
		values[string(entry.Key)] = entry.Value
	}

	nodes := NodeSet{}
	if len(values) == 0 {
		return EmptyTrieHash, nodes, nil
	}

	keys := maps.Keys(values)
	slices.Sort(keys)
	sorted := make([]builderEntry, len(keys))
	for i, key := range keys {
		sorted[i] = builderEntry{path: NibblesFromBytes([]byte(key)), value: values[key]}
	}

	root := buildNode(sorted, 0, nodes)
	hash := RootHash(root)
	nodes[hash] = root
	return hash, nodes, nil
}

type builderEntry struct {
	path  Nibbles
	value []byte
}

// buildNode creates the node covering the given sorted entries, which share
// the first depth nibbles of their path. Hashed children are added to nodes.
func buildNode(entries []builderEntry, depth int, nodes NodeSet) Node {
	if len(entries) == 1 {
		return &LeafNode{
			Partial: entries[0].path[depth:].Clone(),
			Value:   entries[0].value,
		}
	}

	first, last := entries[0].path[depth:], entries[len(entries)-1].path[depth:]
	if prefixLength := GetCommonPrefixLength(first, last); prefixLength > 0 {
		child := buildNode(entries, depth+prefixLength, nodes)
		return &ExtensionNode{
			Prefix: first[:prefixLength].Clone(),
			Child:  makeChildRef(child, nodes),
		}
	}

	res := &BranchNode{}
	for start := 0; start < len(entries); {
		nibble := entries[start].path[depth]
		end := start + 1
		for end < len(entries) && entries[end].path[depth] == nibble {
			end++
		}
		child := buildNode(entries[start:end], depth+1, nodes)
		res.Children[nibble] = makeChildRef(child, nodes)
		start = end
	}
	return res
}

func makeChildRef(child Node, nodes NodeSet) NodeRef {
	hash := ComputeHash(child)
	if hash.IsHashed() {
		nodes[hash.Hash()] = child
	}
	return RefToHash(hash)
}
