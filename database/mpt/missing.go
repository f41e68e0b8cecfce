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

//go:generate mockgen -source missing.go -destination missing_mocks.go -package mpt

import (
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/common"
)

// ErrNoSuchPath is reported by ResolvePath if the nodes along a path show
// that the trie does not contain a node at the requested position.
const ErrNoSuchPath = common.ConstError("no node at the given path")

// NodeReader provides access to nodes stored under their hash.
type NodeReader interface {
	// GetNode retrieves the node stored under the given hash. The boolean
	// result is false if no such node is present. Readers only need to
	// support hashed references; see GetNode for resolving any reference.
	GetNode(hash NodeHash) (Node, bool, error)
}

// GetNode resolves the given reference using the reader. Inlined nodes are
// decoded from the reference itself, invalid references resolve to nothing.
func GetNode(reader NodeReader, hash NodeHash) (Node, bool, error) {
	if !hash.IsValid() {
		return nil, false, nil
	}
	if !hash.IsHashed() {
		node, err := DecodeCanonical(hash.Bytes())
		if err != nil {
			return nil, false, fmt.Errorf("invalid inline node %v: %w", hash, err)
		}
		return node, true, nil
	}
	return reader.GetNode(hash)
}

// MissingChildren lists the paths of the children of the given node, located
// at the given path, which are not available through the reader. Leaves have
// no children; branches are checked in all 16 slots; extensions have their
// single child at path ++ prefix. Inlined children are always available.
func MissingChildren(node Node, path Nibbles, reader NodeReader) ([]Nibbles, error) {
	var res []Nibbles
	switch n := node.(type) {
	case *BranchNode:
		for i, child := range n.Children {
			if !child.IsValid() {
				continue
			}
			_, found, err := child.Resolve(reader)
			if err != nil {
				return nil, err
			}
			if !found {
				res = append(res, path.Append(Nibble(i)))
			}
		}
	case *ExtensionNode:
		_, found, err := n.Child.Resolve(reader)
		if err != nil {
			return nil, err
		}
		if !found {
			res = append(res, path.Concat(n.Prefix))
		}
	}
	return res, nil
}

// ResolvePath navigates from the given root along the given path using only
// nodes available through the reader. It returns the node located at the
// path. The boolean result is false if some node along the path is not
// available. If the available nodes prove that there is no node at the path,
// ErrNoSuchPath is returned.
func ResolvePath(reader NodeReader, root NodeHash, path Nibbles) (Node, bool, error) {
	hash, found, err := LookupPath(reader, root, path)
	if err != nil || !found {
		return nil, false, err
	}
	return GetNode(reader, hash)
}

// LookupPath is like ResolvePath but stops one step earlier: it returns the
// reference to the node at the given path as recorded by its parent, without
// requiring the node itself to be available.
func LookupPath(reader NodeReader, root NodeHash, path Nibbles) (NodeHash, bool, error) {
	hash := root
	for len(path) > 0 {
		cur, found, err := GetNode(reader, hash)
		if err != nil || !found {
			return NodeHash{}, false, err
		}
		var next NodeRef
		switch n := cur.(type) {
		case *BranchNode:
			if path[0] >= 16 {
				return NodeHash{}, false, ErrNoSuchPath
			}
			next = n.Children[path[0]]
			path = path[1:]
			if !next.IsValid() {
				return NodeHash{}, false, ErrNoSuchPath
			}
		case *ExtensionNode:
			if !IsPrefixOf(n.Prefix, path) {
				return NodeHash{}, false, ErrNoSuchPath
			}
			next = n.Child
			path = path[len(n.Prefix):]
		default:
			return NodeHash{}, false, ErrNoSuchPath
		}
		hash = next.ComputeHash()
	}
	return hash, true, nil
}
