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
	"strings"
)

// This file defines the node types of a Merkle-Patricia-Trie as they are
// exchanged during synchronization. There are three kinds of nodes:
//  - branch nodes with 16 child slots and an optional value,
//  - extension nodes compressing a chain of single-child branches, and
//  - leaf nodes holding the remaining path to a value and the value itself.
//
// Nodes do not own their children. Unless a child is small enough to be
// inlined into its parent, a child is referenced by the hash of its canonical
// encoding and has to be looked up in a NodeReader. Since nodes are content
// addressed, the resulting structure is a DAG of immutable values.
//
// Nodes are treated as immutable once constructed.

// Node is implemented by *BranchNode, *ExtensionNode, and *LeafNode.
type Node interface {
	fmt.Stringer
	isNode()
}

// BranchNode is a node with 16 child slots, one for each nibble. Absent
// children are represented by invalid references, never by omission.
type BranchNode struct {
	Children [16]NodeRef
	Value    []byte
}

// ExtensionNode represents a path segment shared by all nodes of the sub-trie
// rooted by its single child.
type ExtensionNode struct {
	Prefix Nibbles
	Child  NodeRef
}

// LeafNode holds a value and the remaining path from the leaf's position to
// the full key of the value.
type LeafNode struct {
	Partial Nibbles
	Value   []byte
}

func (*BranchNode) isNode()    {}
func (*ExtensionNode) isNode() {}
func (*LeafNode) isNode()      {}

func (n *BranchNode) String() string {
	var builder strings.Builder
	builder.WriteString("Branch{")
	first := true
	for i, child := range n.Children {
		if !child.IsValid() {
			continue
		}
		if !first {
			builder.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&builder, "%v: %v", Nibble(i), child)
	}
	if len(n.Value) > 0 {
		fmt.Fprintf(&builder, "; value: %x", n.Value)
	}
	builder.WriteString("}")
	return builder.String()
}

func (n *ExtensionNode) String() string {
	return fmt.Sprintf("Extension{prefix: %v, child: %v}", n.Prefix, n.Child)
}

func (n *LeafNode) String() string {
	return fmt.Sprintf("Leaf{partial: %v, value: %x}", n.Partial, n.Value)
}

// NodeRef references a child node. It either owns an inlined node or refers
// to a node by its NodeHash. The zero value references no node.
type NodeRef struct {
	node Node
	hash NodeHash
}

// RefToNode creates a reference owning the given node.
func RefToNode(node Node) NodeRef {
	return NodeRef{node: node}
}

// RefToHash creates a reference to the node identified by the given hash.
func RefToHash(hash NodeHash) NodeRef {
	return NodeRef{hash: hash}
}

// IsValid returns true if the reference points to a node.
func (r NodeRef) IsValid() bool {
	return r.node != nil || r.hash.IsValid()
}

// Node returns the owned node, or nil if this is a hash reference.
func (r NodeRef) Node() Node {
	return r.node
}

// ComputeHash returns the hash form of this reference.
func (r NodeRef) ComputeHash() NodeHash {
	if r.node != nil {
		return ComputeHash(r.node)
	}
	return r.hash
}

// Resolve fetches the referenced node. Owned and inlined nodes are always
// available; hashed nodes are looked up in the given reader. The boolean
// result is false if the node is not available.
func (r NodeRef) Resolve(reader NodeReader) (Node, bool, error) {
	if r.node != nil {
		return r.node, true, nil
	}
	return GetNode(reader, r.hash)
}

func (r NodeRef) String() string {
	if r.node != nil {
		return r.node.String()
	}
	return r.hash.String()
}
