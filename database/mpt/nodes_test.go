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
	"strings"
	"testing"

	"github.com/Fantom-foundation/mpt-heal/common"
)

func TestNodeRef_ZeroValueIsInvalid(t *testing.T) {
	ref := NodeRef{}
	if ref.IsValid() {
		t.Errorf("zero reference should be invalid")
	}
	node, found, err := ref.Resolve(NodeSet{})
	if node != nil || found || err != nil {
		t.Errorf("zero reference should resolve to nothing, got %v, %t, %v", node, found, err)
	}
}

func TestNodeRef_OwnedNodeIsAlwaysResolved(t *testing.T) {
	leaf := &LeafNode{Partial: Nibbles{1, 2}, Value: []byte{1}}
	ref := RefToNode(leaf)
	if !ref.IsValid() || ref.Node() != leaf {
		t.Fatalf("reference does not own the node")
	}
	got, found, err := ref.Resolve(NodeSet{})
	if err != nil || !found || got != leaf {
		t.Errorf("unexpected resolution result %v, %t, %v", got, found, err)
	}
	if !ref.ComputeHash().Equal(ComputeHash(leaf)) {
		t.Errorf("hash of reference differs from hash of node")
	}
}

func TestNodeRef_InlineNodesAreDecoded(t *testing.T) {
	leaf := &LeafNode{Partial: Nibbles{1, 2}, Value: []byte{1}}
	hash := ComputeHash(leaf)
	if hash.IsHashed() {
		t.Fatalf("small leaf should be inlined")
	}
	got, found, err := RefToHash(hash).Resolve(NodeSet{})
	if err != nil || !found {
		t.Fatalf("failed to resolve inline node: %v, %t", err, found)
	}
	if !nodesEqual(got, leaf) {
		t.Errorf("unexpected node, wanted %v, got %v", leaf, got)
	}
}

func TestNodeRef_HashedNodesAreLookedUp(t *testing.T) {
	leaf := &LeafNode{Partial: NibblesFromBytes(make([]byte, 32)), Value: []byte{1}}
	hash := ComputeHash(leaf)
	if !hash.IsHashed() {
		t.Fatalf("large leaf should be hashed")
	}
	ref := RefToHash(hash)
	if _, found, _ := ref.Resolve(NodeSet{}); found {
		t.Errorf("node should not be found in empty set")
	}
	got, found, err := ref.Resolve(NodeSet{hash.Hash(): leaf})
	if err != nil || !found || got != leaf {
		t.Errorf("unexpected resolution result %v, %t, %v", got, found, err)
	}
}

func TestNode_Print(t *testing.T) {
	branch := &BranchNode{Value: []byte{0xab}}
	branch.Children[3] = RefToHash(InlineNodeHash([]byte{0xc1, 0x01}))
	tests := map[Node]string{
		branch: "Branch{3: inline:c101; value: ab}",
		&ExtensionNode{Prefix: Nibbles{1, 0xa}}: "Extension{prefix: 1a, child: -}",
		&LeafNode{Partial: Nibbles{2}, Value: []byte{1}}: "Leaf{partial: 2, value: 01}",
	}
	for node, want := range tests {
		if got := node.String(); got != want {
			t.Errorf("unexpected print, wanted %s, got %s", want, got)
		}
	}
	if got := RefToNode(&LeafNode{}).String(); !strings.HasPrefix(got, "Leaf{") {
		t.Errorf("unexpected print of owned node: %s", got)
	}
}

// nodesEqual compares nodes structurally. Children are compared by their
// hash form and empty paths or values are considered equal to nil ones.
func nodesEqual(a, b Node) bool {
	switch x := a.(type) {
	case *BranchNode:
		y, ok := b.(*BranchNode)
		if !ok || !bytes.Equal(x.Value, y.Value) {
			return false
		}
		for i := range x.Children {
			if !x.Children[i].ComputeHash().Equal(y.Children[i].ComputeHash()) {
				return false
			}
		}
		return true
	case *ExtensionNode:
		y, ok := b.(*ExtensionNode)
		return ok && x.Prefix.Equal(y.Prefix) && x.Child.ComputeHash().Equal(y.Child.ComputeHash())
	case *LeafNode:
		y, ok := b.(*LeafNode)
		return ok && x.Partial.Equal(y.Partial) && bytes.Equal(x.Value, y.Value)
	}
	return a == nil && b == nil
}

func hashedRef(seed byte) NodeRef {
	return RefToHash(HashedNodeHash(common.Keccak256([]byte{seed})))
}
