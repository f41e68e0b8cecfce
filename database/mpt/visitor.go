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

//go:generate mockgen -source visitor.go -destination visitor_mocks.go -package mpt

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/mpt-heal/common"
)

// ----------------------------------------------------------------------------
//                            Visitor Interface
// ----------------------------------------------------------------------------

// NodeVisitor defines an interface for any consumer interested in visiting
// the nodes of a trie. It is intended for generic trie analysis
// infrastructure.
type NodeVisitor interface {
	// Visit is called for each node. Through the response the visitor can
	// decide control the visiting process. It may be
	//  - continued: keep processing additional nodes
	//  - aborted: stop processing nodes and end node iteration
	//  - pruned: skip the child nodes of the current node and continue with
	//       the next node following the last descendent of the current node
	// Nodes referenced in the trie but not available in the reader are
	// visited with a nil node.
	Visit(Node, NodeInfo) VisitResponse
}

type NodeInfo struct {
	Path     Nibbles  // the path from the root to the visited node
	Hash     NodeHash // the reference to the visited node held by its parent
	Embedded bool     // true if this node is embedded in its parent
}

type VisitResponse int

const (
	VisitResponseContinue VisitResponse = 0
	VisitResponseAbort    VisitResponse = 1
	VisitResponsePrune    VisitResponse = 2
)

// VisitTrie visits the nodes of the trie with the given root in depth-first
// order. Children of branch nodes are visited in the order of their nibbles.
func VisitTrie(reader NodeReader, root common.Hash, visitor NodeVisitor) error {
	_, err := visitNode(reader, HashedNodeHash(root), Nibbles{}, visitor)
	return err
}

// visitNode visits the referenced node and its descendants. The boolean
// result is true if the visitor aborted the iteration.
func visitNode(reader NodeReader, hash NodeHash, path Nibbles, visitor NodeVisitor) (bool, error) {
	node, found, err := GetNode(reader, hash)
	if err != nil {
		return true, err
	}
	info := NodeInfo{Path: path, Hash: hash, Embedded: path.Len() > 0 && !hash.IsHashed()}
	if !found {
		return visitor.Visit(nil, info) == VisitResponseAbort, nil
	}
	switch visitor.Visit(node, info) {
	case VisitResponseAbort:
		return true, nil
	case VisitResponsePrune:
		return false, nil
	}

	switch n := node.(type) {
	case *BranchNode:
		for i, child := range n.Children {
			if !child.IsValid() {
				continue
			}
			if abort, err := visitNode(reader, child.ComputeHash(), path.Append(Nibble(i)), visitor); abort || err != nil {
				return abort, err
			}
		}
	case *ExtensionNode:
		return visitNode(reader, n.Child.ComputeHash(), path.Concat(n.Prefix), visitor)
	}
	return false, nil
}

// ----------------------------------------------------------------------------
//                          Lambda Visitor
// ----------------------------------------------------------------------------

// MakeVisitor wraps a function into the node visitor interface.
func MakeVisitor(visit func(Node, NodeInfo) VisitResponse) NodeVisitor {
	return &lambdaVisitor{visit}
}

type lambdaVisitor struct {
	visit func(Node, NodeInfo) VisitResponse
}

func (v *lambdaVisitor) Visit(n Node, i NodeInfo) VisitResponse {
	return v.visit(n, i)
}

// ----------------------------------------------------------------------------
//                            Node Statistics
// ----------------------------------------------------------------------------

// GetTrieNodeStatistics computes node statistics for the trie with the given
// root. Nodes missing in the reader are counted but not descended into.
func GetTrieNodeStatistics(reader NodeReader, root common.Hash) (NodeStatistic, error) {
	collector := &nodeStatisticsCollector{}
	if err := VisitTrie(reader, root, collector); err != nil {
		return NodeStatistic{}, err
	}
	return collector.stats, nil
}

type NodeStatistic struct {
	numBranches   int
	numLeaves     int
	numExtensions int
	numEmbedded   int
	numMissing    int

	numChildren [17]int

	depths []int
}

// NumNodes returns the number of nodes available in the visited trie.
func (s *NodeStatistic) NumNodes() int {
	return s.numBranches + s.numLeaves + s.numExtensions
}

// NumMissing returns the number of referenced but unavailable nodes.
func (s *NodeStatistic) NumMissing() int {
	return s.numMissing
}

func (s *NodeStatistic) String() string {
	builder := strings.Builder{}

	builder.WriteString("Node types:\n")
	builder.WriteString(fmt.Sprintf("Branches, %d\n", s.numBranches))
	builder.WriteString(fmt.Sprintf("Extensions, %d\n", s.numExtensions))
	builder.WriteString(fmt.Sprintf("Leaves, %d\n", s.numLeaves))
	builder.WriteString(fmt.Sprintf("Embedded, %d\n", s.numEmbedded))
	builder.WriteString(fmt.Sprintf("Missing, %d\n", s.numMissing))

	builder.WriteString("Branch-Node-Size Distribution:\n")
	for i, count := range s.numChildren {
		builder.WriteString(fmt.Sprintf("%d, %d\n", i, count))
	}

	if len(s.depths) > 0 {
		builder.WriteString("Node depth distribution:\n")
		for i, count := range s.depths {
			builder.WriteString(fmt.Sprintf("%d, %d\n", i, count))
		}
	}

	return builder.String()
}

type nodeStatisticsCollector struct {
	stats NodeStatistic
}

func (c *nodeStatisticsCollector) Visit(node Node, info NodeInfo) VisitResponse {
	if node == nil {
		c.stats.numMissing++
		return VisitResponseContinue
	}
	c.registerDepth(info)
	if info.Embedded {
		c.stats.numEmbedded++
	}
	switch t := node.(type) {
	case *BranchNode:
		c.visitBranch(t)
	case *ExtensionNode:
		c.stats.numExtensions++
	case *LeafNode:
		c.stats.numLeaves++
	}
	return VisitResponseContinue
}

func (c *nodeStatisticsCollector) visitBranch(b *BranchNode) {
	c.stats.numBranches++
	numChildren := 0
	for _, child := range b.Children {
		if child.IsValid() {
			numChildren++
		}
	}
	c.stats.numChildren[numChildren]++
}

func (c *nodeStatisticsCollector) registerDepth(info NodeInfo) {
	depth := info.Path.Len()
	for len(c.stats.depths) <= depth {
		c.stats.depths = append(c.stats.depths, 0)
	}
	c.stats.depths[depth]++
}
