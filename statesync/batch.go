// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package statesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// batchFetcher resolves a batch of pending paths of the state trie. Nodes
// present locally are checked in place; all others are requested from the
// peers and stored. Each resolved node contributes its missing children to
// the paths of the next round.
type batchFetcher struct {
	store    Store
	peers    PeerHandler
	codes    codeSink
	progress *progressCounters
	log      log.Logger
}

// codeSink hands code hashes to a running bytecode fetcher.
type codeSink struct {
	hashes  chan<- []common.Hash
	stopped <-chan struct{}
}

func (s codeSink) send(ctx context.Context, hashes []common.Hash) error {
	select {
	case s.hashes <- hashes:
		return nil
	case <-s.stopped:
		return ErrBytecodeChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

type pathRequest struct {
	path     mpt.Nibbles
	expected mpt.NodeHash // invalid if the parent is not available
}

type pathNode struct {
	path mpt.Nibbles
	node mpt.Node
}

// accountWork collects the follow-up work discovered in account leaves.
type accountWork struct {
	storage map[common.Hash][]mpt.Nibbles
	codes   map[common.Hash]struct{}
}

// fetch processes the given batch of paths of the trie with the given root.
// It returns the paths to be processed in the next round. If the peers could
// not serve the batch, the batch is returned unchanged, flagged as stale, and
// the store is not modified. Paths of nodes referenced by a present parent
// that the peers answered without a node are kept and flag the batch as
// stale, while the rest of the response is processed.
func (f *batchFetcher) fetch(ctx context.Context, root common.Hash, batch []mpt.Nibbles) ([]mpt.Nibbles, bool, error) {
	rootHash := mpt.HashedNodeHash(root)
	dropped := 0
	var local []pathNode
	var requests []pathRequest
	for _, path := range batch {
		hash, found, err := mpt.LookupPath(f.store, rootHash, path)
		if errors.Is(err, mpt.ErrNoSuchPath) {
			dropped++
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up path %v: %w", path, err)
		}
		if found {
			node, present, err := mpt.GetNode(f.store, hash)
			if err != nil {
				return nil, false, fmt.Errorf("failed to load node %v: %w", hash, err)
			}
			if present {
				local = append(local, pathNode{path, node})
				continue
			}
		}
		requests = append(requests, pathRequest{path: path, expected: hash})
	}

	var fetched []pathNode
	var unserved []mpt.Nibbles
	var next []mpt.Nibbles
	if len(requests) > 0 {
		paths := make([]mpt.Nibbles, len(requests))
		for i, request := range requests {
			paths[i] = request.path
		}
		nodes, ok := f.peers.RequestStateTrieNodes(ctx, root, paths)
		if !ok || len(nodes) == 0 {
			f.log.Debug("No nodes received", "root", root, "requested", len(paths))
			return batch, true, nil
		}
		if len(nodes) > len(paths) {
			return nil, false, fmt.Errorf("%w: received %d nodes for %d paths", ErrProtocolViolation, len(nodes), len(paths))
		}
		for i, node := range nodes {
			if node == nil {
				// A present parent references this node, so it must exist.
				if requests[i].expected.IsValid() {
					unserved = append(unserved, requests[i].path)
				} else {
					dropped++
				}
				continue
			}
			if err := checkReceivedNode(requests[i], node); err != nil {
				return nil, false, err
			}
			fetched = append(fetched, pathNode{requests[i].path, node})
		}
		next = slices.Clone(paths[len(nodes):])
		next = append(next, unserved...)
	}

	work := accountWork{
		storage: map[common.Hash][]mpt.Nibbles{},
		codes:   map[common.Hash]struct{}{},
	}
	for _, list := range [][]pathNode{local, fetched} {
		for _, cur := range list {
			children, err := mpt.MissingChildren(cur.node, cur.path, f.store)
			if err != nil {
				return nil, false, fmt.Errorf("failed to check children of %v: %w", cur.path, err)
			}
			next = append(next, children...)
			if err := f.visitLeaves(cur.node, cur.path, &work); err != nil {
				return nil, false, err
			}
		}
	}

	writes := make(map[common.Hash][]byte, len(fetched))
	for _, cur := range fetched {
		var key common.Hash
		if cur.path.Len() == 0 {
			key = mpt.RootHash(cur.node)
		} else if hash := mpt.ComputeHash(cur.node); hash.IsHashed() {
			key = hash.Hash()
		} else {
			continue
		}
		encoded, err := mpt.EncodeNode(cur.node)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode node at %v: %w", cur.path, err)
		}
		writes[key] = encoded
	}
	if len(writes) > 0 {
		if err := f.store.PutNodes(writes); err != nil {
			return nil, false, fmt.Errorf("failed to store nodes: %w", err)
		}
	}
	if len(work.storage) > 0 {
		if err := f.store.SetStorageHealPaths(work.storage); err != nil {
			return nil, false, fmt.Errorf("failed to schedule storage healing: %w", err)
		}
	}
	if len(work.codes) > 0 {
		if err := f.codes.send(ctx, maps.Keys(work.codes)); err != nil {
			return nil, false, err
		}
	}

	f.progress.localNodes.Add(uint64(len(local)))
	f.progress.fetchedNodes.Add(uint64(len(fetched)))
	f.progress.droppedPaths.Add(uint64(dropped))
	f.progress.storageAccounts.Add(uint64(len(work.storage)))
	f.progress.codeHashes.Add(uint64(len(work.codes)))
	f.log.Debug("Batch processed", "local", len(local), "fetched", len(fetched), "dropped", dropped, "unserved", len(unserved), "next", len(next))
	return next, len(unserved) > 0, nil
}

// checkReceivedNode verifies that a received node matches the reference
// recorded in its parent, if the parent is known.
func checkReceivedNode(request pathRequest, node mpt.Node) error {
	if !request.expected.IsValid() {
		return nil
	}
	var got mpt.NodeHash
	if request.path.Len() == 0 {
		got = mpt.HashedNodeHash(mpt.RootHash(node))
	} else {
		got = mpt.ComputeHash(node)
	}
	if !got.Equal(request.expected) {
		return fmt.Errorf("%w: node at %v has hash %v, wanted %v", ErrProtocolViolation, request.path, got, request.expected)
	}
	return nil
}

// visitLeaves checks all account leaves contained in the given node, which
// includes leaves inlined in its encoding.
func (f *batchFetcher) visitLeaves(node mpt.Node, path mpt.Nibbles, work *accountWork) error {
	switch n := node.(type) {
	case *mpt.LeafNode:
		return f.checkAccount(path.Concat(n.Partial), n, work)
	case *mpt.BranchNode:
		for i, child := range n.Children {
			if hash := child.ComputeHash(); isInline(hash) {
				if err := f.visitInlineNode(hash, path.Append(mpt.Nibble(i)), work); err != nil {
					return err
				}
			}
		}
	case *mpt.ExtensionNode:
		if hash := n.Child.ComputeHash(); isInline(hash) {
			return f.visitInlineNode(hash, path.Concat(n.Prefix), work)
		}
	}
	return nil
}

func (f *batchFetcher) visitInlineNode(hash mpt.NodeHash, path mpt.Nibbles, work *accountWork) error {
	node, _, err := mpt.GetNode(f.store, hash)
	if err != nil {
		return err
	}
	return f.visitLeaves(node, path, work)
}

func isInline(hash mpt.NodeHash) bool {
	return hash.IsValid() && !hash.IsHashed()
}

// checkAccount records the storage trie and the code of the account stored
// in the given leaf for healing if they are not locally present.
func (f *batchFetcher) checkAccount(key mpt.Nibbles, leaf *mpt.LeafNode, work *accountWork) error {
	if key.Len() != 2*common.HashSize {
		return fmt.Errorf("%w: %v has %d nibbles", ErrCorruptPath, key, key.Len())
	}
	account := common.Hash(key.ToBytes())
	state, err := mpt.DecodeAccountState(leaf.Value)
	if err != nil {
		return fmt.Errorf("invalid account %v: %w", account, err)
	}
	if state.HasStorage() {
		found, err := f.store.ContainsStorageNode(account, state.StorageRoot)
		if err != nil {
			return err
		}
		if !found {
			work.storage[account] = []mpt.Nibbles{{}}
		}
	}
	if state.HasCode() {
		_, found, err := f.store.GetAccountCode(state.CodeHash)
		if err != nil {
			return err
		}
		if !found {
			work.codes[state.CodeHash] = struct{}{}
		}
	}
	return nil
}
