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

import "sync/atomic"

// Progress summarizes the work performed by a StateHealer.
type Progress struct {
	Rounds          uint64 // number of completed rounds
	FetchedNodes    uint64 // nodes received from peers and stored
	LocalNodes      uint64 // nodes found in the local store
	DroppedPaths    uint64 // paths without a node in the canonical trie
	PendingPaths    uint64 // paths waiting for the next round
	CodeHashes      uint64 // code hashes handed to the bytecode fetcher
	PendingCodes    uint64 // code hashes left for the next cycle
	StorageAccounts uint64 // accounts scheduled for storage healing
}

type progressCounters struct {
	rounds          atomic.Uint64
	fetchedNodes    atomic.Uint64
	localNodes      atomic.Uint64
	droppedPaths    atomic.Uint64
	pendingPaths    atomic.Uint64
	codeHashes      atomic.Uint64
	pendingCodes    atomic.Uint64
	storageAccounts atomic.Uint64
}

func (c *progressCounters) snapshot() Progress {
	return Progress{
		Rounds:          c.rounds.Load(),
		FetchedNodes:    c.fetchedNodes.Load(),
		LocalNodes:      c.localNodes.Load(),
		DroppedPaths:    c.droppedPaths.Load(),
		PendingPaths:    c.pendingPaths.Load(),
		CodeHashes:      c.codeHashes.Load(),
		PendingCodes:    c.pendingCodes.Load(),
		StorageAccounts: c.storageAccounts.Load(),
	}
}
