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
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// StateHealer repairs the local state trie by fetching missing nodes from
// peers until the local trie matches a given root. Healing proceeds in
// rounds. Each round processes a bounded number of batches of pending paths
// in parallel; the missing children of resolved nodes become the pending
// paths of the following rounds. Pending paths are persisted if a cycle ends
// before the trie is complete, so a later cycle can resume from them.
type StateHealer struct {
	store    Store
	peers    PeerHandler
	config   HealConfig
	progress progressCounters
	log      log.Logger
}

// NewStateHealer creates a healer operating on the given store and peers.
func NewStateHealer(store Store, peers PeerHandler, config HealConfig) (*StateHealer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &StateHealer{
		store:  store,
		peers:  peers,
		config: config,
		log:    log.New("module", "heal"),
	}, nil
}

// Progress returns the counters accumulated over all cycles of this healer.
func (h *StateHealer) Progress() Progress {
	return h.progress.snapshot()
}

// HealStateTrie runs a heal cycle for the state trie with the given root. It
// returns true if the local trie and the byte codes of its accounts are
// complete, and false if the cycle ended because the peers could no longer
// serve the root or some byte codes. Pending paths and byte code hashes are
// persisted for the next cycle, also if the context gets cancelled, in which
// case the context's error is reported.
func (h *StateHealer) HealStateTrie(ctx context.Context, root common.Hash) (bool, error) {
	if root == mpt.EmptyTrieHash {
		return true, h.store.ClearStateHealPaths()
	}

	paths, err := h.store.GetStateHealPaths()
	if err != nil {
		return false, fmt.Errorf("failed to load state heal paths: %w", err)
	}
	if slices.IndexFunc(paths, func(path mpt.Nibbles) bool { return path.Len() == 0 }) < 0 {
		paths = append(paths, mpt.Nibbles{})
	}
	codes, err := h.store.GetPendingBytecodes()
	if err != nil {
		return false, fmt.Errorf("failed to load pending bytecodes: %w", err)
	}
	h.log.Info("Starting state healing", "root", root, "pending", len(paths), "codes", len(codes))

	hashes := make(chan []common.Hash, h.config.MaxChannelMessages)
	fetcherDone := make(chan struct{})
	var fetcherErr error
	go func() {
		defer close(fetcherDone)
		codes, fetcherErr = FetchBytecodes(ctx, codes, hashes, h.peers, h.store, h.config)
	}()

	stopProgress := make(chan struct{})
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		h.reportProgress(stopProgress)
	}()

	fetcher := &batchFetcher{
		store:    h.store,
		peers:    h.peers,
		codes:    codeSink{hashes: hashes, stopped: fetcherDone},
		progress: &h.progress,
		log:      h.log,
	}
	paths, healErr := h.heal(ctx, root, paths, fetcher)

	close(stopProgress)
	<-progressDone

	if healErr == nil {
		if len(paths) > 0 {
			h.log.Debug("Caching pending state heal paths", "pending", len(paths))
			healErr = h.store.SetStateHealPaths(paths)
		} else {
			healErr = h.store.ClearStateHealPaths()
		}
	}

	// An empty batch tells the bytecode fetcher that no more hashes follow.
	select {
	case hashes <- []common.Hash{}:
	case <-fetcherDone:
	case <-ctx.Done():
	}
	<-fetcherDone

	h.progress.pendingCodes.Store(uint64(len(codes)))
	if len(codes) > 0 {
		h.log.Debug("Caching pending bytecodes", "pending", len(codes))
	}
	if err := h.store.SetPendingBytecodes(codes); err != nil {
		fetcherErr = errors.Join(fetcherErr, fmt.Errorf("failed to store pending bytecodes: %w", err))
	}

	complete := len(paths) == 0 && len(codes) == 0
	err = errors.Join(healErr, fetcherErr)
	if err == nil && !complete {
		err = ctx.Err()
	}
	if err != nil {
		return false, err
	}
	h.log.Info("State healing cycle finished", "complete", complete, "pending", len(paths), "codes", len(codes))
	return complete, nil
}

// heal runs rounds until no paths are left, the root turns stale, or the
// context is cancelled. It returns the remaining paths.
func (h *StateHealer) heal(ctx context.Context, root common.Hash, paths []mpt.Nibbles, fetcher *batchFetcher) ([]mpt.Nibbles, error) {
	for len(paths) > 0 {
		if ctx.Err() != nil {
			h.log.Info("State healing interrupted", "pending", len(paths))
			return paths, nil
		}
		h.progress.pendingPaths.Store(uint64(len(paths)))
		next, stale, err := h.runRound(ctx, root, paths, fetcher)
		if err != nil {
			return nil, err
		}
		h.progress.rounds.Add(1)
		paths = next
		if stale {
			h.log.Info("State root became stale", "root", root, "pending", len(paths))
			break
		}
	}
	h.progress.pendingPaths.Store(uint64(len(paths)))
	return paths, nil
}

// runRound splits the front of the given paths into batches and fetches them
// in parallel. Once all batches are done, the remaining paths and the paths
// produced by the batches are returned, together with a flag indicating
// whether any batch found the root to be stale.
func (h *StateHealer) runRound(ctx context.Context, root common.Hash, paths []mpt.Nibbles, fetcher *batchFetcher) ([]mpt.Nibbles, bool, error) {
	var batches [][]mpt.Nibbles
	for len(paths) > 0 && len(batches) < h.config.MaxParallelFetches {
		size := min(len(paths), h.config.NodeBatchSize)
		batches = append(batches, paths[:size])
		paths = paths[size:]
	}

	type result struct {
		paths []mpt.Nibbles
		stale bool
	}
	results := make([]result, len(batches))
	var group errgroup.Group
	group.SetLimit(h.config.MaxParallelFetches)
	for i, batch := range batches {
		i, batch := i, batch
		group.Go(func() error {
			next, stale, err := fetcher.fetch(ctx, root, batch)
			results[i] = result{next, stale}
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, false, err
	}

	next := make([]mpt.Nibbles, 0, len(paths))
	next = append(next, paths...)
	stale := false
	for _, res := range results {
		next = append(next, res.paths...)
		stale = stale || res.stale
	}
	h.log.Debug("Round finished", "batches", len(batches), "stale", stale, "pending", len(next))
	return next, stale, nil
}

func (h *StateHealer) reportProgress(stop <-chan struct{}) {
	ticker := h.config.newTicker()
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C():
			progress := h.progress.snapshot()
			h.log.Info("State healing in progress",
				"pending", progress.PendingPaths,
				"rounds", progress.Rounds,
				"fetched", progress.FetchedNodes,
				"local", progress.LocalNodes,
				"codes", progress.CodeHashes,
				"storage", progress.StorageAccounts,
			)
		case <-stop:
			return
		}
	}
}
