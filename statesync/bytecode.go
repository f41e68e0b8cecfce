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
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/ethereum/go-ethereum/log"
)

// FetchBytecodes downloads the byte codes of the given seed hashes and of
// the hashes received through the given channel, and stores them. An empty
// message signals that no more hashes will be sent; the function then
// finishes the outstanding work and returns. Hashes the peers can not serve
// after the final message are returned, so they can be retried by a later
// cycle. The outstanding hashes are also returned if fetching fails.
func FetchBytecodes(ctx context.Context, seed []common.Hash, in <-chan []common.Hash, peers PeerHandler, store Store, config HealConfig) ([]common.Hash, error) {
	logger := log.New("module", "bytecode")
	queued := map[common.Hash]struct{}{}
	var pending []common.Hash
	enqueue := func(hashes []common.Hash) {
		for _, hash := range hashes {
			if _, found := queued[hash]; !found {
				queued[hash] = struct{}{}
				pending = append(pending, hash)
			}
		}
	}
	enqueue(seed)

	finished := false
	blocked := false
	fetched := 0
	for {
		// Wait for new hashes while there is nothing to request, or the
		// peers failed to serve the outstanding ones.
		if !finished && (len(pending) == 0 || blocked) {
			select {
			case hashes, open := <-in:
				if !open {
					return pending, ErrBytecodeChannelClosed
				}
				if len(hashes) == 0 {
					finished = true
				}
				enqueue(hashes)
				blocked = false
			case <-ctx.Done():
				return pending, ctx.Err()
			}
			continue
		}
		if len(pending) == 0 {
			logger.Debug("Bytecode fetching done", "fetched", fetched)
			return nil, nil
		}
		if blocked {
			logger.Info("Bytecode fetching incomplete", "fetched", fetched, "remaining", len(pending))
			return pending, nil
		}

		chunk := pending[:min(len(pending), config.BytecodeBatchSize)]
		codes, ok := peers.RequestBytecodes(ctx, chunk)
		if !ok {
			blocked = true
			continue
		}
		if len(codes) > len(chunk) {
			return pending, fmt.Errorf("%w: received %d codes for %d hashes", ErrProtocolViolation, len(codes), len(chunk))
		}
		var remaining []common.Hash
		for i, hash := range chunk {
			if i >= len(codes) || codes[i] == nil {
				remaining = append(remaining, hash)
				continue
			}
			if got := common.Keccak256(codes[i]); got != hash {
				return pending, fmt.Errorf("%w: received code with hash %v, wanted %v", ErrProtocolViolation, got, hash)
			}
			if err := store.SetAccountCode(hash, codes[i]); err != nil {
				return pending, fmt.Errorf("failed to store code %v: %w", hash, err)
			}
			fetched++
		}
		blocked = len(remaining) == len(chunk)
		pending = append(remaining, pending[len(chunk):]...)
	}
}
