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
	"fmt"
	"time"

	"github.com/Fantom-foundation/mpt-heal/common/ticker"
)

// HealConfig defines the parameters of a heal cycle.
type HealConfig struct {
	// MaxParallelFetches is the maximum number of batches fetched
	// concurrently, which is also the number of batches per round.
	MaxParallelFetches int
	// NodeBatchSize is the maximum number of paths requested at once.
	NodeBatchSize int
	// MaxChannelMessages is the capacity of the channel handing code hashes
	// to the bytecode fetcher.
	MaxChannelMessages int
	// ProgressInterval is the period of progress log messages.
	ProgressInterval time.Duration
	// BytecodeBatchSize is the maximum number of byte codes requested at once.
	BytecodeBatchSize int
	// Tickers creates the ticker driving progress reports. If nil, a real
	// time ticker is used.
	Tickers ticker.Factory
}

// DefaultHealConfig is the configuration used for healing the state of a node.
var DefaultHealConfig = HealConfig{
	MaxParallelFetches: 10,
	NodeBatchSize:      300,
	MaxChannelMessages: 1000,
	ProgressInterval:   30 * time.Second,
	BytecodeBatchSize:  200,
}

// Validate checks that all parameters of the configuration are usable.
func (c *HealConfig) Validate() error {
	if c.MaxParallelFetches <= 0 {
		return fmt.Errorf("invalid number of parallel fetches: %d", c.MaxParallelFetches)
	}
	if c.NodeBatchSize <= 0 {
		return fmt.Errorf("invalid node batch size: %d", c.NodeBatchSize)
	}
	if c.MaxChannelMessages <= 0 {
		return fmt.Errorf("invalid channel capacity: %d", c.MaxChannelMessages)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("invalid progress interval: %v", c.ProgressInterval)
	}
	if c.BytecodeBatchSize <= 0 {
		return fmt.Errorf("invalid bytecode batch size: %d", c.BytecodeBatchSize)
	}
	return nil
}

func (c *HealConfig) newTicker() ticker.Ticker {
	if c.Tickers == nil {
		return ticker.NewTimeTicker(c.ProgressInterval)
	}
	return c.Tickers(c.ProgressInterval)
}
