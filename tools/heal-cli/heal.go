// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/common/interrupt"
	"github.com/Fantom-foundation/mpt-heal/statesync"
	"github.com/urfave/cli/v2"
)

var (
	cpuProfilingFlag = cli.StringFlag{
		Name:  "cpu-profile",
		Usage: "enable the recording of a CPU profile",
	}
	dbSourceDirFlag = cli.StringFlag{
		Name:     "src-dir",
		Usage:    "the store providing the complete trie",
		Required: true,
	}
	dbTargetDirFlag = cli.StringFlag{
		Name:     "trg-dir",
		Usage:    "the store to be healed",
		Required: true,
	}
	rootFlag = cli.StringFlag{
		Name:     "root",
		Usage:    "the root hash of the state trie",
		Required: true,
	}
	parallelFlag = cli.IntFlag{
		Name:  "parallel",
		Usage: "the maximum number of batches fetched in parallel",
		Value: statesync.DefaultHealConfig.MaxParallelFetches,
	}
	batchSizeFlag = cli.IntFlag{
		Name:  "batch",
		Usage: "the maximum number of paths requested at once",
		Value: statesync.DefaultHealConfig.NodeBatchSize,
	}
	progressFlag = cli.DurationFlag{
		Name:  "progress",
		Usage: "the interval of progress reports",
		Value: statesync.DefaultHealConfig.ProgressInterval,
	}
	cyclesFlag = cli.IntFlag{
		Name:  "cycles",
		Usage: "the maximum number of heal cycles",
		Value: 1,
	}
)

var healCommand = cli.Command{
	Action: heal,
	Name:   "heal",
	Usage:  "heals the state trie of one store directory using the content of another",
	Flags: []cli.Flag{
		&dbSourceDirFlag,
		&dbTargetDirFlag,
		&rootFlag,
		&parallelFlag,
		&batchSizeFlag,
		&progressFlag,
		&cyclesFlag,
		&cacheSizeFlag,
		&cpuProfilingFlag,
	},
}

func heal(ctx *cli.Context) (err error) {
	root, err := common.HashFromHex(ctx.String(rootFlag.Name))
	if err != nil {
		return err
	}

	profileTarget := ctx.String(cpuProfilingFlag.Name)
	if len(profileTarget) != 0 {
		if err := StartCPUProfile(profileTarget); err != nil {
			return err
		}
		defer StopCPUProfile()
	}

	srcDir := ctx.String(dbSourceDirFlag.Name)
	source, err := open(ctx, srcDir)
	if err != nil {
		return err
	}
	defer closeStore(source, srcDir, &err)

	trgDir := ctx.String(dbTargetDirFlag.Name)
	target, err := open(ctx, trgDir)
	if err != nil {
		return err
	}
	defer closeStore(target, trgDir, &err)

	config := statesync.DefaultHealConfig
	config.MaxParallelFetches = ctx.Int(parallelFlag.Name)
	config.NodeBatchSize = ctx.Int(batchSizeFlag.Name)
	config.ProgressInterval = ctx.Duration(progressFlag.Name)
	healer, err := statesync.NewStateHealer(target, statesync.NewLocalPeer(source), config)
	if err != nil {
		return err
	}

	runCtx := interrupt.Register(context.Background())
	start := time.Now()
	complete := false
	for cycle := 1; !complete && cycle <= ctx.Int(cyclesFlag.Name); cycle++ {
		log.Printf("Running heal cycle %d for root %v ...", cycle, root)
		complete, err = healer.HealStateTrie(runCtx, root)
		if interrupt.IsCancelled(runCtx) {
			log.Printf("Heal cycle %d interrupted, pending paths are kept for the next run", cycle)
			return interrupt.ErrCanceled
		}
		if err != nil {
			return err
		}
	}
	log.Printf("Healing took %.1f seconds", time.Since(start).Seconds())

	progress := healer.Progress()
	fmt.Printf("Rounds: %d\n", progress.Rounds)
	fmt.Printf("Fetched nodes: %d\n", progress.FetchedNodes)
	fmt.Printf("Local nodes: %d\n", progress.LocalNodes)
	fmt.Printf("Code hashes: %d\n", progress.CodeHashes)
	fmt.Printf("Pending codes: %d\n", progress.PendingCodes)
	fmt.Printf("Storage accounts: %d\n", progress.StorageAccounts)
	if !complete {
		return fmt.Errorf("healing incomplete, %d paths and %d codes pending", progress.PendingPaths, progress.PendingCodes)
	}
	log.Printf("Healing complete")
	return nil
}
