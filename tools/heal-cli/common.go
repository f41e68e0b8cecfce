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
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/Fantom-foundation/mpt-heal/backend/syncstore"
	"github.com/urfave/cli/v2"
)

var (
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted store directory",
		Required: true,
	}
	cacheSizeFlag = cli.IntFlag{
		Name:  "cache-size",
		Usage: "the number of decoded nodes kept in memory",
		Value: syncstore.DefaultLevelDbConfig.NodeCacheSize,
	}
)

// open opens the store in the given directory.
func open(ctx *cli.Context, dir string) (*syncstore.LevelDbStore, error) {
	config := syncstore.DefaultLevelDbConfig
	if ctx.IsSet(cacheSizeFlag.Name) {
		config.NodeCacheSize = ctx.Int(cacheSizeFlag.Name)
	}
	log.Printf("Opening store in %v ...", dir)
	return syncstore.OpenLevelDbStore(dir, config)
}

// closeStore closes the given store, reporting a failure through err unless
// an earlier error is already reported.
func closeStore(store *syncstore.LevelDbStore, dir string, err *error) {
	log.Printf("Closing store in %v ...", dir)
	if closeError := store.Close(); closeError != nil {
		if *err == nil {
			*err = closeError
		} else {
			log.Printf("Failure closing DB: %v", closeError)
		}
	}
}

func StartCPUProfile(profileName string) error {
	f, err := os.Create(profileName)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %s", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %s", err)
	}
	return nil
}

func StopCPUProfile() {
	pprof.StopCPUProfile()
}
