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

	"github.com/urfave/cli/v2"
)

const maxListedPaths = 10

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a store directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&cacheSizeFlag,
	},
}

func getInfo(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	store, err := open(ctx, dir)
	if err != nil {
		return err
	}
	defer closeStore(store, dir, &err)

	nodes, err := store.NodeCount()
	if err != nil {
		return err
	}
	fmt.Printf("Stored nodes: %d\n", nodes)

	paths, err := store.GetStateHealPaths()
	if err != nil {
		return err
	}
	fmt.Printf("Pending state heal paths: %d\n", len(paths))
	for i, path := range paths {
		if i == maxListedPaths {
			fmt.Printf("\t...\n")
			break
		}
		fmt.Printf("\t[%v]\n", path)
	}

	storage, err := store.GetStorageHealPaths()
	if err != nil {
		return err
	}
	fmt.Printf("Accounts with pending storage healing: %d\n", len(storage))

	codes, err := store.GetPendingBytecodes()
	if err != nil {
		return err
	}
	fmt.Printf("Pending bytecodes: %d\n", len(codes))
	return nil
}
