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
	"log"

	"github.com/urfave/cli/v2"
)

var resetCommand = cli.Command{
	Action: reset,
	Name:   "reset",
	Usage:  "removes the pending state heal paths and bytecodes of a store directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
	},
}

func reset(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	store, err := open(ctx, dir)
	if err != nil {
		return err
	}
	defer closeStore(store, dir, &err)

	log.Printf("Removing pending state heal paths ...")
	if err := store.ClearStateHealPaths(); err != nil {
		return err
	}
	log.Printf("Removing pending bytecodes ...")
	return store.SetPendingBytecodes(nil)
}
