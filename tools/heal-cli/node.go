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

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	"github.com/urfave/cli/v2"
)

var nodeHashFlag = cli.StringFlag{
	Name:     "hash",
	Usage:    "the hash of the node to print",
	Required: true,
}

var nodeCommand = cli.Command{
	Action: printNode,
	Name:   "node",
	Usage:  "prints a node stored in a store directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&nodeHashFlag,
	},
}

func printNode(ctx *cli.Context) (err error) {
	hash, err := common.HashFromHex(ctx.String(nodeHashFlag.Name))
	if err != nil {
		return err
	}
	dir := ctx.String(dbDirectoryFlag.Name)
	store, err := open(ctx, dir)
	if err != nil {
		return err
	}
	defer closeStore(store, dir, &err)

	node, found, err := store.GetNode(mpt.HashedNodeHash(hash))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no node with hash %v", hash)
	}
	fmt.Printf("%v\n", node)
	if got := mpt.RootHash(node); got != hash {
		return fmt.Errorf("node is stored under %v but has hash %v", hash, got)
	}
	return nil
}
