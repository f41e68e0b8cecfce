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
	"time"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	"github.com/urfave/cli/v2"
)

var verifyCommand = cli.Command{
	Action: verify,
	Name:   "verify",
	Usage:  "verifies that the state trie with the given root is complete and consistent",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&cacheSizeFlag,
		&rootFlag,
		&statisticsFlag,
	},
}

var statisticsFlag = cli.BoolFlag{
	Name:  "stats",
	Usage: "print node statistics of the trie after the verification",
}

func verify(ctx *cli.Context) (err error) {
	root, err := common.HashFromHex(ctx.String(rootFlag.Name))
	if err != nil {
		return err
	}
	dir := ctx.String(dbDirectoryFlag.Name)
	store, err := open(ctx, dir)
	if err != nil {
		return err
	}
	defer closeStore(store, dir, &err)

	if err := mpt.VerifyStateTrie(store, store, root, &verificationObserver{}); err != nil {
		return err
	}
	if !ctx.Bool(statisticsFlag.Name) {
		return nil
	}
	stats, err := mpt.GetTrieNodeStatistics(store, root)
	if err != nil {
		return err
	}
	fmt.Print(stats.String())
	return nil
}

type verificationObserver struct {
	start time.Time
}

func (o *verificationObserver) StartVerification() {
	o.start = time.Now()
	o.printHeader()
	fmt.Println("Starting verification ...")
}

func (o *verificationObserver) Progress(msg string) {
	o.printHeader()
	fmt.Println(msg)
}

func (o *verificationObserver) EndVerification(res error) {
	o.printHeader()
	if res == nil {
		fmt.Println("Verification successful!")
	} else {
		fmt.Printf("Verification failed: %v\n", res)
	}
}

func (o *verificationObserver) printHeader() {
	now := time.Now()
	t := uint64(now.Sub(o.start).Seconds())
	fmt.Printf("%s [t=%4d:%02d] - ", now.Format("15:04:05"), t/60, t%60)
}
