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
	"encoding/binary"
	"fmt"
	"log"
	"math/rand"

	"github.com/Fantom-foundation/mpt-heal/backend/syncstore"
	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var (
	numAccountsFlag = cli.IntFlag{
		Name:  "accounts",
		Usage: "the number of accounts to generate",
		Value: 10_000,
	}
	codeRatioFlag = cli.Float64Flag{
		Name:  "code-ratio",
		Usage: "the fraction of accounts with code",
		Value: 0.1,
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "the seed of the random account generator",
		Value: 0,
	}
)

var generateCommand = cli.Command{
	Action: generate,
	Name:   "generate",
	Usage:  "writes a state trie of random accounts into a store directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&numAccountsFlag,
		&codeRatioFlag,
		&seedFlag,
	},
}

func generate(ctx *cli.Context) (err error) {
	entries, codes := generateAccounts(
		ctx.Int(numAccountsFlag.Name),
		ctx.Float64(codeRatioFlag.Name),
		ctx.Int64(seedFlag.Name),
	)
	log.Printf("Building trie of %d accounts ...", len(entries))
	root, nodes, err := mpt.BuildTrie(entries)
	if err != nil {
		return err
	}

	dir := ctx.String(dbDirectoryFlag.Name)
	store, err := open(ctx, dir)
	if err != nil {
		return err
	}
	defer closeStore(store, dir, &err)

	log.Printf("Writing %d nodes and %d codes ...", len(nodes), len(codes))
	if err := syncstore.WriteTrie(store, nodes); err != nil {
		return err
	}
	for hash, code := range codes {
		if err := store.SetAccountCode(hash, code); err != nil {
			return err
		}
	}
	fmt.Printf("State root: %v\n", root)
	return nil
}

// generateAccounts creates random accounts and the codes they refer to.
func generateAccounts(count int, codeRatio float64, seed int64) ([]mpt.TrieEntry, map[common.Hash][]byte) {
	random := rand.New(rand.NewSource(seed))
	entries := make([]mpt.TrieEntry, 0, count)
	codes := map[common.Hash][]byte{}
	for i := 0; i < count; i++ {
		var address [8]byte
		binary.BigEndian.PutUint64(address[:], uint64(i))
		key := common.Keccak256(address[:])

		account := mpt.NewAccountState(random.Uint64()%1024, uint256.NewInt(random.Uint64()))
		if random.Float64() < codeRatio {
			code := make([]byte, 1+random.Intn(256))
			random.Read(code)
			account.CodeHash = common.Keccak256(code)
			codes[account.CodeHash] = code
		}
		entries = append(entries, mpt.TrieEntry{Key: key[:], Value: account.Encode()})
	}
	return entries, codes
}
