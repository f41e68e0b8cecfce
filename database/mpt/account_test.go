// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mpt

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt/rlp"
	gethcommon "github.com/ethereum/go-ethereum/common"
	gethrlp "github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// gethAccount mirrors the account layout used by go-ethereum's state trie.
type gethAccount struct {
	Nonce    uint64
	Balance  *big.Int
	Root     gethcommon.Hash
	CodeHash []byte
}

func TestAccountState_EmptyHashesMatchEthereum(t *testing.T) {
	// see go-ethereum's types.EmptyRootHash and types.EmptyCodeHash
	wantRoot, _ := common.HashFromHex("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")
	wantCode, _ := common.HashFromHex("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	if EmptyTrieHash != wantRoot {
		t.Errorf("unexpected empty trie hash: %v", EmptyTrieHash)
	}
	if EmptyCodeHash != wantCode {
		t.Errorf("unexpected empty code hash: %v", EmptyCodeHash)
	}
}

func TestAccountState_EncodingMatchesGeth(t *testing.T) {
	balance, _ := uint256.FromBig(new(big.Int).Lsh(big.NewInt(1), 100))
	accounts := []AccountState{
		NewAccountState(0, nil),
		NewAccountState(1, uint256.NewInt(1000)),
		{Nonce: 1 << 40, Balance: *balance, StorageRoot: common.Hash{1, 2}, CodeHash: common.Hash{3, 4}},
	}

	for _, account := range accounts {
		want, err := gethrlp.EncodeToBytes(&gethAccount{
			Nonce:    account.Nonce,
			Balance:  account.Balance.ToBig(),
			Root:     gethcommon.Hash(account.StorageRoot),
			CodeHash: account.CodeHash[:],
		})
		if err != nil {
			t.Fatalf("failed to encode account with geth: %v", err)
		}
		if got := account.Encode(); !bytes.Equal(got, want) {
			t.Errorf("unexpected encoding\nwanted %x\n   got %x", want, got)
		}

		restored, err := DecodeAccountState(want)
		if err != nil {
			t.Fatalf("failed to decode account: %v", err)
		}
		if restored != account {
			t.Errorf("unexpected account, wanted %v, got %v", account, restored)
		}
	}
}

func TestAccountState_HasStorageAndCode(t *testing.T) {
	account := NewAccountState(1, nil)
	if account.HasStorage() || account.HasCode() {
		t.Errorf("fresh account should have neither storage nor code")
	}
	account.StorageRoot = common.Hash{1}
	account.CodeHash = common.Hash{2}
	if !account.HasStorage() || !account.HasCode() {
		t.Errorf("account should have storage and code")
	}
}

func TestAccountState_DecodingInvalidData(t *testing.T) {
	valid := NewAccountState(1, uint256.NewInt(2))
	tests := map[string]struct {
		data  []byte
		field string
	}{
		"missingCodeHash": {
			data: rlp.Encode(rlp.List{Items: []rlp.Item{
				rlp.Uint64{Value: 1},
				rlp.Uint64{Value: 2},
				rlp.Hash{Hash: &valid.StorageRoot},
			}}),
			field: "codeHash",
		},
		"shortStorageRoot": {
			data: rlp.Encode(rlp.List{Items: []rlp.Item{
				rlp.Uint64{Value: 1},
				rlp.Uint64{Value: 2},
				rlp.String{Str: []byte{1, 2, 3}},
				rlp.Hash{Hash: &valid.CodeHash},
			}}),
			field: "storageRoot",
		},
		"balanceWithLeadingZero": {
			data: rlp.Encode(rlp.List{Items: []rlp.Item{
				rlp.Uint64{Value: 1},
				rlp.String{Str: []byte{0, 2}},
				rlp.Hash{Hash: &valid.StorageRoot},
				rlp.Hash{Hash: &valid.CodeHash},
			}}),
			field: "balance",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeAccountState(test.data)
			var fieldErr *rlp.FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected field error, got %v", err)
			}
			if fieldErr.Field != test.field {
				t.Errorf("unexpected field, wanted %s, got %s", test.field, fieldErr.Field)
			}
		})
	}

	if _, err := DecodeAccountState(append(valid.Encode(), 0x80)); err == nil {
		t.Errorf("trailing data should be rejected")
	}
	if _, err := DecodeAccountState(rlp.Encode(rlp.String{Str: []byte{1}})); !errors.Is(err, rlp.ErrMalformedData) {
		t.Errorf("non-list data should be rejected, got %v", err)
	}
}
