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
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt/rlp"
	"github.com/holiman/uint256"
)

// EmptyCodeHash is the hash of an empty byte code.
var EmptyCodeHash = common.Keccak256(nil)

// AccountState is the value stored in the leaves of a state trie.
type AccountState struct {
	Nonce       uint64
	Balance     uint256.Int
	StorageRoot common.Hash
	CodeHash    common.Hash
}

// NewAccountState creates the state of an account without storage and code.
func NewAccountState(nonce uint64, balance *uint256.Int) AccountState {
	res := AccountState{
		Nonce:       nonce,
		StorageRoot: EmptyTrieHash,
		CodeHash:    EmptyCodeHash,
	}
	if balance != nil {
		res.Balance = *balance
	}
	return res
}

// HasStorage is true if the account's storage trie is not empty.
func (a *AccountState) HasStorage() bool {
	return a.StorageRoot != EmptyTrieHash
}

// HasCode is true if the account has a non-empty byte code.
func (a *AccountState) HasCode() bool {
	return a.CodeHash != EmptyCodeHash
}

// Encode produces the RLP encoding of the account as it is stored in leaves.
func (a *AccountState) Encode() []byte {
	return rlp.Encode(rlp.List{Items: []rlp.Item{
		rlp.Uint64{Value: a.Nonce},
		rlp.BigInt{Value: a.Balance.ToBig()},
		rlp.Hash{Hash: &a.StorageRoot},
		rlp.Hash{Hash: &a.CodeHash},
	}})
}

// DecodeAccountState decodes the value of a state-trie leaf.
func DecodeAccountState(data []byte) (AccountState, error) {
	var res AccountState
	decoder, err := rlp.NewListDecoder(data)
	if err != nil {
		return res, err
	}

	if res.Nonce, err = decoder.Uint64("nonce"); err != nil {
		return res, err
	}

	balance, err := decoder.Bytes("balance")
	if err != nil {
		return res, err
	}
	if len(balance) > 32 || (len(balance) > 0 && balance[0] == 0) {
		return res, &rlp.FieldError{Field: "balance", Err: fmt.Errorf("%w: non-canonical balance of %d bytes", rlp.ErrMalformedData, len(balance))}
	}
	res.Balance.SetBytes(balance)

	if res.StorageRoot, err = decodeHashField(decoder, "storageRoot"); err != nil {
		return res, err
	}
	if res.CodeHash, err = decodeHashField(decoder, "codeHash"); err != nil {
		return res, err
	}

	rest, err := decoder.Finish()
	if err != nil {
		return res, err
	}
	if len(rest) != 0 {
		return res, fmt.Errorf("%w: %d trailing bytes after account", rlp.ErrMalformedData, len(rest))
	}
	return res, nil
}

func decodeHashField(decoder *rlp.Decoder, field string) (common.Hash, error) {
	data, err := decoder.Bytes(field)
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := common.HashFromBytes(data)
	if err != nil {
		return common.Hash{}, &rlp.FieldError{Field: field, Err: fmt.Errorf("%w: %v", rlp.ErrMalformedData, err)}
	}
	return hash, nil
}
