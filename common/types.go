// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes of a Keccak256 hash.
const HashSize = 32

// Hash is a 32-byte Keccak256 digest. Within the trie it serves as the content
// address of nodes, the key of accounts and the identifier of byte codes.
type Hash [HashSize]byte

// HashFromBytes converts a byte slice into a hash. It fails if the slice does
// not have exactly HashSize bytes.
func HashFromBytes(data []byte) (Hash, error) {
	var res Hash
	if len(data) != HashSize {
		return res, fmt.Errorf("invalid hash length: got: %d, wanted: %d", len(data), HashSize)
	}
	copy(res[:], data)
	return res, nil
}

// HashFromHex parses a hex string, optionally prefixed by 0x, into a hash.
func HashFromHex(str string) (Hash, error) {
	if len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		str = str[2:]
	}
	data, err := hex.DecodeString(str)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(data)
}

// IsZero is true if all bytes of the hash are zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Hex returns the 0x prefixed hex representation of the hash.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}
