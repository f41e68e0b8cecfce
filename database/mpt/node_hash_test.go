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
	"strings"
	"testing"

	"github.com/Fantom-foundation/mpt-heal/common"
)

func TestNodeHash_FromBytes(t *testing.T) {
	hash := common.Keccak256([]byte{1, 2, 3})
	tests := map[string]struct {
		data   []byte
		valid  bool
		hashed bool
	}{
		"empty":  {nil, false, false},
		"inline": {[]byte{0xc2, 0x20, 0x01}, true, false},
		"hashed": {hash[:], true, true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := NodeHashFromBytes(test.data)
			if got.IsValid() != test.valid || got.IsHashed() != test.hashed {
				t.Errorf("unexpected classification of %x: valid %t, hashed %t", test.data, got.IsValid(), got.IsHashed())
			}
			if test.valid && !bytes.Equal(got.Bytes(), test.data) {
				t.Errorf("unexpected bytes, wanted %x, got %x", test.data, got.Bytes())
			}
		})
	}
}

func TestNodeHash_HashOfInlineNodeIsKeccakOfEncoding(t *testing.T) {
	encoded := []byte{0xc2, 0x20, 0x01}
	if got, want := InlineNodeHash(encoded).Hash(), common.Keccak256(encoded); got != want {
		t.Errorf("unexpected hash, wanted %v, got %v", want, got)
	}
}

func TestNodeHash_InlineHashDoesNotAliasInput(t *testing.T) {
	encoded := []byte{0xc2, 0x20, 0x01}
	hash := InlineNodeHash(encoded)
	encoded[2] = 0x02
	if hash.Bytes()[2] != 0x01 {
		t.Errorf("inline hash aliases its input")
	}
}

func TestNodeHash_Equal(t *testing.T) {
	a := HashedNodeHash(common.Hash{1})
	b := HashedNodeHash(common.Hash{2})
	c := InlineNodeHash([]byte{0xc2, 0x20, 0x01})
	if !a.Equal(a) || !c.Equal(InlineNodeHash([]byte{0xc2, 0x20, 0x01})) {
		t.Errorf("equal hashes reported as different")
	}
	if a.Equal(b) || a.Equal(c) || c.Equal(NodeHash{}) {
		t.Errorf("different hashes reported as equal")
	}
}

func TestNodeHash_String(t *testing.T) {
	if got := (NodeHash{}).String(); got != "-" {
		t.Errorf("unexpected print of empty hash: %s", got)
	}
	if got := InlineNodeHash([]byte{0xc1, 0x01}).String(); got != "inline:c101" {
		t.Errorf("unexpected print of inline hash: %s", got)
	}
	if got := HashedNodeHash(common.Hash{0xab}).String(); !strings.HasPrefix(got, "ab00") {
		t.Errorf("unexpected print of hashed hash: %s", got)
	}
}
