// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package rlp

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/Fantom-foundation/mpt-heal/common"
	gethrlp "github.com/ethereum/go-ethereum/rlp"
)

func TestEncoding_EncodeStrings(t *testing.T) {
	testWithRlpStrings(t, func(t *testing.T, rlp []byte, item String) {
		testEncoder(t, rlp, item)
	})
}

func TestEncoding_EncodeList(t *testing.T) {
	testWithRlpLists(t, func(t *testing.T, rlp []byte, item List) {
		testEncoder(t, rlp, item)
	})
}

func TestEncoding_Uint64(t *testing.T) {
	testWithRlpUint64(t, func(t *testing.T, rlp []byte, item Uint64) {
		testEncoder(t, rlp, item)
	})
}

func TestEncoding_BigInt(t *testing.T) {
	testWithRlpBigInt(t, func(t *testing.T, rlp []byte, item BigInt) {
		testEncoder(t, rlp, item)
	})
}

func TestEncoding_EncodeHash(t *testing.T) {
	testWithRlpHash(t, func(t *testing.T, rlp []byte, item Hash) {
		testEncoder(t, rlp, item)
	})
}

func TestEncoding_EncodeEncoded(t *testing.T) {
	tests := [][]byte{
		{},
		{1},
		{1, 2},
		{1, 2, 3},
	}

	for _, test := range tests {
		if got, want := Encode(Encoded{test}), test; !bytes.Equal(got, want) {
			t.Errorf("invalid encoding, wanted %v, got %v", want, got)
		}
		if got, want := (Encoded{test}).getEncodedLength(), len(test); got != want {
			t.Errorf("invalid result for encoded length, wanted %d, got %d", want, got)
		}
	}
}

func TestEncoding_MatchesGethEncoding(t *testing.T) {
	type record struct {
		Nonce   uint64
		Balance *big.Int
		Payload []byte
		Nested  [][]byte
	}
	value := record{
		Nonce:   1 << 40,
		Balance: new(big.Int).Lsh(big.NewInt(3), 100),
		Payload: make([]byte, 70),
		Nested:  [][]byte{{1}, {0x80}, {}},
	}
	want, err := gethrlp.EncodeToBytes(&value)
	if err != nil {
		t.Fatalf("failed to encode with geth: %v", err)
	}
	got := Encode(List{Items: []Item{
		Uint64{value.Nonce},
		BigInt{value.Balance},
		String{value.Payload},
		List{Items: []Item{String{[]byte{1}}, String{[]byte{0x80}}, String{}}},
	}})
	if !bytes.Equal(got, want) {
		t.Errorf("encoding differs from geth\nwanted %x\n   got %x", want, got)
	}
}

func TestDecode_List(t *testing.T) {
	testWithRlpLists(t, func(t *testing.T, rlp []byte, item List) {
		testDecoder(t, rlp, item)
	})
}

func TestDecode_Strings(t *testing.T) {
	testWithRlpStrings(t, func(t *testing.T, rlp []byte, item String) {
		testDecoder(t, rlp, item)
	})
}

func TestDecode_Uint64(t *testing.T) {
	testWithRlpUint64(t, func(t *testing.T, rlp []byte, item Uint64) {
		testDecoder(t, rlp, item)
		decoded, err := Decode(rlp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := decoded.(String).Uint64()
		if err != nil {
			t.Fatalf("failed to interpret integer: %v", err)
		}
		if got != item.Value {
			t.Errorf("unexpected value, wanted %d, got %d", item.Value, got)
		}
	})
}

func TestDecode_BigInt(t *testing.T) {
	testWithRlpBigInt(t, func(t *testing.T, rlp []byte, item BigInt) {
		testDecoder(t, rlp, item)
		decoded, err := Decode(rlp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := decoded.(String).BigInt(); got.Cmp(item.Value) != 0 {
			t.Errorf("unexpected value, wanted %v, got %v", item.Value, got)
		}
	})
}

func TestDecode_Hash(t *testing.T) {
	testWithRlpHash(t, func(t *testing.T, rlp []byte, item Hash) {
		testDecoder(t, rlp, item)
	})
}

func TestDecode_ListWithMultipleSingleByteItems(t *testing.T) {
	item, err := Decode([]byte{0xc3, 1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := item.(List)
	if !ok || len(list.Items) != 3 {
		t.Fatalf("unexpected decoding result: %v", item)
	}
}

func TestDecode_NestedLongList(t *testing.T) {
	inner := List{Items: []Item{String{make([]byte, 60)}}}
	outer := List{Items: []Item{inner, String{[]byte{7}}}}
	item, err := Decode(Encode(outer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equal(item, outer) {
		t.Errorf("unexpected decoding result: %v", item)
	}
}

func TestString_Uint64RejectsNonCanonicalValues(t *testing.T) {
	tests := map[string][]byte{
		"leadingZero": {0, 1},
		"tooLong":     make([]byte, 9),
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := (String{test}).Uint64(); !errors.Is(err, ErrMalformedData) {
				t.Errorf("unexpected error, wanted %v, got %v", ErrMalformedData, err)
			}
		})
	}
}

func TestEncoding_getNumBytes_Zero(t *testing.T) {
	if got, want := getNumBytes(0), byte(0); got != want {
		t.Errorf("invalid result for encoded length, wanted %d, got %d", want, got)
	}
}

func TestReadSize_All_Correct_Sizes(t *testing.T) {
	want := uint64(0)
	for i := 1; i <= 8; i++ {
		b := make([]byte, i)
		for j := 0; j < i; j++ {
			b[j] = byte(0xFF)
		}
		got, err := readSize(b, byte(i))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		want = want<<8 | 0xFF
		if got != want {
			t.Errorf("invalid result for readSize, wanted %d, got %d", want, got)
		}
	}
}

func TestReadSize_All_InCorrect_Size(t *testing.T) {
	b := []byte{0xff}
	if _, err := readSize(b, 4); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("expected %v, got %v", ErrInvalidLength, err)
	}
	if _, err := readSize([]byte{0, 0xff}, 2); !errors.Is(err, ErrMalformedData) {
		t.Errorf("expected %v, got %v", ErrMalformedData, err)
	}
}

func TestDecoder_Corrupted_RLPs(t *testing.T) {
	tests := [][]byte{
		{},                        // empty
		{0x80 + 1},                // short string byte with missing payload
		{0xb7 + 1},                // long string with missing payload
		{0xb7 + 1, 60},            // long string with missing content
		{0xc0 + 1},                // short list with missing payload
		{0xf7 + 1},                // long list with missing payload
		{0xf7 + 1, 60, 1},         // long list with missing content
		{0x80, 0x80},              // two short strings
		{0xc0 + 2, 0xc0 + 2, 0x1}, // short list inner list missing payload
		{0x81, 0x01},              // non-canonical single byte
		{0xb8, 0x01, 0x00},        // long string encoding for short content
	}

	for _, rlp := range tests {
		t.Run(fmt.Sprintf("%x", rlp), func(t *testing.T) {
			if _, err := Decode(rlp); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestSplit_ReturnsRemainder(t *testing.T) {
	item, rest, err := Split([]byte{0x82, 1, 2, 0xc0, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equal(item, String{[]byte{1, 2}}) {
		t.Errorf("unexpected item: %v", item)
	}
	if want := []byte{0xc0, 5}; !bytes.Equal(rest, want) {
		t.Errorf("unexpected remainder, wanted %x, got %x", want, rest)
	}
}

// testEncoder runs a test for encoding an item.
func testEncoder(t *testing.T, rlp []byte, item Item) {
	t.Run(fmt.Sprintf("%x->%x", item, rlp), func(t *testing.T) {
		if got, want := Encode(item), rlp; !bytes.Equal(got, want) {
			t.Errorf("invalid encoding, wanted %v, got %v, input %v", want, got, rlp)
		}
		if got, want := item.getEncodedLength(), len(rlp); got != want {
			t.Errorf("invalid result for encoded length, wanted %d, got %d, input %v", want, got, rlp)
		}
	})
}

// testDecoder runs a test for decoding an item.
func testDecoder(t *testing.T, rlp []byte, item Item) {
	t.Run(fmt.Sprintf("%x->%x", rlp, item), func(t *testing.T) {
		got, err := Decode(rlp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, want := got, item; !equal(got, want) {
			t.Errorf("invalid encoding, wanted %v, got %v, input %v", want, got, rlp)
		}
	})
}

// testWithRlpStrings runs a test function with a set of RLP strings.
func testWithRlpStrings(t *testing.T, action func(t *testing.T, rlp []byte, item String)) {
	tests := []struct {
		rlp  []byte
		item String
	}{
		// empty string
		{[]byte{0x80}, String{}},

		// single values < 0x80
		{[]byte{0}, String{[]byte{0}}},
		{[]byte{1}, String{[]byte{1}}},
		{[]byte{0x7f}, String{[]byte{0x7f}}},

		// single values >= 0x80
		{[]byte{0x81, 0x80}, String{[]byte{0x80}}},
		{[]byte{0x81, 0xff}, String{[]byte{0xff}}},

		// more than one element for short strings (< 56 bytes)
		{[]byte{0x82, 0, 0}, String{[]byte{0, 0}}},
		{[]byte{0x83, 1, 2, 3}, String{[]byte{1, 2, 3}}},
		{expand([]byte{0x80 + 55}, 56), String{make([]byte, 55)}},

		// 56 or more bytes
		{expand([]byte{0xb7 + 1, 56}, 58), String{make([]byte, 56)}},
		{expand([]byte{0xb7 + 2, 1024 >> 8, 1024 & 0xff}, 1027), String{make([]byte, 1024)}},
	}

	for _, test := range tests {
		action(t, test.rlp, test.item)
	}
}

func testWithRlpLists(t *testing.T, action func(t *testing.T, rlp []byte, item List)) {
	tests := []struct {
		item []Item
		rlp  []byte
	}{
		// empty list
		{[]Item{}, []byte{0xc0}},

		// single element list with short content
		{[]Item{String{[]byte{1}}}, []byte{0xc1, 1}},
		{[]Item{String{[]byte{1, 2}}}, []byte{0xc3, 0x82, 1, 2}},

		// multi-element list with short content
		{[]Item{String{[]byte{1}}, String{[]byte{2}}}, []byte{0xc2, 1, 2}},

		// list with long content
		{[]Item{String{make([]byte, 100)}}, expand([]byte{0xf7 + 1, 102, 0xb7 + 1, 100}, 4+100)},
	}

	for _, test := range tests {
		action(t, test.rlp, List{test.item})
	}
}

// testWithRlpUint64 runs a test function with a set of Uint64 values.
func testWithRlpUint64(t *testing.T, action func(t *testing.T, rlp []byte, item Uint64)) {
	tests := []struct {
		item Uint64
		rlp  []byte
	}{
		{Uint64{0}, Encode(String{[]byte{}})},
		{Uint64{1}, Encode(String{[]byte{1}})},
		{Uint64{255}, Encode(String{[]byte{255}})},
		{Uint64{256}, Encode(String{[]byte{1, 0}})},
		{Uint64{1<<16 + 1}, Encode(String{[]byte{1, 0, 1}})},
		{Uint64{1<<32 - 1}, Encode(String{[]byte{255, 255, 255, 255}})},
		{Uint64{1 << 56}, Encode(String{[]byte{1, 0, 0, 0, 0, 0, 0, 0}})},
	}

	for _, test := range tests {
		action(t, test.rlp, test.item)
	}
}

func testWithRlpBigInt(t *testing.T, action func(t *testing.T, rlp []byte, item BigInt)) {
	tests := []struct {
		item BigInt
		rlp  []byte
	}{
		{BigInt{big.NewInt(0)}, Encode(String{[]byte{}})},
		{BigInt{big.NewInt(1)}, Encode(String{[]byte{1}})},
		{BigInt{big.NewInt(257)}, Encode(String{[]byte{1, 1}})},
		{BigInt{big.NewInt(1<<56 + 1)}, Encode(String{[]byte{1, 0, 0, 0, 0, 0, 0, 1}})},
		{BigInt{new(big.Int).Lsh(big.NewInt(1), 64)}, Encode(String{[]byte{1, 0, 0, 0, 0, 0, 0, 0, 0}})},
		{BigInt{new(big.Int).Lsh(big.NewInt(1), 66)}, Encode(String{[]byte{4, 0, 0, 0, 0, 0, 0, 0, 0}})},
		{BigInt{new(big.Int).Lsh(big.NewInt(1), 72)}, Encode(String{[]byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}})},
	}

	for _, test := range tests {
		action(t, test.rlp, test.item)
	}
}

func testWithRlpHash(t *testing.T, action func(t *testing.T, rlp []byte, item Hash)) {
	type test struct {
		item common.Hash
		rlp  []byte
	}
	const size = 32
	tests := make([]test, 0, size)
	var hash common.Hash
	for i := 0; i < size; i++ {
		hash[i] = byte(i)
		tests = append(tests, test{hash, append([]byte{0xA0}, hash[:]...)})
	}

	for _, test := range tests {
		test := test
		action(t, test.rlp, Hash{&test.item})
	}
}

func expand(prefix []byte, size int) []byte {
	res := make([]byte, size)
	copy(res[:], prefix[:])
	return res
}

func equal(a, b Item) bool {
	if a == nil || b == nil {
		return a == b
	}

	return bytes.Equal(Encode(a), Encode(b))
}
