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
	"strings"
)

// Nibble is a 4-bit unsigned integer in the range 0-F. It is a single letter
// used to navigate in the MPT structure.
type Nibble byte

// Rune converts a Nibble in a hexa-decimal rune (0-9a-f).
func (n Nibble) Rune() rune {
	if n < 10 {
		return rune('0' + n)
	} else if n < 16 {
		return rune('a' + n - 10)
	} else {
		return '?'
	}
}

// String converts a Nibble in a hexa-decimal string (0-9a-f).
func (n Nibble) String() string {
	return string(n.Rune())
}

// Nibbles is a sequence of nibbles describing a path in a trie, starting at
// its root. Values of this type are treated as immutable: all operations
// producing a new path return a fresh copy and never alias the receiver.
type Nibbles []Nibble

// NibblesFromBytes unpacks every byte of the given key into two nibbles,
// high nibble first.
func NibblesFromBytes(key []byte) Nibbles {
	res := make(Nibbles, len(key)*2)
	parseNibbles(res, key)
	return res
}

// NibblesFromRaw converts a sequence of bytes, each holding a single nibble,
// into a path. It is the inverse of Nibbles.Raw.
func NibblesFromRaw(data []byte) (Nibbles, error) {
	res := make(Nibbles, len(data))
	for i, b := range data {
		if b > 0xF {
			return nil, fmt.Errorf("invalid nibble at position %d: got: %d, wanted: < 16", i, b)
		}
		res[i] = Nibble(b)
	}
	return res, nil
}

func parseNibbles(dst []Nibble, src []byte) {
	for i := 0; i < len(src); i++ {
		dst[2*i] = Nibble(src[i] >> 4)
		dst[2*i+1] = Nibble(src[i] & 0xF)
	}
}

// Len returns the number of nibbles in the path.
func (n Nibbles) Len() int {
	return len(n)
}

// Append returns a new path extending this path by the given nibble.
func (n Nibbles) Append(nibble Nibble) Nibbles {
	res := make(Nibbles, len(n)+1)
	copy(res, n)
	res[len(n)] = nibble
	return res
}

// Concat returns a new path consisting of this path followed by the other.
func (n Nibbles) Concat(other Nibbles) Nibbles {
	res := make(Nibbles, len(n)+len(other))
	copy(res, n)
	copy(res[len(n):], other)
	return res
}

// ToBytes packs pairs of nibbles into bytes. A trailing odd nibble is dropped.
func (n Nibbles) ToBytes() []byte {
	res := make([]byte, len(n)/2)
	for i := range res {
		res[i] = byte(n[2*i])<<4 | byte(n[2*i+1])
	}
	return res
}

// Raw returns the path with one nibble per byte.
func (n Nibbles) Raw() []byte {
	res := make([]byte, len(n))
	for i, cur := range n {
		res[i] = byte(cur)
	}
	return res
}

// Equal tests whether both paths contain the same nibbles.
func (n Nibbles) Equal(other Nibbles) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if n[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the path.
func (n Nibbles) Clone() Nibbles {
	if n == nil {
		return nil
	}
	res := make(Nibbles, len(n))
	copy(res, n)
	return res
}

// String renders the path as a sequence of hex digits, e.g. "3a0f".
func (n Nibbles) String() string {
	var builder strings.Builder
	builder.Grow(len(n))
	for _, cur := range n {
		builder.WriteRune(cur.Rune())
	}
	return builder.String()
}

// GetCommonPrefixLength computes the length of the common prefix of the given
// Nibble-slices.
func GetCommonPrefixLength(a, b Nibbles) int {
	lengthA := len(a)
	if lengthA > len(b) {
		return GetCommonPrefixLength(b, a)
	}
	for i := 0; i < lengthA; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return lengthA
}

// IsPrefixOf tests whether one Nibble slice is the prefix of another.
func IsPrefixOf(a, b Nibbles) bool {
	return len(a) <= len(b) && GetCommonPrefixLength(a, b) == len(a)
}
