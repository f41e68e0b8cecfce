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
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/mpt-heal/common"
)

// The definition of the RLP encoding can be found here:
// https://ethereum.org/en/developers/docs/data-structures-and-encoding/rlp
//
// Based on Appendix B of https://ethereum.github.io/yellowpaper/paper.pdf
//
// Recursive-Length Prefix (RLP) serialization is based on a recursive
// structure definition of an `item`. An item is defined as
//   - a string of bytes
//   - a list of items
// Note the recursive definition in the second line. This recursive step
// allows arbitrarily nested structures to be encoded. This package provides
// RLP encoding support for Items, a decoder producing String and List items,
// and a Decoder for consuming the fields of a list one by one.

const (
	// ErrInvalidLength is reported when the input is too short for the
	// lengths announced by its prefixes.
	ErrInvalidLength = common.ConstError("rlp: invalid length")
	// ErrMalformedData is reported for inputs violating the RLP structure.
	ErrMalformedData = common.ConstError("rlp: malformed data")
)

// FieldError reports a problem with a named field of a decoded list.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("error decoding field '%s': %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Item is an interface for everything that can be RLP encoded by this package.
type Item interface {
	// write writes the RLP encoding of this item to the given writer.
	write(writer) writer

	// getEncodedLength computes the encoded length of this item in bytes.
	getEncodedLength() int
}

// Encode is a convenience function for serializing an item structure.
func Encode(item Item) []byte {
	return EncodeInto(make([]byte, 0, 1024), item)
}

// EncodeInto appends the encoding of the given item to dst.
func EncodeInto(dst []byte, item Item) []byte {
	writer := writer(dst)
	return item.write(writer)
}

// Decode decodes a single item which must span the full input.
func Decode(rlp []byte) (Item, error) {
	item, consumed, err := decode(rlp)
	if err != nil {
		return nil, err
	}
	if consumed != uint64(len(rlp)) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedData, uint64(len(rlp))-consumed)
	}
	return item, nil
}

// Split decodes the first item of the input and returns the remaining bytes.
func Split(rlp []byte) (Item, []byte, error) {
	item, consumed, err := decode(rlp)
	if err != nil {
		return nil, nil, err
	}
	return item, rlp[consumed:], nil
}

// decodeHeader interprets the prefix of an item. It returns whether the item
// is a list, the offset of the payload and the length of the payload.
func decodeHeader(rlp []byte) (isList bool, offset uint64, length uint64, err error) {
	if len(rlp) == 0 {
		return false, 0, 0, fmt.Errorf("%w: input RLP is empty", ErrInvalidLength)
	}

	l := rlp[0]
	switch {
	case l < 0x80: // single byte
		return false, 0, 1, nil
	case l < 0xb8: // short string
		length = uint64(l - 0x80)
		if length == 1 && len(rlp) > 1 && rlp[1] < 0x80 {
			return false, 0, 0, fmt.Errorf("%w: non-canonical single byte string", ErrMalformedData)
		}
		offset = 1
	case l < 0xc0: // long string
		bytesLength := l - 0xb7
		length, err = readSize(rlp[1:], bytesLength)
		if err != nil {
			return false, 0, 0, err
		}
		offset = 1 + uint64(bytesLength)
	case l < 0xf8: // short list
		isList = true
		length = uint64(l - 0xc0)
		offset = 1
	default: // long list
		isList = true
		bytesLength := l - 0xf7
		length, err = readSize(rlp[1:], bytesLength)
		if err != nil {
			return false, 0, 0, err
		}
		offset = 1 + uint64(bytesLength)
	}

	if uint64(len(rlp)) < offset+length || offset+length < offset {
		return false, 0, 0, fmt.Errorf("%w: expected %d bytes, got: %d", ErrInvalidLength, offset+length, len(rlp))
	}
	return isList, offset, length, nil
}

// decode decodes the first item of an RLP stream and reports the number of
// consumed bytes. It may recursively call itself to decode nested items.
func decode(rlp []byte) (Item, uint64, error) {
	isList, offset, length, err := decodeHeader(rlp)
	if err != nil {
		return nil, 0, err
	}
	payload := rlp[offset : offset+length]
	if !isList {
		return String{Str: payload}, offset + length, nil
	}
	items, err := decodeList(payload)
	if err != nil {
		return nil, 0, err
	}
	return List{Items: items}, offset + length, nil
}

// decodeList decodes a list of items from the given RLP stream.
// The function expects an RLP stream with possibly multiple items encoded
// while the prefix with the length is already cut out. It consumes chunks
// of the input by passing it to the decoder until the input is empty.
func decodeList(rlp []byte) ([]Item, error) {
	items := make([]Item, 0, 17)
	buf := rlp
	for len(buf) > 0 {
		item, offset, err := decode(buf)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
		buf = buf[offset:]
	}

	return items, nil
}

// writer is a specialized writer for this package writing encoded RLP
// content in a pre-allocated buffer.
type writer []byte

func (w writer) Write(data []byte) writer {
	return append(w, data...)
}

func (w writer) Put(c byte) writer {
	return append(w, c)
}

// ----------------------------------------------------------------------------
//                           Core Item Types
// ----------------------------------------------------------------------------

// String is the atomic ground type of an RLP input structure representing a
// (potentially empty) string of bytes.
type String struct {
	Str []byte
}

func (s String) write(writer writer) writer {
	l := len(s.Str)
	// Single-element strings are encoded as a single byte if the
	// value is small enough.
	if l == 1 && s.Str[0] < 0x80 {
		return writer.Write(s.Str)
	}
	// For the rest, the length is encoded, followed by the string itself.
	writer = encodeLength(l, 0x80, writer)
	return writer.Write(s.Str)
}

func (s String) getEncodedLength() int {
	l := len(s.Str)
	if l == 1 && s.Str[0] < 0x80 {
		return 1
	}
	return l + getEncodedLengthLength(l)
}

// Uint64 interprets the string as a big-endian unsigned integer. Leading
// zero bytes are rejected since they are not part of a canonical encoding.
func (s String) Uint64() (uint64, error) {
	if len(s.Str) > 8 {
		return 0, fmt.Errorf("%w: integer of %d bytes exceeds 64 bit", ErrMalformedData, len(s.Str))
	}
	if len(s.Str) > 0 && s.Str[0] == 0 {
		return 0, fmt.Errorf("%w: integer with leading zero bytes", ErrMalformedData)
	}
	var buffer [8]byte
	copy(buffer[8-len(s.Str):], s.Str)
	return binary.BigEndian.Uint64(buffer[:]), nil
}

// BigInt interprets the string as a big-endian unsigned integer.
func (s String) BigInt() *big.Int {
	return new(big.Int).SetBytes(s.Str)
}

// Hash is a used specifically to hold a pointer to hash.
// Its usage is similar to rlp.String, but this type should be used for performance reasons.
// In particular, conversion of common.Hash to rlp.String requires conversion of array
// to slice, which executes runtime.convTSlice() many times.
type Hash struct {
	Hash *common.Hash
}

func (s Hash) write(writer writer) writer {
	writer = encodeLength(32, 0x80, writer)
	return writer.Write(s.Hash[:])
}

func (s Hash) getEncodedLength() int {
	// 32 bytes of hash + one byte to store length
	return 32 + 1
}

// List composes a list of items into a new item to be serialized.
type List struct {
	Items []Item
}

func (l List) write(writer writer) writer {
	length := 0
	for i := 0; i < len(l.Items); i++ {
		length += l.Items[i].getEncodedLength()
	}
	writer = encodeLength(length, 0xc0, writer)
	for i := 0; i < len(l.Items); i++ {
		writer = l.Items[i].write(writer)
	}
	return writer
}

func (l List) getEncodedLength() int {
	sum := 0
	for _, item := range l.Items {
		sum += item.getEncodedLength()
	}
	return sum + getEncodedLengthLength(sum)
}

// encodeLength is utility function used by String and List structures to
// encode the length of the string or list in the output stream.
func encodeLength(length int, offset byte, writer writer) writer {
	if length < 56 {
		return writer.Put(offset + byte(length))
	}
	numBytesForLength := getNumBytes(uint64(length))
	writer = writer.Put(offset + 55 + numBytesForLength)
	for i := byte(0); i < numBytesForLength; i++ {
		writer = writer.Put(byte(length >> (8 * (numBytesForLength - i - 1))))
	}
	return writer
}

// getNumBytes computes the minimum number of bytes required to represent
// the given value in big-endian encoding.
func getNumBytes(value uint64) byte {
	if value == 0 {
		return 0
	}
	for res := byte(1); ; res++ {
		if value >>= 8; value == 0 {
			return res
		}
	}
}

func getEncodedLengthLength(length int) int {
	if length < 56 {
		return 1
	}
	return int(getNumBytes(uint64(length))) + 1
}

// Encoded allows for embedding an already RLP encoded data fragment in a new RLP encoding.
type Encoded struct {
	Data []byte
}

func (e Encoded) write(writer writer) writer {
	return writer.Write(e.Data)
}

func (e Encoded) getEncodedLength() int {
	return len(e.Data)
}

// ----------------------------------------------------------------------------
//                           Utility Item Types
// ----------------------------------------------------------------------------

// Uint64 is an Item encoding unsigned integers into RLP by interpreting them
// as a string of bytes. The bytes are derived from the integer value by
// encoding it in big-endian byte order and removing leading zero-bytes.
type Uint64 struct {
	Value uint64
}

func (u Uint64) write(writer writer) writer {
	// Uint64 values are encoded using their non-zero big-endian encoding suffix.
	if u.Value == 0 {
		return writer.Put(0x80)
	}
	var buffer = make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, u.Value)
	for buffer[0] == 0 {
		buffer = buffer[1:]
	}
	return String{Str: buffer}.write(writer)
}

func (u Uint64) getEncodedLength() int {
	if u.Value < 0x80 {
		return 1
	}
	return 1 + int(getNumBytes(u.Value))
}

// BigInt is an Item encoding big.Int values into RLP by interpreting them
// as a string of bytes. The encoding schema is implemented analogous to the
// Uint64 encoder above.
type BigInt struct {
	Value *big.Int
}

func (i BigInt) write(writer writer) writer {
	// Based on: https://github.com/ethereum/go-ethereum/blob/v1.12.0/rlp/encbuffer.go#L152
	// Values that fit in 64 bit are encoded using the uint64 encoder.
	bitlen := i.Value.BitLen()
	if bitlen <= 64 {
		return Uint64{Value: i.Value.Uint64()}.write(writer)
	}
	return String{Str: i.Value.Bytes()}.write(writer)
}

func (i BigInt) getEncodedLength() int {
	bitlen := i.Value.BitLen()
	if bitlen <= 64 {
		return Uint64{Value: i.Value.Uint64()}.getEncodedLength()
	}
	length := ((bitlen + 7) & -8) >> 3
	return getEncodedLengthLength(length) + length
}

func readSize(b []byte, slen byte) (uint64, error) {
	if slen == 0 || slen > 8 {
		return 0, fmt.Errorf("%w: unsupported size length %d", ErrMalformedData, slen)
	}
	if int(slen) > len(b) {
		return 0, fmt.Errorf("%w: expected %d bytes, got: %d", ErrInvalidLength, slen, len(b))
	}
	if b[0] == 0 {
		return 0, fmt.Errorf("%w: size with leading zero bytes", ErrMalformedData)
	}
	var s uint64
	for i := byte(0); i < slen; i++ {
		s = s<<8 | uint64(b[i])
	}
	if s < 56 {
		return 0, fmt.Errorf("%w: non-canonical size %d", ErrMalformedData, s)
	}
	return s, nil
}
