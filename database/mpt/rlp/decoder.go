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

import "fmt"

// Decoder consumes the fields of an RLP list one at a time. It is intended
// for decoding fixed record layouts, where each field is expected in a fixed
// position. Finish verifies that all fields of the list have been consumed.
type Decoder struct {
	payload []byte // fields of the list not consumed yet
	rest    []byte // data following the list
}

// NewListDecoder starts decoding the list at the beginning of the given data.
func NewListDecoder(data []byte) (*Decoder, error) {
	isList, offset, length, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	if !isList {
		return nil, fmt.Errorf("%w: expected list, got string", ErrMalformedData)
	}
	return &Decoder{
		payload: data[offset : offset+length],
		rest:    data[offset+length:],
	}, nil
}

// Bytes consumes the next field, which must be a string.
func (d *Decoder) Bytes(field string) ([]byte, error) {
	item, err := d.next(field)
	if err != nil {
		return nil, err
	}
	str, ok := item.(String)
	if !ok {
		return nil, &FieldError{Field: field, Err: fmt.Errorf("%w: got %T, wanted String", ErrMalformedData, item)}
	}
	return str.Str, nil
}

// Uint64 consumes the next field, which must be a canonical integer.
func (d *Decoder) Uint64(field string) (uint64, error) {
	str, err := d.Bytes(field)
	if err != nil {
		return 0, err
	}
	res, err := String{Str: str}.Uint64()
	if err != nil {
		return 0, &FieldError{Field: field, Err: err}
	}
	return res, nil
}

// List consumes the next field, which must be a list, and returns its items.
func (d *Decoder) List(field string) ([]Item, error) {
	item, err := d.next(field)
	if err != nil {
		return nil, err
	}
	list, ok := item.(List)
	if !ok {
		return nil, &FieldError{Field: field, Err: fmt.Errorf("%w: got %T, wanted List", ErrMalformedData, item)}
	}
	return list.Items, nil
}

// Raw consumes the next field and returns its encoding without interpreting it.
func (d *Decoder) Raw(field string) ([]byte, error) {
	if len(d.payload) == 0 {
		return nil, &FieldError{Field: field, Err: fmt.Errorf("%w: missing field", ErrInvalidLength)}
	}
	_, consumed, err := decode(d.payload)
	if err != nil {
		return nil, &FieldError{Field: field, Err: err}
	}
	res := d.payload[:consumed]
	d.payload = d.payload[consumed:]
	return res, nil
}

// Finish checks that all fields of the list have been consumed and returns
// the data following the list.
func (d *Decoder) Finish() ([]byte, error) {
	if len(d.payload) != 0 {
		return nil, fmt.Errorf("%w: %d bytes of unexpected fields", ErrMalformedData, len(d.payload))
	}
	return d.rest, nil
}

func (d *Decoder) next(field string) (Item, error) {
	if len(d.payload) == 0 {
		return nil, &FieldError{Field: field, Err: fmt.Errorf("%w: missing field", ErrInvalidLength)}
	}
	item, consumed, err := decode(d.payload)
	if err != nil {
		return nil, &FieldError{Field: field, Err: err}
	}
	d.payload = d.payload[consumed:]
	return item, nil
}
