// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"bytes"
	"testing"
)

var dbKeySink DbKey

func TestToDBKey_PrefixesTableSpace(t *testing.T) {
	key := []byte{1, 2, 3}
	dbKey := ToDBKey(NodeStoreKey, key)
	if dbKey[0] != 'N' || !bytes.Equal(dbKey[1:4], key) {
		t.Errorf("unexpected key: %x", dbKey)
	}
	if got := CodeStoreKey.ToDBKey(key); got[0] != 'D' {
		t.Errorf("unexpected table prefix: %c", got[0])
	}
}

func TestToDBKey_PanicsOnTooLongKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic")
		}
	}()
	ToDBKey(NodeStoreKey, make([]byte, 33))
}

func TestTableSpace_RangeCoversOnlyItsKeys(t *testing.T) {
	r := StateHealPathsKey.Range()
	inside := StateHealPathsKey.ToDBKey([]byte{0xff})
	if bytes.Compare(inside.ToBytes(), r.Start) < 0 || bytes.Compare(inside.ToBytes(), r.Limit) >= 0 {
		t.Errorf("key %x not in range %x-%x", inside, r.Start, r.Limit)
	}
	outside := StorageHealPathsKey.ToDBKey(nil)
	if bytes.Compare(outside.ToBytes(), r.Start) >= 0 && bytes.Compare(outside.ToBytes(), r.Limit) < 0 {
		t.Errorf("key %x should not be in range %x-%x", outside, r.Start, r.Limit)
	}
}

func TestOpenLevelDb_CanOpenAndReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenLevelDb(dir, nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	key := NodeStoreKey.ToDBKey([]byte{1})
	if err := db.Put(key.ToBytes(), []byte{2}, nil); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	db, err = OpenLevelDb(dir, nil)
	if err != nil {
		t.Fatalf("failed to reopen db: %v", err)
	}
	defer db.Close()
	value, err := db.Get(key.ToBytes(), nil)
	if err != nil || !bytes.Equal(value, []byte{2}) {
		t.Errorf("unexpected value %x, %v", value, err)
	}
}

func BenchmarkConvertTableSpace(b *testing.B) {
	key := make([]byte, 32)
	for i := 1; i <= b.N; i++ {
		key[0] = byte(i)
		dbKeySink = ToDBKey(NodeStoreKey, key)
	}
}
