// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package syncstore

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/backend"
	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDbConfig is the configuration of a LevelDbStore.
type LevelDbConfig struct {
	// NodeCacheSize is the number of decoded nodes kept in memory.
	NodeCacheSize int
	// Options are passed to LevelDB when opening the database, may be nil.
	Options *opt.Options
}

// DefaultLevelDbConfig is the configuration used by tools if not overridden.
var DefaultLevelDbConfig = LevelDbConfig{
	NodeCacheSize: 1 << 16,
}

// LevelDbStore is a store for the state synchronization persisting its data
// in a LevelDB instance. Trie nodes are stored in their persistence format
// indexed by hash, byte codes by their hash, and heal paths in dedicated
// table spaces. Decoded nodes are cached.
type LevelDbStore struct {
	db    backend.LevelDB
	close func() error
	cache *lru.Cache[common.Hash, mpt.Node]
}

// OpenLevelDbStore opens or creates a store in the given directory.
func OpenLevelDbStore(directory string, config LevelDbConfig) (*LevelDbStore, error) {
	db, err := backend.OpenLevelDb(directory, config.Options)
	if err != nil {
		return nil, err
	}
	store, err := NewLevelDbStore(db, config)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	store.close = db.Close
	return store, nil
}

// NewLevelDbStore creates a store on top of the given database. Closing the
// store does not close the database.
func NewLevelDbStore(db backend.LevelDB, config LevelDbConfig) (*LevelDbStore, error) {
	if config.NodeCacheSize <= 0 {
		return nil, fmt.Errorf("invalid node cache size: %d", config.NodeCacheSize)
	}
	cache, err := lru.New[common.Hash, mpt.Node](config.NodeCacheSize)
	if err != nil {
		return nil, err
	}
	return &LevelDbStore{db: db, cache: cache}, nil
}

func (s *LevelDbStore) GetNode(hash mpt.NodeHash) (mpt.Node, bool, error) {
	if !hash.IsHashed() {
		return mpt.GetNode(s, hash)
	}
	key := hash.Hash()
	if node, found := s.cache.Get(key); found {
		return node, true, nil
	}
	data, err := s.db.Get(backend.NodeStoreKey.ToDBKey(key[:]).ToBytes(), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	node, err := mpt.DecodeNode(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode node %v: %w", key, err)
	}
	s.cache.Add(key, node)
	return node, true, nil
}

func (s *LevelDbStore) PutNodes(nodes map[common.Hash][]byte) error {
	batch := new(leveldb.Batch)
	for hash, data := range nodes {
		batch.Put(backend.NodeStoreKey.ToDBKey(hash[:]).ToBytes(), data)
	}
	return s.db.Write(batch, nil)
}

// NodeCount returns the number of stored nodes.
func (s *LevelDbStore) NodeCount() (int, error) {
	iter := s.db.NewIterator(backend.NodeStoreKey.Range(), nil)
	defer iter.Release()
	count := 0
	for iter.Next() {
		count++
	}
	return count, iter.Error()
}

func (s *LevelDbStore) ContainsStorageNode(_ common.Hash, root common.Hash) (bool, error) {
	if root == mpt.EmptyTrieHash {
		return true, nil
	}
	if _, found := s.cache.Get(root); found {
		return true, nil
	}
	return s.db.Has(backend.NodeStoreKey.ToDBKey(root[:]).ToBytes(), nil)
}

func (s *LevelDbStore) GetAccountCode(hash common.Hash) ([]byte, bool, error) {
	if hash == mpt.EmptyCodeHash {
		return []byte{}, true, nil
	}
	code, err := s.db.Get(backend.CodeStoreKey.ToDBKey(hash[:]).ToBytes(), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return code, true, nil
}

func (s *LevelDbStore) SetAccountCode(hash common.Hash, code []byte) error {
	return s.db.Put(backend.CodeStoreKey.ToDBKey(hash[:]).ToBytes(), code, nil)
}

func (s *LevelDbStore) GetPendingBytecodes() ([]common.Hash, error) {
	iter := s.db.NewIterator(backend.PendingCodesKey.Range(), nil)
	defer iter.Release()
	var res []common.Hash
	for iter.Next() {
		hash, err := common.HashFromBytes(iter.Key()[1:])
		if err != nil {
			return nil, err
		}
		res = append(res, hash)
	}
	return res, iter.Error()
}

func (s *LevelDbStore) SetPendingBytecodes(hashes []common.Hash) error {
	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(backend.PendingCodesKey.Range(), nil)
	for iter.Next() {
		batch.Delete(bytes.Clone(iter.Key()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	for _, hash := range hashes {
		batch.Put(backend.PendingCodesKey.ToDBKey(hash[:]).ToBytes(), nil)
	}
	return s.db.Write(batch, nil)
}

func (s *LevelDbStore) GetStateHealPaths() ([]mpt.Nibbles, error) {
	data, err := s.db.Get(backend.StateHealPathsKey.ToDBKey(nil).ToBytes(), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodePaths(data)
}

func (s *LevelDbStore) SetStateHealPaths(paths []mpt.Nibbles) error {
	return s.db.Put(backend.StateHealPathsKey.ToDBKey(nil).ToBytes(), encodePaths(paths), nil)
}

func (s *LevelDbStore) ClearStateHealPaths() error {
	return s.db.Delete(backend.StateHealPathsKey.ToDBKey(nil).ToBytes(), nil)
}

func (s *LevelDbStore) SetStorageHealPaths(paths map[common.Hash][]mpt.Nibbles) error {
	batch := new(leveldb.Batch)
	for account, cur := range paths {
		batch.Put(backend.StorageHealPathsKey.ToDBKey(account[:]).ToBytes(), encodePaths(cur))
	}
	return s.db.Write(batch, nil)
}

func (s *LevelDbStore) GetStorageHealPaths() (map[common.Hash][]mpt.Nibbles, error) {
	iter := s.db.NewIterator(backend.StorageHealPathsKey.Range(), nil)
	defer iter.Release()
	res := map[common.Hash][]mpt.Nibbles{}
	for iter.Next() {
		account, err := common.HashFromBytes(iter.Key()[1:])
		if err != nil {
			return nil, err
		}
		paths, err := decodePaths(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("invalid storage heal paths of account %v: %w", account, err)
		}
		res[account] = paths
	}
	return res, iter.Error()
}

// Close releases the underlying database if it has been opened by this store.
func (s *LevelDbStore) Close() error {
	s.cache.Purge()
	if s.close == nil {
		return nil
	}
	return s.close()
}
