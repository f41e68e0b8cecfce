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
	"sync"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	"golang.org/x/exp/slices"
)

// MemoryStore is an in-memory store for the state synchronization. Nodes are
// kept in their persistence format, thus every read and write exercises the
// node codec like a persistent store would. It is safe for concurrent use.
type MemoryStore struct {
	nodes        map[common.Hash][]byte
	codes        map[common.Hash][]byte
	statePaths   []byte // encoded, nil if there is no checkpoint
	storagePaths map[common.Hash][]byte
	pendingCodes []common.Hash
	mutex        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:        map[common.Hash][]byte{},
		codes:        map[common.Hash][]byte{},
		storagePaths: map[common.Hash][]byte{},
	}
}

func (s *MemoryStore) GetNode(hash mpt.NodeHash) (mpt.Node, bool, error) {
	if !hash.IsHashed() {
		return mpt.GetNode(s, hash)
	}
	s.mutex.RLock()
	data, found := s.nodes[hash.Hash()]
	s.mutex.RUnlock()
	if !found {
		return nil, false, nil
	}
	node, err := mpt.DecodeNode(data)
	if err != nil {
		return nil, false, err
	}
	return node, true, nil
}

func (s *MemoryStore) PutNodes(nodes map[common.Hash][]byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for hash, data := range nodes {
		s.nodes[hash] = bytes.Clone(data)
	}
	return nil
}

// NodeCount returns the number of stored nodes.
func (s *MemoryStore) NodeCount() (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.nodes), nil
}

func (s *MemoryStore) ContainsStorageNode(_ common.Hash, root common.Hash) (bool, error) {
	if root == mpt.EmptyTrieHash {
		return true, nil
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, found := s.nodes[root]
	return found, nil
}

func (s *MemoryStore) GetAccountCode(hash common.Hash) ([]byte, bool, error) {
	if hash == mpt.EmptyCodeHash {
		return []byte{}, true, nil
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	code, found := s.codes[hash]
	return bytes.Clone(code), found, nil
}

func (s *MemoryStore) SetAccountCode(hash common.Hash, code []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.codes[hash] = bytes.Clone(code)
	return nil
}

func (s *MemoryStore) GetPendingBytecodes() ([]common.Hash, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return slices.Clone(s.pendingCodes), nil
}

func (s *MemoryStore) SetPendingBytecodes(hashes []common.Hash) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pendingCodes = slices.Clone(hashes)
	return nil
}

func (s *MemoryStore) GetStateHealPaths() ([]mpt.Nibbles, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.statePaths == nil {
		return nil, nil
	}
	return decodePaths(s.statePaths)
}

func (s *MemoryStore) SetStateHealPaths(paths []mpt.Nibbles) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.statePaths = encodePaths(paths)
	return nil
}

func (s *MemoryStore) ClearStateHealPaths() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.statePaths = nil
	return nil
}

func (s *MemoryStore) SetStorageHealPaths(paths map[common.Hash][]mpt.Nibbles) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for account, cur := range paths {
		s.storagePaths[account] = encodePaths(cur)
	}
	return nil
}

func (s *MemoryStore) GetStorageHealPaths() (map[common.Hash][]mpt.Nibbles, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	res := make(map[common.Hash][]mpt.Nibbles, len(s.storagePaths))
	for account, data := range s.storagePaths {
		paths, err := decodePaths(data)
		if err != nil {
			return nil, err
		}
		res[account] = paths
	}
	return res, nil
}
