// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package statesync

import (
	"context"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
)

//go:generate mockgen -source interfaces.go -destination interfaces_mocks.go -package statesync

// Store is the local persistence the healing process is repairing. Nodes are
// addressed by their content hash, so concurrent writers storing the same
// node never conflict.
type Store interface {
	mpt.NodeReader

	// PutNodes stores the given nodes, encoded in the persistence format,
	// under their hashes.
	PutNodes(nodes map[common.Hash][]byte) error

	// GetStateHealPaths returns the paths left over by a previous heal cycle.
	GetStateHealPaths() ([]mpt.Nibbles, error)
	// SetStateHealPaths replaces the persisted paths of the state trie.
	SetStateHealPaths(paths []mpt.Nibbles) error
	// ClearStateHealPaths removes any persisted paths of the state trie.
	ClearStateHealPaths() error

	// ContainsStorageNode checks whether the root of the given account's
	// storage trie is locally present.
	ContainsStorageNode(account common.Hash, root common.Hash) (bool, error)
	// SetStorageHealPaths records paths of storage tries needing healing.
	SetStorageHealPaths(paths map[common.Hash][]mpt.Nibbles) error
	// GetStorageHealPaths returns all recorded storage heal paths.
	GetStorageHealPaths() (map[common.Hash][]mpt.Nibbles, error)

	// GetAccountCode returns the byte code with the given hash, if present.
	GetAccountCode(hash common.Hash) ([]byte, bool, error)
	// SetAccountCode stores the given byte code under its hash.
	SetAccountCode(hash common.Hash, code []byte) error
	// GetPendingBytecodes returns the hashes of byte codes left over by a
	// previous heal cycle.
	GetPendingBytecodes() ([]common.Hash, error)
	// SetPendingBytecodes replaces the persisted hashes of byte codes still
	// to be fetched. An empty list clears them.
	SetPendingBytecodes(hashes []common.Hash) error
}

// PeerHandler provides access to the peer network. Retries, timeouts and
// peer selection are handled behind this interface; the healing process only
// distinguishes usable responses from unavailable data.
type PeerHandler interface {
	// RequestStateTrieNodes requests the nodes at the given paths of the
	// state trie with the given root. The i-th node of the response belongs
	// to the i-th path; responses may be shorter than the request. A nil
	// node indicates that the trie has no node at the respective path; if
	// the local parent references a node at that path, the path is kept
	// and retried by a later cycle. The boolean result is false if no peer
	// could serve the request, which indicates that the root became stale.
	RequestStateTrieNodes(ctx context.Context, root common.Hash, paths []mpt.Nibbles) ([]mpt.Node, bool)

	// RequestBytecodes requests the byte codes with the given hashes. The
	// response is aligned with the request and may be shorter; missing codes
	// are reported as nil entries. The boolean result is false if no peer
	// could serve the request.
	RequestBytecodes(ctx context.Context, hashes []common.Hash) ([][]byte, bool)
}
