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
	"encoding/hex"

	"github.com/Fantom-foundation/mpt-heal/common"
)

// NodeHash is the reference of a node as it appears in the encoding of its
// parent. If the canonical encoding of a node has at least 32 bytes, the node
// is referenced by the Keccak256 hash of this encoding and stored in the node
// store under this hash. Shorter encodings are inlined into their parent and
// never stored as records of their own.
//
// The zero value is an invalid hash representing the absence of a node.
type NodeHash struct {
	hashed bool
	hash   common.Hash
	inline []byte
}

// HashedNodeHash creates a reference to a node stored under the given hash.
func HashedNodeHash(hash common.Hash) NodeHash {
	return NodeHash{hashed: true, hash: hash}
}

// InlineNodeHash creates a reference to a node embedding its canonical
// encoding, which must be shorter than 32 bytes.
func InlineNodeHash(encoded []byte) NodeHash {
	return NodeHash{inline: bytes.Clone(encoded)}
}

// NodeHashFromBytes interprets the given bytes as a node reference: 32 bytes
// denote a hash, an empty slice denotes no node, anything else is an inlined
// encoding.
func NodeHashFromBytes(data []byte) NodeHash {
	if len(data) == common.HashSize {
		return HashedNodeHash(common.Hash(data))
	}
	if len(data) == 0 {
		return NodeHash{}
	}
	return InlineNodeHash(data)
}

// IsHashed returns true if the referenced node is addressed by its hash.
func (h NodeHash) IsHashed() bool {
	return h.hashed
}

// IsValid returns true if this reference points to a node.
func (h NodeHash) IsValid() bool {
	return h.hashed || len(h.inline) > 0
}

// Hash returns the Keccak256 hash of the referenced node's canonical
// encoding. For inlined nodes the hash is computed on demand.
func (h NodeHash) Hash() common.Hash {
	if h.hashed {
		return h.hash
	}
	return common.Keccak256(h.inline)
}

// Bytes returns the representation of this reference in its parent's
// encoding: the hash or the inlined encoding. The result must not be modified.
func (h NodeHash) Bytes() []byte {
	if h.hashed {
		return h.hash[:]
	}
	return h.inline
}

// Equal returns true if both references point to the same node.
func (h NodeHash) Equal(other NodeHash) bool {
	return h.hashed == other.hashed && h.hash == other.hash && bytes.Equal(h.inline, other.inline)
}

func (h NodeHash) String() string {
	switch {
	case h.hashed:
		return h.hash.String()
	case len(h.inline) > 0:
		return "inline:" + hex.EncodeToString(h.inline)
	default:
		return "-"
	}
}
