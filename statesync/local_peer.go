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
	"errors"

	"github.com/Fantom-foundation/mpt-heal/common"
	"github.com/Fantom-foundation/mpt-heal/database/mpt"
	"github.com/ethereum/go-ethereum/log"
)

// NodeSource provides the data served by a LocalPeer.
type NodeSource interface {
	mpt.NodeReader
	GetAccountCode(hash common.Hash) ([]byte, bool, error)
}

// LocalPeer is a PeerHandler serving requests from a local source, e.g. the
// store of a fully synchronized node. It is used for healing tools and tests.
type LocalPeer struct {
	source NodeSource
	log    log.Logger
}

var _ PeerHandler = (*LocalPeer)(nil)

// NewLocalPeer creates a peer serving the content of the given source.
func NewLocalPeer(source NodeSource) *LocalPeer {
	return &LocalPeer{
		source: source,
		log:    log.New("module", "local-peer"),
	}
}

// RequestStateTrieNodes resolves the requested paths in the source. The
// response ends at the first path that can not be resolved. Requests for
// unknown roots are reported as not servable.
func (p *LocalPeer) RequestStateTrieNodes(ctx context.Context, root common.Hash, paths []mpt.Nibbles) ([]mpt.Node, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	rootHash := mpt.HashedNodeHash(root)
	if _, found, err := p.source.GetNode(rootHash); err != nil || !found {
		if err != nil {
			p.log.Warn("Failed to load root", "root", root, "err", err)
		}
		return nil, false
	}
	res := make([]mpt.Node, 0, len(paths))
	for _, path := range paths {
		node, found, err := mpt.ResolvePath(p.source, rootHash, path)
		if errors.Is(err, mpt.ErrNoSuchPath) {
			res = append(res, nil)
			continue
		}
		if err != nil {
			p.log.Warn("Failed to resolve path", "root", root, "path", path, "err", err)
			break
		}
		if !found {
			break
		}
		res = append(res, node)
	}
	return res, true
}

// RequestBytecodes returns the requested codes. Codes unknown to the source
// are reported as nil entries.
func (p *LocalPeer) RequestBytecodes(ctx context.Context, hashes []common.Hash) ([][]byte, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	res := make([][]byte, len(hashes))
	for i, hash := range hashes {
		code, found, err := p.source.GetAccountCode(hash)
		if err != nil {
			p.log.Warn("Failed to load code", "hash", hash, "err", err)
			return res[:i], true
		}
		if found {
			res[i] = code
		}
	}
	return res, true
}
