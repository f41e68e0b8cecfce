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

//go:generate mockgen -source verification.go -destination verification_mocks.go -package mpt

import (
	"fmt"

	"github.com/Fantom-foundation/mpt-heal/common"
)

// ErrMissingNode is reported by VerifyStateTrie for nodes referenced in the
// trie which are not available.
const ErrMissingNode = common.ConstError("missing node")

// VerificationObserver is a listener interface for tracking the progress of the verification
// of a trie. It can, for instance, be implemented by a user interface to keep the user updated
// on current activities.
type VerificationObserver interface {
	StartVerification()
	Progress(msg string)
	EndVerification(res error)
}

// NilVerificationObserver is a trivial implementation of the observer interface above which
// ignores all reported events.
type NilVerificationObserver struct{}

func (NilVerificationObserver) StartVerification()        {}
func (NilVerificationObserver) Progress(msg string)       {}
func (NilVerificationObserver) EndVerification(res error) {}

// CodeReader provides access to byte codes indexed by their hash.
type CodeReader interface {
	GetAccountCode(hash common.Hash) ([]byte, bool, error)
}

// VerifyStateTrie runs a list of validation checks on the state trie with the
// given root. These checks include:
//   - all referenced nodes are present
//   - all hashes are consistent
//   - all leaves are located at 32-byte paths and contain valid accounts
//   - all codes referenced by accounts are present and match their hash
//
// Codes are only checked if a code reader is provided. The first detected
// issue is reported.
func VerifyStateTrie(reader NodeReader, codes CodeReader, root common.Hash, observer VerificationObserver) (res error) {
	if observer == nil {
		observer = NilVerificationObserver{}
	}
	observer.StartVerification()
	defer func() {
		observer.EndVerification(res)
	}()

	if root == EmptyTrieHash {
		observer.Progress("Trie is empty")
		return nil
	}

	observer.Progress(fmt.Sprintf("Checking trie with root %v ...", root))
	numNodes, numAccounts := 0, 0
	var issue error
	visitor := MakeVisitor(func(node Node, info NodeInfo) VisitResponse {
		issue = verifyNode(node, info, codes)
		if issue != nil {
			return VisitResponseAbort
		}
		numNodes++
		if _, ok := node.(*LeafNode); ok {
			numAccounts++
		}
		return VisitResponseContinue
	})
	if err := VisitTrie(reader, root, visitor); err != nil {
		return err
	}
	if issue != nil {
		return issue
	}
	observer.Progress(fmt.Sprintf("Checked %d nodes containing %d accounts", numNodes, numAccounts))
	return nil
}

func verifyNode(node Node, info NodeInfo, codes CodeReader) error {
	if node == nil {
		return fmt.Errorf("%w %v at path [%v]", ErrMissingNode, info.Hash, info.Path)
	}

	var got NodeHash
	if info.Path.Len() == 0 {
		got = HashedNodeHash(RootHash(node))
	} else {
		got = ComputeHash(node)
	}
	if !got.Equal(info.Hash) {
		return fmt.Errorf("inconsistent hash of node at path [%v], got: %v, want: %v", info.Path, got, info.Hash)
	}

	leaf, ok := node.(*LeafNode)
	if !ok {
		return nil
	}
	key := info.Path.Concat(leaf.Partial)
	if key.Len() != 2*common.HashSize {
		return fmt.Errorf("leaf at path [%v] has a key of %d nibbles", info.Path, key.Len())
	}
	account, err := DecodeAccountState(leaf.Value)
	if err != nil {
		return fmt.Errorf("invalid account %x: %w", key.ToBytes(), err)
	}
	if codes == nil || !account.HasCode() {
		return nil
	}
	code, found, err := codes.GetAccountCode(account.CodeHash)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("the code %v of account %x is missing", account.CodeHash, key.ToBytes())
	}
	if got := common.Keccak256(code); got != account.CodeHash {
		return fmt.Errorf("unexpected code hash for account %x, got: %v want: %v", key.ToBytes(), got, account.CodeHash)
	}
	return nil
}
