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

import "github.com/Fantom-foundation/mpt-heal/common"

const (
	// ErrCorruptPath is reported if an account leaf is not located at a
	// 32 byte path. It indicates inconsistent local or peer data.
	ErrCorruptPath = common.ConstError("account leaf at corrupt path")

	// ErrProtocolViolation is reported if a peer response does not match
	// its request.
	ErrProtocolViolation = common.ConstError("peer response does not match request")

	// ErrBytecodeChannelClosed is reported if byte codes can not be handed
	// over to the bytecode fetcher since it is no longer running.
	ErrBytecodeChannelClosed = common.ConstError("bytecode channel closed")
)
