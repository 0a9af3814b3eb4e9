// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/amm"
	"github.com/ava-labs/fundvm/ico"
	"github.com/ava-labs/fundvm/lbp"
)

// Rules is the full set of economic constants of a chain. Every engine
// consumes the subset it declares.
type Rules interface {
	// Should almost always be constant (unless there is a fork of
	// a live network)
	GetNetworkID() uint32
	GetChainID() ids.ID

	amm.Rules
	lbp.Rules
	ico.Rules
}
