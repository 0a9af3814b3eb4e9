// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/state"
)

type Action interface {
	codec.Typed

	// Execute applies the action for [actor] at block [height].
	//
	// Writes made before a returned error are rolled back by the caller
	// unless the error is wrapped with [Persist].
	Execute(
		ctx context.Context,
		r Rules,
		mu state.Mutable,
		height uint64,
		actor codec.Address,
		actionID ids.ID,
	) (codec.Typed, error)
}

// Hook runs at the end of every block, after all transactions.
type Hook interface {
	Name() string
	Run(ctx context.Context, r Rules, mu state.Mutable, height uint64) ([]codec.Typed, error)
}
