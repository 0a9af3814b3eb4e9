// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import "errors"

var (
	ErrZeroAmount                     = errors.New("zero amount")
	ErrInsufficientAmount             = errors.New("insufficient amount")
	ErrInsufficientMintLiquidity      = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidity          = errors.New("insufficient liquidity")
	ErrUnacceptableLiquidityWithdrawn = errors.New("unacceptable liquidity withdrawn")
	ErrInvalidSwapPath                = errors.New("invalid swap path")
	ErrDuplicatePoolInPath            = errors.New("pool appears twice in swap path")
	ErrUnacceptableOutputAmount       = errors.New("unacceptable output amount")
	ErrUnacceptableInputAmount        = errors.New("unacceptable input amount")
	ErrInvariantCheckFailed           = errors.New("invariant check failed")
	ErrPoolNotFound                   = errors.New("pool not found")
	ErrInsufficientPoolReserve        = errors.New("insufficient pool reserve")
	ErrInvalidAssetSymbol             = errors.New("invalid asset symbol")
	ErrReserveOverflow                = errors.New("reserve overflow")
)
