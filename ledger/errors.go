// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "errors"

var (
	ErrInvalidBalance        = errors.New("invalid balance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientReserved  = errors.New("insufficient reserved balance")
	ErrLiquidityRestrictions = errors.New("balance is frozen by a lock")
	ErrAssetNotFound         = errors.New("asset not found")
	ErrAssetExists           = errors.New("asset already exists")
	ErrInvalidAssetName      = errors.New("invalid asset name")
	ErrInvalidAssetSymbol    = errors.New("invalid asset symbol")
	ErrInvalidAssetDecimals  = errors.New("invalid asset decimals")
)
