// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lbp

import "errors"

var (
	ErrZeroAmount             = errors.New("amount must be non-zero")
	ErrTooFewSteps            = errors.New("steps below minimum")
	ErrTooManySteps           = errors.New("steps above maximum")
	ErrInvalidBlockRange      = errors.New("start block must be before end block")
	ErrInvalidDuration        = errors.New("duration out of bounds")
	ErrStepsExceedDuration    = errors.New("more steps than blocks")
	ErrInvalidWeight          = errors.New("weight out of bounds")
	ErrPairOngoing            = errors.New("lbp pair ongoing")
	ErrPoolNotFound           = errors.New("lbp pool not found")
	ErrNotOwner               = errors.New("not pool owner")
	ErrMustBeNonTradingStatus = errors.New("pool must not be trading")
	ErrAlreadyExited          = errors.New("pool already exited")
	ErrNotTrading             = errors.New("pool is not trading")
	ErrMaxInRatio             = errors.New("amount in exceeds max in ratio")
	ErrMaxOutRatio            = errors.New("amount out exceeds max out ratio")
	ErrUnacceptableAmountOut  = errors.New("amount out below minimum")
	ErrUnacceptableAmountIn   = errors.New("amount in above maximum")
	ErrMathApprox             = errors.New("spot price moved in the wrong direction")
	ErrBadLimitPrice          = errors.New("spot price above limit")
)
