// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrNotAuthority    = errors.New("actor is not the authority")
	ErrSwapPathTooLong = errors.New("swap path too long")
	ErrZeroAmount      = errors.New("amount must be non-zero")
	ErrZeroPrice       = errors.New("price must be non-zero")
)
