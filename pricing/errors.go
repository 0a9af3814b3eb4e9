// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "errors"

var (
	ErrOverflow       = errors.New("overflow")
	ErrDivisionByZero = errors.New("division by zero")
)
