// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	ErrInvalidObject = errors.New("invalid object")
	ErrInvalidHeight = errors.New("invalid block height")
	ErrMissingAction = errors.New("missing action")
	ErrUnknownAction = errors.New("unknown action type")
	ErrDuplicateItem = errors.New("duplicate item")
	ErrTooManyTxs    = errors.New("too many transactions")
)

// MaxBlockTxs bounds the transactions accepted in a single block.
const MaxBlockTxs = 16_384
