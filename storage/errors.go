// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrCorruptValue    = errors.New("corrupt value")
	ErrIdenticalAssets = errors.New("identical assets")
	ErrTooManyLocks    = errors.New("too many locks")
	ErrTooManyTags     = errors.New("too many contribution tags")
	ErrTooManyAreas    = errors.New("too many excluded areas")
	ErrAreaTooLong     = errors.New("area too long")
	ErrIndexExhausted  = errors.New("index exhausted")
)
