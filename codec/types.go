// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

// Typed is implemented by every action and every output so that a
// consumer can tell them apart without reflection.
type Typed interface {
	GetTypeID() uint8
}
