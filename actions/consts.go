// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

const (
	// MaxSwapHops bounds the number of pools a single swap may route through.
	MaxSwapHops = 8
)
