// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen        = 1
	BoolLen        = 1
	IDLen          = 32
	MaxUint8       = ^uint8(0)
	MaxUint16      = ^uint16(0)
	MaxUint32      = ^uint32(0)
	MaxUint8Offset = 7
	MaxUint        = ^uint(0)
	MaxInt         = int(MaxUint >> 1)
	IntLen         = 4
	Uint16Len      = 2
	Uint32Len      = 4
	Uint64Len      = 8
	MaxUint64      = ^uint64(0)

	// Percent is the denominator of every proportion stored on-chain.
	Percent uint64 = 100
)
