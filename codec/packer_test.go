// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestPackerMixed(t *testing.T) {
	require := require.New(t)

	id := ids.GenerateTestID()
	addr := CreateAddress(1, id)
	price := new(uint256.Int).Lsh(uint256.NewInt(1), 200)

	wp := NewWriter(0, 1024)
	wp.PackByte(9)
	wp.PackBool(true)
	wp.PackUint32(42)
	wp.PackUint64(1 << 40)
	wp.PackID(id)
	wp.PackAddress(addr)
	wp.PackUint256(price)
	wp.PackString("USDT")
	wp.PackBytes([]byte{1, 2, 3})
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes(), 1024)
	require.Equal(byte(9), rp.UnpackByte())
	require.True(rp.UnpackBool())
	require.Equal(uint32(42), rp.UnpackUint32(true))
	require.Equal(uint64(1<<40), rp.UnpackUint64(true))
	var gotID ids.ID
	rp.UnpackID(true, &gotID)
	require.Equal(id, gotID)
	var gotAddr Address
	rp.UnpackAddress(&gotAddr)
	require.Equal(addr, gotAddr)
	require.True(price.Eq(rp.UnpackUint256()))
	require.Equal("USDT", rp.UnpackString(true))
	var b []byte
	rp.UnpackBytes(8, true, &b)
	require.Equal([]byte{1, 2, 3}, b)
	require.NoError(rp.Done())
}

func TestPackerRequiredFields(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(0, 64)
	wp.PackUint64(0)
	rp := NewReader(wp.Bytes(), 64)
	rp.UnpackUint64(true)
	require.ErrorIs(rp.Err(), ErrFieldNotPopulated)
}

func TestPackerTrailingBytes(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(0, 64)
	wp.PackUint64(1)
	wp.PackByte(1)
	rp := NewReader(wp.Bytes(), 64)
	rp.UnpackUint64(true)
	require.ErrorIs(rp.Done(), ErrTrailingBytes)
}

func TestPackerLimit(t *testing.T) {
	wp := NewWriter(0, 4)
	wp.PackUint64(1)
	require.Error(t, wp.Err())
}
