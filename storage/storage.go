// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/keys"
	"github.com/ava-labs/fundvm/state"
)

// State
// 0x00/ (height)
// 0x01/ (balance)
//   -> [account|asset] => free|reserved
// 0x02/ (locks)
//   -> [account|asset] => count|[lockID|amount]...
// 0x03/ (assets)
//   -> [asset] => name|symbol|decimals|owner|supply
// 0x04/ (amm pools)
//   -> [pair] => reserveA|reserveB|lpAsset
// 0x05-0x09/ (lbp pools, pair index, live list, next id, price history)
// 0x0a-0x13/ (ico projects, pending marker, active list, members,
//             participants, vesting, next index, volumes, graduated set)
// 0x14/ (oracle prices)
//   -> [asset|quote] => price
// 0x15/ (kyc areas)
//   -> [account] => area
const (
	heightPrefix byte = iota
	balancePrefix
	lockPrefix
	assetPrefix
	ammPoolPrefix
	lbpPoolPrefix
	lbpPairIndexPrefix
	lbpLivePrefix
	lbpNextIDPrefix
	lbpHistoryPrefix
	icoProjectPrefix
	icoPendingPrefix
	icoActivePrefix
	icoMembersPrefix
	icoParticipantPrefix
	icoVestingPrefix
	icoNextIndexPrefix
	icoSystemVolumePrefix
	icoUserVolumePrefix
	icoGraduatedPrefix
	oraclePricePrefix
	kycAreaPrefix
)

// Chunks
const (
	Uint64Chunks      uint16 = 1
	BalanceChunks     uint16 = 1
	LockChunks        uint16 = 8
	AssetChunks       uint16 = 4
	AMMPoolChunks     uint16 = 1
	LBPPoolChunks     uint16 = 6
	HistoryChunks     uint16 = 128
	ProjectChunks     uint16 = 32
	ParticipantChunks uint16 = 64
	VestingChunks     uint16 = 1
	AreaChunks        uint16 = 1

	// ListChunks bounds the indices that are kept under a single key.
	ListChunks = consts.MaxUint16
)

func prefixKey(prefix byte, chunks uint16, parts ...[]byte) []byte {
	size := 1 + consts.Uint16Len
	for _, p := range parts {
		size += len(p)
	}
	k := make([]byte, 0, size)
	k = append(k, prefix)
	for _, p := range parts {
		k = append(k, p...)
	}
	return keys.EncodeChunks(k, chunks)
}

func uint32Bytes(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

// HeightKey stores the height of the last executed block.
func HeightKey() []byte {
	return prefixKey(heightPrefix, Uint64Chunks)
}

func GetHeight(ctx context.Context, im state.Immutable) (uint64, error) {
	v, _, err := getUint64(ctx, im, HeightKey())
	return v, err
}

func SetHeight(ctx context.Context, mu state.Mutable, height uint64) error {
	return mu.Insert(ctx, HeightKey(), binary.BigEndian.AppendUint64(nil, height))
}

// getValue maps a missing key to (nil, false, nil).
func getValue(ctx context.Context, im state.Immutable, key []byte) ([]byte, bool, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func getUint64(ctx context.Context, im state.Immutable, key []byte) (uint64, bool, error) {
	v, exists, err := getValue(ctx, im, key)
	if err != nil || !exists {
		return 0, false, err
	}
	if len(v) != consts.Uint64Len {
		return 0, false, ErrCorruptValue
	}
	return binary.BigEndian.Uint64(v), true, nil
}

// setUint64 removes [key] when [v] is zero.
func setUint64(ctx context.Context, mu state.Mutable, key []byte, v uint64) error {
	if v == 0 {
		return mu.Remove(ctx, key)
	}
	return mu.Insert(ctx, key, binary.BigEndian.AppendUint64(nil, v))
}

func getUint32List(ctx context.Context, im state.Immutable, key []byte) ([]uint32, error) {
	v, exists, err := getValue(ctx, im, key)
	if err != nil || !exists {
		return nil, err
	}
	p := codec.NewReader(v, len(v))
	count := p.UnpackUint32(false)
	list := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		list = append(list, p.UnpackUint32(false))
	}
	return list, p.Done()
}

func setUint32List(ctx context.Context, mu state.Mutable, key []byte, list []uint32) error {
	if len(list) == 0 {
		return mu.Remove(ctx, key)
	}
	size := consts.Uint32Len * (len(list) + 1)
	p := codec.NewWriter(size, size)
	p.PackUint32(uint32(len(list)))
	for _, v := range list {
		p.PackUint32(v)
	}
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, key, p.Bytes())
}

func getAddressList(ctx context.Context, im state.Immutable, key []byte) ([]codec.Address, error) {
	v, exists, err := getValue(ctx, im, key)
	if err != nil || !exists {
		return nil, err
	}
	p := codec.NewReader(v, len(v))
	count := p.UnpackUint32(false)
	list := make([]codec.Address, count)
	for i := range list {
		p.UnpackAddress(&list[i])
	}
	return list, p.Done()
}

func setAddressList(ctx context.Context, mu state.Mutable, key []byte, list []codec.Address) error {
	if len(list) == 0 {
		return mu.Remove(ctx, key)
	}
	size := consts.Uint32Len + codec.AddressLen*len(list)
	p := codec.NewWriter(size, size)
	p.PackUint32(uint32(len(list)))
	for _, a := range list {
		p.PackAddress(a)
	}
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, key, p.Bytes())
}

// removeUint32 returns [list] without the first occurrence of [v].
func removeUint32(list []uint32, v uint32) []uint32 {
	for i, item := range list {
		if item == v {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
