// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/storage"
)

var (
	ErrPoolNotFound    = errors.New("pool not found")
	ErrProjectNotFound = errors.New("project not found")
)

func (vm *VM) Balance(ctx context.Context, asset codec.Address, account codec.Address) (storage.Balance, error) {
	return storage.GetBalance(ctx, vm.State(), account, asset)
}

func (vm *VM) Asset(ctx context.Context, asset codec.Address) (storage.Asset, bool, error) {
	return storage.GetAsset(ctx, vm.State(), asset)
}

func (vm *VM) AMMPool(ctx context.Context, x codec.Address, y codec.Address) (storage.Pair, storage.AMMPool, error) {
	pair, err := storage.NewPair(x, y)
	if err != nil {
		return storage.Pair{}, storage.AMMPool{}, err
	}
	pool, exists, err := storage.GetAMMPool(ctx, vm.State(), pair)
	if err != nil {
		return storage.Pair{}, storage.AMMPool{}, err
	}
	if !exists {
		return storage.Pair{}, storage.AMMPool{}, ErrPoolNotFound
	}
	return pair, pool, nil
}

// LBPPool returns the ongoing pool trading [x] against [y].
func (vm *VM) LBPPool(ctx context.Context, x codec.Address, y codec.Address) (*storage.LBPPool, error) {
	pair, err := storage.NewPair(x, y)
	if err != nil {
		return nil, err
	}
	id, exists, err := storage.GetOngoingLBP(ctx, vm.State(), pair)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPoolNotFound
	}
	pool, exists, err := storage.GetLBPPool(ctx, vm.State(), id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

func (vm *VM) Project(ctx context.Context, index uint32) (*storage.Project, error) {
	p, exists, err := storage.GetProject(ctx, vm.State(), index)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}
	return p, nil
}
