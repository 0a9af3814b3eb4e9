// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/storage"
)

type hop struct {
	pair storage.Pair
	pool storage.AMMPool
}

// route loads every pool on [path] and orients its reserves in the
// direction of the trade. Each pool may be crossed once, since every hop is
// priced on the reserves loaded here.
func (e *Engine) route(ctx context.Context, path []codec.Address) ([]hop, []pricing.Reserves, error) {
	if len(path) < 2 {
		return nil, nil, ErrInvalidSwapPath
	}
	hops := make([]hop, len(path)-1)
	reserves := make([]pricing.Reserves, len(path)-1)
	seen := set.NewSet[storage.Pair](len(hops))
	for i := range hops {
		pair, pool, err := e.GetPool(ctx, path[i], path[i+1])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: hop %d", err, i)
		}
		if seen.Contains(pair) {
			return nil, nil, fmt.Errorf("%w: hop %d", ErrDuplicatePoolInPath, i)
		}
		seen.Add(pair)
		in, out := pair.Orient(path[i], pool.ReserveA, pool.ReserveB)
		if in == 0 || out == 0 {
			return nil, nil, ErrInsufficientPoolReserve
		}
		hops[i] = hop{pair: pair, pool: pool}
		reserves[i] = pricing.Reserves{In: in, Out: out}
	}
	return hops, reserves, nil
}

// GetAmountsOut quotes selling [amountIn] along [path].
func (e *Engine) GetAmountsOut(ctx context.Context, amountIn uint64, path []codec.Address) ([]uint64, error) {
	_, reserves, err := e.route(ctx, path)
	if err != nil {
		return nil, err
	}
	return pricing.GetAmountsOut(amountIn, reserves)
}

// GetAmountsIn quotes buying [amountOut] along [path].
func (e *Engine) GetAmountsIn(ctx context.Context, amountOut uint64, path []codec.Address) ([]uint64, error) {
	_, reserves, err := e.route(ctx, path)
	if err != nil {
		return nil, err
	}
	if amountOut >= reserves[len(reserves)-1].Out {
		return nil, ErrInsufficientPoolReserve
	}
	return pricing.GetAmountsIn(amountOut, reserves)
}

func (e *Engine) SwapExactAssetsForAssets(
	ctx context.Context,
	actor codec.Address,
	amountIn uint64,
	amountOutMin uint64,
	path []codec.Address,
) (*Swapped, error) {
	if amountIn == 0 {
		return nil, ErrZeroAmount
	}
	hops, reserves, err := e.route(ctx, path)
	if err != nil {
		return nil, err
	}
	amounts, err := pricing.GetAmountsOut(amountIn, reserves)
	if err != nil {
		return nil, err
	}
	if amounts[len(amounts)-1] < amountOutMin {
		return nil, ErrUnacceptableOutputAmount
	}
	return e.swap(ctx, actor, path, hops, amounts)
}

func (e *Engine) SwapAssetsForExactAssets(
	ctx context.Context,
	actor codec.Address,
	amountOut uint64,
	amountInMax uint64,
	path []codec.Address,
) (*Swapped, error) {
	if amountOut == 0 {
		return nil, ErrZeroAmount
	}
	hops, reserves, err := e.route(ctx, path)
	if err != nil {
		return nil, err
	}
	if amountOut >= reserves[len(reserves)-1].Out {
		return nil, ErrInsufficientPoolReserve
	}
	amounts, err := pricing.GetAmountsIn(amountOut, reserves)
	if err != nil {
		return nil, err
	}
	if amounts[0] > amountInMax {
		return nil, ErrUnacceptableInputAmount
	}
	return e.swap(ctx, actor, path, hops, amounts)
}

// swap moves [amounts] through [hops]. The output of each hop is paid
// straight into the next pool; the last hop pays [actor].
func (e *Engine) swap(
	ctx context.Context,
	actor codec.Address,
	path []codec.Address,
	hops []hop,
	amounts []uint64,
) (*Swapped, error) {
	if err := e.ledger.Transfer(ctx, path[0], actor, storage.AMMPoolAccount(hops[0].pair), amounts[0]); err != nil {
		return nil, err
	}
	for i, h := range hops {
		pool := h.pool
		before := pricing.Invariant(pool.ReserveA, pool.ReserveB)

		amountIn, amountOut := amounts[i], amounts[i+1]
		reserveIn, reserveOut := h.pair.Orient(path[i], pool.ReserveA, pool.ReserveB)
		if amountOut >= reserveOut {
			return nil, ErrInsufficientPoolReserve
		}
		reserveIn, err := smath.Add(reserveIn, amountIn)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReserveOverflow, err)
		}
		reserveOut -= amountOut
		pool.ReserveA, pool.ReserveB = h.pair.Orient(path[i], reserveIn, reserveOut)
		if pricing.Invariant(pool.ReserveA, pool.ReserveB).Lt(before) {
			return nil, ErrInvariantCheckFailed
		}

		to := actor
		if i < len(hops)-1 {
			to = storage.AMMPoolAccount(hops[i+1].pair)
		}
		if err := e.ledger.Transfer(ctx, path[i+1], storage.AMMPoolAccount(h.pair), to, amountOut); err != nil {
			return nil, err
		}
		if err := storage.SetAMMPool(ctx, e.mu, h.pair, pool); err != nil {
			return nil, err
		}
	}
	return &Swapped{Path: path, Amounts: amounts}, nil
}
