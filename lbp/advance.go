// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lbp

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

type PoolStarted struct {
	ID uint32 `json:"id"`
}

type StepAdvanced struct {
	ID           uint32       `json:"id"`
	Step         uint64       `json:"step"`
	SupplyWeight uint64       `json:"supplyWeight"`
	TargetWeight uint64       `json:"targetWeight"`
	SpotPrice    *uint256.Int `json:"spotPrice"`
}

type PoolFinished struct {
	ID uint32 `json:"id"`
}

// AdvanceFailed reports a pool whose advance was rolled back.
type AdvanceFailed struct {
	ID    uint32 `json:"id"`
	Error string `json:"error"`
}

// Advanced collects what a single end-of-block pass changed.
type Advanced struct {
	Started  []PoolStarted
	Stepped  []StepAdvanced
	Finished []PoolFinished
	Failed   []AdvanceFailed
}

// Advance moves every live pool forward by at most one step at [height].
// Calling it again at the same height is a no-op. A pool that cannot
// advance is rolled back alone and reported in [Advanced.Failed].
func (e *Engine) Advance(ctx context.Context, height uint64) (*Advanced, error) {
	scope, ok := e.mu.(state.Scoped)
	if !ok {
		return nil, state.ErrNotScoped
	}
	live, err := storage.GetLiveLBPs(ctx, e.mu)
	if err != nil {
		return nil, err
	}
	result := &Advanced{}
	for _, id := range live {
		pool, err := e.GetPool(ctx, id)
		if err != nil {
			return nil, err
		}
		if pool.LastAdvanceBlock == height && height != 0 {
			continue
		}
		restore := scope.OpIndex()
		step := *result
		if err := e.advance(ctx, height, pool, result); err != nil {
			scope.Rollback(ctx, restore)
			*result = step
			result.Failed = append(result.Failed, AdvanceFailed{ID: id, Error: err.Error()})
		}
	}
	return result, nil
}

func (e *Engine) advance(ctx context.Context, height uint64, pool *storage.LBPPool, result *Advanced) error {
	switch pool.Status {
	case storage.LBPPending:
		if height < pool.StartBlock {
			return nil
		}
		pool.Status = storage.LBPInProgress
		result.Started = append(result.Started, PoolStarted{ID: pool.ID})
	case storage.LBPInProgress:
	default:
		return storage.RemoveLiveLBP(ctx, e.mu, pool.ID)
	}
	pool.LastAdvanceBlock = height

	if height >= pool.NextStepBlock && pool.CurrentStep < pool.Steps {
		if err := e.step(ctx, height, pool, result); err != nil {
			return err
		}
	}
	if err := storage.SetLBPPool(ctx, e.mu, pool); err != nil {
		return err
	}
	if pool.Status == storage.LBPFinished {
		result.Finished = append(result.Finished, PoolFinished{ID: pool.ID})
		return storage.RemoveLiveLBP(ctx, e.mu, pool.ID)
	}
	return nil
}

func (e *Engine) step(ctx context.Context, height uint64, pool *storage.LBPPool, result *Advanced) error {
	pool.CurrentStep++
	supplyWeight, err := pricing.CalcAdjustWeight(pool.SupplyStartWeight, pool.SupplyEndWeight, pool.Steps, pool.CurrentStep)
	if err != nil {
		return err
	}
	targetWeight, err := pricing.CalcAdjustWeight(pool.TargetStartWeight, pool.TargetEndWeight, pool.Steps, pool.CurrentStep)
	if err != nil {
		return err
	}
	pool.SupplyWeight, pool.TargetWeight = supplyWeight, targetWeight

	price, err := spotPrice(pool, pool.TargetAsset, 0)
	if err != nil {
		return err
	}
	if err := storage.AppendLBPHistory(ctx, e.mu, pool.ID, storage.PricePoint{Block: height, Price: price}); err != nil {
		return err
	}
	result.Stepped = append(result.Stepped, StepAdvanced{
		ID:           pool.ID,
		Step:         pool.CurrentStep,
		SupplyWeight: supplyWeight,
		TargetWeight: targetWeight,
		SpotPrice:    price,
	})

	if pool.CurrentStep == pool.Steps {
		pool.Status = storage.LBPFinished
		return nil
	}
	next, err := pricing.CalcAdjustBlock(pool.StartBlock, pool.EndBlock, pool.Steps, pool.CurrentStep+1)
	if err != nil {
		return err
	}
	pool.NextStepBlock = next
	return nil
}
