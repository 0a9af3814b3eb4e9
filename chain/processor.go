// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
	"github.com/ava-labs/fundvm/tstate"
)

// Processor applies blocks on top of a read-only base state. It does not
// write to the base: the returned [tstate.TState] holds every change and is
// exported by the caller.
//
// Only run one processor at once.
type Processor struct {
	log     logging.Logger
	rules   Rules
	hooks   []Hook
	metrics *chainMetrics
}

func NewProcessor(
	log logging.Logger,
	rules Rules,
	registerer prometheus.Registerer,
	hooks ...Hook,
) (*Processor, error) {
	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Processor{
		log:     log,
		rules:   rules,
		hooks:   hooks,
		metrics: metrics,
	}, nil
}

func (p *Processor) Rules() Rules {
	return p.rules
}

// Execute runs every transaction of [blk] in order and then every hook.
//
// A failed transaction is rolled back to the point it started at, unless
// its error was marked with [Persist]. A failed hook is rolled back on its
// own and does not fail the block. Only state errors that make the block
// unverifiable are returned.
func (p *Processor) Execute(ctx context.Context, im state.Immutable, blk *Block) (*ExecutedBlock, *tstate.TState, error) {
	start := time.Now()
	parent, err := storage.GetHeight(ctx, im)
	if err != nil {
		return nil, nil, err
	}
	if blk.Height != parent+1 {
		return nil, nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidHeight, parent+1, blk.Height)
	}

	ts := tstate.New(im, len(blk.Txs)*4)
	view := ts.NewView()
	results := make([]*Result, 0, len(blk.Txs))
	for _, tx := range blk.Txs {
		// It is critical we record the restore point before each transaction
		// is processed
		restore := view.OpIndex()
		output, err := tx.Action.Execute(ctx, p.rules, view, blk.Height, tx.Actor, tx.ID())
		result := newResult(tx.ID(), output, err)
		switch {
		case err == nil:
			p.metrics.txsSucceeded.Inc()
		case result.Persisted:
			p.metrics.txsFailed.Inc()
			p.metrics.txsPersisted.Inc()
			p.log.Debug("transaction failed with persisted writes",
				zap.Stringer("txID", tx.ID()),
				zap.Uint64("height", blk.Height),
				zap.Error(err),
			)
		default:
			view.Rollback(ctx, restore)
			p.metrics.txsFailed.Inc()
			p.log.Debug("transaction failed",
				zap.Stringer("txID", tx.ID()),
				zap.Uint64("height", blk.Height),
				zap.Error(err),
			)
		}
		results = append(results, result)
	}

	// Hooks observe every transaction of the block.
	hookResults := make([]*HookResult, 0, len(p.hooks))
	for _, hook := range p.hooks {
		restore := view.OpIndex()
		outputs, err := hook.Run(ctx, p.rules, view, blk.Height)
		result := &HookResult{Hook: hook.Name()}
		if err != nil {
			view.Rollback(ctx, restore)
			p.metrics.hookFailures.Inc()
			p.log.Warn("hook failed",
				zap.String("hook", hook.Name()),
				zap.Uint64("height", blk.Height),
				zap.Error(err),
			)
			result.Error = err.Error()
		} else {
			result.Outputs = outputs
		}
		hookResults = append(hookResults, result)
	}

	if err := storage.SetHeight(ctx, view, blk.Height); err != nil {
		return nil, nil, err
	}
	view.Commit()

	changes := ts.PendingChanges()
	p.metrics.stateChanges.Add(float64(changes))
	p.metrics.blocksExecuted.Inc()
	p.metrics.blockExecution.Observe(float64(time.Since(start)))
	return &ExecutedBlock{
		Height:       blk.Height,
		Results:      results,
		HookResults:  hookResults,
		StateChanges: changes,
	}, ts, nil
}
