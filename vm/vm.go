// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/fundvm/actions"
	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/config"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/event"
	"github.com/ava-labs/fundvm/genesis"
	"github.com/ava-labs/fundvm/pebble"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
	"github.com/ava-labs/fundvm/tstate"
)

// Database is the persistent store committed blocks are written to.
type Database interface {
	database.KeyValueReader
	database.KeyValueWriterDeleter
	database.Batcher
	io.Closer
}

// VM applies blocks to a database and notifies subscribers of every
// committed block.
type VM struct {
	log     logging.Logger
	config  *config.Config
	genesis *genesis.Genesis
	rules   *genesis.ChainRules

	db       Database
	registry *chain.Registry
	proc     *chain.Processor
	blocks   event.Feed[*chain.ExecutedBlock]

	metrics  *Metrics
	gatherer prometheus.Gatherers

	l      sync.Mutex
	closed bool
}

func NewLogger(level logging.Level) logging.Logger {
	return logging.NewLogger(
		consts.Name,
		logging.NewWrappedCore(level, os.Stdout, logging.Plain.ConsoleEncoder()),
	)
}

// New opens the database selected by [cfg] and initializes it from [g] if
// it has never been initialized.
func New(ctx context.Context, cfg *config.Config, g *genesis.Genesis, opts ...Option) (_ *VM, err error) {
	vm := &VM{
		config:  cfg,
		genesis: g,
	}
	for _, o := range opts {
		o(vm)
	}
	if vm.log == nil {
		vm.log = NewLogger(cfg.GetLogLevel())
	}

	rules, err := g.GetRules()
	if err != nil {
		return nil, err
	}
	vm.rules = rules

	registry := prometheus.NewRegistry()
	vm.gatherer = append(vm.gatherer, registry)
	if vm.db == nil {
		if cfg.InMemory() {
			vm.db = memdb.New()
		} else {
			db, dbRegistry, err := pebble.New(cfg.DataDir, cfg.Pebble)
			if err != nil {
				return nil, fmt.Errorf("%w: unable to open database", err)
			}
			vm.db = db
			vm.gatherer = append(vm.gatherer, dbRegistry)
		}
	}
	defer func() {
		if err != nil {
			_ = vm.db.Close()
		}
	}()

	vm.metrics, err = newMetrics(registry)
	if err != nil {
		return nil, err
	}
	vm.registry, err = actions.NewRegistry()
	if err != nil {
		return nil, err
	}
	vm.proc, err = chain.NewProcessor(vm.log, rules, registry, actions.Hooks()...)
	if err != nil {
		return nil, err
	}

	if err := vm.initializeGenesis(ctx); err != nil {
		return nil, err
	}
	height, err := vm.Height(ctx)
	if err != nil {
		return nil, err
	}
	vm.metrics.height.Set(float64(height))
	vm.log.Info("initialized vm",
		zap.Uint32("networkID", rules.GetNetworkID()),
		zap.Stringer("chainID", rules.GetChainID()),
		zap.Uint64("height", height),
		zap.Bool("inMemory", cfg.InMemory()),
	)
	return vm, nil
}

func (vm *VM) initializeGenesis(ctx context.Context) error {
	initialized, err := vm.db.Has(storage.HeightKey())
	if err != nil {
		return err
	}
	if initialized {
		// The native asset is created by genesis, so its absence means the
		// database was initialized from another document.
		_, exists, err := storage.GetAsset(ctx, vm.State(), vm.rules.GetNativeAsset())
		if err != nil {
			return err
		}
		if !exists {
			return ErrGenesisMismatch
		}
		return nil
	}

	ts := tstate.New(vm.State(), 0)
	view := ts.NewView()
	if err := vm.genesis.InitializeState(ctx, view); err != nil {
		return fmt.Errorf("%w: unable to initialize genesis state", err)
	}
	view.Commit()
	changes, err := vm.commit(ts)
	if err != nil {
		return err
	}
	vm.log.Info("initialized genesis", zap.Int("stateChanges", changes))
	return nil
}

// commit writes every change of [ts] to disk in one batch.
func (vm *VM) commit(ts *tstate.TState) (int, error) {
	batch := vm.db.NewBatch()
	changes, err := ts.Export(batch)
	if err != nil {
		return 0, err
	}
	if err := batch.Write(); err != nil {
		return 0, err
	}
	return changes, nil
}

// ParseBlock decodes a JSON block with the registered actions.
func (vm *VM) ParseBlock(b []byte) (*chain.Block, error) {
	start := time.Now()
	defer func() {
		vm.metrics.blockParse.Observe(float64(time.Since(start)))
	}()

	return chain.ParseBlock(b, vm.registry)
}

// Accept executes [blk] on top of the last committed block, commits its
// changes, and notifies subscribers.
func (vm *VM) Accept(ctx context.Context, blk *chain.Block) (*chain.ExecutedBlock, error) {
	vm.l.Lock()
	defer vm.l.Unlock()

	if vm.closed {
		return nil, ErrClosed
	}
	executed, ts, err := vm.proc.Execute(ctx, vm.State(), blk)
	if err != nil {
		vm.metrics.blocksRejected.Inc()
		return nil, err
	}

	start := time.Now()
	changes, err := vm.commit(ts)
	if err != nil {
		return nil, err
	}
	vm.metrics.blockCommit.Observe(float64(time.Since(start)))
	vm.metrics.blocksAccepted.Inc()
	vm.metrics.stateChanges.Add(float64(changes))
	vm.metrics.height.Set(float64(executed.Height))
	vm.log.Info("accepted block",
		zap.Uint64("height", executed.Height),
		zap.Int("txs", len(executed.Results)),
		zap.Int("succeeded", executed.Succeeded()),
		zap.Int("stateChanges", changes),
	)

	if err := vm.blocks.Notify(ctx, executed); err != nil {
		// The block is already on disk.
		vm.log.Error("block subscriber failed",
			zap.Uint64("height", executed.Height),
			zap.Error(err),
		)
		return executed, fmt.Errorf("%w: %w", ErrSubscriberFailure, err)
	}
	return executed, nil
}

func (vm *VM) Subscribe(sub event.Subscription[*chain.ExecutedBlock]) {
	vm.blocks.Subscribe(sub)
}

// State returns a read-only view of the last committed block.
func (vm *VM) State() state.Immutable {
	return state.NewReadOnlyDatabase(vm.db)
}

func (vm *VM) Height(ctx context.Context) (uint64, error) {
	return storage.GetHeight(ctx, vm.State())
}

func (vm *VM) Rules() chain.Rules { return vm.rules }

func (vm *VM) Config() *config.Config { return vm.config }

func (vm *VM) Registry() *chain.Registry { return vm.registry }

func (vm *VM) Logger() logging.Logger { return vm.log }

func (vm *VM) Gatherer() prometheus.Gatherer { return vm.gatherer }

func (vm *VM) Shutdown() error {
	vm.l.Lock()
	defer vm.l.Unlock()

	if vm.closed {
		return nil
	}
	vm.closed = true
	errs := []error{vm.blocks.Close(), vm.db.Close()}
	vm.log.Info("vm shutdown")
	return errors.Join(errs...)
}
