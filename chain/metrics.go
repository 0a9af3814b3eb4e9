// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type chainMetrics struct {
	txsSucceeded   prometheus.Counter
	txsFailed      prometheus.Counter
	txsPersisted   prometheus.Counter
	blocksExecuted prometheus.Counter
	hookFailures   prometheus.Counter
	stateChanges   prometheus.Counter

	blockExecution metric.Averager
}

func newMetrics(r prometheus.Registerer) (*chainMetrics, error) {
	blockExecution, err := metric.NewAverager(
		"chain_block_execution",
		"time spent executing a block",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &chainMetrics{
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_succeeded",
			Help:      "number of txs executed successfully",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of txs that failed execution",
		}),
		txsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_persisted",
			Help:      "number of failed txs whose writes were kept",
		}),
		blocksExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "blocks_executed",
			Help:      "number of blocks executed",
		}),
		hookFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "hook_failures",
			Help:      "number of end-of-block hooks that failed",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_changes",
			Help:      "number of state changes",
		}),
		blockExecution: blockExecution,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.txsPersisted),
		r.Register(m.blocksExecuted),
		r.Register(m.hookFailures),
		r.Register(m.stateChanges),
	)
	return m, errs.Err
}
