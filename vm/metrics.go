// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	blocksAccepted prometheus.Counter
	blocksRejected prometheus.Counter
	height         prometheus.Gauge
	stateChanges   prometheus.Counter
	blockParse     metric.Averager
	blockCommit    metric.Averager
}

func newMetrics(r prometheus.Registerer) (*Metrics, error) {
	blockParse, err := metric.NewAverager(
		"vm_block_parse",
		"time spent parsing blocks",
		r,
	)
	if err != nil {
		return nil, err
	}
	blockCommit, err := metric.NewAverager(
		"vm_block_commit",
		"time spent writing executed blocks to disk",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "blocks_accepted",
			Help:      "number of blocks committed",
		}),
		blocksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "blocks_rejected",
			Help:      "number of blocks that could not be executed",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "height",
			Help:      "height of the last committed block",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "state_changes",
			Help:      "number of keys written to disk",
		}),
		blockParse:  blockParse,
		blockCommit: blockCommit,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.blocksAccepted),
		r.Register(m.blocksRejected),
		r.Register(m.height),
		r.Register(m.stateChanges),
	)
	return m, errs.Err
}
