// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/event"
)

type Option func(*VM)

func WithLogger(log logging.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// WithDatabase overrides the database selected by the config.
func WithDatabase(db Database) Option {
	return func(vm *VM) {
		vm.db = db
	}
}

func WithBlockSubscriptions(subs ...event.Subscription[*chain.ExecutedBlock]) Option {
	return func(vm *VM) {
		for _, sub := range subs {
			vm.blocks.Subscribe(sub)
		}
	}
}
