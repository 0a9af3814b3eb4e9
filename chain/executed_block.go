// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "fmt"

type ExecutedBlock struct {
	Height       uint64        `json:"height"`
	Results      []*Result     `json:"results"`
	HookResults  []*HookResult `json:"hookResults"`
	StateChanges int           `json:"stateChanges"`
}

// Succeeded returns the number of transactions that executed successfully.
func (e *ExecutedBlock) Succeeded() int {
	var n int
	for _, r := range e.Results {
		if r.Success {
			n++
		}
	}
	return n
}

func (e *ExecutedBlock) String() string {
	return fmt.Sprintf(
		"(Height=%d, Txs=%d, Succeeded=%d, Hooks=%d, StateChanges=%d)",
		e.Height, len(e.Results), e.Succeeded(), len(e.HookResults), e.StateChanges,
	)
}
