// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/codec"
)

type Result struct {
	TxID    ids.ID `json:"txID"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Persisted is set when a failed transaction kept its writes.
	Persisted bool `json:"persisted,omitempty"`

	OutputType uint8       `json:"outputType,omitempty"`
	Output     codec.Typed `json:"output,omitempty"`
}

type HookResult struct {
	Hook    string        `json:"hook"`
	Error   string        `json:"error,omitempty"`
	Outputs []codec.Typed `json:"outputs,omitempty"`
}

func newResult(txID ids.ID, output codec.Typed, err error) *Result {
	r := &Result{TxID: txID}
	if err != nil {
		r.Error = err.Error()
		r.Persisted = IsPersistent(err)
		return r
	}
	r.Success = true
	if output != nil {
		r.OutputType = output.GetTypeID()
		r.Output = output
	}
	return r
}
