// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/fundvm/chain"
)

// NewRegistry returns a registry holding every action of the VM.
func NewRegistry() (*chain.Registry, error) {
	r := chain.NewRegistry()
	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		r.Register(func() chain.Action { return &CreateAsset{} }),
		r.Register(func() chain.Action { return &Transfer{} }),

		r.Register(func() chain.Action { return &AddLiquidity{} }),
		r.Register(func() chain.Action { return &RemoveLiquidity{} }),
		r.Register(func() chain.Action { return &SwapExactAssetsForAssets{} }),
		r.Register(func() chain.Action { return &SwapAssetsForExactAssets{} }),

		r.Register(func() chain.Action { return &CreateLBP{} }),
		r.Register(func() chain.Action { return &ExitLBP{} }),
		r.Register(func() chain.Action { return &SwapExactAmountSupply{} }),
		r.Register(func() chain.Action { return &SwapExactAmountTarget{} }),

		r.Register(func() chain.Action { return &InitiateICO{} }),
		r.Register(func() chain.Action { return &PermitICO{} }),
		r.Register(func() chain.Action { return &RejectICO{} }),
		r.Register(func() chain.Action { return &JoinICO{} }),
		r.Register(func() chain.Action { return &CloseICO{} }),
		r.Register(func() chain.Action { return &UnlockICO{} }),
		r.Register(func() chain.Action { return &GetReward{} }),
		r.Register(func() chain.Action { return &ReleaseFunds{} }),
		r.Register(func() chain.Action { return &TerminateICO{} }),

		r.Register(func() chain.Action { return &SetPrice{} }),
		r.Register(func() chain.Action { return &SetUserArea{} }),
	)
	if errs.Errored() {
		return nil, errs.Err
	}
	return r, nil
}
