// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/version"
)

// TypeIDs for actions
const (
	// Ledger
	CreateAssetID uint8 = iota
	TransferID

	// AMM
	AddLiquidityID
	RemoveLiquidityID
	SwapExactAssetsForAssetsID
	SwapAssetsForExactAssetsID

	// LBP
	CreateLBPID
	ExitLBPID
	SwapExactAmountSupplyID
	SwapExactAmountTargetID

	// ICO
	InitiateICOID
	PermitICOID
	RejectICOID
	JoinICOID
	CloseICOID
	UnlockICOID
	GetRewardID
	ReleaseFundsID
	TerminateICOID

	// Collaborators
	SetPriceID
	SetUserAreaID
)

// TypeIDs for outputs produced by end-of-block hooks
const (
	StepAdvancedID uint8 = 128 + iota
	PoolFinishedID
	PoolStartedID
	ICOSettledID
	ICOAskExpiredID
	ICOSettleFailedID
	LBPAdvanceFailedID
)

// TypeIDs for address generation
const (
	AccountID uint8 = iota
	AssetID
	LPAssetID
	AMMPoolAccountID
	LBPPoolAccountID
	ICOEscrowID
)

const (
	Name = "fundvm"
	HRP  = "fund"
)

var ID ids.ID

func init() {
	b := make([]byte, ids.IDLen)
	copy(b, []byte(Name))
	vmID, err := ids.ToID(b)
	if err != nil {
		panic(err)
	}
	ID = vmID
}

var Version = &version.Semantic{
	Major: 0,
	Minor: 1,
	Patch: 0,
}
