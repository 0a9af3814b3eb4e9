// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/storage"
)

var (
	_ chain.Rules = (*ChainRules)(nil)

	ErrInvalidRules = errors.New("invalid rules")
)

// Rules holds the economic constants of a chain.
type Rules struct {
	MinimumLiquidity uint64 `json:"minimumLiquidity"`

	LBPMinSteps    uint64 `json:"lbpMinSteps"`
	LBPMaxSteps    uint64 `json:"lbpMaxSteps"`
	LBPMinDuration uint64 `json:"lbpMinDuration"` // in blocks
	LBPMaxDuration uint64 `json:"lbpMaxDuration"` // in blocks
	LBPMinWeight   uint64 `json:"lbpMinWeight"`
	LBPMaxWeight   uint64 `json:"lbpMaxWeight"`
	LBPMaxInRatio  uint64 `json:"lbpMaxInRatio"`
	LBPMaxOutRatio uint64 `json:"lbpMaxOutRatio"`
	LBPSwapFee     uint64 `json:"lbpSwapFee"`

	ICOPledgeBond          uint64 `json:"icoPledgeBond"`
	ICOExchangeBondPercent uint64 `json:"icoExchangeBondPercent"`
	ICOChillDuration       uint64 `json:"icoChillDuration"` // in blocks
	ICOMaxDuration         uint64 `json:"icoMaxDuration"`   // in blocks
	ICOSuccessThreshold    uint64 `json:"icoSuccessThreshold"`
	ICOUserMinUSDT         uint64 `json:"icoUserMinUSDT"`
	ICOUserMaxUSDT         uint64 `json:"icoUserMaxUSDT"` // 0 is unlimited
	ICORewardTotal         uint64 `json:"icoRewardTotal"`
	ICOHalfDuration        uint64 `json:"icoHalfDuration"`
	ICOInviterPercent      uint64 `json:"icoInviterPercent"`
	ICOMaxContributions    uint64 `json:"icoMaxContributions"`
	ICOPendingExpiry       uint64 `json:"icoPendingExpiry"` // in blocks, 0 never expires
}

func NewDefaultRules() *Rules {
	return &Rules{
		MinimumLiquidity: 1_000,

		LBPMinSteps:    2,
		LBPMaxSteps:    1_000,
		LBPMinDuration: 100,
		LBPMaxDuration: 1_000_000,
		LBPMinWeight:   pricing.MinWeight,
		LBPMaxWeight:   pricing.MaxWeight,
		LBPMaxInRatio:  pricing.MaxInRatio,
		LBPMaxOutRatio: pricing.MaxOutRatio,
		LBPSwapFee:     0,

		ICOPledgeBond:          100_000_000_000,
		ICOExchangeBondPercent: 5,
		ICOChillDuration:       100,
		ICOMaxDuration:         100_000,
		ICOSuccessThreshold:    20,
		ICOUserMinUSDT:         1_000_000,
		ICOUserMaxUSDT:         0,
		ICORewardTotal:         10_000_000_000_000_000,
		ICOHalfDuration:        100_000_000_000_000,
		ICOInviterPercent:      10,
		ICOMaxContributions:    100,
		ICOPendingExpiry:       14_400,
	}
}

func (r *Rules) Verify() error {
	switch {
	case r.LBPMinSteps == 0 || r.LBPMinSteps > r.LBPMaxSteps:
		return fmt.Errorf("%w: lbp steps [%d, %d]", ErrInvalidRules, r.LBPMinSteps, r.LBPMaxSteps)
	case r.LBPMinDuration > r.LBPMaxDuration:
		return fmt.Errorf("%w: lbp duration [%d, %d]", ErrInvalidRules, r.LBPMinDuration, r.LBPMaxDuration)
	case r.LBPMinWeight == 0 || r.LBPMinWeight > r.LBPMaxWeight:
		return fmt.Errorf("%w: lbp weight [%d, %d]", ErrInvalidRules, r.LBPMinWeight, r.LBPMaxWeight)
	case r.LBPSwapFee >= pricing.BONE:
		return fmt.Errorf("%w: lbp swap fee %d", ErrInvalidRules, r.LBPSwapFee)
	case r.ICOExchangeBondPercent > consts.Percent,
		r.ICOSuccessThreshold > consts.Percent,
		r.ICOInviterPercent > consts.Percent:
		return fmt.Errorf("%w: percentage above %d", ErrInvalidRules, consts.Percent)
	case r.ICOHalfDuration == 0:
		return fmt.Errorf("%w: zero half duration", ErrInvalidRules)
	case r.ICOMaxContributions == 0 || r.ICOMaxContributions > storage.MaxContributionTags:
		return fmt.Errorf("%w: max contributions %d", ErrInvalidRules, r.ICOMaxContributions)
	}
	return nil
}

// ChainRules binds [Rules] to the addresses fixed at genesis.
type ChainRules struct {
	*Rules

	networkID uint32
	chainID   ids.ID
	authority codec.Address
	treasury  codec.Address
	native    codec.Address
	usdt      codec.Address
}

func (r *ChainRules) GetNetworkID() uint32 { return r.networkID }
func (r *ChainRules) GetChainID() ids.ID   { return r.chainID }

func (r *ChainRules) GetMinimumLiquidity() uint64 { return r.MinimumLiquidity }

func (r *ChainRules) GetLBPMinSteps() uint64    { return r.LBPMinSteps }
func (r *ChainRules) GetLBPMaxSteps() uint64    { return r.LBPMaxSteps }
func (r *ChainRules) GetLBPMinDuration() uint64 { return r.LBPMinDuration }
func (r *ChainRules) GetLBPMaxDuration() uint64 { return r.LBPMaxDuration }
func (r *ChainRules) GetLBPMinWeight() uint64   { return r.LBPMinWeight }
func (r *ChainRules) GetLBPMaxWeight() uint64   { return r.LBPMaxWeight }
func (r *ChainRules) GetLBPMaxInRatio() uint64  { return r.LBPMaxInRatio }
func (r *ChainRules) GetLBPMaxOutRatio() uint64 { return r.LBPMaxOutRatio }
func (r *ChainRules) GetLBPSwapFee() uint64     { return r.LBPSwapFee }

func (r *ChainRules) GetNativeAsset() codec.Address { return r.native }
func (r *ChainRules) GetUSDTAsset() codec.Address   { return r.usdt }
func (r *ChainRules) GetAuthority() codec.Address   { return r.authority }
func (r *ChainRules) GetTreasury() codec.Address    { return r.treasury }

func (r *ChainRules) GetICOPledgeBond() uint64          { return r.ICOPledgeBond }
func (r *ChainRules) GetICOExchangeBondPercent() uint64 { return r.ICOExchangeBondPercent }
func (r *ChainRules) GetICOChillDuration() uint64       { return r.ICOChillDuration }
func (r *ChainRules) GetICOMaxDuration() uint64         { return r.ICOMaxDuration }
func (r *ChainRules) GetICOSuccessThreshold() uint64    { return r.ICOSuccessThreshold }
func (r *ChainRules) GetICOUserMinUSDT() uint64         { return r.ICOUserMinUSDT }
func (r *ChainRules) GetICOUserMaxUSDT() uint64         { return r.ICOUserMaxUSDT }
func (r *ChainRules) GetICORewardTotal() uint64         { return r.ICORewardTotal }
func (r *ChainRules) GetICOHalfDuration() uint64        { return r.ICOHalfDuration }
func (r *ChainRules) GetICOInviterPercent() uint64      { return r.ICOInviterPercent }
func (r *ChainRules) GetICOMaxContributions() uint64    { return r.ICOMaxContributions }
func (r *ChainRules) GetICOPendingExpiry() uint64       { return r.ICOPendingExpiry }
