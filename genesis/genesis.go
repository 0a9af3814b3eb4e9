// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

var (
	ErrMissingAuthority = errors.New("missing authority")
	ErrMissingTreasury  = errors.New("missing treasury")
	ErrUnknownAsset     = errors.New("unknown genesis asset")
	ErrDuplicateAsset   = errors.New("duplicate genesis asset")
)

type CustomAllocation struct {
	Address codec.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

// Asset is created at genesis with its allocations as the whole supply.
type Asset struct {
	Owner       codec.Address       `json:"owner"`
	Name        string              `json:"name"`
	Symbol      string              `json:"symbol"`
	Decimals    uint8               `json:"decimals"`
	Allocations []*CustomAllocation `json:"allocations"`
}

func (a *Asset) Address() codec.Address {
	return storage.AssetAddress(a.Owner, a.Symbol)
}

type Genesis struct {
	NetworkID uint32 `json:"networkID"`
	ChainID   ids.ID `json:"chainID"`

	Authority codec.Address `json:"authority"`
	Treasury  codec.Address `json:"treasury"`

	// NativeSymbol and USDTSymbol select, among [Assets], the asset rewards
	// are paid in and the accounting asset of raises.
	NativeSymbol string `json:"nativeSymbol"`
	USDTSymbol   string `json:"usdtSymbol"`

	Assets []*Asset `json:"assets"`
	Rules  *Rules   `json:"rules"`
}

// NewDefaultGenesis returns a genesis with the native and accounting
// assets owned by [authority] and no allocations.
func NewDefaultGenesis(authority codec.Address, treasury codec.Address) *Genesis {
	return &Genesis{
		Authority:    authority,
		Treasury:     treasury,
		NativeSymbol: "FUND",
		USDTSymbol:   "USDT",
		Assets: []*Asset{
			{Owner: authority, Name: "Fund", Symbol: "FUND", Decimals: 9},
			{Owner: authority, Name: "Tether USD", Symbol: "USDT", Decimals: 6},
		},
		Rules: NewDefaultRules(),
	}
}

func Load(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	if g.Rules == nil {
		g.Rules = NewDefaultRules()
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Genesis) asset(symbol string) (*Asset, error) {
	for _, a := range g.Assets {
		if a.Symbol == symbol {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
}

func (g *Genesis) Verify() error {
	if g.Authority == codec.EmptyAddress {
		return ErrMissingAuthority
	}
	if g.Treasury == codec.EmptyAddress {
		return ErrMissingTreasury
	}
	seen := make(map[codec.Address]struct{}, len(g.Assets))
	for _, a := range g.Assets {
		addr := a.Address()
		if _, ok := seen[addr]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAsset, a.Symbol)
		}
		seen[addr] = struct{}{}
	}
	if _, err := g.asset(g.NativeSymbol); err != nil {
		return err
	}
	if _, err := g.asset(g.USDTSymbol); err != nil {
		return err
	}
	return g.Rules.Verify()
}

// InitializeState creates every genesis asset and credits its allocations.
func (g *Genesis) InitializeState(ctx context.Context, mu state.Mutable) error {
	l := ledger.New(mu)
	for _, a := range g.Assets {
		asset := a.Address()
		if err := l.CreateAsset(ctx, asset, a.Owner, a.Name, a.Symbol, a.Decimals, 0); err != nil {
			return fmt.Errorf("%w: %s", err, a.Symbol)
		}
		for _, alloc := range a.Allocations {
			if err := l.Deposit(ctx, asset, alloc.Address, alloc.Balance); err != nil {
				return fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
			}
		}
	}
	return storage.SetHeight(ctx, mu, 0)
}

// GetRules binds the economic constants to the genesis addresses.
func (g *Genesis) GetRules() (*ChainRules, error) {
	native, err := g.asset(g.NativeSymbol)
	if err != nil {
		return nil, err
	}
	usdt, err := g.asset(g.USDTSymbol)
	if err != nil {
		return nil, err
	}
	return &ChainRules{
		Rules:     g.Rules,
		networkID: g.NetworkID,
		chainID:   g.ChainID,
		authority: g.Authority,
		treasury:  g.Treasury,
		native:    native.Address(),
		usdt:      usdt.Address(),
	}, nil
}
