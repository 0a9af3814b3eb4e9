// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements multi-asset balances with reserves, locks and
// issuance on top of [state.Mutable].
package ledger

import (
	"context"
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

// BalanceStatus selects which side of a balance receives repatriated funds.
type BalanceStatus uint8

const (
	Free BalanceStatus = iota
	Reserved
)

// Ledger is bound to the state of a single transaction.
type Ledger struct {
	mu state.Mutable
}

func New(mu state.Mutable) *Ledger {
	return &Ledger{mu: mu}
}

func (l *Ledger) balance(ctx context.Context, asset codec.Address, who codec.Address) (storage.Balance, error) {
	return storage.GetBalance(ctx, l.mu, who, asset)
}

func (l *Ledger) setBalance(ctx context.Context, asset codec.Address, who codec.Address, b storage.Balance) error {
	return storage.SetBalance(ctx, l.mu, who, asset, b)
}

func (l *Ledger) FreeBalance(ctx context.Context, asset codec.Address, who codec.Address) (uint64, error) {
	b, err := l.balance(ctx, asset, who)
	return b.Free, err
}

func (l *Ledger) ReservedBalance(ctx context.Context, asset codec.Address, who codec.Address) (uint64, error) {
	b, err := l.balance(ctx, asset, who)
	return b.Reserved, err
}

// Usable returns the free balance not frozen by any lock.
func (l *Ledger) Usable(ctx context.Context, asset codec.Address, who codec.Address) (uint64, error) {
	b, err := l.balance(ctx, asset, who)
	if err != nil {
		return 0, err
	}
	frozen, err := l.frozen(ctx, asset, who)
	if err != nil {
		return 0, err
	}
	if frozen >= b.Free {
		return 0, nil
	}
	return b.Free - frozen, nil
}

// ensureUsable checks that [amount] can leave the free balance of [who].
func (l *Ledger) ensureUsable(ctx context.Context, asset codec.Address, who codec.Address, b storage.Balance, amount uint64) error {
	if b.Free < amount {
		return fmt.Errorf(
			"%w: asset=%s, account=%s, free=%d, amount=%d",
			ErrInsufficientBalance,
			asset,
			who,
			b.Free,
			amount,
		)
	}
	frozen, err := l.frozen(ctx, asset, who)
	if err != nil {
		return err
	}
	if b.Free-amount < frozen {
		return fmt.Errorf("%w: asset=%s, account=%s, frozen=%d", ErrLiquidityRestrictions, asset, who, frozen)
	}
	return nil
}

// Transfer moves [amount] of free balance between accounts.
func (l *Ledger) Transfer(ctx context.Context, asset codec.Address, from codec.Address, to codec.Address, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	fb, err := l.balance(ctx, asset, from)
	if err != nil {
		return err
	}
	if err := l.ensureUsable(ctx, asset, from, fb, amount); err != nil {
		return err
	}
	fb.Free -= amount
	if err := l.setBalance(ctx, asset, from, fb); err != nil {
		return err
	}
	return l.addFree(ctx, asset, to, amount)
}

func (l *Ledger) addFree(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	b, err := l.balance(ctx, asset, who)
	if err != nil {
		return err
	}
	nfree, err := smath.Add(b.Free, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not add balance (asset=%s, bal=%d, addr=%s, amount=%d)",
			ErrInvalidBalance,
			asset,
			b.Free,
			who,
			amount,
		)
	}
	b.Free = nfree
	return l.setBalance(ctx, asset, who, b)
}

func (l *Ledger) addReserved(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	b, err := l.balance(ctx, asset, who)
	if err != nil {
		return err
	}
	nreserved, err := smath.Add(b.Reserved, amount)
	if err != nil {
		return fmt.Errorf("%w: could not add reserved balance (asset=%s, addr=%s)", ErrInvalidBalance, asset, who)
	}
	b.Reserved = nreserved
	return l.setBalance(ctx, asset, who, b)
}

func (l *Ledger) subReserved(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	b, err := l.balance(ctx, asset, who)
	if err != nil {
		return err
	}
	if b.Reserved < amount {
		return fmt.Errorf(
			"%w: asset=%s, account=%s, reserved=%d, amount=%d",
			ErrInsufficientReserved,
			asset,
			who,
			b.Reserved,
			amount,
		)
	}
	b.Reserved -= amount
	return l.setBalance(ctx, asset, who, b)
}

// Reserve moves [amount] from the free to the reserved balance of [who].
func (l *Ledger) Reserve(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	b, err := l.balance(ctx, asset, who)
	if err != nil {
		return err
	}
	if err := l.ensureUsable(ctx, asset, who, b, amount); err != nil {
		return err
	}
	b.Free -= amount
	b.Reserved += amount // free+reserved never exceeds the asset supply
	return l.setBalance(ctx, asset, who, b)
}

// Unreserve moves [amount] from the reserved back to the free balance.
func (l *Ledger) Unreserve(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := l.subReserved(ctx, asset, who, amount); err != nil {
		return err
	}
	return l.addFree(ctx, asset, who, amount)
}

// SlashReserved burns [amount] of the reserved balance of [who].
func (l *Ledger) SlashReserved(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := l.subReserved(ctx, asset, who, amount); err != nil {
		return err
	}
	return l.burnSupply(ctx, asset, amount)
}

// RepatriateReserved moves reserved funds of [from] into the [status]
// balance of [to].
func (l *Ledger) RepatriateReserved(
	ctx context.Context,
	asset codec.Address,
	from codec.Address,
	to codec.Address,
	amount uint64,
	status BalanceStatus,
) error {
	if amount == 0 {
		return nil
	}
	if err := l.subReserved(ctx, asset, from, amount); err != nil {
		return err
	}
	if status == Reserved {
		return l.addReserved(ctx, asset, to, amount)
	}
	return l.addFree(ctx, asset, to, amount)
}

// Deposit mints [amount] of [asset] into the free balance of [who].
func (l *Ledger) Deposit(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	a, err := l.Metadata(ctx, asset)
	if err != nil {
		return err
	}
	supply, err := smath.Add(a.Supply, amount)
	if err != nil {
		return fmt.Errorf("%w: supply overflow (asset=%s)", ErrInvalidBalance, asset)
	}
	a.Supply = supply
	if err := storage.SetAsset(ctx, l.mu, asset, a); err != nil {
		return err
	}
	return l.addFree(ctx, asset, who, amount)
}

// Withdraw burns [amount] of the usable balance of [who].
func (l *Ledger) Withdraw(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	b, err := l.balance(ctx, asset, who)
	if err != nil {
		return err
	}
	if err := l.ensureUsable(ctx, asset, who, b, amount); err != nil {
		return err
	}
	b.Free -= amount
	if err := l.setBalance(ctx, asset, who, b); err != nil {
		return err
	}
	return l.burnSupply(ctx, asset, amount)
}

func (l *Ledger) burnSupply(ctx context.Context, asset codec.Address, amount uint64) error {
	a, err := l.Metadata(ctx, asset)
	if err != nil {
		return err
	}
	supply, err := smath.Sub(a.Supply, amount)
	if err != nil {
		return fmt.Errorf("%w: supply underflow (asset=%s)", ErrInvalidBalance, asset)
	}
	a.Supply = supply
	return storage.SetAsset(ctx, l.mu, asset, a)
}

func (l *Ledger) TotalIssuance(ctx context.Context, asset codec.Address) (uint64, error) {
	a, err := l.Metadata(ctx, asset)
	if err != nil {
		return 0, err
	}
	return a.Supply, nil
}

func (l *Ledger) Metadata(ctx context.Context, asset codec.Address) (storage.Asset, error) {
	a, exists, err := storage.GetAsset(ctx, l.mu, asset)
	if err != nil {
		return storage.Asset{}, err
	}
	if !exists {
		return storage.Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	return a, nil
}

// CreateAsset registers [asset] and mints [initialIssuance] to its owner.
func (l *Ledger) CreateAsset(
	ctx context.Context,
	asset codec.Address,
	owner codec.Address,
	name string,
	symbol string,
	decimals uint8,
	initialIssuance uint64,
) error {
	if len(name) == 0 || len(name) > storage.MaxAssetNameSize {
		return ErrInvalidAssetName
	}
	if len(symbol) == 0 || len(symbol) > storage.MaxAssetSymbolSize {
		return ErrInvalidAssetSymbol
	}
	if decimals > storage.MaxAssetDecimals {
		return ErrInvalidAssetDecimals
	}
	_, exists, err := storage.GetAsset(ctx, l.mu, asset)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAssetExists, asset)
	}
	if err := storage.SetAsset(ctx, l.mu, asset, storage.Asset{
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
		Owner:    owner,
	}); err != nil {
		return err
	}
	return l.Deposit(ctx, asset, owner, initialIssuance)
}
