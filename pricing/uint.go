// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "github.com/holiman/uint256"

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// narrow converts [v] back to the amount width.
func narrow(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrOverflow
	}
	return v.Uint64(), nil
}

func mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

func add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

func sub(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrOverflow
	}
	return z, nil
}

func div(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).Div(a, b), nil
}

// MulDiv returns floor(a * b / c) computed at 256 bits. It fails with
// [ErrOverflow] when the quotient does not fit an amount.
func MulDiv(a, b, c uint64) (uint64, error) {
	n, err := mul(u(a), u(b))
	if err != nil {
		return 0, err
	}
	q, err := div(n, u(c))
	if err != nil {
		return 0, err
	}
	return narrow(q)
}
