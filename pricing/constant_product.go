// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "github.com/holiman/uint256"

const (
	// FeeNumerator / FeeDenominator is the share of an input that reaches the
	// curve (0.3% fee).
	FeeNumerator   uint64 = 997
	FeeDenominator uint64 = 1000
)

// Reserves of a single hop, oriented in the direction of the trade.
type Reserves struct {
	In  uint64
	Out uint64
}

// Quote returns amountA * reserveB / reserveA.
func Quote(amountA, reserveA, reserveB uint64) (uint64, error) {
	if reserveA == 0 {
		return 0, ErrDivisionByZero
	}
	return MulDiv(amountA, reserveB, reserveA)
}

// GetAmountOut returns the output of selling [amountIn] into a constant
// product pool, rounded down.
func GetAmountOut(amountIn, reserveIn, reserveOut uint64) (uint64, error) {
	inWithFee, err := mul(u(amountIn), u(FeeNumerator))
	if err != nil {
		return 0, err
	}
	numerator, err := mul(inWithFee, u(reserveOut))
	if err != nil {
		return 0, err
	}
	denominator, err := mul(u(reserveIn), u(FeeDenominator))
	if err != nil {
		return 0, err
	}
	denominator, err = add(denominator, inWithFee)
	if err != nil {
		return 0, err
	}
	out, err := div(numerator, denominator)
	if err != nil {
		return 0, err
	}
	return narrow(out)
}

// GetAmountIn returns the input required to buy [amountOut] from a constant
// product pool. The result is rounded up.
func GetAmountIn(amountOut, reserveIn, reserveOut uint64) (uint64, error) {
	numerator, err := mul(u(reserveIn), u(amountOut))
	if err != nil {
		return 0, err
	}
	numerator, err = mul(numerator, u(FeeDenominator))
	if err != nil {
		return 0, err
	}
	remaining, err := sub(u(reserveOut), u(amountOut))
	if err != nil {
		return 0, err
	}
	denominator, err := mul(remaining, u(FeeNumerator))
	if err != nil {
		return 0, err
	}
	in, err := div(numerator, denominator)
	if err != nil {
		return 0, err
	}
	in, err = add(in, u(1))
	if err != nil {
		return 0, err
	}
	return narrow(in)
}

// GetAmountsOut chains [GetAmountOut] across [reserves]. The result holds
// len(reserves)+1 amounts, starting with [amountIn].
func GetAmountsOut(amountIn uint64, reserves []Reserves) ([]uint64, error) {
	amounts := make([]uint64, len(reserves)+1)
	amounts[0] = amountIn
	for i, r := range reserves {
		out, err := GetAmountOut(amounts[i], r.In, r.Out)
		if err != nil {
			return nil, err
		}
		amounts[i+1] = out
	}
	return amounts, nil
}

// GetAmountsIn walks [reserves] backwards from [amountOut].
func GetAmountsIn(amountOut uint64, reserves []Reserves) ([]uint64, error) {
	amounts := make([]uint64, len(reserves)+1)
	amounts[len(reserves)] = amountOut
	for i := len(reserves) - 1; i >= 0; i-- {
		in, err := GetAmountIn(amounts[i+1], reserves[i].In, reserves[i].Out)
		if err != nil {
			return nil, err
		}
		amounts[i] = in
	}
	return amounts, nil
}

// CalcAmountOut returns the pro-rata share of both reserves redeemed by
// burning [removeLiquidity] of [totalLiquidity].
func CalcAmountOut(reserveA, reserveB, removeLiquidity, totalLiquidity uint64) (uint64, uint64, error) {
	if totalLiquidity == 0 {
		return 0, 0, ErrDivisionByZero
	}
	amountA, err := MulDiv(removeLiquidity, reserveA, totalLiquidity)
	if err != nil {
		return 0, 0, err
	}
	amountB, err := MulDiv(removeLiquidity, reserveB, totalLiquidity)
	if err != nil {
		return 0, 0, err
	}
	return amountA, amountB, nil
}

// CalcAmountIn picks the deposit that keeps the pool ratio. When neither
// side can satisfy its minimum, ok is false and err is nil.
func CalcAmountIn(
	desiredA, desiredB uint64,
	minA, minB uint64,
	reserveA, reserveB uint64,
) (uint64, uint64, bool, error) {
	if reserveA == 0 && reserveB == 0 {
		return desiredA, desiredB, true, nil
	}
	optimalB, err := Quote(desiredA, reserveA, reserveB)
	if err != nil {
		return 0, 0, false, err
	}
	if optimalB <= desiredB {
		if optimalB < minB {
			return 0, 0, false, nil
		}
		return desiredA, optimalB, true, nil
	}
	optimalA, err := Quote(desiredB, reserveB, reserveA)
	if err != nil {
		return 0, 0, false, err
	}
	if optimalA > desiredA || optimalA < minA {
		return 0, 0, false, nil
	}
	return optimalA, desiredB, true, nil
}

// CalcLiquidityAdd returns the liquidity minted for a deposit. The first
// deposit mints sqrt(a*b) minus [minimumLiquidity]; a zero result means
// nothing can be minted.
func CalcLiquidityAdd(
	reserveA, reserveB uint64,
	amountA, amountB uint64,
	totalLiquidity uint64,
	minimumLiquidity uint64,
) (uint64, error) {
	if totalLiquidity == 0 {
		product, err := mul(u(amountA), u(amountB))
		if err != nil {
			return 0, err
		}
		root := new(uint256.Int).Sqrt(product)
		if root.Cmp(u(minimumLiquidity)) <= 0 {
			return 0, nil
		}
		return narrow(root.Sub(root, u(minimumLiquidity)))
	}
	liquidityA, err := MulDiv(amountA, totalLiquidity, reserveA)
	if err != nil {
		return 0, err
	}
	liquidityB, err := MulDiv(amountB, totalLiquidity, reserveB)
	if err != nil {
		return 0, err
	}
	return min(liquidityA, liquidityB), nil
}

// Invariant returns reserveA * reserveB at 256 bits.
func Invariant(reserveA, reserveB uint64) *uint256.Int {
	return new(uint256.Int).Mul(u(reserveA), u(reserveB))
}
