// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	require := require.New(t)

	out, err := Quote(10, 100, 300)
	require.NoError(err)
	require.Equal(uint64(30), out)

	_, err = Quote(10, 0, 300)
	require.ErrorIs(err, ErrDivisionByZero)

	// intermediate product does not fit in 64 bits
	out, err = Quote(math.MaxUint64, math.MaxUint64, 7)
	require.NoError(err)
	require.Equal(uint64(7), out)
}

func TestGetAmountOutScenario(t *testing.T) {
	require := require.New(t)

	amounts, err := GetAmountsOut(10_000, []Reserves{{In: 100_000, Out: 100_000}})
	require.NoError(err)
	require.Len(amounts, 2)
	require.Equal(uint64(10_000*997*100_000/(100_000*1000+10_000*997)), amounts[1])
	require.Equal(uint64(9066), amounts[1])
}

func TestGetAmountInErrors(t *testing.T) {
	require := require.New(t)

	_, err := GetAmountIn(100, 1_000, 100)
	require.ErrorIs(err, ErrDivisionByZero)

	_, err = GetAmountIn(101, 1_000, 100)
	require.ErrorIs(err, ErrOverflow)

	_, err = GetAmountOut(0, 0, 100)
	require.ErrorIs(err, ErrDivisionByZero)
}

func TestRoundTripQuoting(t *testing.T) {
	tests := []struct {
		reserveIn  uint64
		reserveOut uint64
		amount     uint64
	}{
		{100_000, 100_000, 1},
		{100_000, 100_000, 10_000},
		{1_000, 10, 3},
		{7_919, 1_000_003, 500},
		{math.MaxUint64 / 4, math.MaxUint64 / 8, 1 << 40},
	}
	for _, tt := range tests {
		require := require.New(t)

		in, err := GetAmountIn(tt.amount, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		out, err := GetAmountOut(in, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		require.GreaterOrEqual(out, tt.amount)

		out, err = GetAmountOut(tt.amount, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		if out == 0 {
			continue
		}
		in, err = GetAmountIn(out, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		back, err := GetAmountOut(in, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		require.GreaterOrEqual(back, out)
	}
}

func TestAmountInOfQuotedOutput(t *testing.T) {
	tests := []struct {
		reserveIn  uint64
		reserveOut uint64
		amount     uint64
	}{
		{100_000, 100_000, 1_000},
		{100_000, 100_000, 10_000},
		{100_000, 100_000, 10_001},
		{7_919, 1_000_003, 500},
		{1_000_003, 7_919, 90_000},
		{math.MaxUint64 / 4, math.MaxUint64 / 8, 1 << 40},
	}
	for _, tt := range tests {
		require := require.New(t)

		out, err := GetAmountOut(tt.amount, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		require.Positive(out)

		in, err := GetAmountIn(out, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		// in buys out again and exceeds the quoted input by at most the
		// round-up unit.
		require.LessOrEqual(in, tt.amount+1)
		bought, err := GetAmountOut(in, tt.reserveIn, tt.reserveOut)
		require.NoError(err)
		require.GreaterOrEqual(bought, out)
	}
}

func TestAmountInOfFlooredOutput(t *testing.T) {
	require := require.New(t)

	// the cheapest input for 9066 is exactly 10_000
	out, err := GetAmountOut(10_000, 100_000, 100_000)
	require.NoError(err)
	require.Equal(uint64(9066), out)
	in, err := GetAmountIn(out, 100_000, 100_000)
	require.NoError(err)
	require.Equal(uint64(10_000), in)
	require.GreaterOrEqual(in, uint64(10_000))

	// 10_001 floors to the same output, which 10_000 already buys
	out, err = GetAmountOut(10_001, 100_000, 100_000)
	require.NoError(err)
	require.Equal(uint64(9066), out)
	in, err = GetAmountIn(out, 100_000, 100_000)
	require.NoError(err)
	require.Equal(uint64(10_000), in)
}

func TestInvariantNonDecrease(t *testing.T) {
	require := require.New(t)

	reserveA, reserveB := uint64(1_000_000), uint64(3_000_000)
	trades := []struct {
		aToB bool
		in   uint64
	}{
		{true, 1}, {true, 50_000}, {false, 123_456}, {false, 7}, {true, 999_999}, {false, 2_000_000},
	}
	for _, trade := range trades {
		before := Invariant(reserveA, reserveB)
		if trade.aToB {
			out, err := GetAmountOut(trade.in, reserveA, reserveB)
			require.NoError(err)
			reserveA += trade.in
			reserveB -= out
		} else {
			out, err := GetAmountOut(trade.in, reserveB, reserveA)
			require.NoError(err)
			reserveB += trade.in
			reserveA -= out
		}
		require.False(Invariant(reserveA, reserveB).Lt(before))
	}
}

func TestGetAmountsInChain(t *testing.T) {
	require := require.New(t)

	reserves := []Reserves{{In: 50_000, Out: 80_000}, {In: 90_000, Out: 40_000}}
	amounts, err := GetAmountsIn(1_000, reserves)
	require.NoError(err)
	require.Len(amounts, 3)
	require.Equal(uint64(1_000), amounts[2])

	forward, err := GetAmountsOut(amounts[0], reserves)
	require.NoError(err)
	require.GreaterOrEqual(forward[2], amounts[2])
}

func TestCalcAmountOut(t *testing.T) {
	require := require.New(t)

	a, b, err := CalcAmountOut(1_000, 4_000, 50, 200)
	require.NoError(err)
	require.Equal(uint64(250), a)
	require.Equal(uint64(1_000), b)

	_, _, err = CalcAmountOut(1_000, 4_000, 50, 0)
	require.ErrorIs(err, ErrDivisionByZero)
}

func TestCalcAmountIn(t *testing.T) {
	tests := []struct {
		name               string
		desiredA, desiredB uint64
		minA, minB         uint64
		reserveA, reserveB uint64
		expectedA          uint64
		expectedB          uint64
		ok                 bool
		err                error
	}{
		{
			name:      "first deposit",
			desiredA:  10,
			desiredB:  20,
			expectedA: 10,
			expectedB: 20,
			ok:        true,
		},
		{
			name:      "b constrained",
			desiredA:  100,
			desiredB:  500,
			reserveA:  1_000,
			reserveB:  2_000,
			expectedA: 100,
			expectedB: 200,
			ok:        true,
		},
		{
			name:      "a constrained",
			desiredA:  100,
			desiredB:  100,
			reserveA:  1_000,
			reserveB:  2_000,
			expectedA: 50,
			expectedB: 100,
			ok:        true,
		},
		{
			name:     "no acceptable split",
			desiredA: 100,
			desiredB: 50,
			minA:     100,
			reserveA: 100,
			reserveB: 100,
		},
		{
			name:     "b below minimum",
			desiredA: 100,
			desiredB: 500,
			minB:     300,
			reserveA: 1_000,
			reserveB: 2_000,
		},
		{
			name:     "one sided reserves",
			desiredA: 100,
			desiredB: 500,
			reserveB: 2_000,
			err:      ErrDivisionByZero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			a, b, ok, err := CalcAmountIn(tt.desiredA, tt.desiredB, tt.minA, tt.minB, tt.reserveA, tt.reserveB)
			require.ErrorIs(err, tt.err)
			require.Equal(tt.ok, ok)
			require.Equal(tt.expectedA, a)
			require.Equal(tt.expectedB, b)
		})
	}
}

func TestCalcLiquidityAdd(t *testing.T) {
	require := require.New(t)

	minted, err := CalcLiquidityAdd(0, 0, 10_000, 40_000, 0, 1_000)
	require.NoError(err)
	require.Equal(uint64(19_000), minted)

	// sqrt(1000*1000) == minimum
	minted, err = CalcLiquidityAdd(0, 0, 1_000, 1_000, 0, 1_000)
	require.NoError(err)
	require.Zero(minted)

	minted, err = CalcLiquidityAdd(10_000, 40_000, 1_000, 8_000, 20_000, 1_000)
	require.NoError(err)
	require.Equal(uint64(2_000), minted)

	_, err = CalcLiquidityAdd(0, 40_000, 1_000, 8_000, 20_000, 1_000)
	require.ErrorIs(err, ErrDivisionByZero)
}

func TestProRataConservation(t *testing.T) {
	require := require.New(t)

	const (
		depositA         = 250_000
		depositB         = 1_000_000
		minimumLiquidity = 1_000
	)
	minted, err := CalcLiquidityAdd(0, 0, depositA, depositB, 0, minimumLiquidity)
	require.NoError(err)
	total := minted + minimumLiquidity

	a, b, err := CalcAmountOut(depositA, depositB, minted, total)
	require.NoError(err)

	lockedA, lockedB, err := CalcAmountOut(depositA, depositB, minimumLiquidity, total)
	require.NoError(err)
	require.InDelta(depositA-lockedA, a, 1)
	require.InDelta(depositB-lockedB, b, 1)
	require.LessOrEqual(a+lockedA, uint64(depositA))
	require.LessOrEqual(b+lockedB, uint64(depositB))
}
