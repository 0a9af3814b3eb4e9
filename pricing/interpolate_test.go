// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalcAdjustWeightBoundaries(t *testing.T) {
	require := require.New(t)

	weights := []uint64{MinWeight, 3 * WeightOne, 17 * WeightOne, MaxWeight}
	for _, start := range weights {
		for _, end := range weights {
			for steps := uint64(1); steps <= 13; steps++ {
				w, err := CalcAdjustWeight(start, end, steps, 0)
				require.NoError(err)
				require.Equal(start, w)

				w, err = CalcAdjustWeight(start, end, steps, steps)
				require.NoError(err)
				require.Equal(end, w)

				w, err = CalcAdjustWeight(start, end, steps, steps/2)
				require.NoError(err)
				require.GreaterOrEqual(w, min(start, end))
				require.LessOrEqual(w, max(start, end))
			}
		}
	}
}

func TestCalcAdjustWeightDirection(t *testing.T) {
	require := require.New(t)

	w, err := CalcAdjustWeight(10, 20, 4, 1)
	require.NoError(err)
	require.Equal(uint64(12), w)

	w, err = CalcAdjustWeight(20, 10, 4, 1)
	require.NoError(err)
	require.Equal(uint64(18), w)

	_, err = CalcAdjustWeight(20, 10, 0, 0)
	require.ErrorIs(err, ErrDivisionByZero)

	_, err = CalcAdjustWeight(20, 10, 4, 5)
	require.ErrorIs(err, ErrOverflow)
}

func TestCalcAdjustBlock(t *testing.T) {
	require := require.New(t)

	for step, expected := range []uint64{100, 125, 150, 175, 200} {
		b, err := CalcAdjustBlock(100, 200, 4, uint64(step))
		require.NoError(err)
		require.Equal(expected, b)
	}
}
