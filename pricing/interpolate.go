// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

// CalcAdjustWeight linearly interpolates between [start] and [end] at
// [step] of [steps].
func CalcAdjustWeight(start, end, steps, step uint64) (uint64, error) {
	return interpolate(start, end, steps, step)
}

// CalcAdjustBlock returns the block at which [step] of [steps] takes effect
// over [startBlock, endBlock].
func CalcAdjustBlock(startBlock, endBlock, steps, step uint64) (uint64, error) {
	return interpolate(startBlock, endBlock, steps, step)
}

func interpolate(start, end, steps, step uint64) (uint64, error) {
	if steps == 0 {
		return 0, ErrDivisionByZero
	}
	if step > steps {
		return 0, ErrOverflow
	}
	if end >= start {
		delta, err := MulDiv(end-start, step, steps)
		if err != nil {
			return 0, err
		}
		return start + delta, nil
	}
	delta, err := MulDiv(start-end, step, steps)
	if err != nil {
		return 0, err
	}
	return start - delta, nil
}
