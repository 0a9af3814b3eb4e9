// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "github.com/holiman/uint256"

const (
	// BONE is the fixed point unit of weighted pool math.
	BONE uint64 = 1_000_000_000_000_000_000

	// WeightOne is the unit of pool weights (10 decimal places).
	WeightOne uint64 = 10_000_000_000

	MinWeight = WeightOne
	MaxWeight = 50 * WeightOne

	BpowPrecision = BONE / 10_000_000_000
	MinBpowBase   = 1
	MaxBpowBase   = 2*BONE - 1

	// MaxInRatio and MaxOutRatio bound a single trade as a share of the
	// pool balance, in [BONE] units.
	MaxInRatio  = BONE / 2
	MaxOutRatio = BONE/3 + 1

	maxApproxIterations = 256
)

var (
	bone     = uint256.NewInt(BONE)
	halfBone = uint256.NewInt(BONE / 2)
)

func bmul(a, b *uint256.Int) (*uint256.Int, error) {
	c, err := mul(a, b)
	if err != nil {
		return nil, err
	}
	c, err = add(c, halfBone)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(c, bone), nil
}

func bdiv(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	c, err := mul(a, bone)
	if err != nil {
		return nil, err
	}
	c, err = add(c, new(uint256.Int).Rsh(b, 1))
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(c, b), nil
}

// bsubSign returns |a-b| and whether a < b.
func bsubSign(a, b *uint256.Int) (*uint256.Int, bool) {
	if a.Cmp(b) >= 0 {
		return new(uint256.Int).Sub(a, b), false
	}
	return new(uint256.Int).Sub(b, a), true
}

// bpowi raises [a] to the whole power [n].
func bpowi(a *uint256.Int, n uint64) (*uint256.Int, error) {
	z := bone.Clone()
	if n%2 != 0 {
		z = a.Clone()
	}
	var err error
	for n /= 2; n != 0; n /= 2 {
		a, err = bmul(a, a)
		if err != nil {
			return nil, err
		}
		if n%2 != 0 {
			z, err = bmul(z, a)
			if err != nil {
				return nil, err
			}
		}
	}
	return z, nil
}

// Bpow computes base^exp where both are [BONE] fixed point numbers. The
// whole part of [exp] is computed by squaring and the fractional part by a
// binomial series.
func Bpow(base, exp *uint256.Int) (*uint256.Int, error) {
	if base.Lt(uint256.NewInt(MinBpowBase)) || base.Gt(uint256.NewInt(MaxBpowBase)) {
		return nil, ErrOverflow
	}
	whole := new(uint256.Int).Div(exp, bone)
	remain := new(uint256.Int).Sub(exp, new(uint256.Int).Mul(whole, bone))
	if !whole.IsUint64() {
		return nil, ErrOverflow
	}
	wholePow, err := bpowi(base, whole.Uint64())
	if err != nil {
		return nil, err
	}
	if remain.IsZero() {
		return wholePow, nil
	}
	partial, err := bpowApprox(base, remain, uint256.NewInt(BpowPrecision))
	if err != nil {
		return nil, err
	}
	return bmul(wholePow, partial)
}

func bpowApprox(base, exp, precision *uint256.Int) (*uint256.Int, error) {
	x, xneg := bsubSign(base, bone)
	term := bone.Clone()
	sum := bone.Clone()
	negative := false

	for i := uint64(1); term.Cmp(precision) >= 0 && i <= maxApproxIterations; i++ {
		bigK := new(uint256.Int).Mul(uint256.NewInt(i), bone)
		c, cneg := bsubSign(exp, new(uint256.Int).Sub(bigK, bone))
		cx, err := bmul(c, x)
		if err != nil {
			return nil, err
		}
		term, err = bmul(term, cx)
		if err != nil {
			return nil, err
		}
		term, err = bdiv(term, bigK)
		if err != nil {
			return nil, err
		}
		if term.IsZero() {
			break
		}
		if xneg {
			negative = !negative
		}
		if cneg {
			negative = !negative
		}
		if negative {
			sum, err = sub(sum, term)
			if err != nil {
				return nil, err
			}
		} else {
			sum, err = add(sum, term)
			if err != nil {
				return nil, err
			}
		}
	}
	return sum, nil
}

// ApplyRatio returns [amount] scaled by a [BONE] fixed point [ratio].
func ApplyRatio(amount, ratio uint64) (uint64, error) {
	v, err := bmul(u(amount), u(ratio))
	if err != nil {
		return 0, err
	}
	return narrow(v)
}

// Ratio returns a/b as a [BONE] fixed point number.
func Ratio(a, b uint64) (*uint256.Int, error) {
	return bdiv(u(a), u(b))
}

// CalcSpotPrice returns the [BONE] scaled price of the out asset in terms
// of the in asset, including [fee] (also [BONE] scaled).
func CalcSpotPrice(balanceIn, weightIn, balanceOut, weightOut, fee uint64) (*uint256.Int, error) {
	numer, err := bdiv(u(balanceIn), u(weightIn))
	if err != nil {
		return nil, err
	}
	denom, err := bdiv(u(balanceOut), u(weightOut))
	if err != nil {
		return nil, err
	}
	ratio, err := bdiv(numer, denom)
	if err != nil {
		return nil, err
	}
	feeComplement, err := sub(bone, u(fee))
	if err != nil {
		return nil, err
	}
	scale, err := bdiv(bone, feeComplement)
	if err != nil {
		return nil, err
	}
	return bmul(ratio, scale)
}

// CalcOutGivenIn returns the amount of the out asset received for
// [amountIn] of the in asset.
func CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn, fee uint64) (uint64, error) {
	weightRatio, err := bdiv(u(weightIn), u(weightOut))
	if err != nil {
		return 0, err
	}
	feeComplement, err := sub(bone, u(fee))
	if err != nil {
		return 0, err
	}
	adjustedIn, err := bmul(u(amountIn), feeComplement)
	if err != nil {
		return 0, err
	}
	newBalanceIn, err := add(u(balanceIn), adjustedIn)
	if err != nil {
		return 0, err
	}
	y, err := bdiv(u(balanceIn), newBalanceIn)
	if err != nil {
		return 0, err
	}
	foo, err := Bpow(y, weightRatio)
	if err != nil {
		return 0, err
	}
	bar, err := sub(bone, foo)
	if err != nil {
		return 0, err
	}
	out, err := bmul(u(balanceOut), bar)
	if err != nil {
		return 0, err
	}
	return narrow(out)
}

// CalcInGivenOut returns the amount of the in asset required to receive
// [amountOut] of the out asset.
func CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut, fee uint64) (uint64, error) {
	weightRatio, err := bdiv(u(weightOut), u(weightIn))
	if err != nil {
		return 0, err
	}
	diff, err := sub(u(balanceOut), u(amountOut))
	if err != nil {
		return 0, err
	}
	y, err := bdiv(u(balanceOut), diff)
	if err != nil {
		return 0, err
	}
	foo, err := Bpow(y, weightRatio)
	if err != nil {
		return 0, err
	}
	foo, err = sub(foo, bone)
	if err != nil {
		return 0, err
	}
	feeComplement, err := sub(bone, u(fee))
	if err != nil {
		return 0, err
	}
	in, err := bmul(u(balanceIn), foo)
	if err != nil {
		return 0, err
	}
	in, err = bdiv(in, feeComplement)
	if err != nil {
		return 0, err
	}
	return narrow(in)
}
