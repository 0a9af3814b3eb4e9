// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ico

import "errors"

var (
	ErrNotAuthority          = errors.New("actor is not the authority")
	ErrNotAssetOwner         = errors.New("actor does not own the project asset")
	ErrInvalidProjectInfo    = errors.New("invalid project info")
	ErrInvalidIssuance       = errors.New("issuance must cover circulation and offer")
	ErrZeroRaiseTarget       = errors.New("raise target must be non-zero")
	ErrInvalidUserBounds     = errors.New("invalid per-user bounds")
	ErrInvalidDuration       = errors.New("invalid raise duration")
	ErrInvalidVesting        = errors.New("invalid vesting schedule")
	ErrTooManyAreas          = errors.New("too many excluded areas")
	ErrPendingProjectExists  = errors.New("pending project exists for asset")
	ErrProjectNotFound       = errors.New("project not found")
	ErrInvalidStatus         = errors.New("invalid project status")
	ErrZeroAmount            = errors.New("amount must be non-zero")
	ErrNotStarted            = errors.New("raise not started")
	ErrExpired               = errors.New("raise expired")
	ErrNotExpired            = errors.New("raise not expired")
	ErrUnknownArea           = errors.New("user area unknown")
	ErrExcludedArea          = errors.New("user area excluded")
	ErrPriceNotFound         = errors.New("price not found")
	ErrBelowMinimum          = errors.New("contribution below minimum")
	ErrAboveMaximum          = errors.New("contribution above maximum")
	ErrExceedsTarget         = errors.New("contribution exceeds raise target")
	ErrTooManyContributions  = errors.New("too many contributions")
	ErrSelfInvite            = errors.New("cannot invite self")
	ErrNoVesting             = errors.New("no vesting for account")
	ErrNotParticipant        = errors.New("not a participant")
	ErrRewardUnavailable     = errors.New("reward unavailable")
	ErrAlreadyGetReward      = errors.New("reward already claimed")
	ErrInvalidReleasePercent = errors.New("invalid release percent")
)
