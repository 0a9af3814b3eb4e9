// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

type persistentError struct {
	err error
}

func (e *persistentError) Error() string {
	return e.err.Error()
}

func (e *persistentError) Unwrap() error {
	return e.err
}

// Persist marks [err] as a failure whose preceding writes must be kept.
// The transaction still reports failure.
func Persist(err error) error {
	if err == nil {
		return nil
	}
	return &persistentError{err: err}
}

// IsPersistent reports whether any error in [err]'s chain was marked with
// [Persist].
func IsPersistent(err error) bool {
	var p *persistentError
	return errors.As(err, &p)
}
