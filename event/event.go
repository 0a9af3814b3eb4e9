// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"context"
	"errors"
	"sync"
)

var _ Subscription[struct{}] = (*SubscriptionFunc[struct{}])(nil)

// Subscription defines how to consume events
type Subscription[T any] interface {
	// Accept returns fatal errors
	Accept(ctx context.Context, t T) error
	// Close returns fatal errors
	Close() error
}

type SubscriptionFunc[T any] struct {
	AcceptF func(ctx context.Context, t T) error
}

func (s SubscriptionFunc[T]) Accept(ctx context.Context, t T) error {
	return s.AcceptF(ctx, t)
}

func (SubscriptionFunc[_]) Close() error {
	return nil
}

// NotifyAll delivers [e] to every subscription and joins their errors.
func NotifyAll[T any](ctx context.Context, e T, subs ...Subscription[T]) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Accept(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Feed fans events out to a dynamic set of subscriptions.
type Feed[T any] struct {
	l    sync.RWMutex
	subs []Subscription[T]
}

func (f *Feed[T]) Subscribe(sub Subscription[T]) {
	f.l.Lock()
	defer f.l.Unlock()

	f.subs = append(f.subs, sub)
}

func (f *Feed[T]) Notify(ctx context.Context, e T) error {
	f.l.RLock()
	defer f.l.RUnlock()

	return NotifyAll(ctx, e, f.subs...)
}

// Close closes and drops every subscription.
func (f *Feed[T]) Close() error {
	f.l.Lock()
	defer f.l.Unlock()

	var errs []error
	for _, sub := range f.subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.subs = nil
	return errors.Join(errs...)
}
