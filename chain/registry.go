// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "fmt"

// Registry resolves action type IDs to fresh, decodable actions.
type Registry struct {
	decoders map[uint8]func() Action
	names    map[uint8]string
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: map[uint8]func() Action{},
		names:    map[uint8]string{},
	}
}

// Register adds the action produced by [f]. The type ID is taken from the
// action itself.
func (r *Registry) Register(f func() Action) error {
	a := f()
	typeID := a.GetTypeID()
	if _, ok := r.decoders[typeID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateItem, typeID)
	}
	r.decoders[typeID] = f
	r.names[typeID] = fmt.Sprintf("%T", a)
	return nil
}

func (r *Registry) LookupIndex(typeID uint8) (func() Action, bool) {
	f, ok := r.decoders[typeID]
	return f, ok
}

func (r *Registry) Name(typeID uint8) string {
	return r.names[typeID]
}

func (r *Registry) Len() int {
	return len(r.decoders)
}
