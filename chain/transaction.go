// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/utils"
)

type Transaction struct {
	Actor  codec.Address
	Action Action

	bytes []byte
	id    ids.ID
}

type transactionJSON struct {
	Actor  codec.Address   `json:"actor"`
	Type   uint8           `json:"type"`
	Action json.RawMessage `json:"action"`
}

func NewTransaction(actor codec.Address, action Action) (*Transaction, error) {
	tx := &Transaction{Actor: actor, Action: action}
	b, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}
	tx.bytes = b
	tx.id = utils.ToID(b)
	return tx, nil
}

func (t *Transaction) ID() ids.ID {
	return t.id
}

func (t *Transaction) Bytes() []byte {
	return t.bytes
}

func (t *Transaction) MarshalJSON() ([]byte, error) {
	if t.Action == nil {
		return nil, ErrMissingAction
	}
	action, err := json.Marshal(t.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&transactionJSON{
		Actor:  t.Actor,
		Type:   t.Action.GetTypeID(),
		Action: action,
	})
}

// UnmarshalTransaction decodes [b] and resolves its action through [r].
// The transaction ID commits to the canonical encoding, not to [b].
func UnmarshalTransaction(b []byte, r *Registry) (*Transaction, error) {
	var raw transactionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidObject, err)
	}
	return raw.parse(r)
}

func (raw *transactionJSON) parse(r *Registry) (*Transaction, error) {
	f, ok := r.LookupIndex(raw.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, raw.Type)
	}
	if len(raw.Action) == 0 {
		return nil, ErrMissingAction
	}
	action := f()
	if err := json.Unmarshal(raw.Action, action); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidObject, r.Name(raw.Type), err)
	}
	return NewTransaction(raw.Actor, action)
}
