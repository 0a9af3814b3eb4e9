// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/json"
	"fmt"
)

// Block is an ordered list of transactions applied at one height.
type Block struct {
	Height uint64         `json:"height"`
	Txs    []*Transaction `json:"txs"`
}

type blockJSON struct {
	Height uint64             `json:"height"`
	Txs    []*transactionJSON `json:"txs"`
}

func ParseBlock(b []byte, r *Registry) (*Block, error) {
	var raw blockJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidObject, err)
	}
	if len(raw.Txs) > MaxBlockTxs {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyTxs, len(raw.Txs), MaxBlockTxs)
	}
	blk := &Block{
		Height: raw.Height,
		Txs:    make([]*Transaction, 0, len(raw.Txs)),
	}
	for i, rtx := range raw.Txs {
		if rtx == nil {
			return nil, fmt.Errorf("%w: tx %d", ErrMissingAction, i)
		}
		tx, err := rtx.parse(r)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		blk.Txs = append(blk.Txs, tx)
	}
	return blk, nil
}

func (b *Block) String() string {
	return fmt.Sprintf("(Height=%d, Txs=%d)", b.Height, len(b.Txs))
}
