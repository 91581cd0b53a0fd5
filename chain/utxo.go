// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/ammtest/utils/hashing"
)

// ResourceKind discriminates the spendable resource types a ledger may
// return. Only coins are spendable by this harness.
type ResourceKind uint8

const (
	KindCoin ResourceKind = iota
	KindMessage
)

func (k ResourceKind) String() string {
	switch k {
	case KindCoin:
		return "coin"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// UTXOID locates one output of a previous transaction.
type UTXOID struct {
	TxID        ids.ID `serialize:"true" json:"txID"`
	OutputIndex uint32 `serialize:"true" json:"outputIndex"`
}

// InputID returns the unique identifier of the consumption of this UTXO.
func (u *UTXOID) InputID() ids.ID {
	return hashing.ComputeHash256Array(append(u.TxID[:], byte(u.OutputIndex>>24), byte(u.OutputIndex>>16), byte(u.OutputIndex>>8), byte(u.OutputIndex)))
}

// UTXO is an unspent value unit a wallet can present as a transaction input.
type UTXO struct {
	UTXOID `serialize:"true"`

	Kind   ResourceKind `serialize:"true" json:"kind"`
	Asset  AssetID      `serialize:"true" json:"asset"`
	Amount uint64       `serialize:"true" json:"amount"`
	Owner  ids.ShortID  `serialize:"true" json:"owner"`
}
