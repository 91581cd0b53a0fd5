// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "github.com/luxfi/ids"

// Input is a signed-input descriptor spending one UTXO.
type Input struct {
	UTXOID `serialize:"true"`

	Owner        ids.ShortID `serialize:"true" json:"owner"`
	Amount       uint64      `serialize:"true" json:"amount"`
	Asset        AssetID     `serialize:"true" json:"asset"`
	WitnessIndex uint32      `serialize:"true" json:"witnessIndex"`
}

// Output is one declared output of a transaction.
type Output interface {
	// OutputAsset is the asset class the output pays out in.
	OutputAsset() AssetID
}

// VariableOutput is a placeholder for an amount unknown until contract
// execution completes, e.g. minted liquidity-pool tokens or swap proceeds.
// The ledger fills in the amount and recipient when the transaction runs.
type VariableOutput struct {
	Asset AssetID `serialize:"true" json:"asset"`
}

func (o *VariableOutput) OutputAsset() AssetID { return o.Asset }

// TransferOutput pays a fixed amount to a known recipient, e.g. change.
type TransferOutput struct {
	Asset  AssetID     `serialize:"true" json:"asset"`
	Amount uint64      `serialize:"true" json:"amount"`
	To     ids.ShortID `serialize:"true" json:"to"`
}

func (o *TransferOutput) OutputAsset() AssetID { return o.Asset }

// TransactionParameters is the input/output set of one transaction, built
// fresh per transaction and never reused. Inputs may be many-to-one per
// asset; variable outputs are one per distinct asset involved.
type TransactionParameters struct {
	Inputs  []*Input `serialize:"true" json:"inputs"`
	Outputs []Output `serialize:"true" json:"outputs"`
}
