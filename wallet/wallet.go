// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wallet selects spendable resources owned by a keypair and
// assembles multi-asset transaction input/output sets.
package wallet

import (
	"context"
	"fmt"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math"

	"github.com/luxfi/ammtest/chain"
)

// MaxInputAmount is the selection ceiling used when a caller does not name
// an exact amount and only needs "enough" coins, letting the ledger return
// unspent value as change.
const MaxInputAmount uint64 = 1_000_000

// Wallet pairs a signing key with the ledger its coins live on.
type Wallet struct {
	key    *secp256k1.PrivateKey
	ledger chain.Ledger
	log    log.Logger
}

// New wraps an existing key.
func New(ledger chain.Ledger, key *secp256k1.PrivateKey, logger log.Logger) *Wallet {
	return &Wallet{
		key:    key,
		ledger: ledger,
		log:    logger,
	}
}

// NewRandom generates a fresh keypair.
func NewRandom(ledger chain.Ledger, logger log.Logger) (*Wallet, error) {
	key, err := secp256k1.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating wallet key: %w", err)
	}
	return New(ledger, key, logger), nil
}

// Address returns the wallet's owning address.
func (w *Wallet) Address() ids.ShortID {
	return w.key.Address()
}

// Ledger returns the ledger client the wallet operates against.
func (w *Wallet) Ledger() chain.Ledger {
	return w.ledger
}

// SelectSpendable asks the ledger for unspent resources of asset covering
// at least amount. The selection algorithm itself belongs to the ledger;
// this method shapes the request and rejects resource kinds the harness
// does not know how to spend.
func (w *Wallet) SelectSpendable(ctx context.Context, asset chain.AssetID, amount uint64) ([]*chain.UTXO, error) {
	utxos, err := w.ledger.SpendableResources(ctx, w.Address(), asset, amount)
	if err != nil {
		return nil, err
	}

	var total uint64
	for _, utxo := range utxos {
		if utxo.Kind != chain.KindCoin {
			return nil, fmt.Errorf("%w: %s", chain.ErrUnsupportedResourceKind, utxo.Kind)
		}
		total, err = math.Add64(total, utxo.Amount)
		if err != nil {
			return nil, fmt.Errorf("summing selected resources: %w", err)
		}
	}
	if total < amount {
		return nil, fmt.Errorf("%w: asset %s: requested %d, selected %d",
			chain.ErrInsufficientFunds,
			asset,
			amount,
			total,
		)
	}
	return utxos, nil
}

// BuildInputsOutputs assembles the input/output set of a transaction
// spending the given assets. For each asset, in order, it selects coins
// covering amounts[i] (or MaxInputAmount when amounts is nil) and declares
// exactly one variable output, since the execution-time payout amount is
// unknown until the contract runs. On any selection failure no partial
// parameters are returned.
func (w *Wallet) BuildInputsOutputs(
	ctx context.Context,
	assets []chain.AssetID,
	amounts []uint64,
) (*chain.TransactionParameters, error) {
	if amounts != nil && len(amounts) != len(assets) {
		return nil, fmt.Errorf("amounts length %d does not match assets length %d", len(amounts), len(assets))
	}

	inputs := []*chain.Input{}
	outputs := make([]chain.Output, 0, len(assets))
	for i, asset := range assets {
		amount := MaxInputAmount
		if amounts != nil {
			amount = amounts[i]
		}

		utxos, err := w.SelectSpendable(ctx, asset, amount)
		if err != nil {
			return nil, err
		}
		for _, utxo := range utxos {
			inputs = append(inputs, &chain.Input{
				UTXOID:       utxo.UTXOID,
				Owner:        w.Address(),
				Amount:       utxo.Amount,
				Asset:        asset,
				WitnessIndex: 0,
			})
		}
		outputs = append(outputs, &chain.VariableOutput{Asset: asset})
	}

	w.log.Debug("assembled transaction parameters",
		log.Int("assets", len(assets)),
		log.Int("inputs", len(inputs)),
		log.Int("outputs", len(outputs)),
	)
	return &chain.TransactionParameters{
		Inputs:  inputs,
		Outputs: outputs,
	}, nil
}
