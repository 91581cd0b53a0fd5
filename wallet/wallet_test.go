// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"context"
	"testing"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ammtest/chain"
	"github.com/luxfi/ammtest/chain/chaintest"
)

var testKeys = secp256k1.TestKeys()

func newFundedWallet(t *testing.T, numAssets, coinsPerAsset int, amountPerCoin uint64) (*Wallet, *chaintest.Ledger, []chain.AssetID) {
	t.Helper()

	ledger := chaintest.New(log.NewNoOpLogger())
	w := New(ledger, testKeys[0], log.NewNoOpLogger())
	assets := ledger.FundAddress(w.Address(), numAssets, coinsPerAsset, amountPerCoin)
	return w, ledger, assets
}

func TestSelectSpendableCoversAmount(t *testing.T) {
	require := require.New(t)

	w, _, assets := newFundedWallet(t, 1, 5, 1_000)

	utxos, err := w.SelectSpendable(context.Background(), assets[0], 2_500)
	require.NoError(err)

	var total uint64
	for _, utxo := range utxos {
		total += utxo.Amount
	}
	require.GreaterOrEqual(total, uint64(2_500))
}

func TestSelectSpendableInsufficientFunds(t *testing.T) {
	require := require.New(t)

	w, _, assets := newFundedWallet(t, 1, 2, 100)

	_, err := w.SelectSpendable(context.Background(), assets[0], 10_000)
	require.ErrorIs(err, chain.ErrInsufficientFunds)
}

func TestSelectSpendableRejectsUnknownKind(t *testing.T) {
	require := require.New(t)

	w, ledger, _ := newFundedWallet(t, 1, 1, 100)

	asset := ids.GenerateTestID()
	ledger.AddResource(&chain.UTXO{
		Kind:   chain.KindMessage,
		Asset:  asset,
		Amount: 500,
		Owner:  w.Address(),
	})

	_, err := w.SelectSpendable(context.Background(), asset, 100)
	require.ErrorIs(err, chain.ErrUnsupportedResourceKind)
}

func TestBuildInputsOutputs(t *testing.T) {
	require := require.New(t)

	w, _, assets := newFundedWallet(t, 2, 3, 50)
	spend := []chain.AssetID{assets[0], assets[1]}

	params, err := w.BuildInputsOutputs(context.Background(), spend, []uint64{10, 20})
	require.NoError(err)

	// One variable output per asset, no matter how many inputs.
	require.Len(params.Outputs, 2)
	for i, out := range params.Outputs {
		require.Equal(spend[i], out.OutputAsset())
		require.IsType(&chain.VariableOutput{}, out)
	}

	require.GreaterOrEqual(len(params.Inputs), 2)
	sums := make(map[chain.AssetID]uint64)
	for _, in := range params.Inputs {
		require.Equal(w.Address(), in.Owner)
		sums[in.Asset] += in.Amount
	}
	require.GreaterOrEqual(sums[assets[0]], uint64(10))
	require.GreaterOrEqual(sums[assets[1]], uint64(20))
}

func TestBuildInputsOutputsDefaultCeiling(t *testing.T) {
	require := require.New(t)

	// Enough coins to cover MaxInputAmount per asset.
	w, _, assets := newFundedWallet(t, 2, 2, MaxInputAmount)

	params, err := w.BuildInputsOutputs(context.Background(), assets, nil)
	require.NoError(err)
	require.Len(params.Outputs, 2)

	sums := make(map[chain.AssetID]uint64)
	for _, in := range params.Inputs {
		sums[in.Asset] += in.Amount
	}
	for _, asset := range assets {
		require.GreaterOrEqual(sums[asset], MaxInputAmount)
	}
}

func TestBuildInputsOutputsNoPartialResult(t *testing.T) {
	require := require.New(t)

	w, _, assets := newFundedWallet(t, 2, 1, 100)

	// First asset is coverable, second is not.
	params, err := w.BuildInputsOutputs(
		context.Background(),
		[]chain.AssetID{assets[0], assets[1]},
		[]uint64{50, 5_000},
	)
	require.ErrorIs(err, chain.ErrInsufficientFunds)
	require.Nil(params)
}

func TestBuildInputsOutputsLengthMismatch(t *testing.T) {
	require := require.New(t)

	w, _, assets := newFundedWallet(t, 2, 1, 100)

	_, err := w.BuildInputsOutputs(context.Background(), assets, []uint64{1})
	require.Error(err)
}
