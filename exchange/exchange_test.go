// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ammtest/chain"
	"github.com/luxfi/ammtest/chain/chaintest"
	"github.com/luxfi/ammtest/contract"
	"github.com/luxfi/ammtest/exchange"
	"github.com/luxfi/ammtest/wallet"
)

var testKeys = secp256k1.TestKeys()

func testArtifacts() exchange.Artifacts {
	return exchange.Artifacts{
		Canonical: contract.Artifact{Bytecode: bytes.Repeat([]byte{0xca}, 128)},
		Malicious: contract.Artifact{Bytecode: bytes.Repeat([]byte{0xfe}, 128)},
	}
}

func newEnv(t *testing.T) (*wallet.Wallet, *chaintest.Ledger, chain.AssetPair) {
	t.Helper()

	ledger := chaintest.New(log.NewNoOpLogger())
	w := wallet.New(ledger, testKeys[0], log.NewNoOpLogger())
	assets := ledger.FundAddress(w.Address(), 2, 2, 1_000_000)
	return w, ledger, chain.AssetPair{A: assets[0], B: assets[1]}
}

func TestProvisionCanonical(t *testing.T) {
	require := require.New(t)

	w, _, pair := newEnv(t)

	ex, err := exchange.Provision(context.Background(), w, testArtifacts(), exchange.Config{
		Pair:                pair,
		ComputeBytecodeRoot: true,
	}, log.NewNoOpLogger())
	require.NoError(err)
	require.Equal(pair, ex.Pair)
	require.NotNil(ex.BytecodeRoot)

	wantRoot, err := testArtifacts().Canonical.Root()
	require.NoError(err)
	require.Equal(wantRoot, *ex.BytecodeRoot)
}

func TestProvisionMaliciousNeverClaimsCanonicalRoot(t *testing.T) {
	require := require.New(t)

	w, ledger, pair := newEnv(t)
	artifacts := testArtifacts()

	ex, err := exchange.Provision(context.Background(), w, artifacts, exchange.Config{
		Pair:                pair,
		Variant:             exchange.VariantMalicious,
		ComputeBytecodeRoot: true,
	}, log.NewNoOpLogger())
	require.NoError(err)

	// The attached root is the canonical binary's, which the deployed
	// malicious code does not match.
	deployedRoot, err := ledger.BytecodeRootOf(ex.ID)
	require.NoError(err)
	require.NotEqual(*ex.BytecodeRoot, deployedRoot)
}

func TestProvisionRejectsReinitialization(t *testing.T) {
	require := require.New(t)

	w, _, pair := newEnv(t)
	salt := chain.Salt{0x77}
	cfg := exchange.Config{Pair: pair, Salt: &salt}

	_, err := exchange.Provision(context.Background(), w, testArtifacts(), cfg, log.NewNoOpLogger())
	require.NoError(err)

	// Same salt resolves to the same contract, whose constructor is
	// single-shot.
	_, err = exchange.Provision(context.Background(), w, testArtifacts(), cfg, log.NewNoOpLogger())
	require.ErrorIs(err, chain.ErrConstructor)
}

func TestDepositAndAddLiquidity(t *testing.T) {
	require := require.New(t)

	w, ledger, pair := newEnv(t)

	ex, err := exchange.Provision(context.Background(), w, testArtifacts(), exchange.Config{Pair: pair}, log.NewNoOpLogger())
	require.NoError(err)

	params := exchange.LiquidityParameters{}
	params, err = params.WithDefaults(context.Background(), ledger)
	require.NoError(err)
	require.Equal([2]uint64{100_000, 100_000}, params.Amounts)
	require.Equal(uint64(100_000), params.MinLiquidity)

	minted, err := ex.DepositAndAddLiquidity(context.Background(), params)
	require.NoError(err)
	require.Equal(uint64(100_000), minted)

	reserve0, reserve1, err := ledger.Reserves(ex.ID)
	require.NoError(err)
	require.Equal(uint64(100_000), reserve0)
	require.Equal(uint64(100_000), reserve1)
}

func TestDepositAndAddLiquidityPastDeadline(t *testing.T) {
	require := require.New(t)

	w, _, pair := newEnv(t)

	ex, err := exchange.Provision(context.Background(), w, testArtifacts(), exchange.Config{Pair: pair}, log.NewNoOpLogger())
	require.NoError(err)

	minted, err := ex.DepositAndAddLiquidity(context.Background(), exchange.LiquidityParameters{
		Amounts:      [2]uint64{10_000, 10_000},
		MinLiquidity: 1,
		Deadline:     1, // already behind the chain tip
	})
	require.ErrorIs(err, chain.ErrDeadlineExceeded)
	require.Zero(minted)
}

func TestDepositAndAddLiquidityInsufficientBalance(t *testing.T) {
	require := require.New(t)

	w, ledger, pair := newEnv(t)

	ex, err := exchange.Provision(context.Background(), w, testArtifacts(), exchange.Config{Pair: pair}, log.NewNoOpLogger())
	require.NoError(err)

	height, err := ledger.LatestBlockHeight(context.Background())
	require.NoError(err)

	// More than the wallet holds of asset 0.
	minted, err := ex.DepositAndAddLiquidity(context.Background(), exchange.LiquidityParameters{
		Amounts:      [2]uint64{5_000_000, 10_000},
		MinLiquidity: 1,
		Deadline:     height + 10,
	})
	require.ErrorIs(err, chain.ErrInsufficientBalance)
	require.Zero(minted)
}

func TestWithdrawUncommittedDeposit(t *testing.T) {
	require := require.New(t)

	w, ledger, pair := newEnv(t)

	ex, err := exchange.Provision(context.Background(), w, testArtifacts(), exchange.Config{Pair: pair}, log.NewNoOpLogger())
	require.NoError(err)

	before, err := ledger.Balance(w.Address(), pair.A)
	require.NoError(err)

	require.NoError(ex.Deposit(context.Background(), pair.A, 25_000))
	require.NoError(ex.Withdraw(context.Background(), pair.A, 25_000))

	after, err := ledger.Balance(w.Address(), pair.A)
	require.NoError(err)
	require.Equal(before, after)
}
