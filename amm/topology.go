// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"fmt"

	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/luxfi/ammtest/chain"
	"github.com/luxfi/ammtest/exchange"
	"github.com/luxfi/ammtest/wallet"
)

const (
	// chainDepositAmount is the base deposit seeding each chained pool.
	chainDepositAmount uint64 = 100_000

	// chainDeadlineLookahead keeps liquidity deadlines comfortably ahead of
	// the latest height so topology construction does not expire under
	// test-network latency.
	chainDeadlineLookahead uint64 = 10
)

// BuildChainedPools provisions one exchange per consecutive pair of the
// ordered asset sequence, seeds each with liquidity, and registers each
// into the registry. Pool i is deployed with salt i, so structurally
// identical exchange contracts get distinct identities, and is seeded with
// deposits (chainDepositAmount, chainDepositAmount*(i+1)), giving the chain
// monotonically increasing 1:(i+1) reserve ratios, a predictable price
// landscape for multi-hop routing scenarios.
//
// A failure partway is surfaced immediately and leaves the pools already
// registered valid; nothing is rolled back or retried. The terminal state
// on success is a registry holding exactly len(assets)-1 pools forming a
// path graph over the sequence.
func BuildChainedPools(
	ctx context.Context,
	w *wallet.Wallet,
	registry *Registry,
	artifacts exchange.Artifacts,
	assets []chain.AssetID,
) ([]*exchange.Exchange, error) {
	if len(assets) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopology, len(assets))
	}

	// Consecutive windows of a sequence like [X, Y, X] collapse to the
	// same canonical pair; fail before deploying anything.
	seen := set.NewSet[chain.AssetPair](len(assets) - 1)
	for i, asset := range assets[:len(assets)-1] {
		pair := chain.AssetPair{A: asset, B: assets[i+1]}.Canonical()
		if seen.Contains(pair) {
			return nil, fmt.Errorf("%w: %s", ErrPoolExists, pair)
		}
		seen.Add(pair)
	}

	exchanges := make([]*exchange.Exchange, 0, len(assets)-1)
	for i, asset := range assets[:len(assets)-1] {
		pair := chain.AssetPair{A: asset, B: assets[i+1]}

		// Identical exchange binaries, distinct identities.
		salt := chain.Salt{}
		for j := range salt {
			salt[j] = byte(i)
		}

		ex, err := exchange.Provision(ctx, w, artifacts, exchange.Config{
			Pair: pair,
			Salt: &salt,
		}, registry.log)
		if err != nil {
			return nil, fmt.Errorf("provisioning pool %d: %w", i, err)
		}

		height, err := w.Ledger().LatestBlockHeight(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading block height for pool %d: %w", i, err)
		}

		params := exchange.LiquidityParameters{
			Amounts: [2]uint64{
				chainDepositAmount,
				chainDepositAmount * (uint64(i) + 1),
			},
			// The added liquidity is at least the smaller deposit.
			MinLiquidity: chainDepositAmount,
			Deadline:     height + chainDeadlineLookahead,
		}
		if _, err := ex.DepositAndAddLiquidity(ctx, params); err != nil {
			return nil, fmt.Errorf("seeding pool %d: %w", i, err)
		}

		if err := registry.AddPool(ctx, pair, ex); err != nil {
			return nil, err
		}
		exchanges = append(exchanges, ex)
	}

	registry.log.Info("built chained pools",
		log.Int("assets", len(assets)),
		log.Int("pools", len(exchanges)),
	)
	return exchanges, nil
}
