// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package amm drives the factory/registry contract and builds chained pool
// topologies over ordered asset sequences.
package amm

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ammtest/chain"
	"github.com/luxfi/ammtest/contract"
	"github.com/luxfi/ammtest/exchange"
	"github.com/luxfi/ammtest/wallet"
)

var (
	ErrPoolExists      = errors.New("pool already registered for pair")
	ErrInvalidTopology = errors.New("topology needs at least two assets")
)

// Registry is the client of one deployed AMM factory/registry contract,
// plus the local record of every pool registered through it. The pool map
// is owned exclusively by the builder while a topology is under
// construction and read-only afterward; two builders must not race on the
// same registry.
type Registry struct {
	ID chain.ContractID

	ledger chain.Ledger
	caller ids.ShortID
	log    log.Logger

	pools map[chain.AssetPair]*exchange.Exchange
}

// DeployAndInitialize deploys the registry contract and issues its one-shot
// initialize call declaring the exchange bytecode root it will accept pools
// from. An exchange whose deployed code does not match that root cannot be
// registered, which is what stops a malicious factory from substituting
// unexpected code.
func DeployAndInitialize(
	ctx context.Context,
	w *wallet.Wallet,
	artifact contract.Artifact,
	exchangeRoot chain.BytecodeRoot,
	logger log.Logger,
) (*Registry, error) {
	deployer := contract.NewDeployer(w.Ledger(), w.Address(), logger)
	contractID, err := deployer.Deploy(ctx, artifact)
	if err != nil {
		return nil, fmt.Errorf("deploying registry: %w", err)
	}

	r := &Registry{
		ID:     contractID,
		ledger: w.Ledger(),
		caller: w.Address(),
		log:    logger,
		pools:  make(map[chain.AssetPair]*exchange.Exchange),
	}
	if err := r.invoke(ctx, chain.MethodInitialize, &chain.InitializeArgs{
		ExchangeRoot: exchangeRoot,
	}); err != nil {
		return nil, fmt.Errorf("initializing registry: %w", err)
	}

	logger.Info("initialized AMM registry",
		log.Stringer("registry", contractID),
		log.Stringer("exchangeRoot", exchangeRoot),
	)
	return r, nil
}

func (r *Registry) invoke(ctx context.Context, method string, args interface{}) error {
	argBytes, err := chain.Codec.Marshal(chain.CodecVersion, &args)
	if err != nil {
		return fmt.Errorf("marshaling %s args: %w", method, err)
	}
	_, err = r.ledger.Invoke(ctx, &chain.ContractCall{
		Contract: r.ID,
		Caller:   r.caller,
		Method:   method,
		Args:     argBytes,
	})
	return err
}

// AddPool registers (pair -> exchange identity) on-chain and records the
// exchange locally. Pairs are canonicalized before keying, so (A, B) and
// (B, A) name the same pool; registering the same logical pair twice is a
// caller error.
func (r *Registry) AddPool(ctx context.Context, pair chain.AssetPair, ex *exchange.Exchange) error {
	key := pair.Canonical()
	if _, ok := r.pools[key]; ok {
		return fmt.Errorf("%w: %s", ErrPoolExists, key)
	}

	if err := r.invoke(ctx, chain.MethodAddPool, &chain.AddPoolArgs{
		Pair:     key,
		Exchange: ex.ID,
	}); err != nil {
		return fmt.Errorf("registering pool %s: %w", key, err)
	}

	r.pools[key] = ex
	r.log.Info("registered pool",
		log.Stringer("pair", key),
		log.Stringer("exchange", ex.ID),
	)
	return nil
}

// Pool returns the exchange registered for the pair, canonicalizing before
// lookup.
func (r *Registry) Pool(pair chain.AssetPair) (*exchange.Exchange, bool) {
	ex, ok := r.pools[pair.Canonical()]
	return ex, ok
}

// Pools returns a copy of the registered pools, keyed canonically.
func (r *Registry) Pools() map[chain.AssetPair]*exchange.Exchange {
	return maps.Clone(r.pools)
}

// NumPools returns how many pools are registered.
func (r *Registry) NumPools() int {
	return len(r.pools)
}
