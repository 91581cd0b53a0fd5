// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ammtest/amm"
	"github.com/luxfi/ammtest/chain"
)

func TestBuildChainedPools(t *testing.T) {
	require := require.New(t)

	const numAssets = 4
	w, ledger, assets, registry := newEnv(t, numAssets)

	exchanges, err := amm.BuildChainedPools(context.Background(), w, registry, testArtifacts(), assets)
	require.NoError(err)
	require.Len(exchanges, numAssets-1)
	require.Equal(numAssets-1, registry.NumPools())

	for i, ex := range exchanges {
		// Pools cover consecutive pairs of the asset sequence.
		require.Equal(chain.AssetPair{A: assets[i], B: assets[i+1]}, ex.Pair)

		// Reserve ratios follow 1:(i+1).
		reserve0, reserve1, err := ledger.Reserves(ex.ID)
		require.NoError(err)
		require.Equal(uint64(100_000), reserve0)
		require.Equal(uint64(100_000)*(uint64(i)+1), reserve1)

		got, ok := registry.Pool(ex.Pair)
		require.True(ok)
		require.Equal(ex.ID, got.ID)
	}
}

func TestBuildChainedPoolsDistinctIdentities(t *testing.T) {
	require := require.New(t)

	w, _, assets, registry := newEnv(t, 3)

	exchanges, err := amm.BuildChainedPools(context.Background(), w, registry, testArtifacts(), assets)
	require.NoError(err)

	// Identical exchange binaries, distinct salted identities.
	require.NotEqual(exchanges[0].ID, exchanges[1].ID)
}

func TestBuildChainedPoolsEndToEnd(t *testing.T) {
	require := require.New(t)

	w, ledger, assets, registry := newEnv(t, 3)
	x, y, z := assets[0], assets[1], assets[2]

	exchanges, err := amm.BuildChainedPools(context.Background(), w, registry, testArtifacts(), []chain.AssetID{x, y, z})
	require.NoError(err)
	require.Len(exchanges, 2)

	// exchange(X, Y) seeded (100_000, 100_000).
	reserve0, reserve1, err := ledger.Reserves(exchanges[0].ID)
	require.NoError(err)
	require.Equal(uint64(100_000), reserve0)
	require.Equal(uint64(100_000), reserve1)

	// exchange(Y, Z) seeded (100_000, 200_000).
	reserve0, reserve1, err = ledger.Reserves(exchanges[1].ID)
	require.NoError(err)
	require.Equal(uint64(100_000), reserve0)
	require.Equal(uint64(200_000), reserve1)

	pools := registry.Pools()
	require.Len(pools, 2)
	require.Contains(pools, chain.AssetPair{A: x, B: y}.Canonical())
	require.Contains(pools, chain.AssetPair{A: y, B: z}.Canonical())
}

func TestBuildChainedPoolsTooFewAssets(t *testing.T) {
	require := require.New(t)

	w, _, assets, registry := newEnv(t, 1)

	_, err := amm.BuildChainedPools(context.Background(), w, registry, testArtifacts(), assets)
	require.ErrorIs(err, amm.ErrInvalidTopology)
	require.Zero(registry.NumPools())

	_, err = amm.BuildChainedPools(context.Background(), w, registry, testArtifacts(), nil)
	require.ErrorIs(err, amm.ErrInvalidTopology)
}

func TestBuildChainedPoolsRepeatedAsset(t *testing.T) {
	require := require.New(t)

	w, _, assets, registry := newEnv(t, 2)

	// [A, B, A] collapses to the same canonical pair twice; nothing is
	// deployed.
	_, err := amm.BuildChainedPools(context.Background(), w, registry, testArtifacts(), []chain.AssetID{
		assets[0], assets[1], assets[0],
	})
	require.ErrorIs(err, amm.ErrPoolExists)
	require.Zero(registry.NumPools())
}
