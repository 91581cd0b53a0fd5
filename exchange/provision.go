// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"context"
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/ammtest/chain"
	"github.com/luxfi/ammtest/contract"
	"github.com/luxfi/ammtest/wallet"
)

// Variant selects which exchange binary a provisioning deploys. Malicious
// variants exist purely so tests can exercise a registry's defenses against
// non-conforming exchanges; they are deployed like any other contract but
// their bytecode root will not match the canonical one.
type Variant uint8

const (
	VariantCanonical Variant = iota
	VariantMalicious
)

func (v Variant) String() string {
	switch v {
	case VariantCanonical:
		return "canonical"
	case VariantMalicious:
		return "malicious"
	default:
		return "unknown"
	}
}

// Artifacts holds the compiled exchange binaries a test run can deploy.
type Artifacts struct {
	Canonical contract.Artifact
	Malicious contract.Artifact
}

// ForVariant returns the artifact the variant deploys.
func (a Artifacts) ForVariant(v Variant) contract.Artifact {
	if v == VariantMalicious {
		return a.Malicious
	}
	return a.Canonical
}

// Config describes one exchange provisioning. All fields are optional;
// the zero value deploys a canonical exchange with a random salt and no
// bytecode root.
type Config struct {
	// Pair is the exchange's two reserve assets, in the order deposits and
	// reserve ratios are stated.
	Pair chain.AssetPair

	// Variant picks the binary to deploy.
	Variant Variant

	// Salt pins the contract identity. Required when deploying the same
	// exchange binary more than once.
	Salt *chain.Salt

	// ComputeBytecodeRoot attaches the root of the canonical binary to the
	// returned record, regardless of the deployed variant.
	ComputeBytecodeRoot bool
}

// Provision deploys one exchange contract for the configured pair, issues
// its single-shot constructor call, and optionally records the canonical
// bytecode root. The constructor establishes the pair as immutable on-chain
// state; a second initialization of the same contract fails with
// chain.ErrConstructor.
func Provision(
	ctx context.Context,
	w *wallet.Wallet,
	artifacts Artifacts,
	cfg Config,
	logger log.Logger,
) (*Exchange, error) {
	var opts []contract.DeployOption
	if cfg.Salt != nil {
		opts = append(opts, contract.WithSalt(*cfg.Salt))
	}

	deployer := contract.NewDeployer(w.Ledger(), w.Address(), logger)
	contractID, err := deployer.Deploy(ctx, artifacts.ForVariant(cfg.Variant), opts...)
	if err != nil {
		return nil, fmt.Errorf("deploying %s exchange: %w", cfg.Variant, err)
	}

	ex := &Exchange{
		ID:     contractID,
		Pair:   cfg.Pair,
		ledger: w.Ledger(),
		caller: w.Address(),
		log:    logger,
	}

	if _, err := ex.invoke(ctx, chain.MethodConstructor, &chain.ConstructorArgs{Pair: cfg.Pair}); err != nil {
		return nil, fmt.Errorf("exchange constructor: %w", err)
	}

	if cfg.ComputeBytecodeRoot {
		root, err := artifacts.Canonical.Root()
		if err != nil {
			return nil, fmt.Errorf("computing canonical exchange root: %w", err)
		}
		ex.AttachRoot(root)
	}

	logger.Info("provisioned exchange",
		log.Stringer("exchange", contractID),
		log.Stringer("pair", cfg.Pair),
		log.String("variant", cfg.Variant.String()),
	)
	return ex, nil
}
