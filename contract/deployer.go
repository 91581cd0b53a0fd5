// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ammtest/chain"
)

// Artifact is an opaque compiled contract image: raw bytecode plus the
// initial storage slots. Loading artifacts from disk is the caller's
// concern; this package only consumes the bytes.
type Artifact struct {
	Bytecode []byte
	Storage  []chain.StorageSlot
}

// Root computes the bytecode root of the artifact.
func (a Artifact) Root() (chain.BytecodeRoot, error) {
	return ComputeRoot(a.Bytecode)
}

// DeployOption customizes a single deployment.
type DeployOption func(*deployOptions)

type deployOptions struct {
	salt *chain.Salt
}

// WithSalt pins the deployment salt, making the resulting contract identity
// a pure function of (bytecode, storage, salt). Required when structurally
// identical contracts are deployed more than once.
func WithSalt(salt chain.Salt) DeployOption {
	return func(o *deployOptions) {
		o.salt = &salt
	}
}

// Deployer creates contracts on a ledger on behalf of one deployer address.
type Deployer struct {
	ledger chain.Ledger
	from   ids.ShortID
	log    log.Logger
}

// NewDeployer returns a deployer submitting from the given address.
func NewDeployer(ledger chain.Ledger, from ids.ShortID, logger log.Logger) *Deployer {
	return &Deployer{
		ledger: ledger,
		from:   from,
		log:    logger,
	}
}

// Deploy creates the artifact's contract on the ledger and returns its
// identity. Without WithSalt a random salt is drawn, so identities are not
// deterministic across runs; with it, redeploying the same triple yields
// the same identity. Ledger rejections wrap chain.ErrDeployment.
func (d *Deployer) Deploy(ctx context.Context, artifact Artifact, opts ...DeployOption) (chain.ContractID, error) {
	var o deployOptions
	for _, opt := range opts {
		opt(&o)
	}

	salt := chain.Salt{}
	if o.salt != nil {
		salt = *o.salt
	} else if _, err := rand.Read(salt[:]); err != nil {
		return ids.Empty, fmt.Errorf("drawing deployment salt: %w", err)
	}

	contractID, err := d.ledger.Deploy(ctx, &chain.DeployTx{
		Bytecode: artifact.Bytecode,
		Storage:  artifact.Storage,
		Salt:     salt,
		Deployer: d.from,
	})
	if err != nil {
		return ids.Empty, fmt.Errorf("%w: %w", chain.ErrDeployment, err)
	}

	d.log.Info("deployed contract",
		log.Stringer("contractID", contractID),
		log.Int("bytecodeLen", len(artifact.Bytecode)),
		log.Bool("salted", o.salt != nil),
	)
	return contractID, nil
}
