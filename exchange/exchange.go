// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package exchange provisions per-pair exchange contracts and runs the
// deposit-then-add-liquidity pipeline that funds them.
package exchange

import (
	"context"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ammtest/chain"
)

// Exchange is the record of one provisioned exchange contract. It is never
// mutated after provisioning, except to attach a lazily computed bytecode
// root via AttachRoot.
type Exchange struct {
	ID   chain.ContractID
	Pair chain.AssetPair

	// BytecodeRoot is the verified root of the canonical exchange binary,
	// present only when provisioning was asked to compute it. A malicious
	// variant never claims a canonical root.
	BytecodeRoot *chain.BytecodeRoot

	ledger chain.Ledger
	caller ids.ShortID
	log    log.Logger
}

// AttachRoot records a bytecode root computed after provisioning.
func (e *Exchange) AttachRoot(root chain.BytecodeRoot) {
	e.BytecodeRoot = &root
}

func (e *Exchange) invoke(ctx context.Context, method string, args interface{}) (uint64, error) {
	argBytes, err := chain.Codec.Marshal(chain.CodecVersion, &args)
	if err != nil {
		return 0, fmt.Errorf("marshaling %s args: %w", method, err)
	}
	return e.ledger.Invoke(ctx, &chain.ContractCall{
		Contract: e.ID,
		Caller:   e.caller,
		Method:   method,
		Args:     argBytes,
	})
}

// Deposit credits amount of asset to the caller's balance inside the
// exchange. Fails with chain.ErrInsufficientBalance when the wallet does
// not hold that much of the asset.
func (e *Exchange) Deposit(ctx context.Context, asset chain.AssetID, amount uint64) error {
	_, err := e.invoke(ctx, chain.MethodDeposit, &chain.DepositArgs{
		Asset:  asset,
		Amount: amount,
	})
	if err != nil {
		return fmt.Errorf("deposit of %d: %w", amount, err)
	}
	return nil
}

// Withdraw reclaims deposited coins that have not been committed as
// reserves.
func (e *Exchange) Withdraw(ctx context.Context, asset chain.AssetID, amount uint64) error {
	_, err := e.invoke(ctx, chain.MethodWithdraw, &chain.WithdrawArgs{
		Asset:  asset,
		Amount: amount,
	})
	if err != nil {
		return fmt.Errorf("withdraw of %d: %w", amount, err)
	}
	return nil
}

// AddLiquidity commits the caller's deposited balances as pool reserves and
// returns the liquidity-token amount minted. Deadline and minimum-output
// enforcement are the contract's responsibility; this method surfaces
// whatever the contract reports.
func (e *Exchange) AddLiquidity(ctx context.Context, minLiquidity, deadline uint64) (uint64, error) {
	return e.invoke(ctx, chain.MethodAddLiquidity, &chain.AddLiquidityArgs{
		MinLiquidity: minLiquidity,
		Deadline:     deadline,
	})
}

// DepositAndAddLiquidity runs the strictly ordered liquidity pipeline:
// deposit the amount for asset 0, deposit the amount for asset 1, then add
// liquidity. The add-liquidity step reads balances credited by the
// deposits, so the three calls must not be reordered or interleaved with
// concurrent pipelines against the same exchange.
func (e *Exchange) DepositAndAddLiquidity(ctx context.Context, params LiquidityParameters) (uint64, error) {
	if err := e.Deposit(ctx, e.Pair.A, params.Amounts[0]); err != nil {
		return 0, err
	}
	if err := e.Deposit(ctx, e.Pair.B, params.Amounts[1]); err != nil {
		return 0, err
	}

	minted, err := e.AddLiquidity(ctx, params.MinLiquidity, params.Deadline)
	if err != nil {
		return 0, err
	}

	e.log.Info("added liquidity",
		log.Stringer("exchange", e.ID),
		log.Uint64("amount0", params.Amounts[0]),
		log.Uint64("amount1", params.Amounts[1]),
		log.Uint64("minted", minted),
	)
	return minted, nil
}
