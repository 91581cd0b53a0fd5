// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"context"
	"fmt"

	"github.com/luxfi/ammtest/chain"
)

const (
	// DefaultDepositAmount seeds each side of a fresh pool when the caller
	// does not override the amounts.
	DefaultDepositAmount uint64 = 100_000

	// DefaultDeadlineLookahead is how many blocks past the latest height a
	// default liquidity deadline is set. Generous so the call does not
	// expire under test-network latency.
	DefaultDeadlineLookahead uint64 = 10
)

// LiquidityParameters is a value object constructed fresh per
// add-liquidity call.
type LiquidityParameters struct {
	// Amounts to deposit, one per asset in pair order.
	Amounts [2]uint64

	// MinLiquidity is the minimum acceptable liquidity-token output.
	MinLiquidity uint64

	// Deadline is the block height bound the addition must execute by.
	Deadline uint64
}

// WithDefaults fills the zero fields of p with the documented defaults:
// deposits of DefaultDepositAmount per side, a deadline of the latest block
// height plus DefaultDeadlineLookahead, and a minimum liquidity equal to
// the smaller deposit, a simple non-zero slippage guard for a fresh pool.
func (p LiquidityParameters) WithDefaults(ctx context.Context, ledger chain.Ledger) (LiquidityParameters, error) {
	if p.Amounts[0] == 0 {
		p.Amounts[0] = DefaultDepositAmount
	}
	if p.Amounts[1] == 0 {
		p.Amounts[1] = DefaultDepositAmount
	}
	if p.Deadline == 0 {
		height, err := ledger.LatestBlockHeight(ctx)
		if err != nil {
			return p, fmt.Errorf("reading block height for liquidity deadline: %w", err)
		}
		p.Deadline = height + DefaultDeadlineLookahead
	}
	if p.MinLiquidity == 0 {
		p.MinLiquidity = min(p.Amounts[0], p.Amounts[1])
	}
	return p, nil
}
