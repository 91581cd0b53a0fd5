// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"

	"github.com/luxfi/ids"
)

// Error taxonomy shared by every package of the harness. All failures are
// terminal for the operation that raised them; nothing in this layer retries.
var (
	ErrDeployment              = errors.New("ledger rejected contract deployment")
	ErrConstructor             = errors.New("constructor rejected")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrDeadlineExceeded        = errors.New("deadline exceeded")
	ErrSlippageExceeded        = errors.New("slippage exceeded")
	ErrUnsupportedResourceKind = errors.New("unsupported resource kind")
)

// ContractCall is one invocation of a deployed contract's method. Args is
// the codec-marshaled, method-specific argument struct.
type ContractCall struct {
	Contract ContractID  `serialize:"true" json:"contract"`
	Caller   ids.ShortID `serialize:"true" json:"caller"`
	Method   string      `serialize:"true" json:"method"`
	Args     []byte      `serialize:"true" json:"args"`
}

// Method names of the contracts this harness drives.
const (
	MethodConstructor  = "constructor"
	MethodDeposit      = "deposit"
	MethodWithdraw     = "withdraw"
	MethodAddLiquidity = "add_liquidity"
	MethodInitialize   = "initialize"
	MethodAddPool      = "add_pool"
)

// ConstructorArgs establishes the immutable asset pair of an exchange.
type ConstructorArgs struct {
	Pair AssetPair `serialize:"true" json:"pair"`
}

// DepositArgs credits coins of one asset to the caller inside an exchange.
type DepositArgs struct {
	Asset  AssetID `serialize:"true" json:"asset"`
	Amount uint64  `serialize:"true" json:"amount"`
}

// WithdrawArgs reclaims deposited but not yet committed coins.
type WithdrawArgs struct {
	Asset  AssetID `serialize:"true" json:"asset"`
	Amount uint64  `serialize:"true" json:"amount"`
}

// AddLiquidityArgs commits the caller's deposited balances as reserves.
type AddLiquidityArgs struct {
	MinLiquidity uint64 `serialize:"true" json:"minLiquidity"`
	Deadline     uint64 `serialize:"true" json:"deadline"`
}

// InitializeArgs records the bytecode root a registry demands of exchanges.
type InitializeArgs struct {
	ExchangeRoot BytecodeRoot `serialize:"true" json:"exchangeRoot"`
}

// AddPoolArgs registers an exchange identity under an asset pair.
type AddPoolArgs struct {
	Pair     AssetPair  `serialize:"true" json:"pair"`
	Exchange ContractID `serialize:"true" json:"exchange"`
}

// Ledger is the client surface of the external ledger this harness
// orchestrates. Implementations own transport concerns entirely; timeouts
// and cancellation ride on the context.
type Ledger interface {
	// Deploy creates a contract from bytecode plus its initial storage
	// image. The returned identity is a pure function of (bytecode,
	// storage, salt) so that salted redeployment is idempotent.
	Deploy(ctx context.Context, tx *DeployTx) (ContractID, error)

	// Invoke executes a method of a deployed contract and returns its
	// numeric result, if any.
	Invoke(ctx context.Context, call *ContractCall) (uint64, error)

	// IssueTx submits a signed transaction assembled from explicit inputs
	// and outputs.
	IssueTx(ctx context.Context, params *TransactionParameters) (ids.ID, error)

	// SpendableResources selects unspent resources owned by owner covering
	// at least amount of asset.
	SpendableResources(ctx context.Context, owner ids.ShortID, asset AssetID, amount uint64) ([]*UTXO, error)

	// LatestBlockHeight returns the ledger's current block height.
	LatestBlockHeight(ctx context.Context) (uint64, error)
}
