// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"fmt"
	"math/big"

	"github.com/luxfi/ids"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/ammtest/chain"
)

// hostedContract is the execution-time state of one deployed contract.
// Which role it plays is decided by the first successful constructor or
// initialize call.
type hostedContract struct {
	id           chain.ContractID
	bytecodeRoot chain.BytecodeRoot

	exch *exchangeState
	reg  *registryState
}

// exchangeState is a constant-product exchange: per-caller deposit
// balances plus the committed reserves of its immutable asset pair.
type exchangeState struct {
	pair chain.AssetPair

	// deposits are balances credited by deposit calls but not yet
	// committed as reserves.
	deposits map[ids.ShortID]map[chain.AssetID]uint64

	reserve0    uint64
	reserve1    uint64
	totalSupply uint64
}

// registryState is the factory/registry: the exchange bytecode root it
// accepts pools from and the pair -> exchange mapping it has recorded.
type registryState struct {
	exchangeRoot chain.BytecodeRoot
	pools        map[chain.AssetPair]chain.ContractID
}

func (l *Ledger) dispatch(host *hostedContract, caller ids.ShortID, method string, args interface{}) (uint64, error) {
	switch method {
	case chain.MethodConstructor:
		a, ok := args.(*chain.ConstructorArgs)
		if !ok {
			return 0, fmt.Errorf("%w: %s: bad args", ErrUnknownMethod, method)
		}
		return 0, host.construct(a.Pair)

	case chain.MethodDeposit:
		a, ok := args.(*chain.DepositArgs)
		if !ok {
			return 0, fmt.Errorf("%w: %s: bad args", ErrUnknownMethod, method)
		}
		return 0, l.deposit(host, caller, a.Asset, a.Amount)

	case chain.MethodWithdraw:
		a, ok := args.(*chain.WithdrawArgs)
		if !ok {
			return 0, fmt.Errorf("%w: %s: bad args", ErrUnknownMethod, method)
		}
		return 0, l.withdraw(host, caller, a.Asset, a.Amount)

	case chain.MethodAddLiquidity:
		a, ok := args.(*chain.AddLiquidityArgs)
		if !ok {
			return 0, fmt.Errorf("%w: %s: bad args", ErrUnknownMethod, method)
		}
		return l.addLiquidity(host, caller, a.MinLiquidity, a.Deadline)

	case chain.MethodInitialize:
		a, ok := args.(*chain.InitializeArgs)
		if !ok {
			return 0, fmt.Errorf("%w: %s: bad args", ErrUnknownMethod, method)
		}
		return 0, host.initialize(a.ExchangeRoot)

	case chain.MethodAddPool:
		a, ok := args.(*chain.AddPoolArgs)
		if !ok {
			return 0, fmt.Errorf("%w: %s: bad args", ErrUnknownMethod, method)
		}
		return 0, l.addPool(host, a.Pair, a.Exchange)

	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// construct is single-shot: re-initialization is rejected.
func (c *hostedContract) construct(pair chain.AssetPair) error {
	if c.exch != nil {
		return fmt.Errorf("%w: exchange already constructed", chain.ErrConstructor)
	}
	c.exch = &exchangeState{
		pair:     pair,
		deposits: make(map[ids.ShortID]map[chain.AssetID]uint64),
	}
	return nil
}

func (c *hostedContract) initialize(root chain.BytecodeRoot) error {
	if c.reg != nil {
		return fmt.Errorf("%w: registry already initialized", chain.ErrConstructor)
	}
	c.reg = &registryState{
		exchangeRoot: root,
		pools:        make(map[chain.AssetPair]chain.ContractID),
	}
	return nil
}

// deposit moves caller coins into the exchange's deposit balance.
func (l *Ledger) deposit(host *hostedContract, caller ids.ShortID, asset chain.AssetID, amount uint64) error {
	if host.exch == nil {
		return errNotConstructed
	}
	if err := l.spend(caller, asset, amount); err != nil {
		return err
	}

	balances := host.exch.deposits[caller]
	if balances == nil {
		balances = make(map[chain.AssetID]uint64)
		host.exch.deposits[caller] = balances
	}
	newBalance, err := safemath.Add64(balances[asset], amount)
	if err != nil {
		return err
	}
	balances[asset] = newBalance
	return nil
}

// withdraw returns uncommitted deposit balance to the caller as a coin.
func (l *Ledger) withdraw(host *hostedContract, caller ids.ShortID, asset chain.AssetID, amount uint64) error {
	if host.exch == nil {
		return errNotConstructed
	}
	balances := host.exch.deposits[caller]
	if balances[asset] < amount {
		return fmt.Errorf("%w: asset %s: requested %d, deposited %d",
			chain.ErrInsufficientBalance,
			asset,
			amount,
			balances[asset],
		)
	}
	balances[asset] -= amount
	l.addUTXO(&chain.UTXO{
		UTXOID: l.nextUTXOID(),
		Kind:   chain.KindCoin,
		Asset:  asset,
		Amount: amount,
		Owner:  caller,
	})
	return nil
}

// addLiquidity commits the caller's deposited pair balances as reserves and
// mints liquidity tokens: the geometric mean of the deposits for a fresh
// pool, the reserve-ratio minimum afterwards. Minted tokens are paid out as
// a coin whose asset class is the exchange's own contract identity: the
// execution-time amount a variable output stands in for.
func (l *Ledger) addLiquidity(host *hostedContract, caller ids.ShortID, minLiquidity, deadline uint64) (uint64, error) {
	ex := host.exch
	if ex == nil {
		return 0, errNotConstructed
	}
	if l.height > deadline {
		return 0, fmt.Errorf("%w: deadline %d, height %d", chain.ErrDeadlineExceeded, deadline, l.height)
	}

	balances := ex.deposits[caller]
	amount0 := balances[ex.pair.A]
	amount1 := balances[ex.pair.B]
	if amount0 == 0 || amount1 == 0 {
		return 0, fmt.Errorf("%w: both pair assets must be deposited before adding liquidity",
			chain.ErrInsufficientBalance)
	}

	var minted uint64
	if ex.totalSupply == 0 {
		product := new(big.Int).Mul(
			new(big.Int).SetUint64(amount0),
			new(big.Int).SetUint64(amount1),
		)
		minted = new(big.Int).Sqrt(product).Uint64()
	} else {
		minted0 := mulDiv(amount0, ex.totalSupply, ex.reserve0)
		minted1 := mulDiv(amount1, ex.totalSupply, ex.reserve1)
		minted = min(minted0, minted1)
	}
	if minted < minLiquidity {
		return 0, fmt.Errorf("%w: minted %d, minimum %d", chain.ErrSlippageExceeded, minted, minLiquidity)
	}

	balances[ex.pair.A] = 0
	balances[ex.pair.B] = 0
	reserve0, err := safemath.Add64(ex.reserve0, amount0)
	if err != nil {
		return 0, err
	}
	reserve1, err := safemath.Add64(ex.reserve1, amount1)
	if err != nil {
		return 0, err
	}
	totalSupply, err := safemath.Add64(ex.totalSupply, minted)
	if err != nil {
		return 0, err
	}
	ex.reserve0 = reserve0
	ex.reserve1 = reserve1
	ex.totalSupply = totalSupply

	// The liquidity token's asset class is the exchange's own identity.
	l.addUTXO(&chain.UTXO{
		UTXOID: l.nextUTXOID(),
		Kind:   chain.KindCoin,
		Asset:  host.id,
		Amount: minted,
		Owner:  caller,
	})
	return minted, nil
}

// addPool records (pair -> exchange) after verifying the exchange's
// deployed bytecode root matches the one the registry was initialized
// with.
func (l *Ledger) addPool(host *hostedContract, pair chain.AssetPair, exchangeID chain.ContractID) error {
	reg := host.reg
	if reg == nil {
		return errNotInitialized
	}

	rec, err := l.getContractRecord(exchangeID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownContract, exchangeID)
	}
	if rec.BytecodeRoot != reg.exchangeRoot {
		return fmt.Errorf("%w: exchange %s has root %s, registry expects %s",
			ErrBytecodeMismatch,
			exchangeID,
			rec.BytecodeRoot,
			reg.exchangeRoot,
		)
	}

	key := pair.Canonical()
	if _, ok := reg.pools[key]; ok {
		return fmt.Errorf("pool already registered for %s", key)
	}
	reg.pools[key] = exchangeID
	return nil
}

// mulDiv computes a*b/c in 128-bit space.
func mulDiv(a, b, c uint64) uint64 {
	prod := new(big.Int).Mul(
		new(big.Int).SetUint64(a),
		new(big.Int).SetUint64(b),
	)
	return prod.Div(prod, new(big.Int).SetUint64(c)).Uint64()
}
