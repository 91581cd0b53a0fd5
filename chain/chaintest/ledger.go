// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chaintest provides an in-process ledger for exercising the
// harness without a network: deterministic contract addressing, a
// persistent UTXO set, and hosted exchange/registry contract semantics.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/ammtest/chain"
	"github.com/luxfi/ammtest/contract"
	"github.com/luxfi/ammtest/utils/hashing"
)

var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrUnknownMethod   = errors.New("unknown contract method")
	ErrUnknownInput    = errors.New("transaction spends unknown input")

	// ErrBytecodeMismatch is the registry contract's defense against
	// exchanges whose deployed code differs from the root it was
	// initialized with.
	ErrBytecodeMismatch = errors.New("exchange bytecode root mismatch")

	errNotConstructed = errors.New("exchange not constructed")
	errNotInitialized = errors.New("registry not initialized")

	utxoPrefix     = []byte("utxo")
	contractPrefix = []byte("contract")

	// contractSeed domain-separates contract identities from other
	// SHA-256 derived IDs.
	contractSeed = []byte("ammtest/contract/v1")
)

// contractRecord is the persisted identity of a deployed contract.
type contractRecord struct {
	BytecodeRoot ids.ID     `serialize:"true"`
	StorageRoot  ids.ID     `serialize:"true"`
	Salt         chain.Salt `serialize:"true"`
}

// Ledger is an in-memory chain.Ledger. One mutex serializes every
// operation; each accepted operation advances the block height by one, the
// way a test network with instant blocks does.
type Ledger struct {
	lock sync.Mutex
	log  log.Logger

	baseDB      database.Database
	utxoDB      database.Database
	contractDB  database.Database
	utxoCounter uint64
	height      uint64

	// Execution-time contract state. Identity and code live in contractDB;
	// this is the mutable state the hosted methods operate on.
	hosted map[chain.ContractID]*hostedContract
}

// New returns an empty ledger at height 1.
func New(logger log.Logger) *Ledger {
	baseDB := memdb.New()
	return &Ledger{
		log:        logger,
		baseDB:     baseDB,
		utxoDB:     prefixdb.New(utxoPrefix, baseDB),
		contractDB: prefixdb.New(contractPrefix, baseDB),
		height:     1,
		hosted:     make(map[chain.ContractID]*hostedContract),
	}
}

// FundAddress seeds the UTXO set with numAssets fresh asset classes, each
// as coinsPerAsset coins of amountPerCoin owned by addr, and returns the
// generated asset IDs in creation order.
func (l *Ledger) FundAddress(addr ids.ShortID, numAssets, coinsPerAsset int, amountPerCoin uint64) []chain.AssetID {
	l.lock.Lock()
	defer l.lock.Unlock()

	assets := make([]chain.AssetID, 0, numAssets)
	for i := 0; i < numAssets; i++ {
		asset := ids.GenerateTestID()
		assets = append(assets, asset)
		for j := 0; j < coinsPerAsset; j++ {
			l.addUTXO(&chain.UTXO{
				UTXOID: l.nextUTXOID(),
				Kind:   chain.KindCoin,
				Asset:  asset,
				Amount: amountPerCoin,
				Owner:  addr,
			})
		}
	}
	l.height++
	return assets
}

// AddResource injects an arbitrary resource into the set. Tests use it to
// present resource kinds the harness should refuse to spend.
func (l *Ledger) AddResource(utxo *chain.UTXO) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if utxo.TxID == ids.Empty {
		utxo.UTXOID = l.nextUTXOID()
	}
	l.addUTXO(utxo)
}

// Deploy derives the contract identity from (bytecode, storage, salt) and
// records the contract. Re-deploying an identical triple is idempotent at
// the identity level; it still advances the height, the call is not free.
func (l *Ledger) Deploy(ctx context.Context, tx *chain.DeployTx) (chain.ContractID, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	root, err := contract.ComputeRoot(tx.Bytecode)
	if err != nil {
		return ids.Empty, err
	}
	storageBytes, err := chain.Codec.Marshal(chain.CodecVersion, &tx.Storage)
	if err != nil {
		return ids.Empty, fmt.Errorf("marshaling storage image: %w", err)
	}
	storageRoot := hashing.ComputeHash256Array(storageBytes)
	contractID := deriveContractID(root, storageRoot, tx.Salt)

	l.height++
	if have, err := l.getContractRecord(contractID); err == nil {
		if have.BytecodeRoot != root || have.StorageRoot != storageRoot {
			return ids.Empty, fmt.Errorf("identity %s already occupied by incompatible code", contractID)
		}
		// Same triple, same identity.
		return contractID, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return ids.Empty, err
	}

	rec := &contractRecord{
		BytecodeRoot: root,
		StorageRoot:  storageRoot,
		Salt:         tx.Salt,
	}
	recBytes, err := chain.Codec.Marshal(chain.CodecVersion, rec)
	if err != nil {
		return ids.Empty, fmt.Errorf("marshaling contract record: %w", err)
	}
	if err := l.contractDB.Put(contractID[:], recBytes); err != nil {
		return ids.Empty, err
	}
	l.hosted[contractID] = &hostedContract{
		id:           contractID,
		bytecodeRoot: root,
	}

	l.log.Debug("contract deployed",
		log.Stringer("contractID", contractID),
		log.Stringer("bytecodeRoot", root),
	)
	return contractID, nil
}

// Invoke dispatches a contract call to the hosted semantics.
func (l *Ledger) Invoke(ctx context.Context, call *chain.ContractCall) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	host, ok := l.hosted[call.Contract]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownContract, call.Contract)
	}

	var args interface{}
	if _, err := chain.Codec.Unmarshal(call.Args, &args); err != nil {
		return 0, fmt.Errorf("unmarshaling %s args: %w", call.Method, err)
	}

	l.height++
	return l.dispatch(host, call.Caller, call.Method, args)
}

// IssueTx consumes the transaction's inputs and credits its fixed outputs.
// Variable outputs are placeholders; the hosted contract calls that mint
// into them pay out directly instead.
func (l *Ledger) IssueTx(ctx context.Context, params *chain.TransactionParameters) (ids.ID, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for _, in := range params.Inputs {
		inputID := in.InputID()
		if has, err := l.utxoDB.Has(inputID[:]); err != nil {
			return ids.Empty, err
		} else if !has {
			return ids.Empty, fmt.Errorf("%w: %s", ErrUnknownInput, inputID)
		}
	}

	txBytes, err := chain.Codec.Marshal(chain.CodecVersion, params)
	if err != nil {
		return ids.Empty, fmt.Errorf("marshaling transaction: %w", err)
	}
	txID := hashing.ComputeHash256Array(txBytes)

	for _, in := range params.Inputs {
		inputID := in.InputID()
		if err := l.utxoDB.Delete(inputID[:]); err != nil {
			return ids.Empty, err
		}
	}
	for i, out := range params.Outputs {
		transfer, ok := out.(*chain.TransferOutput)
		if !ok {
			continue
		}
		l.addUTXO(&chain.UTXO{
			UTXOID: chain.UTXOID{TxID: txID, OutputIndex: uint32(i)},
			Kind:   chain.KindCoin,
			Asset:  transfer.Asset,
			Amount: transfer.Amount,
			Owner:  transfer.To,
		})
	}

	l.height++
	return txID, nil
}

// SpendableResources selects resources owned by owner covering amount of
// asset, accumulating in stable key order. Reports ErrInsufficientFunds
// with the requested and available totals when no sufficient selection
// exists.
func (l *Ledger) SpendableResources(
	ctx context.Context,
	owner ids.ShortID,
	asset chain.AssetID,
	amount uint64,
) ([]*chain.UTXO, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	utxos, err := l.ownedUTXOs(owner, asset)
	if err != nil {
		return nil, err
	}

	selected := []*chain.UTXO{}
	var total uint64
	for _, utxo := range utxos {
		if total >= amount {
			break
		}
		selected = append(selected, utxo)
		total, err = safemath.Add64(total, utxo.Amount)
		if err != nil {
			return nil, err
		}
	}
	if total < amount {
		return nil, fmt.Errorf("%w: asset %s: requested %d, available %d",
			chain.ErrInsufficientFunds,
			asset,
			amount,
			total,
		)
	}
	return selected, nil
}

// LatestBlockHeight returns the current height.
func (l *Ledger) LatestBlockHeight(ctx context.Context) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.height, nil
}

// BytecodeRootOf returns the recorded bytecode root of a deployed
// contract.
func (l *Ledger) BytecodeRootOf(contractID chain.ContractID) (chain.BytecodeRoot, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	rec, err := l.getContractRecord(contractID)
	if err != nil {
		return ids.Empty, err
	}
	return rec.BytecodeRoot, nil
}

// Reserves returns the committed reserves of a constructed exchange, in
// pair order.
func (l *Ledger) Reserves(contractID chain.ContractID) (uint64, uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	host, ok := l.hosted[contractID]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownContract, contractID)
	}
	if host.exch == nil {
		return 0, 0, errNotConstructed
	}
	return host.exch.reserve0, host.exch.reserve1, nil
}

// Balance sums the owner's unspent coins of asset.
func (l *Ledger) Balance(owner ids.ShortID, asset chain.AssetID) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	utxos, err := l.ownedUTXOs(owner, asset)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, utxo := range utxos {
		total, err = safemath.Add64(total, utxo.Amount)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

func deriveContractID(root, storageRoot ids.ID, salt chain.Salt) chain.ContractID {
	buf := make([]byte, 0, len(contractSeed)+2*hashing.HashLen+chain.SaltLen)
	buf = append(buf, contractSeed...)
	buf = append(buf, root[:]...)
	buf = append(buf, storageRoot[:]...)
	buf = append(buf, salt[:]...)
	return hashing.ComputeHash256Array(buf)
}

func (l *Ledger) getContractRecord(contractID chain.ContractID) (*contractRecord, error) {
	recBytes, err := l.contractDB.Get(contractID[:])
	if err != nil {
		return nil, err
	}
	rec := &contractRecord{}
	if _, err := chain.Codec.Unmarshal(recBytes, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (l *Ledger) nextUTXOID() chain.UTXOID {
	l.utxoCounter++
	var seed [8]byte
	for i := 0; i < 8; i++ {
		seed[i] = byte(l.utxoCounter >> (8 * (7 - i)))
	}
	return chain.UTXOID{
		TxID:        hashing.ComputeHash256Array(seed[:]),
		OutputIndex: 0,
	}
}

func (l *Ledger) addUTXO(utxo *chain.UTXO) {
	utxoBytes, err := chain.Codec.Marshal(chain.CodecVersion, utxo)
	if err != nil {
		// Marshaling a well-formed UTXO cannot fail.
		panic(err)
	}
	inputID := utxo.InputID()
	if err := l.utxoDB.Put(inputID[:], utxoBytes); err != nil {
		panic(err)
	}
}

// ownedUTXOs returns owner's unspent coins of asset in key order.
func (l *Ledger) ownedUTXOs(owner ids.ShortID, asset chain.AssetID) ([]*chain.UTXO, error) {
	iter := l.utxoDB.NewIterator()
	defer iter.Release()

	var utxos []*chain.UTXO
	for iter.Next() {
		utxo := &chain.UTXO{}
		if _, err := chain.Codec.Unmarshal(iter.Value(), utxo); err != nil {
			return nil, err
		}
		if utxo.Owner != owner || utxo.Asset != asset {
			continue
		}
		utxos = append(utxos, utxo)
	}
	return utxos, iter.Error()
}

// spend consumes owner's coins of asset until amount is covered, returning
// change as a fresh UTXO. Used by the hosted deposit method.
func (l *Ledger) spend(owner ids.ShortID, asset chain.AssetID, amount uint64) error {
	utxos, err := l.ownedUTXOs(owner, asset)
	if err != nil {
		return err
	}

	var available uint64
	for _, utxo := range utxos {
		available, err = safemath.Add64(available, utxo.Amount)
		if err != nil {
			return err
		}
	}
	if available < amount {
		return fmt.Errorf("%w: asset %s: requested %d, available %d",
			chain.ErrInsufficientBalance,
			asset,
			amount,
			available,
		)
	}

	var spent uint64
	for _, utxo := range utxos {
		if spent >= amount {
			break
		}
		inputID := utxo.InputID()
		if err := l.utxoDB.Delete(inputID[:]); err != nil {
			return err
		}
		spent, err = safemath.Add64(spent, utxo.Amount)
		if err != nil {
			return err
		}
	}
	if change := spent - amount; change > 0 {
		l.addUTXO(&chain.UTXO{
			UTXOID: l.nextUTXOID(),
			Kind:   chain.KindCoin,
			Asset:  asset,
			Amount: change,
			Owner:  owner,
		})
	}
	return nil
}
