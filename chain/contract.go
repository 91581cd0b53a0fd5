// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "github.com/luxfi/ids"

// ContractID identifies a deployed contract instance. When a deployment
// supplies a salt, the ID is a pure function of (bytecode, storage, salt).
type ContractID = ids.ID

// BytecodeRoot is a content-derived fingerprint of a contract's raw
// bytecode, independent of its storage image or deployment salt.
type BytecodeRoot = ids.ID

// SaltLen is the length in bytes of a deployment salt.
const SaltLen = 32

// Salt disambiguates contract identities derived from identical bytecode.
type Salt [SaltLen]byte

// StorageSlot is one key/value entry of a contract's initial storage image.
type StorageSlot struct {
	Key   [32]byte `serialize:"true" json:"key"`
	Value [32]byte `serialize:"true" json:"value"`
}

// DeployTx describes a contract creation submitted to the ledger.
type DeployTx struct {
	Bytecode []byte        `serialize:"true" json:"bytecode"`
	Storage  []StorageSlot `serialize:"true" json:"storage"`
	Salt     Salt          `serialize:"true" json:"salt"`
	Deployer ids.ShortID   `serialize:"true" json:"deployer"`
}
