// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chain defines the ledger-facing data model of the AMM test
// environment and the client interface it is orchestrated through.
package chain

import "github.com/luxfi/ids"

// AssetID identifies a fungible asset class on the ledger.
type AssetID = ids.ID

// AssetPair identifies the two reserve assets of one exchange. The order is
// meaningful to the exchange itself (deposits and reserve ratios are stated
// in pair order); registries canonicalize before using a pair as a key.
type AssetPair struct {
	A AssetID `serialize:"true" json:"a"`
	B AssetID `serialize:"true" json:"b"`
}

// Canonical returns the pair with its assets sorted by byte order, so that
// (A, B) and (B, A) key the same pool. Canonicalization is applied uniformly
// at registry insert and lookup time.
func (p AssetPair) Canonical() AssetPair {
	if p.A.Compare(p.B) > 0 {
		return AssetPair{A: p.B, B: p.A}
	}
	return p
}

// Swapped reports whether canonicalizing the pair reverses its order.
func (p AssetPair) Swapped() bool {
	return p.A.Compare(p.B) > 0
}

func (p AssetPair) String() string {
	return p.A.String() + "-" + p.B.String()
}
