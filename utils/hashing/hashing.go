// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hashing provides the SHA-256 helpers used to derive
// content-addressed identifiers.
package hashing

import (
	"crypto/sha256"

	"github.com/luxfi/ids"
)

// HashLen is the length in bytes of a SHA-256 digest.
const HashLen = sha256.Size

// ComputeHash256 returns the SHA-256 digest of buf.
func ComputeHash256(buf []byte) []byte {
	h := ComputeHash256Array(buf)
	return h[:]
}

// ComputeHash256Array returns the SHA-256 digest of buf as an ID.
func ComputeHash256Array(buf []byte) ids.ID {
	return ids.ID(sha256.Sum256(buf))
}
