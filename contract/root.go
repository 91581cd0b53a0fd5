// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract computes contract bytecode roots and deploys contract
// artifacts with deterministic identities.
package contract

import (
	"errors"
	"fmt"

	"github.com/luxfi/ammtest/chain"
	"github.com/luxfi/ammtest/utils/hashing"
)

// ErrMalformedBytecode is returned when bytes cannot be parsed as a
// contract image.
var ErrMalformedBytecode = errors.New("malformed contract bytecode")

const (
	// instructionLen is the width of one VM instruction. Bytecode that is
	// not a whole number of instructions is not a contract image.
	instructionLen = 4

	// leafLen is the chunk size the bytecode is split into before hashing.
	leafLen = 16 * 1024

	leafPrefix = 0x00
	nodePrefix = 0x01
)

// ComputeRoot returns the content-derived fingerprint of a contract's raw
// bytecode: the root of a binary SHA-256 merkle tree over fixed-size
// chunks. It is a pure function of the bytes, independent of any storage
// image or deployment salt, and is used to assert that a deployed instance
// runs exactly a known-good binary.
func ComputeRoot(bytecode []byte) (chain.BytecodeRoot, error) {
	if len(bytecode) == 0 {
		return chain.BytecodeRoot{}, fmt.Errorf("%w: empty", ErrMalformedBytecode)
	}
	if len(bytecode)%instructionLen != 0 {
		return chain.BytecodeRoot{}, fmt.Errorf("%w: length %d is not a multiple of the instruction width %d",
			ErrMalformedBytecode,
			len(bytecode),
			instructionLen,
		)
	}

	var level [][hashing.HashLen]byte
	for start := 0; start < len(bytecode); start += leafLen {
		end := min(start+leafLen, len(bytecode))
		level = append(level, hashLeaf(bytecode[start:end]))
	}

	for len(level) > 1 {
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				// Odd node on this level is promoted as-is.
				next = append(next, level[i])
				continue
			}
			next = append(next, hashNode(level[i], level[i+1]))
		}
		level = next
	}
	return chain.BytecodeRoot(level[0]), nil
}

func hashLeaf(chunk []byte) [hashing.HashLen]byte {
	buf := make([]byte, 0, 1+len(chunk))
	buf = append(buf, leafPrefix)
	buf = append(buf, chunk...)
	return hashing.ComputeHash256Array(buf)
}

func hashNode(left, right [hashing.HashLen]byte) [hashing.HashLen]byte {
	buf := make([]byte, 0, 1+2*hashing.HashLen)
	buf = append(buf, nodePrefix)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return hashing.ComputeHash256Array(buf)
}
