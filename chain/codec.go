// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

// CodecVersion is the serialization version of the chain types.
const CodecVersion = 0

// Codec marshals the chain types for persistence and contract-call
// arguments.
var Codec codec.Manager

func init() {
	Codec = codec.NewManager(math.MaxInt)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&UTXO{}),
		lc.RegisterType(&Input{}),
		lc.RegisterType(&VariableOutput{}),
		lc.RegisterType(&TransferOutput{}),
		lc.RegisterType(&DeployTx{}),
		lc.RegisterType(&ConstructorArgs{}),
		lc.RegisterType(&DepositArgs{}),
		lc.RegisterType(&WithdrawArgs{}),
		lc.RegisterType(&AddLiquidityArgs{}),
		lc.RegisterType(&InitializeArgs{}),
		lc.RegisterType(&AddPoolArgs{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}
