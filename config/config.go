// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config centralizes the compile-time circuit parameters: tree
// depths, bit widths, float encodings, and the ordered transaction-type
// list. These are the constants a proving key is generated against, so
// they must never change shape across a deployment.
package config

// Tree depths. All three trees are quad-ary: depth d addresses 4^d leaves.
const (
	TreeDepthStorage  = 7
	TreeDepthAccounts = 16
	TreeDepthTokens   = 8
)

// Bit widths for range-checked fields, named after their Loopring v3 origin.
const (
	NumBitsMaxValue         = 254
	NumBitsFieldCapacity    = 253
	NumBitsAmount           = 96
	NumBitsStorageAddress   = TreeDepthStorage * 2
	NumBitsAccount          = TreeDepthAccounts * 2
	NumBitsToken            = TreeDepthTokens * 2
	NumBitsStorageID        = 32
	NumBitsTimestamp        = 32
	NumBitsNonce            = 32
	NumBitsBips             = 12
	NumBitsBipsDA           = 6
	NumBitsProtocolFeeBips  = 8
	NumBitsType             = 8
	NumBitsTxType           = 8
	NumBitsAddress          = 160
	NumBitsHash             = 160
	NumBitsAMMBips          = 8
	NumStorageSlots         = 1 << NumBitsStorageAddress
	TxDataAvailabilitySize  = 68
	StorageIDOverwriteEpoch = 1 << NumBitsStorageAddress
)

// FloatEncoding describes a (exponent, mantissa, base) float layout used to
// compress amounts on public data.
type FloatEncoding struct {
	NumBitsExponent uint
	NumBitsMantissa uint
	ExponentBase    uint64
}

// Accuracy is a rational upper bound (num/den) on the relative loss a float
// round-trip is allowed to introduce.
type Accuracy struct {
	Numerator   uint64
	Denominator uint64
}

var (
	// Float24Encoding backs amounts: 5 exponent bits, 19 mantissa bits, base 10.
	Float24Encoding = FloatEncoding{NumBitsExponent: 5, NumBitsMantissa: 19, ExponentBase: 10}
	// Float16Encoding backs fees: 5 exponent bits, 11 mantissa bits, base 10.
	Float16Encoding = FloatEncoding{NumBitsExponent: 5, NumBitsMantissa: 11, ExponentBase: 10}

	// Float24Accuracy is 99998/100000.
	Float24Accuracy = Accuracy{Numerator: 100000 - 2, Denominator: 100000}
	// Float16Accuracy is 995/1000.
	Float16Accuracy = Accuracy{Numerator: 1000 - 5, Denominator: 1000}
)

// MaxAmountDecimal is 2^96 - 1 in decimal, the largest value representable in a U96 balance.
const MaxAmountDecimal = "79228162514264337593543950335"

// TxType enumerates the ordered transaction kinds the selector multiplexes
// over. The order is load-bearing: it is the same order SelectTransaction
// feeds to its one-hot selector and must match the type field on the wire.
type TxType uint8

const (
	TxNoop TxType = iota
	TxDeposit
	TxWithdrawal
	TxTransfer
	TxSpotTrade
	TxAccountUpdate
	TxAMMUpdate
	TxSignatureVerification
	TxNFTMint
	TxNFTData
	TxTypeCount
)

// WithdrawalType selects one of the four withdrawal shapes §4.9 describes.
type WithdrawalType uint8

const (
	WithdrawalUser WithdrawalType = iota
	WithdrawalConditional
	WithdrawalValidFull
	WithdrawalInvalidFull
)

// Reserved account indices.
const (
	ProtocolFeeAccountID = 0
	DefaultAccountID     = 1
)

// Fill-rate and fee-division constants (§4.7, §4.8). FillRateNumerator/
// FillRateDenominator bound the slippage the circuit accepts between an
// order's declared rate and its actual fill rate; ProtocolFeeDivisor/
// FeeDivisor are the fixed-point denominators protocol and trading fees are
// expressed against (matching Loopring v3's 10^5/10^4 bips scaling).
const (
	FillRateNumerator   = 1000
	FillRateDenominator = 1001
	ProtocolFeeDivisor  = 100000
	FeeDivisor          = 10000
)
