// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// FloatGadget decodes a (mantissa, exponent) bit-packed float into an
// integer value: decode(f) = mantissa · base^exponent, computed by
// repeated squaring over the exponent's bits exactly as the mantissa/
// exponent split in config.FloatEncoding describes. The bit layout is
// little-endian: bits[0:NumBitsMantissa) is the mantissa, the remaining
// high bits are the exponent.
type FloatGadget struct {
	Encoding config.FloatEncoding
	BitsVar  []protoboard.Variable
	ValueVar protoboard.Variable
}

// NewFloatGadget allocates the float's bit array and decoded value and
// records the constraint binding them together.
func NewFloatGadget(s *protoboard.System, enc config.FloatEncoding, name string) *FloatGadget {
	width := int(enc.NumBitsExponent + enc.NumBitsMantissa)
	bits := s.AllocateArray(name+".bits", width)
	for _, b := range bits {
		s.RequireBoolean(name+".bitness", b)
	}
	value := s.Allocate(name + ".value")

	g := &FloatGadget{Encoding: enc, BitsVar: bits, ValueVar: value}
	s.AddConstraint(name+".decode", func(s *protoboard.System) error {
		decoded := g.decodeFromWitness(s)
		var want fr.Element
		want.SetBigInt(decoded)
		got := s.Value(value)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return g
}

func (g *FloatGadget) decodeFromWitness(s *protoboard.System) *big.Int {
	mantBits := int(g.Encoding.NumBitsMantissa)
	mantissa := new(big.Int)
	for i := mantBits - 1; i >= 0; i-- {
		mantissa.Lsh(mantissa, 1)
		if !s.Value(g.BitsVar[i]).IsZero() {
			mantissa.SetBit(mantissa, 0, 1)
		}
	}
	exponent := 0
	for i := 0; i < int(g.Encoding.NumBitsExponent); i++ {
		if !s.Value(g.BitsVar[mantBits+i]).IsZero() {
			exponent |= 1 << uint(i)
		}
	}
	base := new(big.Int).SetUint64(g.Encoding.ExponentBase)
	multiplier := new(big.Int).Exp(base, big.NewInt(int64(exponent)), nil)
	return mantissa.Mul(mantissa, multiplier)
}

// Fill assigns the witness from a raw packed bit pattern (low mantissa
// bits, high exponent bits) as produced by Encode.
func (g *FloatGadget) Fill(s *protoboard.System, packed uint64) {
	for i, b := range g.BitsVar {
		s.SetUint64(b, (packed>>uint(i))&1)
	}
	decoded := g.decodeFromWitness(s)
	var v fr.Element
	v.SetBigInt(decoded)
	s.Set(g.ValueVar, v)
}

// Decode interprets a raw bit pattern directly, without touching a System.
func Decode(enc config.FloatEncoding, packed uint64) *uint256.Int {
	mantMask := uint64(1)<<enc.NumBitsMantissa - 1
	mantissa := packed & mantMask
	exponent := packed >> enc.NumBitsMantissa
	base := new(big.Int).SetUint64(enc.ExponentBase)
	multiplier := new(big.Int).Exp(base, new(big.Int).SetUint64(exponent), nil)
	result := new(big.Int).Mul(new(big.Int).SetUint64(mantissa), multiplier)
	out, _ := uint256.FromBig(result)
	return out
}

// Encode round-downs value to the largest representable float whose
// decoded value does not exceed it, scanning exponents from 0 up and
// picking the exponent/mantissa pair with the largest decode(f) ≤ value —
// mirroring the "round down, bounded relative error" contract in §4.1.
func Encode(enc config.FloatEncoding, value *uint256.Int) uint64 {
	maxMantissa := new(big.Int).Lsh(big.NewInt(1), enc.NumBitsMantissa)
	maxMantissa.Sub(maxMantissa, big.NewInt(1))
	maxExponent := uint64(1)<<enc.NumBitsExponent - 1

	valueBig := new(big.Int)
	value.ToBig(valueBig)

	base := new(big.Int).SetUint64(enc.ExponentBase)
	var bestPacked uint64
	bestDecoded := new(big.Int)

	power := big.NewInt(1)
	for exponent := uint64(0); exponent <= maxExponent; exponent++ {
		if exponent > 0 {
			power.Mul(power, base)
		}
		if power.Cmp(valueBig) > 0 {
			break
		}
		mantissa := new(big.Int).Div(valueBig, power)
		if mantissa.Cmp(maxMantissa) > 0 {
			mantissa.Set(maxMantissa)
		}
		decoded := new(big.Int).Mul(mantissa, power)
		if decoded.Cmp(bestDecoded) > 0 {
			bestDecoded.Set(decoded)
			bestPacked = mantissa.Uint64() | (exponent << enc.NumBitsMantissa)
		}
	}
	return bestPacked
}
