// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// DualVariable pairs a field element with its little-endian bit
// decomposition. It keeps no flag recording whether the witness was filled
// from the packed value or from the bits. Packing is enforced by Σ bit_i·2^i = packed, and every bit is
// constrained to {0,1}.
type DualVariable struct {
	Packed protoboard.Variable
	Bits   []protoboard.Variable
	Width  int
}

// NewDualVariable allocates a packed variable and its width-bit
// decomposition and records the packing + bitness constraints.
func NewDualVariable(s *protoboard.System, width int, name string) *DualVariable {
	packed := s.Allocate(name + ".packed")
	bits := s.AllocateArray(name+".bits", width)
	for _, b := range bits {
		s.RequireBoolean(name+".bitness", b)
	}
	s.AddConstraint(name+".packing", func(s *protoboard.System) error {
		sum := packBits(s, bits)
		got := s.Value(packed)
		if !got.Equal(&sum) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &DualVariable{Packed: packed, Bits: bits, Width: width}
}

func packBits(s *protoboard.System, bits []protoboard.Variable) fr.Element {
	var sum fr.Element
	var weight fr.Element
	weight.SetOne()
	var two fr.Element
	two.SetUint64(2)
	for _, b := range bits {
		val := s.Value(b)
		var term fr.Element
		term.Mul(&val, &weight)
		sum.Add(&sum, &term)
		weight.Mul(&weight, &two)
	}
	return sum
}

// FillFromUint64 fills the witness from a packed unsigned integer value,
// decomposing it into bits little-endian.
func (d *DualVariable) FillFromUint64(s *protoboard.System, val uint64) {
	var e fr.Element
	e.SetUint64(val)
	s.Set(d.Packed, e)
	for i, b := range d.Bits {
		bit := (val >> uint(i)) & 1
		s.SetUint64(b, bit)
	}
}

// FillFromUint256 fills the witness from a bounded-width uint256 value,
// used for U96 balances and other fields wider than 64 bits.
func (d *DualVariable) FillFromUint256(s *protoboard.System, val *uint256.Int) {
	var bi big.Int
	val.ToBig(&bi)
	var e fr.Element
	e.SetBigInt(&bi)
	s.Set(d.Packed, e)
	for i, b := range d.Bits {
		s.SetUint64(b, uint64(val.Bit(i)))
	}
}

// FillFromFieldElement fills the witness from a field element directly,
// decomposing its canonical bit representation.
func (d *DualVariable) FillFromFieldElement(s *protoboard.System, val fr.Element) {
	s.Set(d.Packed, val)
	bi := new(big.Int)
	val.BigInt(bi)
	for i, b := range d.Bits {
		s.SetUint64(b, uint64(bi.Bit(i)))
	}
}

// Uint256Value reconstructs the packed value as a uint256.Int from the
// current witness, for use by downstream bounded-width arithmetic.
func (d *DualVariable) Uint256Value(s *protoboard.System) *uint256.Int {
	v := s.Value(d.Packed)
	bi := new(big.Int)
	v.BigInt(bi)
	out := new(uint256.Int)
	out.SetFromBig(bi)
	return out
}
