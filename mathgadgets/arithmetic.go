// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mathgadgets collects the small arithmetic, boolean, comparison,
// and selection gadgets every higher-level circuit (orders, transactions,
// Merkle updates) composes from. Each gadget follows the two-phase
// protoboard pattern: a constructor allocates the output variable(s) and
// records the constraint binding them to the inputs, and a Fill method
// computes the concrete witness value.
package mathgadgets

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

func bigOf(s *protoboard.System, v protoboard.Variable) *big.Int {
	e := s.Value(v)
	bi := new(big.Int)
	e.BigInt(bi)
	return bi
}

func setBig(s *protoboard.System, v protoboard.Variable, bi *big.Int) {
	var e fr.Element
	e.SetBigInt(bi)
	s.Set(v, e)
}

// AddGadget computes sum = a + b, range-checked to maxBits so the addition
// cannot wrap the field modulus unnoticed.
type AddGadget struct {
	A, B, Sum protoboard.Variable
	MaxBits   int
}

// NewAddGadget allocates Sum and records sum == a + b plus a maxBits range
// check on the result.
func NewAddGadget(s *protoboard.System, a, b protoboard.Variable, maxBits int, name string) *AddGadget {
	sum := s.Allocate(name + ".sum")
	g := &AddGadget{A: a, B: b, Sum: sum, MaxBits: maxBits}
	s.AddConstraint(name+".add", func(s *protoboard.System) error {
		want := new(big.Int).Add(bigOf(s, a), bigOf(s, b))
		if bigOf(s, sum).Cmp(want) != 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	s.AddConstraint(name+".range", func(s *protoboard.System) error {
		return requireBits(bigOf(s, sum), maxBits)
	})
	return g
}

// Fill computes sum = a + b from the current witness.
func (g *AddGadget) Fill(s *protoboard.System) {
	sum := new(big.Int).Add(bigOf(s, g.A), bigOf(s, g.B))
	setBig(s, g.Sum, sum)
}

// SubGadget computes diff = a - b and requires a >= b so the subtraction
// never underflows into a field-wraparound value.
type SubGadget struct {
	A, B, Diff protoboard.Variable
	MaxBits    int
}

// NewSubGadget allocates Diff and records diff == a - b, a >= b, and a
// maxBits range check on the result.
func NewSubGadget(s *protoboard.System, a, b protoboard.Variable, maxBits int, name string) *SubGadget {
	diff := s.Allocate(name + ".diff")
	g := &SubGadget{A: a, B: b, Diff: diff, MaxBits: maxBits}
	s.AddConstraint(name+".sub", func(s *protoboard.System) error {
		av, bv := bigOf(s, a), bigOf(s, b)
		if av.Cmp(bv) < 0 {
			return protoboard.ErrUnsatisfied
		}
		want := new(big.Int).Sub(av, bv)
		if bigOf(s, diff).Cmp(want) != 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	s.AddConstraint(name+".range", func(s *protoboard.System) error {
		return requireBits(bigOf(s, diff), maxBits)
	})
	return g
}

// Fill computes diff = a - b from the current witness.
func (g *SubGadget) Fill(s *protoboard.System) {
	diff := new(big.Int).Sub(bigOf(s, g.A), bigOf(s, g.B))
	setBig(s, g.Diff, diff)
}

// MulGadget computes product = a * b, range-checked to maxBits.
type MulGadget struct {
	A, B, Product protoboard.Variable
	MaxBits       int
}

// NewMulGadget allocates Product and records product == a * b plus a
// maxBits range check.
func NewMulGadget(s *protoboard.System, a, b protoboard.Variable, maxBits int, name string) *MulGadget {
	product := s.Allocate(name + ".product")
	g := &MulGadget{A: a, B: b, Product: product, MaxBits: maxBits}
	s.AddConstraint(name+".mul", func(s *protoboard.System) error {
		want := new(big.Int).Mul(bigOf(s, a), bigOf(s, b))
		if bigOf(s, product).Cmp(want) != 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	s.AddConstraint(name+".range", func(s *protoboard.System) error {
		return requireBits(bigOf(s, product), maxBits)
	})
	return g
}

// Fill computes product = a * b from the current witness.
func (g *MulGadget) Fill(s *protoboard.System) {
	product := new(big.Int).Mul(bigOf(s, g.A), bigOf(s, g.B))
	setBig(s, g.Product, product)
}

func requireBits(v *big.Int, maxBits int) error {
	if v.Sign() < 0 || v.BitLen() > maxBits {
		return protoboard.ErrUnsatisfied
	}
	return nil
}

// MulDivGadget computes value * numerator / denominator, truncating, and is
// used for fee and fill-amount calculations that scale an amount by a
// basis-point ratio.
type MulDivGadget struct {
	Value, Numerator, Denominator, Result protoboard.Variable
	MaxBits                               int
}

// NewMulDivGadget allocates Result and records result == floor(value *
// numerator / denominator), with denominator required nonzero.
func NewMulDivGadget(s *protoboard.System, value, numerator, denominator protoboard.Variable, maxBits int, name string) *MulDivGadget {
	result := s.Allocate(name + ".result")
	g := &MulDivGadget{Value: value, Numerator: numerator, Denominator: denominator, Result: result, MaxBits: maxBits}
	s.AddConstraint(name+".denomNonzero", func(s *protoboard.System) error {
		if bigOf(s, denominator).Sign() == 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	s.AddConstraint(name+".muldiv", func(s *protoboard.System) error {
		product := new(big.Int).Mul(bigOf(s, value), bigOf(s, numerator))
		want := new(big.Int).Div(product, bigOf(s, denominator))
		if bigOf(s, result).Cmp(want) != 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	s.AddConstraint(name+".range", func(s *protoboard.System) error {
		return requireBits(bigOf(s, result), maxBits)
	})
	return g
}

// Fill computes result = floor(value * numerator / denominator).
func (g *MulDivGadget) Fill(s *protoboard.System) {
	product := new(big.Int).Mul(bigOf(s, g.Value), bigOf(s, g.Numerator))
	result := new(big.Int).Div(product, bigOf(s, g.Denominator))
	setBig(s, g.Result, result)
}
