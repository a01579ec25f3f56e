// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mathgadgets

import (
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// LeqGadget computes result = (a <= b), comparing canonical field
// representatives as unsigned integers. Both operands must already be
// range-checked by the caller to a width where that representative equals
// the intended unsigned value.
type LeqGadget struct {
	A, B, Result protoboard.Variable
}

// NewLeqGadget allocates Result and records it as the a<=b indicator.
func NewLeqGadget(s *protoboard.System, a, b protoboard.Variable, name string) *LeqGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".leq", func(s *protoboard.System) error {
		want := bigOf(s, a).Cmp(bigOf(s, b)) <= 0
		if isTrue(s, result) != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &LeqGadget{A: a, B: b, Result: result}
}

// Fill computes result = (a <= b).
func (g *LeqGadget) Fill(s *protoboard.System) {
	setBool(s, g.Result, bigOf(s, g.A).Cmp(bigOf(s, g.B)) <= 0)
}

// RequireLeq records that a must be <= b, without allocating an indicator
// variable — used where only the boolean fact matters, not its value.
func RequireLeq(s *protoboard.System, a, b protoboard.Variable, name string) {
	s.AddConstraint(name+".requireLeq", func(s *protoboard.System) error {
		if bigOf(s, a).Cmp(bigOf(s, b)) > 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// RequireLt records that a must be strictly less than b.
func RequireLt(s *protoboard.System, a, b protoboard.Variable, name string) {
	s.AddConstraint(name+".requireLt", func(s *protoboard.System) error {
		if bigOf(s, a).Cmp(bigOf(s, b)) >= 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// LtFieldGadget computes result = (a < b) comparing the two operands as
// full field elements rather than bounded-width integers, for operands
// that are not otherwise range-checked. signature.CompressGadget does not
// use it: it compares its two candidate x roots as native integers.
type LtFieldGadget struct {
	A, B, Result protoboard.Variable
}

// NewLtFieldGadget allocates Result and records it as the a<b indicator
// over canonical field representatives.
func NewLtFieldGadget(s *protoboard.System, a, b protoboard.Variable, name string) *LtFieldGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".ltField", func(s *protoboard.System) error {
		want := bigOf(s, a).Cmp(bigOf(s, b)) < 0
		if isTrue(s, result) != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &LtFieldGadget{A: a, B: b, Result: result}
}

// Fill computes result = (a < b).
func (g *LtFieldGadget) Fill(s *protoboard.System) {
	setBool(s, g.Result, bigOf(s, g.A).Cmp(bigOf(s, g.B)) < 0)
}

// MinGadget computes result = min(a, b).
type MinGadget struct {
	A, B, Result protoboard.Variable
}

// NewMinGadget allocates Result and records it as the smaller of a, b.
func NewMinGadget(s *protoboard.System, a, b protoboard.Variable, name string) *MinGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".min", func(s *protoboard.System) error {
		av, bv := bigOf(s, a), bigOf(s, b)
		want := av
		if bv.Cmp(av) < 0 {
			want = bv
		}
		if bigOf(s, result).Cmp(want) != 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &MinGadget{A: a, B: b, Result: result}
}

// Fill computes result = min(a, b).
func (g *MinGadget) Fill(s *protoboard.System) {
	av, bv := bigOf(s, g.A), bigOf(s, g.B)
	if bv.Cmp(av) < 0 {
		setBig(s, g.Result, bv)
	} else {
		setBig(s, g.Result, av)
	}
}

// MaxGadget computes result = max(a, b).
type MaxGadget struct {
	A, B, Result protoboard.Variable
}

// NewMaxGadget allocates Result and records it as the larger of a, b.
func NewMaxGadget(s *protoboard.System, a, b protoboard.Variable, name string) *MaxGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".max", func(s *protoboard.System) error {
		av, bv := bigOf(s, a), bigOf(s, b)
		want := av
		if bv.Cmp(av) > 0 {
			want = bv
		}
		if bigOf(s, result).Cmp(want) != 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &MaxGadget{A: a, B: b, Result: result}
}

// Fill computes result = max(a, b).
func (g *MaxGadget) Fill(s *protoboard.System) {
	av, bv := bigOf(s, g.A), bigOf(s, g.B)
	if bv.Cmp(av) > 0 {
		setBig(s, g.Result, bv)
	} else {
		setBig(s, g.Result, av)
	}
}
