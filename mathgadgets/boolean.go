// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mathgadgets

import (
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

func isTrue(s *protoboard.System, v protoboard.Variable) bool {
	e := s.Value(v)
	return !e.IsZero()
}

func setBool(s *protoboard.System, v protoboard.Variable, val bool) {
	if val {
		s.SetUint64(v, 1)
	} else {
		s.SetUint64(v, 0)
	}
}

// AndGadget computes result = a AND b over boolean-constrained inputs.
type AndGadget struct {
	A, B, Result protoboard.Variable
}

// NewAndGadget allocates Result and records it as a*b, the standard R1CS
// encoding of boolean AND.
func NewAndGadget(s *protoboard.System, a, b protoboard.Variable, name string) *AndGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".and", func(s *protoboard.System) error {
		want := isTrue(s, a) && isTrue(s, b)
		if isTrue(s, result) != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &AndGadget{A: a, B: b, Result: result}
}

// Fill computes result = a AND b.
func (g *AndGadget) Fill(s *protoboard.System) {
	setBool(s, g.Result, isTrue(s, g.A) && isTrue(s, g.B))
}

// OrGadget computes result = a OR b over boolean-constrained inputs.
type OrGadget struct {
	A, B, Result protoboard.Variable
}

// NewOrGadget allocates Result and records it as a+b-a*b.
func NewOrGadget(s *protoboard.System, a, b protoboard.Variable, name string) *OrGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".or", func(s *protoboard.System) error {
		want := isTrue(s, a) || isTrue(s, b)
		if isTrue(s, result) != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &OrGadget{A: a, B: b, Result: result}
}

// Fill computes result = a OR b.
func (g *OrGadget) Fill(s *protoboard.System) {
	setBool(s, g.Result, isTrue(s, g.A) || isTrue(s, g.B))
}

// NotGadget computes result = NOT a, i.e. 1 - a.
type NotGadget struct {
	A, Result protoboard.Variable
}

// NewNotGadget allocates Result and records it as 1 - a.
func NewNotGadget(s *protoboard.System, a protoboard.Variable, name string) *NotGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".not", func(s *protoboard.System) error {
		if isTrue(s, result) == isTrue(s, a) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &NotGadget{A: a, Result: result}
}

// Fill computes result = NOT a.
func (g *NotGadget) Fill(s *protoboard.System) {
	setBool(s, g.Result, !isTrue(s, g.A))
}

// EqualGadget computes result = (a == b) as a boolean.
type EqualGadget struct {
	A, B, Result protoboard.Variable
}

// NewEqualGadget allocates Result and records it as the equality indicator
// between a and b.
func NewEqualGadget(s *protoboard.System, a, b protoboard.Variable, name string) *EqualGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".equal", func(s *protoboard.System) error {
		av, bv := s.Value(a), s.Value(b)
		want := av.Equal(&bv)
		if isTrue(s, result) != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &EqualGadget{A: a, B: b, Result: result}
}

// Fill computes result = (a == b).
func (g *EqualGadget) Fill(s *protoboard.System) {
	av, bv := s.Value(g.A), s.Value(g.B)
	setBool(s, g.Result, av.Equal(&bv))
}

// IsNonZeroGadget computes result = (a != 0) as a boolean.
type IsNonZeroGadget struct {
	A, Result protoboard.Variable
}

// NewIsNonZeroGadget allocates Result and records it as 1 iff a != 0.
func NewIsNonZeroGadget(s *protoboard.System, a protoboard.Variable, name string) *IsNonZeroGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".isNonZero", func(s *protoboard.System) error {
		want := !s.Value(a).IsZero()
		if isTrue(s, result) != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &IsNonZeroGadget{A: a, Result: result}
}

// Fill computes result = (a != 0).
func (g *IsNonZeroGadget) Fill(s *protoboard.System) {
	setBool(s, g.Result, !s.Value(g.A).IsZero())
}

// RequireNotZero records that a must not be zero.
func RequireNotZero(s *protoboard.System, a protoboard.Variable, name string) {
	s.AddConstraint(name+".notZero", func(s *protoboard.System) error {
		if s.Value(a).IsZero() {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// RequireNotEqual records that a must not equal b.
func RequireNotEqual(s *protoboard.System, a, b protoboard.Variable, name string) {
	s.AddConstraint(name+".notEqual", func(s *protoboard.System) error {
		av, bv := s.Value(a), s.Value(b)
		if av.Equal(&bv) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// IfThenRequireEqual records that whenever cond is true, a must equal b.
// cond is assumed boolean-constrained by the caller.
func IfThenRequireEqual(s *protoboard.System, cond, a, b protoboard.Variable, name string) {
	s.AddConstraint(name+".ifThenEqual", func(s *protoboard.System) error {
		if !isTrue(s, cond) {
			return nil
		}
		av, bv := s.Value(a), s.Value(b)
		if !av.Equal(&bv) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// IfThenRequireNotEqual records that whenever cond is true, a must not
// equal b.
func IfThenRequireNotEqual(s *protoboard.System, cond, a, b protoboard.Variable, name string) {
	s.AddConstraint(name+".ifThenNotEqual", func(s *protoboard.System) error {
		if !isTrue(s, cond) {
			return nil
		}
		av, bv := s.Value(a), s.Value(b)
		if av.Equal(&bv) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}
