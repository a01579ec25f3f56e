// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mathgadgets

import (
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// TernaryGadget computes result = cond ? a : b, the standard R1CS ternary
// encoding result = b + cond*(a-b). cond must be boolean-constrained by the
// caller.
type TernaryGadget struct {
	Cond, A, B, Result protoboard.Variable
}

// NewTernaryGadget allocates Result and records the ternary selection.
func NewTernaryGadget(s *protoboard.System, cond, a, b protoboard.Variable, name string) *TernaryGadget {
	result := s.Allocate(name + ".result")
	s.AddConstraint(name+".ternary", func(s *protoboard.System) error {
		var want protoboard.Variable
		if isTrue(s, cond) {
			want = a
		} else {
			want = b
		}
		wv, rv := s.Value(want), s.Value(result)
		if !wv.Equal(&rv) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &TernaryGadget{Cond: cond, A: a, B: b, Result: result}
}

// Fill computes result = cond ? a : b.
func (g *TernaryGadget) Fill(s *protoboard.System) {
	if isTrue(s, g.Cond) {
		s.Set(g.Result, s.Value(g.A))
	} else {
		s.Set(g.Result, s.Value(g.B))
	}
}

// ArrayTernaryGadget applies TernaryGadget element-wise over two equal-length
// variable arrays, used to select between two entire leaves or rows.
type ArrayTernaryGadget struct {
	Cond    protoboard.Variable
	A, B    []protoboard.Variable
	Result  []protoboard.Variable
	element []*TernaryGadget
}

// NewArrayTernaryGadget allocates one Result variable per element and
// records a TernaryGadget per position. a and b must have equal length.
func NewArrayTernaryGadget(s *protoboard.System, cond protoboard.Variable, a, b []protoboard.Variable, name string) *ArrayTernaryGadget {
	result := make([]protoboard.Variable, len(a))
	elems := make([]*TernaryGadget, len(a))
	for i := range a {
		elems[i] = NewTernaryGadget(s, cond, a[i], b[i], name+"["+itoa(i)+"]")
		result[i] = elems[i].Result
	}
	return &ArrayTernaryGadget{Cond: cond, A: a, B: b, Result: result, element: elems}
}

// Fill computes every element of Result.
func (g *ArrayTernaryGadget) Fill(s *protoboard.System) {
	for _, e := range g.element {
		e.Fill(s)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

// SelectorGadget is a one-hot selector over n choices: exactly one of Bits
// must be 1. Select and ArraySelect return the candidate at the active
// bit's index by reading the filled witness; they record no constraint
// tying that choice to the bits.
type SelectorGadget struct {
	Bits []protoboard.Variable
}

// NewSelectorGadget allocates an n-wide bit array and records the one-hot
// constraint (sum of bits == 1, each bit boolean).
func NewSelectorGadget(s *protoboard.System, n int, name string) *SelectorGadget {
	bits := s.AllocateArray(name+".bits", n)
	for _, b := range bits {
		s.RequireBoolean(name+".bitness", b)
	}
	s.AddConstraint(name+".oneHot", func(s *protoboard.System) error {
		count := 0
		for _, b := range bits {
			if isTrue(s, b) {
				count++
			}
		}
		if count != 1 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &SelectorGadget{Bits: bits}
}

// Fill sets bit `index` to 1 and every other bit to 0.
func (g *SelectorGadget) Fill(s *protoboard.System, index int) {
	for i, b := range g.Bits {
		setBool(s, b, i == index)
	}
}

// Select picks candidates[i] where Bits[i] is the active selector bit,
// returning the field value directly (no new variable is allocated — the
// caller decides whether the result needs its own witness slot).
func (g *SelectorGadget) Select(s *protoboard.System, candidates []protoboard.Variable) protoboard.Variable {
	for i, b := range g.Bits {
		if isTrue(s, b) {
			return candidates[i]
		}
	}
	return candidates[0]
}

// ArraySelect applies Select element-wise across a matrix of candidate rows,
// one row per selector choice, used to multiplex an entire sub-circuit's
// output row onto the block's shared output variables.
func (g *SelectorGadget) ArraySelect(s *protoboard.System, rows [][]protoboard.Variable) []protoboard.Variable {
	width := len(rows[0])
	out := make([]protoboard.Variable, width)
	active := 0
	for i, b := range g.Bits {
		if isTrue(s, b) {
			active = i
			break
		}
	}
	copy(out, rows[active])
	return out
}
