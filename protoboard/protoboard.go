// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package protoboard implements the append-only allocation context shared
// by every gadget in this repository: a variable index space, a witness
// vector over BN254's scalar field, and a list of constraints recorded
// during circuit construction and checked against the witness once it has
// been filled in.
//
// Gadgets follow the classic two-phase libsnark/ethsnarks shape: a
// constructor that allocates variables and records constraints (it never
// touches the witness), and a Fill method that assigns concrete field
// values. Neither phase returns an error: System.IsSatisfied reports the
// first constraint the filled witness breaks.
package protoboard

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/log"
)

// Variable is an index into a System's witness vector. The zero Variable
// is reserved for the constant wire fixed to 1.
type Variable int

// One is the constant-1 wire every System allocates first.
const One Variable = 0

// GadgetError names the first unsatisfied constraint found during
// IsSatisfied, so callers can program against failure kind instead of a
// bare string per §7 of the witness-generation error model.
type GadgetError struct {
	Gadget   string
	Variable Variable
	Cause    error
}

func (e *GadgetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Gadget, e.Cause)
	}
	return fmt.Sprintf("%s: constraint not satisfied", e.Gadget)
}

func (e *GadgetError) Unwrap() error { return e.Cause }

var (
	// ErrNotBoolean is the cause of a GadgetError when a bit-constrained
	// variable holds a value outside {0,1}.
	ErrNotBoolean = errors.New("variable is not boolean")
	// ErrUnsatisfied is the generic cause for a failed equality/require check.
	ErrUnsatisfied = errors.New("constraint unsatisfied")
)

type constraint struct {
	name  string
	check func(s *System) error
}

// System is the protoboard: the allocation context for variables and
// constraints. It is append-only during construction; FillWitness calls
// only assign values to already-allocated indices, never reallocate, so
// that variable numbering stays deterministic across runs.
type System struct {
	values      []fr.Element
	names       []string
	constraints []constraint
	logger      log.Logger
}

// NewSystem returns a System with the constant-1 wire already allocated.
// It has no logger attached; callers that want IsSatisfied failures
// reported through the caller's logging pipeline call SetLogger.
func NewSystem() *System {
	s := &System{}
	one := s.Allocate("one")
	s.values[one] = fr.One()
	return s
}

// SetLogger attaches a logger IsSatisfied reports the first failing
// constraint to, named after the gadget that raised it. A block's proving
// service wires this to the same logger it uses for request handling, so a
// witness-generation failure shows up alongside everything else in its log
// stream rather than only as a returned error value.
func (s *System) SetLogger(l log.Logger) { s.logger = l }

// Allocate appends a new variable to the witness vector and returns its
// index. The variable's value starts at zero until FillWitness assigns it.
func (s *System) Allocate(name string) Variable {
	s.values = append(s.values, fr.Element{})
	s.names = append(s.names, name)
	return Variable(len(s.values) - 1)
}

// AllocateArray allocates n variables named prefix[0..n).
func (s *System) AllocateArray(prefix string, n int) []Variable {
	out := make([]Variable, n)
	for i := 0; i < n; i++ {
		out[i] = s.Allocate(fmt.Sprintf("%s[%d]", prefix, i))
	}
	return out
}

// NumVariables reports how many variables have been allocated, including
// the constant-1 wire.
func (s *System) NumVariables() int { return len(s.values) }

// NumConstraints reports how many constraints have been recorded.
func (s *System) NumConstraints() int { return len(s.constraints) }

// Name returns the diagnostic name a variable was allocated with.
func (s *System) Name(v Variable) string { return s.names[v] }

// Set assigns a witness value. It is the only mutation allowed outside
// Allocate and must only target already-allocated indices.
func (s *System) Set(v Variable, val fr.Element) {
	s.values[v] = val
}

// SetUint64 is a convenience wrapper around Set for small constants.
func (s *System) SetUint64(v Variable, val uint64) {
	var e fr.Element
	e.SetUint64(val)
	s.values[v] = e
}

// Value returns a variable's current witness value.
func (s *System) Value(v Variable) fr.Element {
	return s.values[v]
}

// AddConstraint records a named check to be evaluated by IsSatisfied. The
// check runs against whatever witness is present at IsSatisfied time, not
// at the moment AddConstraint is called — this is what lets a sub-circuit's
// constraints be recorded during construction and evaluated only once the
// whole block's witness has been filled.
func (s *System) AddConstraint(name string, check func(s *System) error) {
	s.constraints = append(s.constraints, constraint{name: name, check: check})
}

// RequireEqual records that two variables must hold equal field values.
func (s *System) RequireEqual(name string, a, b Variable) {
	s.AddConstraint(name, func(s *System) error {
		av, bv := s.Value(a), s.Value(b)
		if !av.Equal(&bv) {
			return &GadgetError{Gadget: name, Variable: a, Cause: ErrUnsatisfied}
		}
		return nil
	})
}

// RequireBoolean records that v's witness value must be 0 or 1.
func (s *System) RequireBoolean(name string, v Variable) {
	s.AddConstraint(name, func(s *System) error {
		val := s.Value(v)
		if val.IsZero() {
			return nil
		}
		var one fr.Element
		one.SetOne()
		if val.Equal(&one) {
			return nil
		}
		return &GadgetError{Gadget: name, Variable: v, Cause: ErrNotBoolean}
	})
}

// Require records an arbitrary boolean predicate evaluated lazily over the
// witness, for gadgets whose check does not reduce to a plain equality.
func (s *System) Require(name string, v Variable, pred func(fr.Element) bool) {
	s.AddConstraint(name, func(s *System) error {
		if pred(s.Value(v)) {
			return nil
		}
		return &GadgetError{Gadget: name, Variable: v, Cause: ErrUnsatisfied}
	})
}

// IsSatisfied evaluates every recorded constraint against the current
// witness and returns the first failure, if any. A block's witness is
// valid if and only if every active constraint is satisfied; there is no
// partial-credit notion at this layer.
func (s *System) IsSatisfied() (bool, *GadgetError) {
	for _, c := range s.constraints {
		if err := c.check(s); err != nil {
			var ge *GadgetError
			if !errors.As(err, &ge) {
				ge = &GadgetError{Gadget: c.name, Cause: err}
			}
			if s.logger != nil {
				s.logger.Error("constraint unsatisfied", "gadget", ge.Gadget, "cause", ge.Cause)
			}
			return false, ge
		}
	}
	return true, nil
}
