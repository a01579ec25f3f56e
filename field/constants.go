// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package field provides the field- and bit-level building blocks every
// other gadget package composes: dual variables (a field element paired
// with its bit decomposition), a named-constants gadget, the float codec,
// and the range-accuracy check.
package field

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// Constants allocates the small set of named field literals downstream
// gadgets share, instead of each gadget inlining its own literal variable.
// The small literals (0 to 10, 1000, 1001, 10000, 100000) and
// TxTypeTransfer are each constrained to their value at allocation time.
// MaxAmount, EmptyStorageTreeRoot and ZeroAccount are allocated without any
// constraint: they hold whatever values the fill step assigns.
type Constants struct {
	Zero, One, Two, Three, Four, Five         protoboard.Variable
	Six, Seven, Eight, Nine, Ten              protoboard.Variable
	Thousand, ThousandOne                     protoboard.Variable
	TenThousand, HundredThousand              protoboard.Variable
	TxTypeTransfer                            protoboard.Variable
	MaxAmount                                 protoboard.Variable
	EmptyStorageTreeRoot                      protoboard.Variable
	ZeroAccount                               []protoboard.Variable
}

var literals = []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// NewConstants allocates the named constants and constrains the literal
// ones (see Constants for which).
func NewConstants(s *protoboard.System) *Constants {
	vars := make([]protoboard.Variable, len(literals))
	for i, lit := range literals {
		v := s.Allocate(literalName(i))
		l := lit
		s.AddConstraint(literalName(i), func(s *protoboard.System) error {
			want := fr.Element{}
			want.SetUint64(l)
			got := s.Value(v)
			if !got.Equal(&want) {
				return protoboard.ErrUnsatisfied
			}
			return nil
		})
		vars[i] = v
	}

	thousand := pinLiteral(s, "1000", 1000)
	thousandOne := pinLiteral(s, "1001", 1001)
	tenThousand := pinLiteral(s, "10000", 10000)
	hundredThousand := pinLiteral(s, "100000", 100000)
	txTypeTransfer := pinLiteral(s, "txTypeTransfer", uint64(config.TxTransfer))
	maxAmount := s.Allocate("maxAmount")
	emptyStorageRoot := s.Allocate("emptyStorageTreeRoot")

	zeroAccount := s.AllocateArray("zeroAccount", config.NumBitsAccount)

	c := &Constants{
		Zero: vars[0], One: vars[1], Two: vars[2], Three: vars[3], Four: vars[4], Five: vars[5],
		Six: vars[6], Seven: vars[7], Eight: vars[8], Nine: vars[9], Ten: vars[10],
		Thousand: thousand, ThousandOne: thousandOne,
		TenThousand: tenThousand, HundredThousand: hundredThousand,
		TxTypeTransfer:        txTypeTransfer,
		MaxAmount:             maxAmount,
		EmptyStorageTreeRoot:  emptyStorageRoot,
		ZeroAccount:           zeroAccount,
	}
	return c
}

// FillWitness assigns the constant literal values; it must run exactly
// once per System before any dependent gadget's own FillWitness runs.
func (c *Constants) FillWitness(s *protoboard.System, maxAmount, emptyStorageTreeRoot fr.Element) {
	s.SetUint64(c.Zero, 0)
	s.SetUint64(c.One, 1)
	s.SetUint64(c.Two, 2)
	s.SetUint64(c.Three, 3)
	s.SetUint64(c.Four, 4)
	s.SetUint64(c.Five, 5)
	s.SetUint64(c.Six, 6)
	s.SetUint64(c.Seven, 7)
	s.SetUint64(c.Eight, 8)
	s.SetUint64(c.Nine, 9)
	s.SetUint64(c.Ten, 10)
	s.SetUint64(c.Thousand, 1000)
	s.SetUint64(c.ThousandOne, 1001)
	s.SetUint64(c.TenThousand, 10000)
	s.SetUint64(c.HundredThousand, 100000)
	s.SetUint64(c.TxTypeTransfer, uint64(config.TxTransfer))
	s.Set(c.MaxAmount, maxAmount)
	s.Set(c.EmptyStorageTreeRoot, emptyStorageTreeRoot)
	for _, v := range c.ZeroAccount {
		s.SetUint64(v, 0)
	}
}

func literalName(i int) string {
	names := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	return "const." + names[i]
}

func pinLiteral(s *protoboard.System, name string, val uint64) protoboard.Variable {
	v := s.Allocate("const." + name)
	s.AddConstraint("const."+name, func(s *protoboard.System) error {
		want := fr.Element{}
		want.SetUint64(val)
		got := s.Value(v)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return v
}
