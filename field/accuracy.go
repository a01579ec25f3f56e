// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// RangeAccuracyGadget proves that a rounded-down value is within the
// configured relative error of the original amount it was encoded from:
//
//	value <= original          (rounding never overshoots)
//	original * num <= value * den   (rounding never loses more than num/den)
//
// Both products are bounded by maxBits+32 bits, comfortably inside the
// scalar field, so no overflow wraparound can hide a violation.
type RangeAccuracyGadget struct {
	Value, Original protoboard.Variable
	Accuracy        config.Accuracy
	MaxBits         int
}

// NewRangeAccuracyGadget allocates nothing new — value and original are
// existing variables — and records the two inequalities as constraints.
func NewRangeAccuracyGadget(s *protoboard.System, value, original protoboard.Variable, acc config.Accuracy, maxBits int, name string) *RangeAccuracyGadget {
	g := &RangeAccuracyGadget{Value: value, Original: original, Accuracy: acc, MaxBits: maxBits}

	s.AddConstraint(name+".valueLeqOriginal", func(s *protoboard.System) error {
		v := toBigInt(s.Value(value))
		o := toBigInt(s.Value(original))
		if v.Cmp(o) > 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	s.AddConstraint(name+".accuracyBound", func(s *protoboard.System) error {
		v := toBigInt(s.Value(value))
		o := toBigInt(s.Value(original))
		lhs := new(big.Int).Mul(o, new(big.Int).SetUint64(acc.Numerator))
		rhs := new(big.Int).Mul(v, new(big.Int).SetUint64(acc.Denominator))
		if lhs.Cmp(rhs) > 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return g
}

func toBigInt(e fr.Element) *big.Int {
	bi := new(big.Int)
	e.BigInt(bi)
	return bi
}
