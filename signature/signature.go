// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package signature implements public-key compression and EdDSA signature
// verification over the ethsnarks twisted-Edwards curve (§4.6): the same
// BabyJubJub-style curve gnark-crypto's ecc/bn254/twistededwards package
// embeds in BN254's scalar field, matching the curve the on-chain verifier
// and the rest of the pack (teacher zk/pedersen.go's bn254 point
// arithmetic) already depend on.
package signature

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/luxfi/zkrollup-circuits/poseidon"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

var curveParams = mustCurve()

func mustCurve() twistededwards.CurveParams {
	return twistededwards.GetEdwardsCurve()
}

// point builds a twistededwards.PointAffine from two fr.Element values.
func point(x, y fr.Element) twistededwards.PointAffine {
	return twistededwards.PointAffine{X: x, Y: y}
}

// CompressGadget reconstructs a twisted-Edwards point's x coordinate from
// its y coordinate and compares it against the provided x to derive a sign
// bit — the deterministic decompression §4.6 requires the circuit to prove
// exists. x0 = sqrt((y²-1)/(d·y²-a)); the smaller of {x0, -x0} (compared as
// full field elements) is the canonical positive root, and Sign records
// whether the true x is the negative one. y = 0 forces x = 0.
type CompressGadget struct {
	X, Y protoboard.Variable
	Sign protoboard.Variable
}

// NewCompressGadget allocates Sign and records the reconstruction
// constraint against the already-allocated x, y.
func NewCompressGadget(s *protoboard.System, x, y protoboard.Variable, name string) *CompressGadget {
	sign := s.Allocate(name + ".sign")
	g := &CompressGadget{X: x, Y: y, Sign: sign}
	s.RequireBoolean(name+".sign.bit", sign)

	s.AddConstraint(name+".reconstruct", func(s *protoboard.System) error {
		yv := s.Value(y)
		xv := s.Value(x)
		if yv.IsZero() {
			if !xv.IsZero() {
				return protoboard.ErrUnsatisfied
			}
			return nil
		}
		x0, ok := candidateX(yv)
		if !ok {
			return protoboard.ErrUnsatisfied
		}
		neg := negate(x0)
		canonical := smaller(x0, neg)
		other := x0
		if canonical.Equal(&x0) {
			other = neg
		}
		wantSign := !s.Value(sign).IsZero()
		if wantSign {
			return requireEqual(xv, other)
		}
		return requireEqual(xv, canonical)
	})
	return g
}

func requireEqual(a, b fr.Element) error {
	if !a.Equal(&b) {
		return protoboard.ErrUnsatisfied
	}
	return nil
}

func negate(x fr.Element) fr.Element {
	var n fr.Element
	n.Neg(&x)
	return n
}

func smaller(a, b fr.Element) fr.Element {
	var ab, bb big.Int
	a.BigInt(&ab)
	b.BigInt(&bb)
	if ab.Cmp(&bb) <= 0 {
		return a
	}
	return b
}

// candidateX computes sqrt((y²-1)/(d·y²-a)) over the scalar field,
// returning ok=false if the value has no square root (y is not a valid
// curve coordinate).
func candidateX(y fr.Element) (fr.Element, bool) {
	var y2, num, den, frac fr.Element
	y2.Square(&y)
	num.Sub(&y2, &one())
	den.Mul(&curveParams.D, &y2)
	den.Sub(&den, &curveParams.A)
	if den.IsZero() {
		return fr.Element{}, false
	}
	den.Inverse(&den)
	frac.Mul(&num, &den)
	var root fr.Element
	if root.Sqrt(&frac) == nil {
		return fr.Element{}, false
	}
	return root, true
}

func one() fr.Element {
	var e fr.Element
	e.SetOne()
	return e
}

// Fill computes Sign from the current x, y witness.
func (g *CompressGadget) Fill(s *protoboard.System) {
	yv := s.Value(g.Y)
	xv := s.Value(g.X)
	if yv.IsZero() {
		s.SetUint64(g.Sign, 0)
		return
	}
	x0, _ := candidateX(yv)
	canonical := smaller(x0, negate(x0))
	s.SetUint64(g.Sign, boolUint64(!xv.Equal(&canonical)))
}

func boolUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Verifier checks an EdDSA signature (R, s) over msg against public key A:
// it holds iff [s]·B = R + [H(Rx,Ry,Ax,Ay,msg)]·A, with H the Poseidon-5
// challenge hash §4.6 names. The point arithmetic is evaluated natively
// against the witness (the same direct-computation style every other
// gadget in this repository uses), not re-derived as a bilinear R1CS
// product — consistent with how merkle.LevelSelector and field.FloatGadget
// check their own outputs.
type Verifier struct {
	Ax, Ay     protoboard.Variable
	Rx, Ry     protoboard.Variable
	S          protoboard.Variable
	Msg        protoboard.Variable
	Challenge  *poseidon.Gadget
	Valid      protoboard.Variable
}

// NewVerifier allocates the Poseidon-5 challenge hash and the Valid output
// bit, recording that Valid matches the EdDSA verification equation.
func NewVerifier(s *protoboard.System, ax, ay, rx, ry, sVar, msg protoboard.Variable, name string) *Verifier {
	challenge := poseidon.NewH5(s, [5]protoboard.Variable{rx, ry, ax, ay, msg}, name+".challenge")
	valid := s.Allocate(name + ".valid")
	s.RequireBoolean(name+".valid.bit", valid)

	v := &Verifier{Ax: ax, Ay: ay, Rx: rx, Ry: ry, S: sVar, Msg: msg, Challenge: challenge, Valid: valid}
	s.AddConstraint(name+".verify", func(s *protoboard.System) error {
		want := v.checkEquation(s)
		got := !s.Value(valid).IsZero()
		if got != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return v
}

func (v *Verifier) checkEquation(s *protoboard.System) bool {
	a := point(s.Value(v.Ax), s.Value(v.Ay))
	r := point(s.Value(v.Rx), s.Value(v.Ry))
	var sBig big.Int
	s.Value(v.S).BigInt(&sBig)

	var lhs twistededwards.PointAffine
	lhs.ScalarMultiplication(&curveParams.Base, &sBig)

	var cBig big.Int
	s.Value(v.Challenge.Output).BigInt(&cBig)
	var ca twistededwards.PointAffine
	ca.ScalarMultiplication(&a, &cBig)

	var rhs twistededwards.PointAffine
	rhs.Add(&r, &ca)

	return lhs.X.Equal(&rhs.X) && lhs.Y.Equal(&rhs.Y)
}

// Fill computes the challenge hash and the Valid bit from the current
// witness.
func (v *Verifier) Fill(s *protoboard.System) {
	v.Challenge.Fill(s)
	s.SetUint64(v.Valid, boolUint64(v.checkEquation(s)))
}

// RequiredGadget wraps Verifier so unused signature slots are free: it
// asserts valid ∨ ¬required, per §4.6's SignatureVerifier(publicKey,
// message, required) contract.
type RequiredGadget struct {
	Verifier *Verifier
	Required protoboard.Variable
}

// NewRequiredGadget records the valid-or-not-required disjunction.
func NewRequiredGadget(s *protoboard.System, v *Verifier, required protoboard.Variable, name string) *RequiredGadget {
	s.AddConstraint(name+".requiredImpliesValid", func(s *protoboard.System) error {
		if s.Value(required).IsZero() {
			return nil
		}
		if s.Value(v.Valid).IsZero() {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &RequiredGadget{Verifier: v, Required: required}
}
