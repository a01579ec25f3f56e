// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package poseidon provides the fixed-arity Poseidon sponge instances every
// leaf, Merkle node, and signed message in this repository hashes with
// (§4.3). The spec treats Poseidon as an opaque but deterministic
// collision-resistant hash over field elements; this package pins that
// choice to gnark-crypto's Poseidon2 permutation (the same primitive the
// teacher's zk/poseidon.go precompile wraps) behind a Merkle-Damgard
// construction, so every instance below and the on-chain verifier recompute
// the same digest from the same round constants and MDS matrix.
package poseidon

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// hasherFactory is the underlying gnark-crypto hasher constructor, kept as
// a var (not a direct call) so tests can substitute it the way the teacher's
// poseidon2HasherFactory is substituted by the GPU build tag.
var hasherFactory = poseidon2.NewMerkleDamgardHasher

// Hash computes Poseidon2(inputs...) natively, outside any System, for use
// by witness generation and by tests that check a circuit's output against
// a reference digest.
func Hash(inputs ...fr.Element) fr.Element {
	h := hasherFactory()
	for _, in := range inputs {
		b := in.Bytes()
		h.Write(b[:])
	}
	sum := h.Sum(nil)
	var out fr.Element
	out.SetBytes(sum)
	return out
}

// Gadget binds a fixed-arity Poseidon instance into a System: Inputs is the
// exact-arity operand array, Output is the allocated digest variable, and
// the recorded constraint binds Output to Hash(Inputs...) under the current
// witness.
type Gadget struct {
	Arity  int
	Inputs []protoboard.Variable
	Output protoboard.Variable
}

// newGadget allocates Output and records the hash constraint over an
// already-allocated Inputs array of the given arity.
func newGadget(s *protoboard.System, inputs []protoboard.Variable, name string) *Gadget {
	output := s.Allocate(name + ".digest")
	g := &Gadget{Arity: len(inputs), Inputs: inputs, Output: output}
	s.AddConstraint(name+".poseidon", func(s *protoboard.System) error {
		want := hashVars(s, inputs)
		got := s.Value(output)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return g
}

func hashVars(s *protoboard.System, vars []protoboard.Variable) fr.Element {
	vals := make([]fr.Element, len(vars))
	for i, v := range vars {
		vals[i] = s.Value(v)
	}
	return Hash(vals...)
}

// Fill assigns Output = Hash(current Inputs witness values).
func (g *Gadget) Fill(s *protoboard.System) {
	s.Set(g.Output, hashVars(s, g.Inputs))
}

// NewH2 hashes 2 field elements: the public-data binder instance (§4.3).
func NewH2(s *protoboard.System, a, b protoboard.Variable, name string) *Gadget {
	return newGadget(s, []protoboard.Variable{a, b}, name)
}

// NewH5 hashes 5 field elements: the Merkle internal-node hash (4 children)
// and the balance-leaf / storage-leaf hash.
func NewH5(s *protoboard.System, inputs [5]protoboard.Variable, name string) *Gadget {
	return newGadget(s, inputs[:], name)
}

// NewH6 hashes 6 field elements: the account-leaf hash.
func NewH6(s *protoboard.System, inputs [6]protoboard.Variable, name string) *Gadget {
	return newGadget(s, inputs[:], name)
}

// NewH9 hashes 9 field elements, the width of a 9-field signed transaction
// payload; no gadget in this repository calls it.
func NewH9(s *protoboard.System, inputs [9]protoboard.Variable, name string) *Gadget {
	return newGadget(s, inputs[:], name)
}

// NewH11 hashes 11 field elements.
func NewH11(s *protoboard.System, inputs [11]protoboard.Variable, name string) *Gadget {
	return newGadget(s, inputs[:], name)
}

// NewH12 hashes 12 field elements, the arity of the order message hash
// (§3, §4.7).
func NewH12(s *protoboard.System, inputs [12]protoboard.Variable, name string) *Gadget {
	return newGadget(s, inputs[:], name)
}

// NewArbitrary hashes an arbitrary-length slice. order.NewGadget builds its
// 12-input order message hash with it; the EdDSA challenge H(R, A, msg)
// (§4.6) uses NewH5.
func NewArbitrary(s *protoboard.System, inputs []protoboard.Variable, name string) *Gadget {
	return newGadget(s, inputs, name)
}
