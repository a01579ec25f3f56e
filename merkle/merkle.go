// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package merkle implements the quad-ary sparse Merkle tree gadgets shared
// by the accounts, balances, and storage trees (§3, §4.4): the path
// selector that places a node at its address-indicated position among its
// three siblings, the path hasher that recomposes a root from a leaf and
// its proof, and the verify-before/update-after pattern that shares one
// sibling array between a read and a write.
package merkle

import (
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/poseidon"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// LevelSelector places x at position 2*b1+b0 among three siblings
// (y0,y1,y2), preserving the order of the other three positions — the
// "quad selector" of §4.4. b0, b1 must already be boolean-constrained by
// the caller (they come from a DualVariable's bit array).
type LevelSelector struct {
	B0, B1     protoboard.Variable
	X          protoboard.Variable
	Y          [3]protoboard.Variable
	Out        [4]protoboard.Variable
}

// position returns the slot index (0..3) x occupies, given the two low
// address bits; arrange fills the other slots with y0..y2 in order.
func position(b0, b1 bool) int {
	idx := 0
	if b0 {
		idx |= 1
	}
	if b1 {
		idx |= 2
	}
	return idx
}

// arrange returns the 4 output values (x placed at `at`, y0..y2 filling the
// rest in order) given bit b0/b1.
func arrange(x fr.Element, y [3]fr.Element, b0, b1 bool) [4]fr.Element {
	at := position(b0, b1)
	var out [4]fr.Element
	yi := 0
	for i := 0; i < 4; i++ {
		if i == at {
			out[i] = x
		} else {
			out[i] = y[yi]
			yi++
		}
	}
	return out
}

// NewLevelSelector allocates the 4-wide output and records the selection
// constraint as a direct function of the witness (b0, b1, x, y).
func NewLevelSelector(s *protoboard.System, b0, b1, x, y0, y1, y2 protoboard.Variable, name string) *LevelSelector {
	g := &LevelSelector{B0: b0, B1: b1, X: x, Y: [3]protoboard.Variable{y0, y1, y2}}
	for i := 0; i < 4; i++ {
		g.Out[i] = s.Allocate(name + ".out")
	}
	s.RequireBoolean(name+".b0", b0)
	s.RequireBoolean(name+".b1", b1)
	s.AddConstraint(name+".select", func(s *protoboard.System) error {
		want := g.compute(s)
		for i := 0; i < 4; i++ {
			got := s.Value(g.Out[i])
			if !got.Equal(&want[i]) {
				return protoboard.ErrUnsatisfied
			}
		}
		return nil
	})
	return g
}

func (g *LevelSelector) compute(s *protoboard.System) [4]fr.Element {
	b0 := !s.Value(g.B0).IsZero()
	b1 := !s.Value(g.B1).IsZero()
	var y [3]fr.Element
	for i := range y {
		y[i] = s.Value(g.Y[i])
	}
	return arrange(s.Value(g.X), y, b0, b1)
}

// Fill assigns Out from the current b0/b1/x/y witness.
func (g *LevelSelector) Fill(s *protoboard.System) {
	want := g.compute(s)
	for i := 0; i < 4; i++ {
		s.Set(g.Out[i], want[i])
	}
}

// Proof is one level's worth of sibling data plus the two address bits
// selecting the current node's position among them, repeated Depth times —
// the flat "3·depth siblings" array of §4.4/§6.
type Proof struct {
	Depth    int
	B0, B1   []protoboard.Variable // one pair per level, low level first
	Siblings [][3]protoboard.Variable
}

// NewProof allocates the address bits and sibling variables for a proof of
// the given depth. Callers fill B0/B1 from a DualVariable's low 2*depth
// bits and Siblings from the witness's proof array.
func NewProof(s *protoboard.System, depth int, name string) *Proof {
	p := &Proof{Depth: depth}
	p.B0 = s.AllocateArray(name+".b0", depth)
	p.B1 = s.AllocateArray(name+".b1", depth)
	p.Siblings = make([][3]protoboard.Variable, depth)
	for lvl := 0; lvl < depth; lvl++ {
		p.Siblings[lvl] = [3]protoboard.Variable{
			s.Allocate(name + ".sib0"),
			s.Allocate(name + ".sib1"),
			s.Allocate(name + ".sib2"),
		}
	}
	return p
}

// PathHasher recomposes a root from a leaf hash and a Proof — the
// `UpdateTreeRoot` of §4.4: one LevelSelector plus one Poseidon-5 node hash
// per level, the selector's output feeding straight into the hash.
type PathHasher struct {
	Depth     int
	Leaf      protoboard.Variable
	Proof     *Proof
	Root      protoboard.Variable
	selectors []*LevelSelector
	domains   []protoboard.Variable
	hashes    []*poseidon.Gadget
}

// NewPathHasher allocates one level selector and one Poseidon-5 hash per
// level and records Root as the final level's digest. Each node hash's
// fifth input is a level-local variable pinned to zero. The balance and
// storage leaf hashes that use the same H5 instance also pass zero there,
// so this input does not separate node hashes from leaf hashes.
func NewPathHasher(s *protoboard.System, leaf protoboard.Variable, proof *Proof, name string) *PathHasher {
	h := &PathHasher{Depth: proof.Depth, Leaf: leaf, Proof: proof}
	cur := leaf
	for lvl := 0; lvl < proof.Depth; lvl++ {
		sib := proof.Siblings[lvl]
		sel := NewLevelSelector(s, proof.B0[lvl], proof.B1[lvl], cur, sib[0], sib[1], sib[2], levelName(name, lvl))
		domain := s.Allocate(levelName(name, lvl) + ".domain")
		s.AddConstraint(levelName(name, lvl)+".domainZero", func(s *protoboard.System) error {
			if !s.Value(domain).IsZero() {
				return protoboard.ErrUnsatisfied
			}
			return nil
		})
		var inputs [5]protoboard.Variable
		copy(inputs[:4], sel.Out[:])
		inputs[4] = domain
		node := poseidon.NewH5(s, inputs, levelName(name, lvl)+".node")
		h.selectors = append(h.selectors, sel)
		h.domains = append(h.domains, domain)
		h.hashes = append(h.hashes, node)
		cur = node.Output
	}
	h.Root = cur
	return h
}

// Fill computes every level's selector and hash output from leaf and
// sibling witness values, in order, and returns the resulting root.
func (h *PathHasher) Fill(s *protoboard.System) fr.Element {
	for lvl := 0; lvl < h.Depth; lvl++ {
		s.SetUint64(h.domains[lvl], 0)
		h.selectors[lvl].Fill(s)
		h.hashes[lvl].Fill(s)
	}
	return s.Value(h.Root)
}

// Verifier wraps a PathHasher and additionally requires its computed root
// to equal an expected root — the `VerifyTreeRoot` of §4.4.
type Verifier struct {
	*PathHasher
	ExpectedRoot protoboard.Variable
}

// NewVerifier builds a PathHasher and records that its Root equals
// expectedRoot.
func NewVerifier(s *protoboard.System, leaf protoboard.Variable, proof *Proof, expectedRoot protoboard.Variable, name string) *Verifier {
	h := NewPathHasher(s, leaf, proof, name)
	s.RequireEqual(name+".rootMatches", h.Root, expectedRoot)
	return &Verifier{PathHasher: h, ExpectedRoot: expectedRoot}
}

// Update is the shared-proof verify-before/update-after pattern of §4.4: one
// Proof array backs both a Verifier over the before-leaf and a PathHasher
// over the after-leaf, so a single authentic sibling set supports both the
// read and the write.
type Update struct {
	Proof      *Proof
	Before     *Verifier
	After      *PathHasher
	RootBefore protoboard.Variable
	RootAfter  protoboard.Variable
}

// NewUpdate allocates one Proof, a Verifier against rootBefore using
// leafBefore, and a PathHasher over leafAfter sharing the same proof.
// RootAfter is the hasher's computed root.
func NewUpdate(s *protoboard.System, depth int, leafBefore, leafAfter, rootBefore protoboard.Variable, name string) *Update {
	proof := NewProof(s, depth, name+".proof")
	before := NewVerifier(s, leafBefore, proof, rootBefore, name+".before")
	after := NewPathHasher(s, leafAfter, proof, name+".after")
	return &Update{Proof: proof, Before: before, After: after, RootBefore: rootBefore, RootAfter: after.Root}
}

// Fill fills the proof's address bits and siblings (callers do this via
// Proof.B0/B1/Siblings directly before calling Fill), then fills both the
// before-verifier and after-hasher passes.
func (u *Update) Fill(s *protoboard.System) {
	u.Before.Fill(s)
	u.After.Fill(s)
}

func levelName(base string, lvl int) string {
	return base + ".lvl" + strconv.Itoa(lvl)
}
