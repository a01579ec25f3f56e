// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"testing"

	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

func setAddressBits(s *protoboard.System, proof *Proof, address int) {
	for lvl := 0; lvl < proof.Depth; lvl++ {
		bits := address >> uint(2*lvl)
		s.SetUint64(proof.B0[lvl], uint64(bits&1))
		s.SetUint64(proof.B1[lvl], uint64((bits>>1)&1))
	}
}

func TestLevelSelectorPlacesXAtAddress(t *testing.T) {
	for _, addr := range []int{0, 1, 2, 3} {
		s := protoboard.NewSystem()
		b0 := s.Allocate("b0")
		b1 := s.Allocate("b1")
		x := s.Allocate("x")
		y0, y1, y2 := s.Allocate("y0"), s.Allocate("y1"), s.Allocate("y2")
		sel := NewLevelSelector(s, b0, b1, x, y0, y1, y2, "sel")

		s.SetUint64(b0, uint64(addr&1))
		s.SetUint64(b1, uint64((addr>>1)&1))
		s.SetUint64(x, 99)
		s.SetUint64(y0, 1)
		s.SetUint64(y1, 2)
		s.SetUint64(y2, 3)
		sel.Fill(s)

		ok, err := s.IsSatisfied()
		require.True(t, ok, "addr=%d: %v", addr, err)
		got := s.Value(sel.Out[addr])
		want := s.Value(x)
		require.True(t, got.Equal(&want))
	}
}

func TestUpdateRootAfterDiffersFromRootBefore(t *testing.T) {
	const depth = 3
	s := protoboard.NewSystem()
	leafBefore := s.Allocate("leafBefore")
	leafAfter := s.Allocate("leafAfter")
	rootBefore := s.Allocate("rootBefore")

	u := NewUpdate(s, depth, leafBefore, leafAfter, rootBefore, "u")

	s.SetUint64(leafBefore, 11)
	s.SetUint64(leafAfter, 22)
	setAddressBits(s, u.Proof, 5)
	for lvl := 0; lvl < depth; lvl++ {
		s.SetUint64(u.Proof.Siblings[lvl][0], uint64(lvl*3+1))
		s.SetUint64(u.Proof.Siblings[lvl][1], uint64(lvl*3+2))
		s.SetUint64(u.Proof.Siblings[lvl][2], uint64(lvl*3+3))
	}

	rootAfterBefore := u.Before.PathHasher.Fill(s)
	s.Set(rootBefore, rootAfterBefore)

	u.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	require.NotEqual(t, s.Value(rootBefore), s.Value(u.RootAfter))
}
