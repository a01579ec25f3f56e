// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poseidon

import (
	"testing"

	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

func TestH5GadgetMatchesNativeHash(t *testing.T) {
	s := protoboard.NewSystem()
	var inputs [5]protoboard.Variable
	for i := range inputs {
		inputs[i] = s.Allocate("in")
		s.SetUint64(inputs[i], uint64(i+1))
	}
	g := NewH5(s, inputs, "node")
	g.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok)
	require.Nil(t, err)
	require.Equal(t, Hash(s.Value(inputs[0]), s.Value(inputs[1]), s.Value(inputs[2]), s.Value(inputs[3]), s.Value(inputs[4])), s.Value(g.Output))
}

func TestHashIsDeterministic(t *testing.T) {
	s := protoboard.NewSystem()
	a, b := s.Allocate("a"), s.Allocate("b")
	s.SetUint64(a, 7)
	s.SetUint64(b, 9)
	h1 := Hash(s.Value(a), s.Value(b))
	h2 := Hash(s.Value(a), s.Value(b))
	require.True(t, h1.Equal(&h2))
}

func TestHashDiffersOnInputOrder(t *testing.T) {
	s := protoboard.NewSystem()
	a := s.Allocate("a")
	b := s.Allocate("b")
	s.SetUint64(a, 7)
	s.SetUint64(b, 9)
	h1 := Hash(s.Value(a), s.Value(b))
	h2 := Hash(s.Value(b), s.Value(a))
	require.False(t, h1.Equal(&h2))
}

func TestGadgetRejectsWrongOutput(t *testing.T) {
	s := protoboard.NewSystem()
	a := s.Allocate("a")
	b := s.Allocate("b")
	g := NewH2(s, a, b, "bind")
	s.SetUint64(a, 1)
	s.SetUint64(b, 2)
	s.SetUint64(g.Output, 0)

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.NotNil(t, err)
}
