// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package signature

import (
	"testing"

	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

func TestCompressGadgetZeroYForcesZeroX(t *testing.T) {
	s := protoboard.NewSystem()
	x := s.Allocate("x")
	y := s.Allocate("y")
	g := NewCompressGadget(s, x, y, "pk")

	s.SetUint64(x, 0)
	s.SetUint64(y, 0)
	g.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
}

func TestCompressGadgetRejectsNonzeroXForZeroY(t *testing.T) {
	s := protoboard.NewSystem()
	x := s.Allocate("x")
	y := s.Allocate("y")
	NewCompressGadget(s, x, y, "pk")

	s.SetUint64(x, 1)
	s.SetUint64(y, 0)

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.NotNil(t, err)
}

func TestRequiredGadgetSkipsUnrequiredInvalidSignature(t *testing.T) {
	s := protoboard.NewSystem()
	ax, ay := s.Allocate("ax"), s.Allocate("ay")
	rx, ry := s.Allocate("rx"), s.Allocate("ry")
	sVar := s.Allocate("s")
	msg := s.Allocate("msg")
	required := s.Allocate("required")

	v := NewVerifier(s, ax, ay, rx, ry, sVar, msg, "sig")
	NewRequiredGadget(s, v, required, "sig")

	for _, vv := range []protoboard.Variable{ax, ay, rx, ry, sVar, msg} {
		s.SetUint64(vv, 0)
	}
	s.SetUint64(required, 0)
	v.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
}
