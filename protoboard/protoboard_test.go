// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protoboard

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

func TestNewSystemAllocatesConstantOne(t *testing.T) {
	s := NewSystem()
	require.Equal(t, 1, s.NumVariables())
	one := s.Value(One)
	var want fr.Element
	want.SetOne()
	require.True(t, one.Equal(&want))
}

func TestAllocateArray(t *testing.T) {
	s := NewSystem()
	vars := s.AllocateArray("bits", 4)
	require.Len(t, vars, 4)
	require.Equal(t, 5, s.NumVariables())
	require.Equal(t, "bits[2]", s.Name(vars[2]))
}

func TestRequireEqualSatisfied(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		wantErr bool
	}{
		{"equal", 7, 7, false},
		{"unequal", 7, 8, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSystem()
			a := s.Allocate("a")
			b := s.Allocate("b")
			s.RequireEqual("a==b", a, b)
			s.SetUint64(a, tc.a)
			s.SetUint64(b, tc.b)

			ok, err := s.IsSatisfied()
			if tc.wantErr {
				require.False(t, ok)
				require.Error(t, err)
				require.Equal(t, "a==b", err.Gadget)
			} else {
				require.True(t, ok)
				require.Nil(t, err)
			}
		})
	}
}

func TestRequireBoolean(t *testing.T) {
	s := NewSystem()
	v := s.Allocate("v")
	s.RequireBoolean("v.bitness", v)
	s.SetUint64(v, 2)

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.ErrorIs(t, err, ErrNotBoolean)
}

func TestIsSatisfiedStopsAtFirstFailure(t *testing.T) {
	s := NewSystem()
	a := s.Allocate("a")
	b := s.Allocate("b")
	s.RequireEqual("first", a, b)
	s.RequireEqual("second", a, b)
	s.SetUint64(a, 1)
	s.SetUint64(b, 2)

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.Equal(t, "first", err.Gadget)
}

func TestIsSatisfiedLogsFailureWhenLoggerAttached(t *testing.T) {
	s := NewSystem()
	s.SetLogger(log.NewTestLogger(log.InfoLevel))
	a := s.Allocate("a")
	b := s.Allocate("b")
	s.RequireEqual("mismatch", a, b)
	s.SetUint64(a, 1)
	s.SetUint64(b, 2)

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.Equal(t, "mismatch", err.Gadget)
}
