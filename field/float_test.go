// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundDown(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
	}{
		{"zero", 0},
		{"exact power", 10000},
		{"needs rounding", 123456789},
		{"small", 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			val := uint256.NewInt(tc.value)
			packed := Encode(config.Float24Encoding, val)
			decoded := Decode(config.Float24Encoding, packed)
			require.True(t, decoded.Cmp(val) <= 0, "decode(encode(v)) must not exceed v")
		})
	}
}

func TestFloatGadgetFillSatisfiesDecode(t *testing.T) {
	s := protoboard.NewSystem()
	g := NewFloatGadget(s, config.Float16Encoding, "fee")
	packed := Encode(config.Float16Encoding, uint256.NewInt(500))
	g.Fill(s, packed)

	ok, err := s.IsSatisfied()
	require.True(t, ok)
	require.Nil(t, err)
}

func TestRangeAccuracyGadgetRejectsOverBound(t *testing.T) {
	s := protoboard.NewSystem()
	value := s.Allocate("value")
	original := s.Allocate("original")
	NewRangeAccuracyGadget(s, value, original, config.Float16Accuracy, 96, "fee")

	s.SetUint64(value, 900)
	s.SetUint64(original, 1000)

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.NotNil(t, err)
}

func TestRangeAccuracyGadgetAcceptsWithinBound(t *testing.T) {
	s := protoboard.NewSystem()
	value := s.Allocate("value")
	original := s.Allocate("original")
	NewRangeAccuracyGadget(s, value, original, config.Float16Accuracy, 96, "fee")

	s.SetUint64(value, 995)
	s.SetUint64(original, 1000)

	ok, err := s.IsSatisfied()
	require.True(t, ok)
	require.Nil(t, err)
}
