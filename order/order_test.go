// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package order

import (
	"testing"

	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

// setupSpotTradeScenario assigns a fully-specified order matching scenario S1: two
// matching orders (amountS=1000, amountB=100 vs amountS=100, amountB=1000),
// taker=0, feeBips=0, non-expired.
func setupSpotTradeScenario(s *protoboard.System) (a, b *Order, fillSA, fillBA, fillSB, fillBB, filledA, filledB, timestamp protoboard.Variable) {
	a = AllocateOrder(s, "a")
	b = AllocateOrder(s, "b")

	s.SetUint64(a.TokenS, 1)
	s.SetUint64(a.TokenB, 2)
	s.SetUint64(a.AmountS, 1000)
	s.SetUint64(a.AmountB, 100)
	s.SetUint64(a.ValidUntil, 1000)
	s.SetUint64(a.Taker, 0)
	s.SetUint64(a.FillAmountBorS, 0)
	s.SetUint64(a.AccountID, 1)

	s.SetUint64(b.TokenS, 2)
	s.SetUint64(b.TokenB, 1)
	s.SetUint64(b.AmountS, 100)
	s.SetUint64(b.AmountB, 1000)
	s.SetUint64(b.ValidUntil, 1000)
	s.SetUint64(b.Taker, 0)
	s.SetUint64(b.FillAmountBorS, 0)
	s.SetUint64(b.AccountID, 2)

	fillSA = s.Allocate("fillSA")
	fillBA = s.Allocate("fillBA")
	fillSB = s.Allocate("fillSB")
	fillBB = s.Allocate("fillBB")
	s.SetUint64(fillSA, 1000)
	s.SetUint64(fillBA, 100)
	s.SetUint64(fillSB, 100)
	s.SetUint64(fillBB, 1000)

	filledA = s.Allocate("filledA")
	filledB = s.Allocate("filledB")
	s.SetUint64(filledA, 0)
	s.SetUint64(filledB, 0)

	timestamp = s.Allocate("timestamp")
	s.SetUint64(timestamp, 1)
	return
}

func TestMatchingGadgetAcceptsFullFill(t *testing.T) {
	s := protoboard.NewSystem()
	a, b, fillSA, fillBA, fillSB, fillBB, filledA, filledB, ts := setupSpotTradeScenario(s)
	NewMatchingGadget(s, a, b, fillSA, fillBA, fillSB, fillBB, filledA, filledB, ts, "trade")

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
}

func TestMatchingGadgetRejectsTokenMismatch(t *testing.T) {
	s := protoboard.NewSystem()
	a, b, fillSA, fillBA, fillSB, fillBB, filledA, filledB, ts := setupSpotTradeScenario(s)
	s.SetUint64(b.TokenB, 99)
	NewMatchingGadget(s, a, b, fillSA, fillBA, fillSB, fillBB, filledA, filledB, ts, "trade")

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.NotNil(t, err)
}

func TestMatchingGadgetRejectsExpiredOrder(t *testing.T) {
	s := protoboard.NewSystem()
	a, b, fillSA, fillBA, fillSB, fillBB, filledA, filledB, ts := setupSpotTradeScenario(s)
	s.SetUint64(a.ValidUntil, 0)
	NewMatchingGadget(s, a, b, fillSA, fillBA, fillSB, fillBB, filledA, filledB, ts, "trade")

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.NotNil(t, err)
}

func TestFeeCalculatorComputesFloorDivision(t *testing.T) {
	s := protoboard.NewSystem()
	fillB := s.Allocate("fillB")
	protocolFeeBips := s.Allocate("protocolFeeBips")
	feeBips := s.Allocate("feeBips")
	s.SetUint64(fillB, 1000)
	s.SetUint64(protocolFeeBips, 10)
	s.SetUint64(feeBips, 30)

	fc := NewFeeCalculator(s, fillB, protocolFeeBips, feeBips, "fee")
	fc.Fill(s)
	fc.FillCombined(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
}
