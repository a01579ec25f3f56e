// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/order"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

// newBefore builds a Before state with every slot zeroed, suitable as a
// starting point for sub-circuit tests that only care about a handful of
// fields.
func newBefore(s *protoboard.System) *Before {
	acct := func(name string) AccountSlot {
		return AccountSlot{
			Address: s.Allocate(name + ".address"), Owner: s.Allocate(name + ".owner"),
			PublicKeyX: s.Allocate(name + ".pkx"), PublicKeyY: s.Allocate(name + ".pky"),
			Nonce: s.Allocate(name + ".nonce"), FeeBipsAMM: s.Allocate(name + ".feeBipsAMM"),
		}
	}
	bal := func(name string) BalanceSlot {
		return BalanceSlot{
			Address: s.Allocate(name + ".address"), Balance: s.Allocate(name + ".balance"),
			WeightAMM: s.Allocate(name + ".weightAMM"),
		}
	}
	stg := func(name string) StorageSlot {
		return StorageSlot{Address: s.Allocate(name + ".address"), Data: s.Allocate(name + ".data"), StorageID: s.Allocate(name + ".storageID")}
	}

	b := &Before{
		AccountA: acct("accountA"), AccountB: acct("accountB"),
		BalanceAS: bal("balanceAS"), BalanceAB: bal("balanceAB"),
		BalanceBS: bal("balanceBS"), BalanceBB: bal("balanceBB"),
		BalanceOA: bal("balanceOA"), BalanceOB: bal("balanceOB"),
		BalancePA: bal("balancePA"), BalancePB: bal("balancePB"),
		StorageA: stg("storageA"), StorageB: stg("storageB"),
		NumConditionalTxsIn: s.Allocate("numConditionalTxsIn"),
	}
	zeroAll(s, b)
	return b
}

func zeroAll(s *protoboard.System, b *Before) {
	for _, a := range []AccountSlot{b.AccountA, b.AccountB} {
		s.SetUint64(a.Address, 0)
		s.SetUint64(a.Owner, 0)
		s.SetUint64(a.PublicKeyX, 0)
		s.SetUint64(a.PublicKeyY, 0)
		s.SetUint64(a.Nonce, 0)
		s.SetUint64(a.FeeBipsAMM, 0)
	}
	for _, bl := range []BalanceSlot{b.BalanceAS, b.BalanceAB, b.BalanceBS, b.BalanceBB, b.BalanceOA, b.BalanceOB, b.BalancePA, b.BalancePB} {
		s.SetUint64(bl.Address, 0)
		s.SetUint64(bl.Balance, 0)
		s.SetUint64(bl.WeightAMM, 0)
	}
	for _, st := range []StorageSlot{b.StorageA, b.StorageB} {
		s.SetUint64(st.Address, 0)
		s.SetUint64(st.Data, 0)
		s.SetUint64(st.StorageID, 0)
	}
	s.SetUint64(b.NumConditionalTxsIn, 0)
}

func TestDepositCreditsBalance(t *testing.T) {
	s := protoboard.NewSystem()
	before := newBefore(s)
	s.SetUint64(before.BalanceAS.Balance, 500)

	amount := s.Allocate("amount")
	owner := s.Allocate("owner")
	pkx, pky := s.Allocate("pkx"), s.Allocate("pky")
	s.SetUint64(amount, 250)
	s.SetUint64(owner, 0)
	s.SetUint64(pkx, 0)
	s.SetUint64(pky, 0)

	d := NewDeposit(s, before, &DepositInputs{
		AccountID: before.AccountA.Address, Amount: amount,
		Owner: owner, PublicKeyX: pkx, PublicKeyY: pky,
	}, "deposit")
	d.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	require.Equal(t, uint64(750), toU64(s.Value(d.Output.BalanceAS.Balance)))
}

func TestWithdrawalUserDebitsBalanceAndConsumesNonce(t *testing.T) {
	s := protoboard.NewSystem()
	before := newBefore(s)
	s.SetUint64(before.BalanceAS.Balance, 1000)
	s.SetUint64(before.StorageA.StorageID, 7)
	s.SetUint64(before.StorageA.Data, 0)

	amount := s.Allocate("amount")
	storageID := s.Allocate("storageID")
	s.SetUint64(amount, 400)
	s.SetUint64(storageID, 7)

	w := NewWithdrawal(s, before, &WithdrawalInputs{
		Type: config.WithdrawalUser, Amount: amount, StorageID: storageID,
	}, "withdraw")
	w.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	require.Equal(t, uint64(600), toU64(s.Value(w.Output.BalanceAS.Balance)))
	require.Equal(t, uint64(1), toU64(s.Value(w.Output.SignatureRequiredA)))
}

func TestWithdrawalRejectsReplayedStorageID(t *testing.T) {
	s := protoboard.NewSystem()
	before := newBefore(s)
	s.SetUint64(before.BalanceAS.Balance, 1000)
	s.SetUint64(before.StorageA.StorageID, 7)
	s.SetUint64(before.StorageA.Data, 1) // already consumed

	amount := s.Allocate("amount")
	storageID := s.Allocate("storageID")
	s.SetUint64(amount, 400)
	s.SetUint64(storageID, 7)

	w := NewWithdrawal(s, before, &WithdrawalInputs{
		Type: config.WithdrawalUser, Amount: amount, StorageID: storageID,
	}, "withdraw")
	w.Fill(s)

	ok, _ := s.IsSatisfied()
	require.False(t, ok)
}

func TestTransferMovesBalanceAndPaysFee(t *testing.T) {
	s := protoboard.NewSystem()
	before := newBefore(s)
	s.SetUint64(before.BalanceAS.Balance, 1000)
	s.SetUint64(before.BalanceBB.Balance, 0)
	s.SetUint64(before.BalanceOA.Balance, 0)
	s.SetUint64(before.StorageA.StorageID, 0)
	s.SetUint64(before.StorageA.Data, 0)

	amount := s.Allocate("amount")
	fee := s.Allocate("fee")
	storageID := s.Allocate("storageID")
	s.SetUint64(amount, 900)
	s.SetUint64(fee, 10)
	s.SetUint64(storageID, 0)

	tr := NewTransfer(s, before, &TransferInputs{Amount: amount, Fee: fee, StorageID: storageID}, "transfer")
	tr.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	require.Equal(t, uint64(90), toU64(s.Value(tr.Output.BalanceAS.Balance)))
	require.Equal(t, uint64(900), toU64(s.Value(tr.Output.BalanceBB.Balance)))
	require.Equal(t, uint64(10), toU64(s.Value(tr.Output.BalanceOA.Balance)))
}

func TestSpotTradeSettlesBothLegs(t *testing.T) {
	s := protoboard.NewSystem()
	before := newBefore(s)
	s.SetUint64(before.BalanceAS.Balance, 1000)
	s.SetUint64(before.BalanceAB.Balance, 0)
	s.SetUint64(before.BalanceBS.Balance, 100)
	s.SetUint64(before.BalanceBB.Balance, 0)
	s.SetUint64(before.BalancePA.Balance, 0)
	s.SetUint64(before.BalancePB.Balance, 0)

	a := order.AllocateOrder(s, "a")
	b := order.AllocateOrder(s, "b")
	s.SetUint64(a.TokenS, 1)
	s.SetUint64(a.TokenB, 2)
	s.SetUint64(a.AmountS, 1000)
	s.SetUint64(a.AmountB, 100)
	s.SetUint64(a.ValidUntil, 1000)
	s.SetUint64(a.Taker, 0)
	s.SetUint64(a.FillAmountBorS, 0)
	s.SetUint64(a.AccountID, 1)
	s.SetUint64(a.FeeBips, 0)
	s.SetUint64(a.MaxFeeBips, 0)

	s.SetUint64(b.TokenS, 2)
	s.SetUint64(b.TokenB, 1)
	s.SetUint64(b.AmountS, 100)
	s.SetUint64(b.AmountB, 1000)
	s.SetUint64(b.ValidUntil, 1000)
	s.SetUint64(b.Taker, 0)
	s.SetUint64(b.FillAmountBorS, 0)
	s.SetUint64(b.AccountID, 2)
	s.SetUint64(b.FeeBips, 0)
	s.SetUint64(b.MaxFeeBips, 0)

	fillSA, fillBA := s.Allocate("fillSA"), s.Allocate("fillBA")
	fillSB, fillBB := s.Allocate("fillSB"), s.Allocate("fillBB")
	filledA, filledB := s.Allocate("filledA"), s.Allocate("filledB")
	timestamp := s.Allocate("timestamp")
	s.SetUint64(fillSA, 1000)
	s.SetUint64(fillBA, 100)
	s.SetUint64(fillSB, 100)
	s.SetUint64(fillBB, 1000)
	s.SetUint64(filledA, 0)
	s.SetUint64(filledB, 0)
	s.SetUint64(timestamp, 1)

	protoA := s.Allocate("protocolFeeBipsA")
	protoB := s.Allocate("protocolFeeBipsB")
	s.SetUint64(protoA, 0)
	s.SetUint64(protoB, 0)

	trade := NewSpotTrade(s, before, &SpotTradeInputs{
		A: a, B: b, FillSA: fillSA, FillBA: fillBA, FillSB: fillSB, FillBB: fillBB,
		FilledA: filledA, FilledB: filledB, Timestamp: timestamp,
		ProtocolFeeBipsA: protoA, ProtocolFeeBipsB: protoB,
	}, "trade")
	trade.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	require.Equal(t, uint64(0), toU64(s.Value(trade.Output.BalanceAS.Balance)))
	require.Equal(t, uint64(100), toU64(s.Value(trade.Output.BalanceAB.Balance)))
	require.Equal(t, uint64(0), toU64(s.Value(trade.Output.BalanceBS.Balance)))
	require.Equal(t, uint64(1000), toU64(s.Value(trade.Output.BalanceBB.Balance)))
}

func toU64(e fr.Element) uint64 {
	bi := new(big.Int)
	e.BigInt(bi)
	return bi.Uint64()
}
