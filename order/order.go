// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package order implements order validation, fill-rate/fill-limit
// checking, order matching, and fee calculation (§4.7, §4.8): the gadgets
// a spot-trade transaction composes to settle two counter-party orders
// against each other.
package order

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/mathgadgets"
	"github.com/luxfi/zkrollup-circuits/poseidon"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// Order is the order commitment of §3: everything an EdDSA signature
// covers via its Poseidon-12 message hash. It has no AMM, NFT or
// spot-trade flag fields.
type Order struct {
	StorageID      protoboard.Variable
	AccountID      protoboard.Variable
	TokenS         protoboard.Variable
	TokenB         protoboard.Variable
	AmountS        protoboard.Variable
	AmountB        protoboard.Variable
	ValidUntil     protoboard.Variable
	MaxFeeBips     protoboard.Variable
	FillAmountBorS protoboard.Variable
	FeeBips        protoboard.Variable
	Taker          protoboard.Variable
	ExchangeID     protoboard.Variable
}

// AllocateOrder allocates every order field.
func AllocateOrder(s *protoboard.System, name string) *Order {
	return &Order{
		StorageID:      s.Allocate(name + ".storageID"),
		AccountID:      s.Allocate(name + ".accountID"),
		TokenS:         s.Allocate(name + ".tokenS"),
		TokenB:         s.Allocate(name + ".tokenB"),
		AmountS:        s.Allocate(name + ".amountS"),
		AmountB:        s.Allocate(name + ".amountB"),
		ValidUntil:     s.Allocate(name + ".validUntil"),
		MaxFeeBips:     s.Allocate(name + ".maxFeeBips"),
		FillAmountBorS: s.Allocate(name + ".fillAmountBorS"),
		FeeBips:        s.Allocate(name + ".feeBips"),
		Taker:          s.Allocate(name + ".taker"),
		ExchangeID:     s.Allocate(name + ".exchangeID"),
	}
}

// Gadget validates a single order (§4.7's OrderGadget): tokenS != tokenB,
// amountS != 0, amountB != 0, feeBips <= maxFeeBips, and the Poseidon-12
// signed message hash.
type Gadget struct {
	Order     *Order
	MessageHash *poseidon.Gadget
}

// NewGadget allocates the message hash and records the four order-validity
// requirements.
func NewGadget(s *protoboard.System, o *Order, name string) *Gadget {
	mathgadgets.RequireNotEqual(s, o.TokenS, o.TokenB, name+".tokenSNeTokenB")
	mathgadgets.RequireNotZero(s, o.AmountS, name+".amountSNonzero")
	mathgadgets.RequireNotZero(s, o.AmountB, name+".amountBNonzero")
	mathgadgets.RequireLeq(s, o.FeeBips, o.MaxFeeBips, name+".feeBipsLeqMax")

	msg := poseidon.NewArbitrary(s, []protoboard.Variable{
		o.ExchangeID, o.StorageID, o.AccountID, o.TokenS, o.TokenB,
		o.AmountS, o.AmountB, o.ValidUntil, o.MaxFeeBips, o.FillAmountBorS,
		o.FeeBips, o.Taker,
	}, name+".message")
	return &Gadget{Order: o, MessageHash: msg}
}

// Fill fills the message hash.
func (g *Gadget) Fill(s *protoboard.System) {
	g.MessageHash.Fill(s)
}

func bigOf(s *protoboard.System, v protoboard.Variable) *big.Int {
	e := s.Value(v)
	bi := new(big.Int)
	e.BigInt(bi)
	return bi
}

// RequireFillRate records §4.7's cross-multiplied fill-rate check for one
// order: fillS*amountB*FillRateNumerator <= fillB*amountS*FillRateDenominator,
// mirroring RequireOrderFillRateGadget field-for-field, plus the "both
// zero or both non-zero" side constraint.
func RequireFillRate(s *protoboard.System, fillS, fillB, amountS, amountB protoboard.Variable, name string) {
	s.AddConstraint(name+".fillRate", func(s *protoboard.System) error {
		lhs := new(big.Int).Mul(bigOf(s, fillS), bigOf(s, amountB))
		lhs.Mul(lhs, big.NewInt(config.FillRateNumerator))
		rhs := new(big.Int).Mul(bigOf(s, fillB), bigOf(s, amountS))
		rhs.Mul(rhs, big.NewInt(config.FillRateDenominator))
		if lhs.Cmp(rhs) > 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	s.AddConstraint(name+".bothZeroOrBothNonzero", func(s *protoboard.System) error {
		sZero := bigOf(s, fillS).Sign() == 0
		bZero := bigOf(s, fillB).Sign() == 0
		if sZero != bZero {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// RequireFillLimit records §4.7's fill-limit check for one order:
// filledAfter = filled + (fillAmountBorS ? fillB : fillS), requiring
// filledAfter <= (fillAmountBorS ? amountB : amountS).
func RequireFillLimit(s *protoboard.System, filled, fillS, fillB, fillAmountBorS, amountS, amountB protoboard.Variable, name string) {
	s.AddConstraint(name+".fillLimit", func(s *protoboard.System) error {
		borS := !s.Value(fillAmountBorS).IsZero()
		var fillAmount, limit *big.Int
		if borS {
			fillAmount = bigOf(s, fillB)
			limit = bigOf(s, amountB)
		} else {
			fillAmount = bigOf(s, fillS)
			limit = bigOf(s, amountS)
		}
		after := new(big.Int).Add(bigOf(s, filled), fillAmount)
		if after.Cmp(limit) > 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// RequireTokenMatch records A.tokenS == B.tokenB && A.tokenB == B.tokenS.
func RequireTokenMatch(s *protoboard.System, a, b *Order, name string) {
	s.RequireEqual(name+".tokenSMatchesB", a.TokenS, b.TokenB)
	s.RequireEqual(name+".tokenBMatchesA", a.TokenB, b.TokenS)
}

// RequireTakerMatch records that order's taker is either zero (open) or
// equals the counter-party's account id.
func RequireTakerMatch(s *protoboard.System, order *Order, counterPartyAccountID protoboard.Variable, name string) {
	s.AddConstraint(name+".takerMatch", func(s *protoboard.System) error {
		taker := s.Value(order.Taker)
		if taker.IsZero() {
			return nil
		}
		cp := s.Value(counterPartyAccountID)
		if !taker.Equal(&cp) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
}

// RequireNotExpired records timestamp < validUntil.
func RequireNotExpired(s *protoboard.System, order *Order, timestamp protoboard.Variable, name string) {
	mathgadgets.RequireLt(s, timestamp, order.ValidUntil, name+".notExpired")
}

// MatchingGadget composes the full §4.7 order-matching check for a
// counter-party pair (A, B) given their proposed fills.
type MatchingGadget struct {
	A, B           *Order
	FillSA, FillSB protoboard.Variable
	FillBA, FillBB protoboard.Variable
	FilledA, FilledB protoboard.Variable
	Timestamp      protoboard.Variable
}

// NewMatchingGadget records every check of §4.7 for the pair.
//
// fillSA/fillBA are order A's sell/buy fills this transaction contributes;
// fillSB/fillBB are order B's. Since A sells tokenS to B and B sells
// tokenB to A under RequireTokenMatch, fillBA (A's buy-fill) equals
// fillSB (B's sell-fill) and vice versa; both equalities are recorded here.
func NewMatchingGadget(s *protoboard.System, a, b *Order, fillSA, fillBA, fillSB, fillBB, filledA, filledB, timestamp protoboard.Variable, name string) *MatchingGadget {
	RequireTokenMatch(s, a, b, name)
	s.RequireEqual(name+".fillBAMatchesFillSB", fillBA, fillSB)
	s.RequireEqual(name+".fillBBMatchesFillSA", fillBB, fillSA)
	RequireTakerMatch(s, a, b.AccountID, name+".a")
	RequireTakerMatch(s, b, a.AccountID, name+".b")
	RequireNotExpired(s, a, timestamp, name+".a")
	RequireNotExpired(s, b, timestamp, name+".b")

	RequireFillRate(s, fillSA, fillBA, a.AmountS, a.AmountB, name+".a")
	RequireFillRate(s, fillSB, fillBB, b.AmountS, b.AmountB, name+".b")
	RequireFillLimit(s, filledA, fillSA, fillBA, a.FillAmountBorS, a.AmountS, a.AmountB, name+".a")
	RequireFillLimit(s, filledB, fillSB, fillBB, b.FillAmountBorS, b.AmountS, b.AmountB, name+".b")

	return &MatchingGadget{
		A: a, B: b,
		FillSA: fillSA, FillBA: fillBA, FillSB: fillSB, FillBB: fillBB,
		FilledA: filledA, FilledB: filledB, Timestamp: timestamp,
	}
}

// FeeCalculator computes §4.8's two floor-divided fee amounts from a
// filled buy-side amount.
type FeeCalculator struct {
	protocolFeeDenom, feeDenom protoboard.Variable
	ProtocolFee                *mathgadgets.MulDivGadget
	Fee                        *mathgadgets.MulDivGadget
	combined                   protoboard.Variable
}

// NewFeeCalculator wires protocolFee = floor(fillB*protocolFeeBips/100000)
// and fee = floor(fillB*feeBips/10000), each range-checked to
// config.NumBitsAmount.
func NewFeeCalculator(s *protoboard.System, fillB, protocolFeeBips, feeBips protoboard.Variable, name string) *FeeCalculator {
	protocolFeeDenom := pinLiteral(s, config.ProtocolFeeDivisor, name+".protocolFeeDenom")
	feeDenom := pinLiteral(s, config.FeeDivisor, name+".feeDenom")
	fc := &FeeCalculator{
		protocolFeeDenom: protocolFeeDenom,
		feeDenom:         feeDenom,
		ProtocolFee:      mathgadgets.NewMulDivGadget(s, fillB, protocolFeeBips, protocolFeeDenom, config.NumBitsAmount, name+".protocolFee"),
		Fee:              mathgadgets.NewMulDivGadget(s, fillB, feeBips, feeDenom, config.NumBitsAmount, name+".fee"),
	}
	fc.combined = s.Allocate(name + ".combined")
	s.AddConstraint(name+".combined", func(s *protoboard.System) error {
		want := new(big.Int).Add(bigOf(s, fc.ProtocolFee.Result), bigOf(s, fc.Fee.Result))
		if bigOf(s, fc.combined).Cmp(want) != 0 {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return fc
}

// Fill assigns the pinned denominators and computes both fee amounts.
func (f *FeeCalculator) Fill(s *protoboard.System) {
	s.SetUint64(f.protocolFeeDenom, config.ProtocolFeeDivisor)
	s.SetUint64(f.feeDenom, config.FeeDivisor)
	f.ProtocolFee.Fill(s)
	f.Fee.Fill(s)
}

// CombinedFeeVariable is the allocated variable equal to protocolFee.Result
// + fee.Result, the total amount deducted from the buy-side credit.
func (f *FeeCalculator) CombinedFeeVariable() protoboard.Variable {
	return f.combined
}

// FillCombined fills the combined-fee variable. Callers must call this
// after Fill has computed both individual fee legs.
func (f *FeeCalculator) FillCombined(s *protoboard.System) {
	sum := new(big.Int).Add(bigOf(s, f.ProtocolFee.Result), bigOf(s, f.Fee.Result))
	var e fr.Element
	e.SetBigInt(sum)
	s.Set(f.combined, e)
}

func pinLiteral(s *protoboard.System, val uint64, name string) protoboard.Variable {
	v := s.Allocate(name)
	s.AddConstraint(name, func(s *protoboard.System) error {
		var want fr.Element
		want.SetUint64(val)
		got := s.Value(v)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return v
}
