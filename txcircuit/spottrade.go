// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import (
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/mathgadgets"
	"github.com/luxfi/zkrollup-circuits/order"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// SpotTradeInputs is a spot trade's witness (§4.7, §4.9): the two
// counter-party order commitments, the fills each contributes this
// transaction, their storage-tracked filled-so-far amounts, the current
// block timestamp, and the protocol/trading fee bips applied to each leg.
type SpotTradeInputs struct {
	A, B                     *order.Order
	FillSA, FillBA           protoboard.Variable
	FillSB, FillBB           protoboard.Variable
	FilledA, FilledB         protoboard.Variable
	Timestamp                protoboard.Variable
	ProtocolFeeBipsA, ProtocolFeeBipsB protoboard.Variable
}

// SpotTrade settles two matched orders: A sells fillSA of tokenS to B for
// fillBA of tokenB (and symmetrically for B), deducting protocol and
// trading fees from each side's buy leg and crediting them to the
// protocol/operator balances. Both order message hashes are exposed as
// HashA/HashB for the block-level signature check against each account's
// public key (§4.6, §4.9) — a spot trade is authorized by the orders'
// signatures, not a direct transaction signature.
type SpotTrade struct {
	Output     *Output
	Validate   *order.MatchingGadget
	OrderA     *order.Gadget
	OrderB     *order.Gadget
	FeeA       *order.FeeCalculator
	FeeB       *order.FeeCalculator
	DebitAS    *mathgadgets.SubGadget
	DebitBS    *mathgadgets.SubGadget
	CreditABGross *mathgadgets.AddGadget
	CreditBAGross *mathgadgets.AddGadget
	CreditAB   *mathgadgets.SubGadget
	CreditBA   *mathgadgets.SubGadget
	ProtocolCreditA *mathgadgets.AddGadget
	ProtocolCreditB *mathgadgets.AddGadget
}

// NewSpotTrade validates the order pair, computes both fee legs, and wires
// the six balance adjustments (two debits, two fee-net credits, and the
// two protocol-fee credits).
func NewSpotTrade(s *protoboard.System, before *Before, in *SpotTradeInputs, name string) *SpotTrade {
	out := NewIdentityOutput(s, before)

	orderA := order.NewGadget(s, in.A, name+".orderA")
	orderB := order.NewGadget(s, in.B, name+".orderB")
	validate := order.NewMatchingGadget(s, in.A, in.B, in.FillSA, in.FillBA, in.FillSB, in.FillBB, in.FilledA, in.FilledB, in.Timestamp, name+".match")

	feeA := order.NewFeeCalculator(s, in.FillBA, in.ProtocolFeeBipsA, in.A.FeeBips, name+".feeA")
	feeB := order.NewFeeCalculator(s, in.FillBB, in.ProtocolFeeBipsB, in.B.FeeBips, name+".feeB")

	debitAS := mathgadgets.NewSubGadget(s, before.BalanceAS.Balance, in.FillSA, config.NumBitsAmount, name+".debitAS")
	debitBS := mathgadgets.NewSubGadget(s, before.BalanceBS.Balance, in.FillSB, config.NumBitsAmount, name+".debitBS")

	// A receives fillBA of tokenB, minus both fee legs.
	creditABGross := mathgadgets.NewAddGadget(s, before.BalanceAB.Balance, in.FillBA, config.NumBitsAmount, name+".creditABGross")
	creditAB := mathgadgets.NewSubGadget(s, creditABGross.Sum, addFees(feeA), config.NumBitsAmount, name+".creditAB")

	creditBAGross := mathgadgets.NewAddGadget(s, before.BalanceBB.Balance, in.FillBB, config.NumBitsAmount, name+".creditBAGross")
	creditBA := mathgadgets.NewSubGadget(s, creditBAGross.Sum, addFees(feeB), config.NumBitsAmount, name+".creditBA")

	protocolCreditA := mathgadgets.NewAddGadget(s, before.BalancePA.Balance, feeA.ProtocolFee.Result, config.NumBitsAmount, name+".protocolCreditA")
	protocolCreditB := mathgadgets.NewAddGadget(s, before.BalancePB.Balance, feeB.ProtocolFee.Result, config.NumBitsAmount, name+".protocolCreditB")

	out.BalanceAS.Balance = debitAS.Diff
	out.BalanceBS.Balance = debitBS.Diff
	out.BalanceAB.Balance = creditAB.Diff
	out.BalanceBB.Balance = creditBA.Diff
	out.BalancePA.Balance = protocolCreditA.Sum
	out.BalancePB.Balance = protocolCreditB.Sum

	out.HashA = orderA.MessageHash.Output
	out.HashB = orderB.MessageHash.Output
	out.SignatureRequiredA = one(s)
	out.SignatureRequiredB = one(s)

	return &SpotTrade{
		Output: out, Validate: validate, OrderA: orderA, OrderB: orderB,
		FeeA: feeA, FeeB: feeB, DebitAS: debitAS, DebitBS: debitBS,
		CreditABGross: creditABGross, CreditBAGross: creditBAGross,
		CreditAB: creditAB, CreditBA: creditBA,
		ProtocolCreditA: protocolCreditA, ProtocolCreditB: protocolCreditB,
	}
}

// addFees is a helper name binding feeA's two fee outputs for the credit
// subtraction gadget below; defined separately since MulDivGadget.Result
// of each leg must first be summed natively before use in a SubGadget.
func addFees(fc *order.FeeCalculator) protoboard.Variable {
	return fc.CombinedFeeVariable()
}

// Fill fills every composed gadget in dependency order.
func (t *SpotTrade) Fill(s *protoboard.System) {
	t.OrderA.Fill(s)
	t.OrderB.Fill(s)
	t.FeeA.Fill(s)
	t.FeeB.Fill(s)
	t.FeeA.FillCombined(s)
	t.FeeB.FillCombined(s)
	t.DebitAS.Fill(s)
	t.DebitBS.Fill(s)
	t.CreditABGross.Fill(s)
	t.CreditBAGross.Fill(s)
	t.CreditAB.Fill(s)
	t.CreditBA.Fill(s)
	t.ProtocolCreditA.Fill(s)
	t.ProtocolCreditB.Fill(s)
	fillOne(s, t.Output.SignatureRequiredA, t.Output.SignatureRequiredB)
}
