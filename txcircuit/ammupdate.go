// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import (
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/mathgadgets"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// AMMUpdateInputs is an AMM-update's witness: the signed weight delta
// (pool-share change) and signed balance delta an AMM liquidity event
// applies to a single balance slot (§4.9). Both are supplied as a
// magnitude plus an IsWithdraw flag rather than a native signed field
// element, matching how every other amount in this repository is carried.
type AMMUpdateInputs struct {
	BalanceDelta protoboard.Variable
	WeightDelta  protoboard.Variable
	IsWithdraw   bool
}

// AMMUpdate adjusts a balance and its AMM pool weight together,
// on-chain-authorized (no signature) like WithdrawalConditional.
type AMMUpdate struct {
	Output       *Output
	BalanceMath  *mathgadgets.AddGadget
	BalanceSub   *mathgadgets.SubGadget
	WeightMath   *mathgadgets.AddGadget
	WeightSub    *mathgadgets.SubGadget
	isWithdraw   bool
	before       protoboard.Variable
}

// NewAMMUpdate wires the balance/weight adjustment in the requested
// direction and counts the update toward the conditional-transaction
// tally, since AMM pool events are authorized by the AMM contract on L1,
// not by an EdDSA signature.
func NewAMMUpdate(s *protoboard.System, before *Before, in *AMMUpdateInputs, name string) *AMMUpdate {
	out := NewIdentityOutput(s, before)
	u := &AMMUpdate{Output: out, isWithdraw: in.IsWithdraw, before: before.NumConditionalTxsIn}

	if in.IsWithdraw {
		u.BalanceSub = mathgadgets.NewSubGadget(s, before.BalanceAS.Balance, in.BalanceDelta, config.NumBitsAmount, name+".balance")
		u.WeightSub = mathgadgets.NewSubGadget(s, before.BalanceAS.WeightAMM, in.WeightDelta, config.NumBitsAmount, name+".weight")
		out.BalanceAS.Balance = u.BalanceSub.Diff
		out.BalanceAS.WeightAMM = u.WeightSub.Diff
	} else {
		u.BalanceMath = mathgadgets.NewAddGadget(s, before.BalanceAS.Balance, in.BalanceDelta, config.NumBitsAmount, name+".balance")
		u.WeightMath = mathgadgets.NewAddGadget(s, before.BalanceAS.WeightAMM, in.WeightDelta, config.NumBitsAmount, name+".weight")
		out.BalanceAS.Balance = u.BalanceMath.Sum
		out.BalanceAS.WeightAMM = u.WeightMath.Sum
	}
	out.NumConditionalTxs = bumpConditionalCounter(s, before.NumConditionalTxsIn, name+".conditional")
	return u
}

// Fill computes whichever direction's gadgets were wired.
func (u *AMMUpdate) Fill(s *protoboard.System) {
	if u.isWithdraw {
		u.BalanceSub.Fill(s)
		u.WeightSub.Fill(s)
	} else {
		u.BalanceMath.Fill(s)
		u.WeightMath.Fill(s)
	}
	fillBump(s, u.before, u.Output.NumConditionalTxs)
	fillZero(s, u.Output.HashA, u.Output.HashB, u.Output.SignatureRequiredA, u.Output.SignatureRequiredB)
}
