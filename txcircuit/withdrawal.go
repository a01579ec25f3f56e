// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/field"
	"github.com/luxfi/zkrollup-circuits/leaf"
	"github.com/luxfi/zkrollup-circuits/mathgadgets"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/luxfi/zkrollup-circuits/slot"
)

// WithdrawalInputs is a withdrawal's witness: the withdrawing account's
// balance slot, the amount requested, its dispatch kind (§4.9's four
// shapes), and the storageID consumed for replay protection on the
// user-initiated and conditional variants.
type WithdrawalInputs struct {
	Type      config.WithdrawalType
	Amount    protoboard.Variable
	StorageID protoboard.Variable
}

// Withdrawal debits a balance according to one of four dispatch kinds
// (§4.9):
//
//   - WithdrawUser: signature-authorized, amount fixed by the order, storage
//     nonce consumed.
//   - WithdrawConditional: on-chain authorized (no signature), storage nonce
//     consumed, counts toward the block's conditional-transaction tally.
//   - WithdrawValidFull: withdraws the account's entire balance; no storage
//     nonce needed since there is nothing left to replay against.
//   - WithdrawInvalidFull: a no-op debit (balance unchanged) the operator
//     submits when a full withdrawal request cannot be honored, so the
//     block does not have to omit the transaction slot entirely.
type Withdrawal struct {
	Output    *Output
	Nonce     *slot.NonceGadget
	Diff      *mathgadgets.SubGadget
	Committed *field.FloatGadget // float24-encoded amount published on L1, user/conditional paths only
	active    protoboard.Variable // pinned to 1 on the user/conditional paths
	isUser    bool
	isCond    bool
	isFull    bool
	isVoid    bool
	before    protoboard.Variable
}

// NewWithdrawal dispatches on in.Type and wires the matching debit logic.
func NewWithdrawal(s *protoboard.System, before *Before, in *WithdrawalInputs, name string) *Withdrawal {
	out := NewIdentityOutput(s, before)
	w := &Withdrawal{Output: out, before: before.NumConditionalTxsIn}

	switch in.Type {
	case config.WithdrawalUser, config.WithdrawalConditional:
		active := one(s)
		w.active = active
		stBefore := &leaf.Storage{Data: before.StorageA.Data, StorageID: before.StorageA.StorageID}
		w.Nonce = slot.NewNonceGadget(s, in.StorageID, stBefore, active, name+".nonce")
		w.Diff = mathgadgets.NewSubGadget(s, before.BalanceAS.Balance, in.Amount, config.NumBitsAmount, name+".debit")
		out.BalanceAS.Balance = w.Diff.Diff
		out.StorageA.Data = active
		out.StorageA.StorageID = in.StorageID

		// The amount leaving the tree is published on L1 float24-encoded to
		// save calldata (§4.1); the decoded value must round down from the
		// real debit by no more than Float24Accuracy's relative bound.
		committed := field.NewFloatGadget(s, config.Float24Encoding, name+".committedAmount")
		field.NewRangeAccuracyGadget(s, committed.ValueVar, in.Amount, config.Float24Accuracy, config.NumBitsAmount, name+".amountAccuracy")
		w.Committed = committed
		out.PublicData = committed.BitsVar
		if in.Type == config.WithdrawalUser {
			w.isUser = true
			out.SignatureRequiredA = active
		} else {
			w.isCond = true
			out.NumConditionalTxs = bumpConditionalCounter(s, before.NumConditionalTxsIn, name+".conditional")
		}

	case config.WithdrawalValidFull:
		w.isFull = true
		out.BalanceAS.Balance = zero(s)

	case config.WithdrawalInvalidFull:
		w.isVoid = true
		// balance stays at the identity default; nothing else changes.

	default:
		panic("txcircuit: unknown withdrawal type")
	}
	return w
}

// Fill computes whichever sub-path was wired and zeroes the outputs the
// inactive paths leave at their identity default.
func (w *Withdrawal) Fill(s *protoboard.System) {
	switch {
	case w.isUser, w.isCond:
		fillOne(s, w.active)
		w.Nonce.Fill(s)
		w.Diff.Fill(s)
		w.Committed.Fill(s, amountToPacked(s, w.Diff.B))
		if w.isCond {
			fillBump(s, w.before, w.Output.NumConditionalTxs)
		}
		fillZero(s, w.Output.HashA, w.Output.HashB)
		if w.isCond {
			fillZero(s, w.Output.SignatureRequiredA)
		}
	case w.isFull:
		s.SetUint64(w.Output.BalanceAS.Balance, 0)
		fillZero(s, w.Output.HashA, w.Output.HashB, w.Output.SignatureRequiredA, w.Output.SignatureRequiredB)
	case w.isVoid:
		fillZero(s, w.Output.HashA, w.Output.HashB, w.Output.SignatureRequiredA, w.Output.SignatureRequiredB)
	}
}

// amountToPacked reads v's current witness value and rounds it down to the
// nearest float24-representable packed bit pattern.
func amountToPacked(s *protoboard.System, v protoboard.Variable) uint64 {
	e := s.Value(v)
	bi := new(big.Int)
	e.BigInt(bi)
	u, _ := uint256.FromBig(bi)
	return field.Encode(config.Float24Encoding, u)
}
