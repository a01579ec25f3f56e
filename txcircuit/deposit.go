// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import (
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/mathgadgets"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// DepositInputs is a deposit's witness: the depositing account/token
// address, the amount credited (already verified against the L1 deposit
// log outside the circuit), and the
// owner/public key to install if this account slot was previously unused.
type DepositInputs struct {
	AccountID protoboard.Variable
	Amount    protoboard.Variable
	Owner     protoboard.Variable
	PublicKeyX, PublicKeyY protoboard.Variable
}

// Deposit credits a balance and, for a fresh account slot, installs the
// owner/public key (§4.9): no signature is required since the L1 deposit
// log already authorizes the credit.
type Deposit struct {
	Output *Output
	Sum    *mathgadgets.AddGadget
}

// NewDeposit wires balanceAS.balance = before + amount and overwrites
// accountA's owner/public key with the witness-supplied values (a no-op
// when the account already existed and the caller passes through the same
// values it read).
func NewDeposit(s *protoboard.System, before *Before, in *DepositInputs, name string) *Deposit {
	out := NewIdentityOutput(s, before)
	sum := mathgadgets.NewAddGadget(s, before.BalanceAS.Balance, in.Amount, config.NumBitsAmount, name+".sum")
	out.BalanceAS.Balance = sum.Sum
	out.AccountA.Owner = in.Owner
	out.AccountA.PublicKeyX = in.PublicKeyX
	out.AccountA.PublicKeyY = in.PublicKeyY
	return &Deposit{Output: out, Sum: sum}
}

// Fill computes the new balance and zeroes the always-inactive outputs.
func (d *Deposit) Fill(s *protoboard.System) {
	d.Sum.Fill(s)
	fillZero(s, d.Output.HashA, d.Output.HashB, d.Output.SignatureRequiredA, d.Output.SignatureRequiredB)
}
