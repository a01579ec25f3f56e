// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import "github.com/luxfi/zkrollup-circuits/protoboard"

// AccountUpdateInputs is an account-update's witness: the replacement
// public key and AMM fee bips (§4.9). The account's own incrementing
// nonce, not a storage slot, provides replay protection here, since every
// account update is signed by the account's *current* key before rotation.
type AccountUpdateInputs struct {
	NewPublicKeyX, NewPublicKeyY protoboard.Variable
	NewFeeBipsAMM                protoboard.Variable
}

// AccountUpdate installs a new public key/AMM fee bips pair and bumps the
// account's nonce, requiring a signature against the account's old key.
type AccountUpdate struct {
	Output *Output
	before protoboard.Variable
}

// NewAccountUpdate wires the key rotation and nonce bump.
func NewAccountUpdate(s *protoboard.System, before *Before, in *AccountUpdateInputs, name string) *AccountUpdate {
	out := NewIdentityOutput(s, before)
	out.AccountA.PublicKeyX = in.NewPublicKeyX
	out.AccountA.PublicKeyY = in.NewPublicKeyY
	out.AccountA.FeeBipsAMM = in.NewFeeBipsAMM
	out.AccountA.Nonce = bumpConditionalCounter(s, before.AccountA.Nonce, name+".nonce")
	out.SignatureRequiredA = one(s)
	// the Poseidon message this signature covers is over the *new* key and
	// fee bips together with the pre-rotation nonce, matching the order
	// message's "commit to the change, sign with the old key" shape.
	out.PubKeyXA = before.AccountA.PublicKeyX
	out.PubKeyYA = before.AccountA.PublicKeyY
	return &AccountUpdate{Output: out, before: before.AccountA.Nonce}
}

// Fill computes the nonce bump and the pinned signature-required bit.
func (u *AccountUpdate) Fill(s *protoboard.System) {
	fillBump(s, u.before, u.Output.AccountA.Nonce)
	fillOne(s, u.Output.SignatureRequiredA)
	fillZero(s, u.Output.HashA, u.Output.HashB)
}
