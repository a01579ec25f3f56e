// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import (
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// SignatureVerificationInputs is a standalone signature-verification
// transaction's witness (§4.9): proves account A signed an arbitrary
// application-level message, without moving any balance. The message is
// exposed only as HashA for the signature check; it is not placed in the
// transaction's public data.
type SignatureVerificationInputs struct {
	Message protoboard.Variable
}

// SignatureVerification exposes Message as HashA and requires A's
// signature, leaving every balance and account field untouched.
type SignatureVerification struct {
	Output *Output
}

// NewSignatureVerification wires the message straight into HashA.
func NewSignatureVerification(s *protoboard.System, before *Before, in *SignatureVerificationInputs, name string) *SignatureVerification {
	out := NewIdentityOutput(s, before)
	out.HashA = in.Message
	out.SignatureRequiredA = one(s)
	return &SignatureVerification{Output: out}
}

// Fill pins the signature-required bit and zeroes the unused HashB output.
func (v *SignatureVerification) Fill(s *protoboard.System) {
	fillOne(s, v.Output.SignatureRequiredA)
	fillZero(s, v.Output.HashB)
}
