// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import "github.com/luxfi/zkrollup-circuits/protoboard"

// Noop is the padding transaction (§4.9): every output stays at its
// identity default, no signature required, no public data. block.NewBlock
// itself does no padding; it takes the transaction list it is given.
type Noop struct {
	Output *Output
}

// NewNoop returns the identity Output unmodified.
func NewNoop(s *protoboard.System, before *Before) *Noop {
	return &Noop{Output: NewIdentityOutput(s, before)}
}

// Fill zeroes the identity Output's pinned-zero hash and signature-required
// placeholders; every other output is a Before variable the caller fills.
func (n *Noop) Fill(s *protoboard.System) {
	fillZero(s, n.Output.HashA, n.Output.HashB, n.Output.SignatureRequiredA, n.Output.SignatureRequiredB)
}
