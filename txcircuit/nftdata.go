// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import "github.com/luxfi/zkrollup-circuits/protoboard"

// NFTDataInputs is an NFT-data transaction's witness: no balance or
// account state changes; it exists purely to republish a minted NFT's
// metadata hash and owning account/token on public data (§4.9) after an
// operator decides the original mint's data-availability blob needs
// reasserting (e.g. following an L1 data-availability challenge window).
type NFTDataInputs struct {
	AccountID protoboard.Variable
	TokenID   protoboard.Variable
}

// NFTData republishes an existing NFT slot's metadata hash without
// touching any balance or account field.
type NFTData struct {
	Output *Output
	in     *NFTDataInputs
}

// NewNFTData reads the balance slot's WeightAMM (the NFT metadata hash)
// straight into the transaction's public data, leaving every other output
// at its identity default.
func NewNFTData(s *protoboard.System, before *Before, in *NFTDataInputs, name string) *NFTData {
	out := NewIdentityOutput(s, before)
	out.PublicData = []protoboard.Variable{in.AccountID, in.TokenID, before.BalanceAS.WeightAMM}
	return &NFTData{Output: out, in: in}
}

// Fill zeroes every inactive output; the public-data slice reads existing
// witness values and needs no separate fill step.
func (d *NFTData) Fill(s *protoboard.System) {
	fillZero(s, d.Output.HashA, d.Output.HashB, d.Output.SignatureRequiredA, d.Output.SignatureRequiredB)
}
