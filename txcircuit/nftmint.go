// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txcircuit

import (
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/leaf"
	"github.com/luxfi/zkrollup-circuits/mathgadgets"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/luxfi/zkrollup-circuits/slot"
)

// NFTMintInputs is an NFT-mint's witness: the metadata hash occupying the
// balance slot's WeightAMM field (§9's documented dual-use) and the
// quantity minted into that slot's balance. A storageID nonce stops the
// same mint authorization from being replayed.
type NFTMintInputs struct {
	MetadataHash protoboard.Variable
	Amount       protoboard.Variable
	StorageID    protoboard.Variable
}

// NFTMint installs a metadata hash into a fresh balance slot's WeightAMM
// and credits its balance with the minted quantity, signature-authorized
// by the minting account.
type NFTMint struct {
	Output *Output
	Nonce  *slot.NonceGadget
	Credit *mathgadgets.AddGadget
	active protoboard.Variable
}

// NewNFTMint wires the metadata install, balance credit, and nonce
// consumption.
func NewNFTMint(s *protoboard.System, before *Before, in *NFTMintInputs, name string) *NFTMint {
	out := NewIdentityOutput(s, before)
	active := one(s)

	stBefore := &leaf.Storage{Data: before.StorageA.Data, StorageID: before.StorageA.StorageID}
	nonce := slot.NewNonceGadget(s, in.StorageID, stBefore, active, name+".nonce")
	out.StorageA.Data = active
	out.StorageA.StorageID = in.StorageID

	credit := mathgadgets.NewAddGadget(s, before.BalanceAS.Balance, in.Amount, config.NumBitsAmount, name+".credit")
	out.BalanceAS.Balance = credit.Sum
	out.BalanceAS.WeightAMM = in.MetadataHash
	out.SignatureRequiredA = active

	return &NFTMint{Output: out, Nonce: nonce, Credit: credit, active: active}
}

// Fill computes the balance credit and the pinned-active bit.
func (n *NFTMint) Fill(s *protoboard.System) {
	fillOne(s, n.active)
	n.Nonce.Fill(s)
	n.Credit.Fill(s)
	fillZero(s, n.Output.HashA, n.Output.HashB)
}
