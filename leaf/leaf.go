// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package leaf defines the Account, Balance, Storage, and TradeHistory leaf
// shapes of the data model (§3) and the thin `UpdateX` wrappers that bind
// each leaf's field list and tree depth to merkle.Update — the "composed
// leaf updaters" of §4.4.
//
// A cyclic-looking reference — balance leaves hold a storage-tree root,
// storage leaves live inside that tree — is broken the way §9's design
// notes require: the leaf hash takes the storage root as a field-element
// input, never a pointer back into the tree.
package leaf

import (
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/merkle"
	"github.com/luxfi/zkrollup-circuits/poseidon"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// Account is the 6-field account leaf (§3): owner address, EdDSA public
// key, nonce, AMM fee bips, and the root of that account's balance tree.
type Account struct {
	Owner        protoboard.Variable
	PublicKeyX   protoboard.Variable
	PublicKeyY   protoboard.Variable
	Nonce        protoboard.Variable
	FeeBipsAMM   protoboard.Variable
	BalancesRoot protoboard.Variable
}

// AllocateAccount allocates the six leaf fields, unconstrained beyond their
// range checks being the caller's responsibility at the point of use.
func AllocateAccount(s *protoboard.System, name string) *Account {
	return &Account{
		Owner:        s.Allocate(name + ".owner"),
		PublicKeyX:   s.Allocate(name + ".pubkeyX"),
		PublicKeyY:   s.Allocate(name + ".pubkeyY"),
		Nonce:        s.Allocate(name + ".nonce"),
		FeeBipsAMM:   s.Allocate(name + ".feeBipsAMM"),
		BalancesRoot: s.Allocate(name + ".balancesRoot"),
	}
}

// Hash allocates and records H6(owner, pubkeyX, pubkeyY, nonce,
// feeBipsAMM, balancesRoot) — the account-leaf instance of §4.3.
func (a *Account) Hash(s *protoboard.System, name string) *poseidon.Gadget {
	return poseidon.NewH6(s, [6]protoboard.Variable{
		a.Owner, a.PublicKeyX, a.PublicKeyY, a.Nonce, a.FeeBipsAMM, a.BalancesRoot,
	}, name)
}

// Balance is the 3-field balance leaf (§3): balance, weightAMM (doubling as
// NFT-hash storage per the documented overload below), and the storage
// tree's root.
//
// WeightAMM overload: this field carries the AMM pool weight when the
// balance is part of a liquidity pool (txcircuit's AMM-update sub-circuit),
// or an NFT metadata hash when the slot holds a minted NFT (txcircuit's
// NFT-mint sub-circuit). The two uses are mutually exclusive per balance
// slot and disambiguated entirely by which transaction kind last wrote it;
// see §6 of SPEC_FULL.md for the Open-Question resolution.
type Balance struct {
	Balance     protoboard.Variable
	WeightAMM   protoboard.Variable
	StorageRoot protoboard.Variable
}

// AllocateBalance allocates the three leaf fields.
func AllocateBalance(s *protoboard.System, name string) *Balance {
	return &Balance{
		Balance:     s.Allocate(name + ".balance"),
		WeightAMM:   s.Allocate(name + ".weightAMM"),
		StorageRoot: s.Allocate(name + ".storageRoot"),
	}
}

// Hash allocates and records H5(balance, weightAMM, storageRoot, 0, 0),
// padding to the shared H5 arity used by both balance leaves and internal
// Merkle nodes.
func (b *Balance) Hash(s *protoboard.System, zero protoboard.Variable, name string) *poseidon.Gadget {
	return poseidon.NewH5(s, [5]protoboard.Variable{
		b.Balance, b.WeightAMM, b.StorageRoot, zero, zero,
	}, name)
}

// Storage is the storage leaf (§3): the slot's data payload and the
// storageID that last wrote it, used by both the order fill-progress
// tracker and the replay-protection nonce gadget.
type Storage struct {
	Data      protoboard.Variable
	StorageID protoboard.Variable
}

// AllocateStorage allocates the two leaf fields.
func AllocateStorage(s *protoboard.System, name string) *Storage {
	return &Storage{
		Data:      s.Allocate(name + ".data"),
		StorageID: s.Allocate(name + ".storageID"),
	}
}

// Hash allocates and records H5(data, storageID, 0, 0, 0).
func (st *Storage) Hash(s *protoboard.System, zero protoboard.Variable, name string) *poseidon.Gadget {
	return poseidon.NewH5(s, [5]protoboard.Variable{
		st.Data, st.StorageID, zero, zero, zero,
	}, name)
}

// TradeHistory is a legacy alias for spot-trade fill bookkeeping: the
// same physical leaf shape as Storage, addressed by the order's storageID
// rather than a withdrawal/transfer nonce. txcircuit.SpotTrade does not
// read or write it; its filled-so-far amounts are plain inputs.
type TradeHistory = Storage

// AllocateTradeHistory is an alias of AllocateStorage under Loopring's
// TradeHistory tree terminology (§4.7).
func AllocateTradeHistory(s *protoboard.System, name string) *TradeHistory {
	return AllocateStorage(s, name)
}

// UpdateAccount binds the generic merkle.Update to the accounts tree
// (depth config.TreeDepthAccounts), hashing before/after leaves with H6.
type UpdateAccount struct {
	Before, After *Account
	BeforeHash    *poseidon.Gadget
	AfterHash     *poseidon.Gadget
	Tree          *merkle.Update
}

// NewUpdateAccount hashes before/after Account leaves and wires a
// merkle.Update of depth config.TreeDepthAccounts between them.
func NewUpdateAccount(s *protoboard.System, before, after *Account, rootBefore protoboard.Variable, name string) *UpdateAccount {
	bh := before.Hash(s, name+".before")
	ah := after.Hash(s, name+".after")
	tree := merkle.NewUpdate(s, config.TreeDepthAccounts, bh.Output, ah.Output, rootBefore, name+".tree")
	return &UpdateAccount{Before: before, After: after, BeforeHash: bh, AfterHash: ah, Tree: tree}
}

// Fill fills the before/after leaf hashes and the Merkle update.
func (u *UpdateAccount) Fill(s *protoboard.System) {
	u.BeforeHash.Fill(s)
	u.AfterHash.Fill(s)
	u.Tree.Fill(s)
}

// UpdateBalance binds the generic merkle.Update to a balance tree (depth
// config.TreeDepthTokens, one instance per account).
type UpdateBalance struct {
	Before, After *Balance
	BeforeHash    *poseidon.Gadget
	AfterHash     *poseidon.Gadget
	Tree          *merkle.Update
}

// NewUpdateBalance hashes before/after Balance leaves (using zero as the H5
// padding input) and wires a merkle.Update of depth
// config.TreeDepthTokens.
func NewUpdateBalance(s *protoboard.System, before, after *Balance, zero, rootBefore protoboard.Variable, name string) *UpdateBalance {
	bh := before.Hash(s, zero, name+".before")
	ah := after.Hash(s, zero, name+".after")
	tree := merkle.NewUpdate(s, config.TreeDepthTokens, bh.Output, ah.Output, rootBefore, name+".tree")
	return &UpdateBalance{Before: before, After: after, BeforeHash: bh, AfterHash: ah, Tree: tree}
}

// Fill fills the before/after leaf hashes and the Merkle update.
func (u *UpdateBalance) Fill(s *protoboard.System) {
	u.BeforeHash.Fill(s)
	u.AfterHash.Fill(s)
	u.Tree.Fill(s)
}

// UpdateStorage binds the generic merkle.Update to a storage tree (depth
// config.TreeDepthStorage, one instance per balance).
type UpdateStorage struct {
	Before, After *Storage
	BeforeHash    *poseidon.Gadget
	AfterHash     *poseidon.Gadget
	Tree          *merkle.Update
}

// NewUpdateStorage hashes before/after Storage leaves and wires a
// merkle.Update of depth config.TreeDepthStorage.
func NewUpdateStorage(s *protoboard.System, before, after *Storage, zero, rootBefore protoboard.Variable, name string) *UpdateStorage {
	bh := before.Hash(s, zero, name+".before")
	ah := after.Hash(s, zero, name+".after")
	tree := merkle.NewUpdate(s, config.TreeDepthStorage, bh.Output, ah.Output, rootBefore, name+".tree")
	return &UpdateStorage{Before: before, After: after, BeforeHash: bh, AfterHash: ah, Tree: tree}
}

// Fill fills the before/after leaf hashes and the Merkle update.
func (u *UpdateStorage) Fill(s *protoboard.System) {
	u.BeforeHash.Fill(s)
	u.AfterHash.Fill(s)
	u.Tree.Fill(s)
}

// UpdateTradeHistory is UpdateStorage under the Loopring-derived
// trade-history name (§4.4's fourth named composed updater).
type UpdateTradeHistory = UpdateStorage

// NewUpdateTradeHistory is an alias of NewUpdateStorage.
func NewUpdateTradeHistory(s *protoboard.System, before, after *TradeHistory, zero, rootBefore protoboard.Variable, name string) *UpdateTradeHistory {
	return NewUpdateStorage(s, before, after, zero, rootBefore, name)
}
