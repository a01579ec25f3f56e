// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txcircuit implements one gadget per transaction kind (§4.9):
// noop, deposit, withdrawal, transfer, spot trade, account update, AMM
// update, NFT mint, NFT data, and signature verification. Every sub-circuit
// extends the same uniform Output record — a flat, enumerated set of
// fields (§9's design note: "model outputs as a flat, enumerated record,
// not as a map keyed by name at runtime") initialized to the identity
// (before-state) values and selectively overridden by the sub-circuit's own
// logic. selector.SelectTransaction later multiplexes one sub-circuit's
// Output onto the block's shared Merkle-update pipeline (§4.10, §4.11);
// sub-circuits themselves never touch a Merkle tree.
package txcircuit

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

// AccountSlot is the uniform ACCOUNT_A/ACCOUNT_B output family (§4.9).
type AccountSlot struct {
	Address    protoboard.Variable
	Owner      protoboard.Variable
	PublicKeyX protoboard.Variable
	PublicKeyY protoboard.Variable
	Nonce      protoboard.Variable
	FeeBipsAMM protoboard.Variable
}

// BalanceSlot is the uniform BALANCE_* output family.
type BalanceSlot struct {
	Address   protoboard.Variable
	Balance   protoboard.Variable
	WeightAMM protoboard.Variable
}

// StorageSlot is the uniform STORAGE_A/STORAGE_B output family.
type StorageSlot struct {
	Address   protoboard.Variable
	Data      protoboard.Variable
	StorageID protoboard.Variable
}

// Output is the union of named outputs every sub-circuit reads from and
// writes a subset of (§4.9's table). PublicData is the sub-circuit's own
// bit sequence, no longer than 67*8 bits; the selector left-pads it to the
// fixed width.
type Output struct {
	AccountA, AccountB                 AccountSlot
	BalanceAS, BalanceAB               BalanceSlot
	BalanceBS, BalanceBB               BalanceSlot
	BalanceOA, BalanceOB               BalanceSlot
	BalancePA, BalancePB               BalanceSlot
	StorageA, StorageB                 StorageSlot
	HashA, HashB                       protoboard.Variable
	PubKeyXA, PubKeyYA                 protoboard.Variable
	PubKeyXB, PubKeyYB                 protoboard.Variable
	SignatureRequiredA, SignatureRequiredB protoboard.Variable
	NumConditionalTxs                  protoboard.Variable
	PublicData                         []protoboard.Variable
}

// Before is the pre-transaction state every sub-circuit reads its identity
// values from: the two accounts, their four balances (send/receive each),
// the two storage slots, and the two operator/protocol balance pairs
// fees are paid into.
type Before struct {
	AccountA, AccountB   AccountSlot
	BalanceAS, BalanceAB BalanceSlot
	BalanceBS, BalanceBB BalanceSlot
	BalanceOA, BalanceOB BalanceSlot
	BalancePA, BalancePB BalanceSlot
	StorageA, StorageB   StorageSlot
	NumConditionalTxsIn  protoboard.Variable
}

// NewIdentityOutput builds the default Output every sub-circuit starts
// from: every slot equal to its Before counterpart, no signature required,
// the conditional-transaction counter passed through unchanged, and empty
// public data. A sub-circuit constructor overrides only the fields its
// transaction kind actually changes.
func NewIdentityOutput(s *protoboard.System, before *Before) *Output {
	return &Output{
		AccountA: before.AccountA, AccountB: before.AccountB,
		BalanceAS: before.BalanceAS, BalanceAB: before.BalanceAB,
		BalanceBS: before.BalanceBS, BalanceBB: before.BalanceBB,
		BalanceOA: before.BalanceOA, BalanceOB: before.BalanceOB,
		BalancePA: before.BalancePA, BalancePB: before.BalancePB,
		StorageA: before.StorageA, StorageB: before.StorageB,
		HashA: zero(s), HashB: zero(s),
		PubKeyXA: before.AccountA.PublicKeyX, PubKeyYA: before.AccountA.PublicKeyY,
		PubKeyXB: before.AccountB.PublicKeyX, PubKeyYB: before.AccountB.PublicKeyY,
		SignatureRequiredA: zero(s), SignatureRequiredB: zero(s),
		NumConditionalTxs: before.NumConditionalTxsIn,
		PublicData:        nil,
	}
}

// zero allocates a fresh variable pinned to 0, used for outputs a
// sub-circuit leaves at their inactive default.
func zero(s *protoboard.System) protoboard.Variable {
	v := s.Allocate("txcircuit.zero")
	s.AddConstraint("txcircuit.zero", func(s *protoboard.System) error {
		if !s.Value(v).IsZero() {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return v
}

// fillZero assigns every zero() placeholder in an Output's fixed default
// fields. Sub-circuit Fill methods call this before filling their own
// overridden outputs' witness.
func fillZero(s *protoboard.System, vs ...protoboard.Variable) {
	for _, v := range vs {
		s.SetUint64(v, 0)
	}
}

// one allocates a fresh variable pinned to 1, used by sub-circuits whose
// signature requirement is unconditionally active.
func one(s *protoboard.System) protoboard.Variable {
	v := s.Allocate("txcircuit.one")
	s.AddConstraint("txcircuit.one", func(s *protoboard.System) error {
		e := s.Value(v)
		var want = e
		want.SetOne()
		if !e.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return v
}

func fillOne(s *protoboard.System, vs ...protoboard.Variable) {
	for _, v := range vs {
		s.SetUint64(v, 1)
	}
}

// bumpConditionalCounter increments the running conditional-transaction
// counter by one — used by sub-circuits that count as on-chain authorized
// (§4.9, §4.11).
type conditionalCounterBump struct {
	before, out protoboard.Variable
}

func bumpConditionalCounter(s *protoboard.System, before protoboard.Variable, name string) protoboard.Variable {
	out := s.Allocate(name + ".numConditionalTxs")
	b := &conditionalCounterBump{before: before, out: out}
	s.AddConstraint(name+".numConditionalTxs.value", func(s *protoboard.System) error {
		want := bigAdd1(s, b.before)
		got := s.Value(b.out)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return out
}

func bigAdd1(s *protoboard.System, v protoboard.Variable) fr.Element {
	e := s.Value(v)
	var one, want fr.Element
	one.SetOne()
	want.Add(&e, &one)
	return want
}

// fillBump assigns the counter-bump output from its before value.
func fillBump(s *protoboard.System, before, out protoboard.Variable) {
	s.Set(out, bigAdd1(s, before))
}

// WithdrawUser, WithdrawConditional, WithdrawValidFull and
// WithdrawInvalidFull name the four withdrawal dispatch kinds (§4.9),
// re-exported here so callers building a Withdrawal sub-circuit can name
// the type without importing config directly.
const (
	WithdrawUser        = config.WithdrawalUser
	WithdrawConditional = config.WithdrawalConditional
	WithdrawValidFull   = config.WithdrawalValidFull
	WithdrawInvalidFull = config.WithdrawalInvalidFull
)
