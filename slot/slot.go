// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package slot implements the storage-slot reader and the nonce gadget
// built on it (§4.5): the replay/overwrite semantics binding a
// transaction's 32-bit storageID to the low config.NumBitsStorageAddress bits of the
// storage tree, and the per-(account,slot) one-shot-per-value usage the
// nonce gadget derives from it.
package slot

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/leaf"
	"github.com/luxfi/zkrollup-circuits/protoboard"
)

func toBig(e fr.Element) *big.Int {
	bi := new(big.Int)
	e.BigInt(bi)
	return bi
}

func bigFromUint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// Reader implements §4.5's storage-slot semantics: given a transaction's
// storageID s and the current leaf (data d, leafStorageID ls), s is valid
// against the leaf iff s == ls (reuse of the same epoch) or s == ls +
// NumStorageSlots (first overwrite of the next epoch). Data is forwarded
// only on reuse; Overwrite flags the second case for public-data encoding
// and book-keeping.
type Reader struct {
	StorageID protoboard.Variable
	Leaf      *leaf.Storage
	Verify    protoboard.Variable

	Data      protoboard.Variable
	Overwrite protoboard.Variable
}


// NewReader allocates Data and Overwrite and records that, whenever Verify
// is true, storageID must equal the leaf's storageID (reuse) or the leaf's
// storageID plus config.NumStorageSlots (overwrite) — exactly one of the
// two equalities, never both since they differ by a nonzero constant.
// Verify is the caller's "this sub-circuit was selected" predicate; an
// unselected sub-circuit's Reader is still fully evaluated (§7 design) but
// its verify bit is 0, so the requirement is vacuous.
func NewReader(s *protoboard.System, storageID protoboard.Variable, l *leaf.Storage, verify protoboard.Variable, name string) *Reader {
	r := &Reader{StorageID: storageID, Leaf: l, Verify: verify, Data: s.Allocate(name + ".data")}

	s.AddConstraint(name+".membership", func(s *protoboard.System) error {
		if s.Value(verify).IsZero() {
			return nil
		}
		sid := toBig(s.Value(storageID))
		ls := toBig(s.Value(l.StorageID))
		reuse := sid.Cmp(ls) == 0
		nextEpoch := new(big.Int).Add(ls, bigFromUint64(config.NumStorageSlots))
		overwrite := sid.Cmp(nextEpoch) == 0
		if !reuse && !overwrite {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})

	s.AddConstraint(name+".dataForward", func(s *protoboard.System) error {
		sid := toBig(s.Value(storageID))
		ls := toBig(s.Value(l.StorageID))
		want := fr.Element{}
		if sid.Cmp(ls) == 0 {
			want = s.Value(l.Data)
		}
		got := s.Value(r.Data)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})

	overwrite := s.Allocate(name + ".overwrite")
	s.AddConstraint(name+".overwriteFlag", func(s *protoboard.System) error {
		sid := toBig(s.Value(storageID))
		ls := toBig(s.Value(l.StorageID))
		nextEpoch := new(big.Int).Add(ls, bigFromUint64(config.NumStorageSlots))
		want := sid.Cmp(nextEpoch) == 0
		got := !s.Value(overwrite).IsZero()
		if got != want {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	r.Overwrite = overwrite
	return r
}

// Fill computes Data and Overwrite from the current storageID/leaf witness.
func (r *Reader) Fill(s *protoboard.System) {
	sid := toBig(s.Value(r.StorageID))
	ls := toBig(s.Value(r.Leaf.StorageID))
	if sid.Cmp(ls) == 0 {
		s.Set(r.Data, s.Value(r.Leaf.Data))
	} else {
		s.SetUint64(r.Data, 0)
	}
	nextEpoch := new(big.Int).Add(ls, bigFromUint64(config.NumStorageSlots))
	s.SetUint64(r.Overwrite, boolUint64(sid.Cmp(nextEpoch) == 0))
}

func boolUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// NonceGadget reuses Reader with data constrained to 0 before the
// transaction and 1 after, making every (account, storage slot) usable at
// most once per storageID value — §4.5's replay-protection mechanism. The
// "before" and "after" leaves are threaded through leaf.UpdateStorage by
// the caller, which also sets the after-leaf's data to 1; NonceGadget only
// adds the data == 0 constraint on top of a Reader built against the
// before-leaf.
type NonceGadget struct {
	Reader *Reader
}

// NewNonceGadget wraps a Reader over the pre-tx leaf and additionally
// requires the read data to be 0 whenever verify is true — any nonzero
// stored value means this (account, slot, storageID) already consumed the
// nonce.
func NewNonceGadget(s *protoboard.System, storageID protoboard.Variable, before *leaf.Storage, verify protoboard.Variable, name string) *NonceGadget {
	r := NewReader(s, storageID, before, verify, name)
	s.AddConstraint(name+".unused", func(s *protoboard.System) error {
		if s.Value(verify).IsZero() {
			return nil
		}
		if !s.Value(r.Data).IsZero() {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &NonceGadget{Reader: r}
}

// Fill delegates to the underlying Reader.
func (n *NonceGadget) Fill(s *protoboard.System) {
	n.Reader.Fill(s)
}
