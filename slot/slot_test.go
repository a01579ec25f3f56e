// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package slot

import (
	"testing"

	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/leaf"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

func newVerifiedReader(t *testing.T, storageID, leafStorageID, leafData uint64) (*protoboard.System, *Reader) {
	s := protoboard.NewSystem()
	l := leaf.AllocateStorage(s, "leaf")
	sidVar := s.Allocate("storageID")
	verify := s.Allocate("verify")

	r := NewReader(s, sidVar, l, verify, "reader")

	s.SetUint64(sidVar, storageID)
	s.SetUint64(l.StorageID, leafStorageID)
	s.SetUint64(l.Data, leafData)
	s.SetUint64(verify, 1)
	r.Fill(s)
	return s, r
}

func TestReaderReuseForwardsData(t *testing.T) {
	s, r := newVerifiedReader(t, 5, 5, 777)
	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	require.Equal(t, uint64(777), toBig(s.Value(r.Data)).Uint64())
	require.True(t, s.Value(r.Overwrite).IsZero())
}

func TestReaderOverwriteZeroesData(t *testing.T) {
	s, r := newVerifiedReader(t, 5+config.NumStorageSlots, 5, 777)
	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	require.True(t, s.Value(r.Data).IsZero())
	require.False(t, s.Value(r.Overwrite).IsZero())
}

func TestReaderRejectsUnrelatedStorageID(t *testing.T) {
	s, _ := newVerifiedReader(t, 9, 5, 777)
	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.NotNil(t, err)
}

func TestNonceGadgetRejectsReplay(t *testing.T) {
	s := protoboard.NewSystem()
	l := leaf.AllocateStorage(s, "leaf")
	sidVar := s.Allocate("storageID")
	verify := s.Allocate("verify")
	n := NewNonceGadget(s, sidVar, l, verify, "nonce")

	s.SetUint64(sidVar, 3)
	s.SetUint64(l.StorageID, 3)
	s.SetUint64(l.Data, 1) // already consumed
	s.SetUint64(verify, 1)
	n.Fill(s)

	ok, err := s.IsSatisfied()
	require.False(t, ok)
	require.NotNil(t, err)
}

func TestNonceGadgetAcceptsFreshSlot(t *testing.T) {
	s := protoboard.NewSystem()
	l := leaf.AllocateStorage(s, "leaf")
	sidVar := s.Allocate("storageID")
	verify := s.Allocate("verify")
	n := NewNonceGadget(s, sidVar, l, verify, "nonce")

	s.SetUint64(sidVar, 3)
	s.SetUint64(l.StorageID, 3)
	s.SetUint64(l.Data, 0)
	s.SetUint64(verify, 1)
	n.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
}
