// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/stretchr/testify/require"
)

func headerInputs(s *protoboard.System, values [7]uint64) *Inputs {
	alloc := func(name string, v uint64) protoboard.Variable {
		x := s.Allocate(name)
		s.SetUint64(x, v)
		return x
	}
	return &Inputs{
		ExchangeID:        alloc("exchangeID", values[0]),
		RootBefore:        alloc("rootBefore", values[1]),
		RootAfter:         alloc("rootAfter", values[2]),
		Timestamp:         alloc("timestamp", values[3]),
		ProtocolFeeBips:   alloc("protocolFeeBips", values[4]),
		NumConditionalTxs: alloc("numConditionalTxs", values[5]),
		OperatorAccountID: alloc("operatorAccountID", values[6]),
	}
}

func TestPublicDataPackerMatchesTruncatedSHA256(t *testing.T) {
	s := protoboard.NewSystem()
	in := headerInputs(s, [7]uint64{1, 2, 3, 4, 5, 6, 7})

	p := NewPublicDataPacker(s, in, "pub")
	p.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)

	var raw []byte
	for _, v := range values7(s, in) {
		buf := make([]byte, 32)
		v.FillBytes(buf)
		raw = append(raw, buf...)
	}
	sum := sha256.Sum256(raw)
	want := new(big.Int).SetBytes(sum[:])
	mask := new(big.Int).Lsh(big.NewInt(1), 253)
	mask.Sub(mask, big.NewInt(1))
	want.And(want, mask)

	got := new(big.Int)
	v := s.Value(p.Digest)
	v.BigInt(got)
	require.Equal(t, 0, want.Cmp(got))
}

func values7(s *protoboard.System, in *Inputs) []*big.Int {
	out := make([]*big.Int, 0, 7)
	for _, v := range []protoboard.Variable{in.ExchangeID, in.RootBefore, in.RootAfter, in.Timestamp, in.ProtocolFeeBips, in.NumConditionalTxs, in.OperatorAccountID} {
		bi := new(big.Int)
		e := s.Value(v)
		e.BigInt(bi)
		out = append(out, bi)
	}
	return out
}

func TestPublicDataPackerRejectsTamperedDigest(t *testing.T) {
	s := protoboard.NewSystem()
	in := headerInputs(s, [7]uint64{1, 2, 3, 4, 5, 6, 7})

	p := NewPublicDataPacker(s, in, "pub")
	p.Fill(s)
	s.SetUint64(p.Digest, 0)

	ok, _ := s.IsSatisfied()
	require.False(t, ok)
}
