// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package selector

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/luxfi/zkrollup-circuits/txcircuit"
	"github.com/stretchr/testify/require"
)

func toU64(e fr.Element) uint64 {
	bi := new(big.Int)
	e.BigInt(bi)
	return bi.Uint64()
}

func dummyOutput(s *protoboard.System, balance uint64) *txcircuit.Output {
	v := func(name string, val uint64) protoboard.Variable {
		x := s.Allocate(name)
		s.SetUint64(x, val)
		return x
	}
	acct := func(name string) txcircuit.AccountSlot {
		return txcircuit.AccountSlot{
			Address: v(name+".a", 0), Owner: v(name+".o", 0), PublicKeyX: v(name+".x", 0),
			PublicKeyY: v(name+".y", 0), Nonce: v(name+".n", 0), FeeBipsAMM: v(name+".f", 0),
		}
	}
	bal := func(name string, b uint64) txcircuit.BalanceSlot {
		return txcircuit.BalanceSlot{Address: v(name+".a", 0), Balance: v(name+".b", b), WeightAMM: v(name+".w", 0)}
	}
	stg := func(name string) txcircuit.StorageSlot {
		return txcircuit.StorageSlot{Address: v(name+".a", 0), Data: v(name+".d", 0), StorageID: v(name+".s", 0)}
	}
	return &txcircuit.Output{
		AccountA: acct("accountA"), AccountB: acct("accountB"),
		BalanceAS: bal("balanceAS", balance), BalanceAB: bal("balanceAB", 0),
		BalanceBS: bal("balanceBS", 0), BalanceBB: bal("balanceBB", 0),
		BalanceOA: bal("balanceOA", 0), BalanceOB: bal("balanceOB", 0),
		BalancePA: bal("balancePA", 0), BalancePB: bal("balancePB", 0),
		StorageA: stg("storageA"), StorageB: stg("storageB"),
		HashA: v("hashA", 0), HashB: v("hashB", 0),
		SignatureRequiredA: v("sigA", 0), SignatureRequiredB: v("sigB", 0),
		NumConditionalTxs: v("numCond", 0),
	}
}

func TestSelectTransactionPicksActiveCandidate(t *testing.T) {
	s := protoboard.NewSystem()
	candidates := make([]*txcircuit.Output, config.TxTypeCount)
	for i := range candidates {
		candidates[i] = dummyOutput(s, uint64(100*(i+1)))
	}

	sel := NewTypeSelector(s, "txtype")
	mux := NewSelectTransaction(s, sel, candidates, "tx")
	sel.Fill(s, int(config.TxDeposit))
	mux.Fill(s)

	ok, err := s.IsSatisfied()
	require.True(t, ok, "%v", err)
	want := uint64(100 * (int(config.TxDeposit) + 1))
	require.Equal(t, want, toU64(s.Value(mux.Output().BalanceAS.Balance)))
}

func TestSelectTransactionRejectsStaleMuxedValue(t *testing.T) {
	s := protoboard.NewSystem()
	candidates := make([]*txcircuit.Output, config.TxTypeCount)
	for i := range candidates {
		candidates[i] = dummyOutput(s, uint64(100*(i+1)))
	}

	sel := NewTypeSelector(s, "txtype")
	mux := NewSelectTransaction(s, sel, candidates, "tx")
	sel.Fill(s, int(config.TxDeposit))
	mux.Fill(s)
	// Tamper with the muxed output after Fill: IsSatisfied must catch it.
	s.SetUint64(mux.Output().BalanceAS.Balance, 999999)

	ok, _ := s.IsSatisfied()
	require.False(t, ok)
}
