// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package selector multiplexes one of the ten txcircuit sub-circuit
// outputs onto a block's shared state (§4.9's dispatch table) and applies
// the uniform Merkle-update pipeline (§4.11) the selected output drives:
// account A, its two balance slots and their storage slots, account B and
// its two balance slots, the operator's two fee balances plus its own
// account-tree write, and the protocol-fee account's two balances —
// thirteen tree writes shared by every transaction kind regardless of
// which fields it actually changed.
package selector

import (
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/leaf"
	"github.com/luxfi/zkrollup-circuits/mathgadgets"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/luxfi/zkrollup-circuits/txcircuit"
)

// TypeSelector is the transaction-type one-hot bit array (§4.9): exactly
// one of config.TxTypeCount bits is set, picking which sub-circuit's
// Output this transaction's pipeline uses.
type TypeSelector struct {
	*mathgadgets.SelectorGadget
}

// NewTypeSelector allocates the TxTypeCount-wide one-hot bit array.
func NewTypeSelector(s *protoboard.System, name string) *TypeSelector {
	return &TypeSelector{SelectorGadget: mathgadgets.NewSelectorGadget(s, int(config.TxTypeCount), name)}
}

// scalarMux allocates an output variable and records that it equals
// whichever candidate the selector's one-hot bits pick out, evaluated at
// IsSatisfied time rather than at construction time — the bits may not yet
// carry their final witness value when the gadget is built.
func scalarMux(s *protoboard.System, sel *TypeSelector, candidates []protoboard.Variable, name string) protoboard.Variable {
	out := s.Allocate(name + ".muxed")
	s.AddConstraint(name+".mux", func(s *protoboard.System) error {
		idx := activeIndex(s, sel)
		want := s.Value(candidates[idx])
		got := s.Value(out)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return out
}

func activeIndex(s *protoboard.System, sel *TypeSelector) int {
	for i, b := range sel.Bits {
		if !s.Value(b).IsZero() {
			return i
		}
	}
	return 0
}

func fillMux(s *protoboard.System, sel *TypeSelector, candidates []protoboard.Variable, out protoboard.Variable) {
	idx := activeIndex(s, sel)
	s.Set(out, s.Value(candidates[idx]))
}

// pinnedConst allocates a variable constrained to always equal val,
// the same shape as txcircuit's zero()/one() helpers generalized to an
// arbitrary constant — used to multiplex the one-hot tx-type index itself.
func pinnedConst(s *protoboard.System, val uint64, name string) protoboard.Variable {
	v := s.Allocate(name)
	s.AddConstraint(name+".const", func(s *protoboard.System) error {
		var want fr.Element
		want.SetUint64(val)
		got := s.Value(v)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return v
}

// padPublicData left-aligns data into a width-wide slice, filling any
// remaining slots with zero — the "selector left-pads to the fixed 67-byte
// width" of §4.10.
func padPublicData(data []protoboard.Variable, zero protoboard.Variable, width int) []protoboard.Variable {
	out := make([]protoboard.Variable, width)
	for i := range out {
		if i < len(data) {
			out[i] = data[i]
		} else {
			out[i] = zero
		}
	}
	return out
}

// accountMux multiplexes one AccountSlot family across every candidate
// output, field by field.
type accountMux struct {
	sel        *TypeSelector
	candidates []txcircuit.AccountSlot
	out        txcircuit.AccountSlot
}

func newAccountMux(s *protoboard.System, sel *TypeSelector, candidates []txcircuit.AccountSlot, name string) *accountMux {
	col := func(pick func(txcircuit.AccountSlot) protoboard.Variable) []protoboard.Variable {
		out := make([]protoboard.Variable, len(candidates))
		for i, c := range candidates {
			out[i] = pick(c)
		}
		return out
	}
	return &accountMux{sel: sel, candidates: candidates, out: txcircuit.AccountSlot{
		Address:    scalarMux(s, sel, col(func(a txcircuit.AccountSlot) protoboard.Variable { return a.Address }), name+".address"),
		Owner:      scalarMux(s, sel, col(func(a txcircuit.AccountSlot) protoboard.Variable { return a.Owner }), name+".owner"),
		PublicKeyX: scalarMux(s, sel, col(func(a txcircuit.AccountSlot) protoboard.Variable { return a.PublicKeyX }), name+".pkx"),
		PublicKeyY: scalarMux(s, sel, col(func(a txcircuit.AccountSlot) protoboard.Variable { return a.PublicKeyY }), name+".pky"),
		Nonce:      scalarMux(s, sel, col(func(a txcircuit.AccountSlot) protoboard.Variable { return a.Nonce }), name+".nonce"),
		FeeBipsAMM: scalarMux(s, sel, col(func(a txcircuit.AccountSlot) protoboard.Variable { return a.FeeBipsAMM }), name+".feeBipsAMM"),
	}}
}

func (m *accountMux) fill(s *protoboard.System) {
	fillMux(s, m.sel, colA(m.candidates, func(a txcircuit.AccountSlot) protoboard.Variable { return a.Address }), m.out.Address)
	fillMux(s, m.sel, colA(m.candidates, func(a txcircuit.AccountSlot) protoboard.Variable { return a.Owner }), m.out.Owner)
	fillMux(s, m.sel, colA(m.candidates, func(a txcircuit.AccountSlot) protoboard.Variable { return a.PublicKeyX }), m.out.PublicKeyX)
	fillMux(s, m.sel, colA(m.candidates, func(a txcircuit.AccountSlot) protoboard.Variable { return a.PublicKeyY }), m.out.PublicKeyY)
	fillMux(s, m.sel, colA(m.candidates, func(a txcircuit.AccountSlot) protoboard.Variable { return a.Nonce }), m.out.Nonce)
	fillMux(s, m.sel, colA(m.candidates, func(a txcircuit.AccountSlot) protoboard.Variable { return a.FeeBipsAMM }), m.out.FeeBipsAMM)
}

func colA(candidates []txcircuit.AccountSlot, pick func(txcircuit.AccountSlot) protoboard.Variable) []protoboard.Variable {
	out := make([]protoboard.Variable, len(candidates))
	for i, c := range candidates {
		out[i] = pick(c)
	}
	return out
}

// balanceMux multiplexes one BalanceSlot family.
type balanceMux struct {
	sel        *TypeSelector
	candidates []txcircuit.BalanceSlot
	out        txcircuit.BalanceSlot
}

func newBalanceMux(s *protoboard.System, sel *TypeSelector, candidates []txcircuit.BalanceSlot, name string) *balanceMux {
	return &balanceMux{sel: sel, candidates: candidates, out: txcircuit.BalanceSlot{
		Address:   scalarMux(s, sel, colB(candidates, func(b txcircuit.BalanceSlot) protoboard.Variable { return b.Address }), name+".address"),
		Balance:   scalarMux(s, sel, colB(candidates, func(b txcircuit.BalanceSlot) protoboard.Variable { return b.Balance }), name+".balance"),
		WeightAMM: scalarMux(s, sel, colB(candidates, func(b txcircuit.BalanceSlot) protoboard.Variable { return b.WeightAMM }), name+".weightAMM"),
	}}
}

func (m *balanceMux) fill(s *protoboard.System) {
	fillMux(s, m.sel, colB(m.candidates, func(b txcircuit.BalanceSlot) protoboard.Variable { return b.Address }), m.out.Address)
	fillMux(s, m.sel, colB(m.candidates, func(b txcircuit.BalanceSlot) protoboard.Variable { return b.Balance }), m.out.Balance)
	fillMux(s, m.sel, colB(m.candidates, func(b txcircuit.BalanceSlot) protoboard.Variable { return b.WeightAMM }), m.out.WeightAMM)
}

func colB(candidates []txcircuit.BalanceSlot, pick func(txcircuit.BalanceSlot) protoboard.Variable) []protoboard.Variable {
	out := make([]protoboard.Variable, len(candidates))
	for i, c := range candidates {
		out[i] = pick(c)
	}
	return out
}

// storageMux multiplexes one StorageSlot family.
type storageMux struct {
	sel        *TypeSelector
	candidates []txcircuit.StorageSlot
	out        txcircuit.StorageSlot
}

func newStorageMux(s *protoboard.System, sel *TypeSelector, candidates []txcircuit.StorageSlot, name string) *storageMux {
	return &storageMux{sel: sel, candidates: candidates, out: txcircuit.StorageSlot{
		Address:   scalarMux(s, sel, colS(candidates, func(st txcircuit.StorageSlot) protoboard.Variable { return st.Address }), name+".address"),
		Data:      scalarMux(s, sel, colS(candidates, func(st txcircuit.StorageSlot) protoboard.Variable { return st.Data }), name+".data"),
		StorageID: scalarMux(s, sel, colS(candidates, func(st txcircuit.StorageSlot) protoboard.Variable { return st.StorageID }), name+".storageID"),
	}}
}

func (m *storageMux) fill(s *protoboard.System) {
	fillMux(s, m.sel, colS(m.candidates, func(st txcircuit.StorageSlot) protoboard.Variable { return st.Address }), m.out.Address)
	fillMux(s, m.sel, colS(m.candidates, func(st txcircuit.StorageSlot) protoboard.Variable { return st.Data }), m.out.Data)
	fillMux(s, m.sel, colS(m.candidates, func(st txcircuit.StorageSlot) protoboard.Variable { return st.StorageID }), m.out.StorageID)
}

func colS(candidates []txcircuit.StorageSlot, pick func(txcircuit.StorageSlot) protoboard.Variable) []protoboard.Variable {
	out := make([]protoboard.Variable, len(candidates))
	for i, c := range candidates {
		out[i] = pick(c)
	}
	return out
}

// SelectTransaction multiplexes config.TxTypeCount candidate sub-circuit
// outputs onto one shared Output using the TypeSelector's one-hot bits
// (§4.9). Candidates must be supplied in config.TxType order (TxNoop
// first) so the selector's bit i always means "this transaction is type
// i" consistently with the public-data type field.
type SelectTransaction struct {
	sel        *TypeSelector
	candidates []*txcircuit.Output
	accountA, accountB *accountMux
	balAS, balAB, balBS, balBB *balanceMux
	balOA, balOB, balPA, balPB *balanceMux
	storageA, storageB         *storageMux
	hashA, hashB               protoboard.Variable
	sigReqA, sigReqB           protoboard.Variable
	numConditional             protoboard.Variable

	zero             protoboard.Variable
	paddedPublicData [][]protoboard.Variable
	publicData       []protoboard.Variable
	typeConsts       []protoboard.Variable
	txType           protoboard.Variable
}

// NewSelectTransaction wires one scalarMux/accountMux/balanceMux/storageMux
// per Output field.
func NewSelectTransaction(s *protoboard.System, sel *TypeSelector, candidates []*txcircuit.Output, name string) *SelectTransaction {
	accA := make([]txcircuit.AccountSlot, len(candidates))
	accB := make([]txcircuit.AccountSlot, len(candidates))
	for i, c := range candidates {
		accA[i], accB[i] = c.AccountA, c.AccountB
	}
	bAS, bAB, bBS, bBB := colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalanceAS }),
		colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalanceAB }),
		colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalanceBS }),
		colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalanceBB })
	bOA, bOB := colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalanceOA }),
		colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalanceOB })
	bPA, bPB := colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalancePA }),
		colBalances(candidates, func(o *txcircuit.Output) txcircuit.BalanceSlot { return o.BalancePB })
	stA := colStorage(candidates, func(o *txcircuit.Output) txcircuit.StorageSlot { return o.StorageA })
	stB := colStorage(candidates, func(o *txcircuit.Output) txcircuit.StorageSlot { return o.StorageB })

	hashA := scalarMux(s, sel, colScalar(candidates, func(o *txcircuit.Output) protoboard.Variable { return o.HashA }), name+".hashA")
	hashB := scalarMux(s, sel, colScalar(candidates, func(o *txcircuit.Output) protoboard.Variable { return o.HashB }), name+".hashB")
	sigReqA := scalarMux(s, sel, colScalar(candidates, func(o *txcircuit.Output) protoboard.Variable { return o.SignatureRequiredA }), name+".sigReqA")
	sigReqB := scalarMux(s, sel, colScalar(candidates, func(o *txcircuit.Output) protoboard.Variable { return o.SignatureRequiredB }), name+".sigReqB")
	numCond := scalarMux(s, sel, colScalar(candidates, func(o *txcircuit.Output) protoboard.Variable { return o.NumConditionalTxs }), name+".numConditionalTxs")

	zero := pinnedConst(s, 0, name+".publicData.zero")
	const dataWidth = config.TxDataAvailabilitySize - 1 // 67 bytes, the 1-byte tx type is prepended separately
	padded := make([][]protoboard.Variable, len(candidates))
	for i, c := range candidates {
		padded[i] = padPublicData(c.PublicData, zero, dataWidth)
	}
	publicData := make([]protoboard.Variable, dataWidth)
	for j := 0; j < dataWidth; j++ {
		col := make([]protoboard.Variable, len(candidates))
		for i := range candidates {
			col[i] = padded[i][j]
		}
		publicData[j] = scalarMux(s, sel, col, name+".publicData"+strconv.Itoa(j))
	}

	typeConsts := make([]protoboard.Variable, int(config.TxTypeCount))
	for i := range typeConsts {
		typeConsts[i] = pinnedConst(s, uint64(i), name+".txTypeConst"+strconv.Itoa(i))
	}
	txType := scalarMux(s, sel, typeConsts, name+".txType")

	return &SelectTransaction{
		sel: sel, candidates: candidates,
		accountA: newAccountMux(s, sel, accA, name+".accountA"),
		accountB: newAccountMux(s, sel, accB, name+".accountB"),
		balAS:    newBalanceMux(s, sel, bAS, name+".balanceAS"),
		balAB:    newBalanceMux(s, sel, bAB, name+".balanceAB"),
		balBS:    newBalanceMux(s, sel, bBS, name+".balanceBS"),
		balBB:    newBalanceMux(s, sel, bBB, name+".balanceBB"),
		balOA:    newBalanceMux(s, sel, bOA, name+".balanceOA"),
		balOB:    newBalanceMux(s, sel, bOB, name+".balanceOB"),
		balPA:    newBalanceMux(s, sel, bPA, name+".balancePA"),
		balPB:    newBalanceMux(s, sel, bPB, name+".balancePB"),
		storageA: newStorageMux(s, sel, stA, name+".storageA"),
		storageB: newStorageMux(s, sel, stB, name+".storageB"),
		hashA: hashA, hashB: hashB, sigReqA: sigReqA, sigReqB: sigReqB, numConditional: numCond,
		zero: zero, paddedPublicData: padded, publicData: publicData,
		typeConsts: typeConsts, txType: txType,
	}
}

func colBalances(candidates []*txcircuit.Output, pick func(*txcircuit.Output) txcircuit.BalanceSlot) []txcircuit.BalanceSlot {
	out := make([]txcircuit.BalanceSlot, len(candidates))
	for i, c := range candidates {
		out[i] = pick(c)
	}
	return out
}

func colStorage(candidates []*txcircuit.Output, pick func(*txcircuit.Output) txcircuit.StorageSlot) []txcircuit.StorageSlot {
	out := make([]txcircuit.StorageSlot, len(candidates))
	for i, c := range candidates {
		out[i] = pick(c)
	}
	return out
}

func colScalar(candidates []*txcircuit.Output, pick func(*txcircuit.Output) protoboard.Variable) []protoboard.Variable {
	out := make([]protoboard.Variable, len(candidates))
	for i, c := range candidates {
		out[i] = pick(c)
	}
	return out
}

// Output returns the multiplexed record, suitable for feeding into
// Pipeline. PublicData is the selected sub-circuit's own data, already
// left-padded to the fixed 67-byte width (§4.10); TxType additionally
// exposes the 1-byte tx-type prefix a block's public-data packer prepends.
func (t *SelectTransaction) Output() *txcircuit.Output {
	return &txcircuit.Output{
		AccountA: t.accountA.out, AccountB: t.accountB.out,
		BalanceAS: t.balAS.out, BalanceAB: t.balAB.out,
		BalanceBS: t.balBS.out, BalanceBB: t.balBB.out,
		BalanceOA: t.balOA.out, BalanceOB: t.balOB.out,
		BalancePA: t.balPA.out, BalancePB: t.balPB.out,
		StorageA: t.storageA.out, StorageB: t.storageB.out,
		HashA: t.hashA, HashB: t.hashB,
		SignatureRequiredA: t.sigReqA, SignatureRequiredB: t.sigReqB,
		NumConditionalTxs: t.numConditional,
		PublicData:        t.publicData,
	}
}

// TxType returns the muxed one-hot index as a field-element variable (0
// for TxNoop, 1 for TxDeposit, ...), the per-tx record's 1-byte prefix.
func (t *SelectTransaction) TxType() protoboard.Variable { return t.txType }

// Fill computes every multiplexed field from the selector's current bits.
func (t *SelectTransaction) Fill(s *protoboard.System) {
	t.accountA.fill(s)
	t.accountB.fill(s)
	for _, m := range []*balanceMux{t.balAS, t.balAB, t.balBS, t.balBB, t.balOA, t.balOB, t.balPA, t.balPB} {
		m.fill(s)
	}
	t.storageA.fill(s)
	t.storageB.fill(s)
	fillMux(s, t.sel, colScalar(t.candidates, func(o *txcircuit.Output) protoboard.Variable { return o.HashA }), t.hashA)
	fillMux(s, t.sel, colScalar(t.candidates, func(o *txcircuit.Output) protoboard.Variable { return o.HashB }), t.hashB)
	fillMux(s, t.sel, colScalar(t.candidates, func(o *txcircuit.Output) protoboard.Variable { return o.SignatureRequiredA }), t.sigReqA)
	fillMux(s, t.sel, colScalar(t.candidates, func(o *txcircuit.Output) protoboard.Variable { return o.SignatureRequiredB }), t.sigReqB)
	fillMux(s, t.sel, colScalar(t.candidates, func(o *txcircuit.Output) protoboard.Variable { return o.NumConditionalTxs }), t.numConditional)

	s.SetUint64(t.zero, 0)
	for j, out := range t.publicData {
		col := make([]protoboard.Variable, len(t.paddedPublicData))
		for i := range t.paddedPublicData {
			col[i] = t.paddedPublicData[i][j]
		}
		fillMux(s, t.sel, col, out)
	}
	for i, c := range t.typeConsts {
		s.SetUint64(c, uint64(i))
	}
	fillMux(s, t.sel, t.typeConsts, t.txType)
}

// Pipeline is the uniform 13-step Merkle-update sequence of §4.11: each
// selected output field feeds one leaf.UpdateX, threaded root-to-root so
// the final RootAfter is the new top-level state commitment. Steps 9-10
// write the operator's two fee balances, the operator's own account leaf
// (so its balances root is committed into the accounts tree every
// transaction), and the protocol-fee account's two balances — the
// protocol-fee account's own leaf is committed once per block, not per
// transaction, by the block package after the last transaction.
type Pipeline struct {
	UpdateStorageA  *leaf.UpdateStorage
	UpdateBalanceAS *leaf.UpdateBalance
	UpdateStorageB  *leaf.UpdateStorage
	UpdateBalanceBS *leaf.UpdateBalance
	UpdateBalanceAB *leaf.UpdateBalance
	UpdateBalanceBB *leaf.UpdateBalance
	UpdateAccountA  *leaf.UpdateAccount
	UpdateAccountB  *leaf.UpdateAccount
	UpdateBalanceOB *leaf.UpdateBalance
	UpdateBalanceOA *leaf.UpdateBalance
	UpdateAccountO  *leaf.UpdateAccount
	UpdateBalancePB *leaf.UpdateBalance
	UpdateBalancePA *leaf.UpdateBalance

	// BalancesRootOAfter/BalancesRootPAfter are this transaction's updated
	// operator/protocol balance-tree roots, fed into the next transaction's
	// Roots.BalancesRootO/BalancesRootP (the operator and protocol-fee
	// accounts persist across every transaction in a block, unlike
	// accounts A/B which vary per transaction).
	BalancesRootOAfter protoboard.Variable
	BalancesRootPAfter protoboard.Variable
	RootAfter          protoboard.Variable
}

// Roots bundles the tree roots a Pipeline needs as its starting points:
// each balance's storage-tree root before this transaction, each
// account's balances-tree root before this transaction, the operator's
// and protocol-fee account's balances-tree roots before this transaction,
// and the top-level accounts tree root before this transaction. A
// zero-valued wire feeds the H5 padding slots every leaf hash shares.
type Roots struct {
	BalancesRootA, BalancesRootB protoboard.Variable
	StorageRootAS, StorageRootBS protoboard.Variable
	BalancesRootO, BalancesRootP protoboard.Variable
	AccountsRootBefore           protoboard.Variable
	Zero                         protoboard.Variable
}

// NewPipeline chains the thirteen composed leaf updaters in dependency
// order: a balance's storage tree first (so its new root feeds the
// balance leaf), then that balance within its account's balance tree,
// then the account within the top-level accounts tree. before supplies
// every leaf's pre-transaction field values; out supplies the selected
// post-transaction values the corresponding leaf is rewritten to.
// operator carries the operator account's identity fields (owner,
// public key, nonce, AMM fee bips) — unchanged by any single
// transaction's pipeline, since only the block-level nonce bump after
// the last transaction mutates them (§4.11).
func NewPipeline(s *protoboard.System, before *txcircuit.Before, out *txcircuit.Output, roots *Roots, operator *leaf.Account, name string) *Pipeline {
	stBeforeA := &leaf.Storage{Data: before.StorageA.Data, StorageID: before.StorageA.StorageID}
	stAfterA := &leaf.Storage{Data: out.StorageA.Data, StorageID: out.StorageA.StorageID}
	updStA := leaf.NewUpdateStorage(s, stBeforeA, stAfterA, roots.Zero, roots.StorageRootAS, name+".storageA")

	stBeforeB := &leaf.Storage{Data: before.StorageB.Data, StorageID: before.StorageB.StorageID}
	stAfterB := &leaf.Storage{Data: out.StorageB.Data, StorageID: out.StorageB.StorageID}
	updStB := leaf.NewUpdateStorage(s, stBeforeB, stAfterB, roots.Zero, roots.StorageRootBS, name+".storageB")

	balBeforeAS := &leaf.Balance{Balance: before.BalanceAS.Balance, WeightAMM: before.BalanceAS.WeightAMM, StorageRoot: roots.StorageRootAS}
	balAfterAS := &leaf.Balance{Balance: out.BalanceAS.Balance, WeightAMM: out.BalanceAS.WeightAMM, StorageRoot: updStA.Tree.RootAfter}
	updBalAS := leaf.NewUpdateBalance(s, balBeforeAS, balAfterAS, roots.Zero, roots.BalancesRootA, name+".balanceAS")

	balBeforeBS := &leaf.Balance{Balance: before.BalanceBS.Balance, WeightAMM: before.BalanceBS.WeightAMM, StorageRoot: roots.StorageRootBS}
	balAfterBS := &leaf.Balance{Balance: out.BalanceBS.Balance, WeightAMM: out.BalanceBS.WeightAMM, StorageRoot: updStB.Tree.RootAfter}
	updBalBS := leaf.NewUpdateBalance(s, balBeforeBS, balAfterBS, roots.Zero, roots.BalancesRootB, name+".balanceBS")

	balBeforeAB := &leaf.Balance{Balance: before.BalanceAB.Balance, WeightAMM: before.BalanceAB.WeightAMM, StorageRoot: roots.Zero}
	balAfterAB := &leaf.Balance{Balance: out.BalanceAB.Balance, WeightAMM: out.BalanceAB.WeightAMM, StorageRoot: roots.Zero}
	updBalAB := leaf.NewUpdateBalance(s, balBeforeAB, balAfterAB, roots.Zero, updBalAS.Tree.RootAfter, name+".balanceAB")

	balBeforeBB := &leaf.Balance{Balance: before.BalanceBB.Balance, WeightAMM: before.BalanceBB.WeightAMM, StorageRoot: roots.Zero}
	balAfterBB := &leaf.Balance{Balance: out.BalanceBB.Balance, WeightAMM: out.BalanceBB.WeightAMM, StorageRoot: roots.Zero}
	updBalBB := leaf.NewUpdateBalance(s, balBeforeBB, balAfterBB, roots.Zero, updBalBS.Tree.RootAfter, name+".balanceBB")

	accBeforeA := &leaf.Account{
		Owner: before.AccountA.Owner, PublicKeyX: before.AccountA.PublicKeyX, PublicKeyY: before.AccountA.PublicKeyY,
		Nonce: before.AccountA.Nonce, FeeBipsAMM: before.AccountA.FeeBipsAMM, BalancesRoot: roots.BalancesRootA,
	}
	accAfterA := &leaf.Account{
		Owner: out.AccountA.Owner, PublicKeyX: out.AccountA.PublicKeyX, PublicKeyY: out.AccountA.PublicKeyY,
		Nonce: out.AccountA.Nonce, FeeBipsAMM: out.AccountA.FeeBipsAMM, BalancesRoot: updBalAB.Tree.RootAfter,
	}
	updAccA := leaf.NewUpdateAccount(s, accBeforeA, accAfterA, roots.AccountsRootBefore, name+".accountA")

	accBeforeB := &leaf.Account{
		Owner: before.AccountB.Owner, PublicKeyX: before.AccountB.PublicKeyX, PublicKeyY: before.AccountB.PublicKeyY,
		Nonce: before.AccountB.Nonce, FeeBipsAMM: before.AccountB.FeeBipsAMM, BalancesRoot: roots.BalancesRootB,
	}
	accAfterB := &leaf.Account{
		Owner: out.AccountB.Owner, PublicKeyX: out.AccountB.PublicKeyX, PublicKeyY: out.AccountB.PublicKeyY,
		Nonce: out.AccountB.Nonce, FeeBipsAMM: out.AccountB.FeeBipsAMM, BalancesRoot: updBalBB.Tree.RootAfter,
	}
	updAccB := leaf.NewUpdateAccount(s, accBeforeB, accAfterB, updAccA.Tree.RootAfter, name+".accountB")

	// Step 9: balance tree of operator — write BALANCE_O_B, then
	// BALANCE_O_A, then account O (§4.11).
	balBeforeOB := &leaf.Balance{Balance: before.BalanceOB.Balance, WeightAMM: before.BalanceOB.WeightAMM, StorageRoot: roots.Zero}
	balAfterOB := &leaf.Balance{Balance: out.BalanceOB.Balance, WeightAMM: out.BalanceOB.WeightAMM, StorageRoot: roots.Zero}
	updBalOB := leaf.NewUpdateBalance(s, balBeforeOB, balAfterOB, roots.Zero, roots.BalancesRootO, name+".balanceOB")

	balBeforeOA := &leaf.Balance{Balance: before.BalanceOA.Balance, WeightAMM: before.BalanceOA.WeightAMM, StorageRoot: roots.Zero}
	balAfterOA := &leaf.Balance{Balance: out.BalanceOA.Balance, WeightAMM: out.BalanceOA.WeightAMM, StorageRoot: roots.Zero}
	updBalOA := leaf.NewUpdateBalance(s, balBeforeOA, balAfterOA, roots.Zero, updBalOB.Tree.RootAfter, name+".balanceOA")

	accBeforeO := &leaf.Account{
		Owner: operator.Owner, PublicKeyX: operator.PublicKeyX, PublicKeyY: operator.PublicKeyY,
		Nonce: operator.Nonce, FeeBipsAMM: operator.FeeBipsAMM, BalancesRoot: roots.BalancesRootO,
	}
	accAfterO := &leaf.Account{
		Owner: operator.Owner, PublicKeyX: operator.PublicKeyX, PublicKeyY: operator.PublicKeyY,
		Nonce: operator.Nonce, FeeBipsAMM: operator.FeeBipsAMM, BalancesRoot: updBalOA.Tree.RootAfter,
	}
	updAccO := leaf.NewUpdateAccount(s, accBeforeO, accAfterO, updAccB.Tree.RootAfter, name+".accountO")

	// Step 10: balance tree of protocol — write BALANCE_P_B, then
	// BALANCE_P_A. The protocol-fee account's own leaf is left uncommitted
	// here; the block package commits it once after the last transaction.
	balBeforePB := &leaf.Balance{Balance: before.BalancePB.Balance, WeightAMM: before.BalancePB.WeightAMM, StorageRoot: roots.Zero}
	balAfterPB := &leaf.Balance{Balance: out.BalancePB.Balance, WeightAMM: out.BalancePB.WeightAMM, StorageRoot: roots.Zero}
	updBalPB := leaf.NewUpdateBalance(s, balBeforePB, balAfterPB, roots.Zero, roots.BalancesRootP, name+".balancePB")

	balBeforePA := &leaf.Balance{Balance: before.BalancePA.Balance, WeightAMM: before.BalancePA.WeightAMM, StorageRoot: roots.Zero}
	balAfterPA := &leaf.Balance{Balance: out.BalancePA.Balance, WeightAMM: out.BalancePA.WeightAMM, StorageRoot: roots.Zero}
	updBalPA := leaf.NewUpdateBalance(s, balBeforePA, balAfterPA, roots.Zero, updBalPB.Tree.RootAfter, name+".balancePA")

	return &Pipeline{
		UpdateStorageA: updStA, UpdateBalanceAS: updBalAS,
		UpdateStorageB: updStB, UpdateBalanceBS: updBalBS,
		UpdateBalanceAB: updBalAB, UpdateBalanceBB: updBalBB,
		UpdateAccountA: updAccA, UpdateAccountB: updAccB,
		UpdateBalanceOB: updBalOB, UpdateBalanceOA: updBalOA, UpdateAccountO: updAccO,
		UpdateBalancePB: updBalPB, UpdateBalancePA: updBalPA,
		BalancesRootOAfter: updBalOA.Tree.RootAfter,
		BalancesRootPAfter: updBalPA.Tree.RootAfter,
		RootAfter:          updAccO.Tree.RootAfter,
	}
}

// Fill fills every composed update in dependency order. Callers must have
// already filled each update's Proof.B0/B1/Siblings from the witness
// before calling Fill.
func (p *Pipeline) Fill(s *protoboard.System) {
	p.UpdateStorageA.Fill(s)
	p.UpdateStorageB.Fill(s)
	p.UpdateBalanceAS.Fill(s)
	p.UpdateBalanceBS.Fill(s)
	p.UpdateBalanceAB.Fill(s)
	p.UpdateBalanceBB.Fill(s)
	p.UpdateAccountA.Fill(s)
	p.UpdateAccountB.Fill(s)
	p.UpdateBalanceOB.Fill(s)
	p.UpdateBalanceOA.Fill(s)
	p.UpdateAccountO.Fill(s)
	p.UpdateBalancePB.Fill(s)
	p.UpdateBalancePA.Fill(s)
}
