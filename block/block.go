// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package block composes a full rollup block (§6) from the selector
// package's per-transaction dispatch: one TypeSelector/SelectTransaction/
// Pipeline triple per transaction slot, threaded so the top-level accounts
// root after transaction i feeds transaction i+1's Roots.AccountsRootBefore,
// plus the block-level concerns that sit above any single transaction — the
// operator's EdDSA signature over the block's packed public data, the final
// operator-nonce bump and protocol-fee-account commit that close the block
// (§4.11's last paragraph), the public-data packing and SHA-256
// compression/truncation to config.NumBitsFieldCapacity bits (so the digest
// fits a single field element as the SNARK's public input, §4.12), and the
// old-root/new-root boundary linking the block to its predecessor and
// successor. SHA-256 is what the teacher's zk/verifier.go calls directly to
// recompute this digest on-chain, so the in-circuit side has to use the
// same primitive or no block would ever verify.
package block

import (
	"crypto/sha256"
	"math/big"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/luxfi/zkrollup-circuits/config"
	"github.com/luxfi/zkrollup-circuits/leaf"
	"github.com/luxfi/zkrollup-circuits/poseidon"
	"github.com/luxfi/zkrollup-circuits/protoboard"
	"github.com/luxfi/zkrollup-circuits/selector"
	"github.com/luxfi/zkrollup-circuits/signature"
	"github.com/luxfi/zkrollup-circuits/txcircuit"
)

// Transaction is one slot's full witness: the transaction-type selector,
// one candidate Output per possible sub-circuit (the caller is expected to
// have already built all config.TxTypeCount sub-circuits against the same
// Before state and handed their Outputs here), and the per-token-pair
// Merkle roots the slot's pipeline starts from. The public-data record a
// slot contributes to the block's digest is no longer a caller-supplied
// side channel: it is read straight off the selected sub-circuit's Output
// via mux, so nothing proven can diverge from what gets posted (§4.10, §6).
type Transaction struct {
	Selector   *selector.TypeSelector
	Candidates []*txcircuit.Output
	Before     *txcircuit.Before
	Roots      *selector.Roots

	mux      *selector.SelectTransaction
	pipeline *selector.Pipeline
}

// Output returns the slot's multiplexed Output, valid only after NewBlock
// has wired the enclosing Block.
func (t *Transaction) Output() *txcircuit.Output { return t.mux.Output() }

// RootAfter returns the slot's post-transaction accounts-tree root, valid
// only after NewBlock.
func (t *Transaction) RootAfter() protoboard.Variable { return t.pipeline.RootAfter }

// OperatorAccount is the operator account's leaf snapshot from before the
// block (§6): owner, EdDSA public key, AMM fee bips, the nonce the
// operator's signature covers, and the root of its balances tree before
// any of the block's transactions. Identity fields never change within a
// block; only the balances root advances, once per transaction, and the
// nonce bumps exactly once after the last transaction.
type OperatorAccount struct {
	Owner, PublicKeyX, PublicKeyY, FeeBipsAMM protoboard.Variable
	Nonce                                     protoboard.Variable
	BalancesRoot                              protoboard.Variable
}

// ProtocolAccount is the protocol-fee account's (config.ProtocolFeeAccountID)
// leaf snapshot from before the block. Its own leaf is never rewritten
// mid-block — only its balances tree advances — so the block commits the
// final balances root into the accounts tree once, after the last
// transaction (§4.11).
type ProtocolAccount struct {
	Owner, PublicKeyX, PublicKeyY, FeeBipsAMM protoboard.Variable
	Nonce                                     protoboard.Variable
	BalancesRoot                              protoboard.Variable
}

// Inputs is a block's top-level witness (§6, §4.12): the header fields
// bound into the public-data digest (exchange id, the state boundary
// linking this block to its predecessor and successor, the timestamp
// every transaction's expiry check is evaluated against, the protocol fee
// bips, the running conditional-transaction count, and the operator's
// account id), the operator/protocol-fee account snapshots the block's
// closing updates consume, and the transaction slots themselves, applied
// in order.
type Inputs struct {
	ExchangeID            protoboard.Variable
	RootBefore, RootAfter protoboard.Variable
	Timestamp             protoboard.Variable
	ProtocolFeeBips       protoboard.Variable
	NumConditionalTxs     protoboard.Variable
	OperatorAccountID     protoboard.Variable
	Operator              *OperatorAccount
	Protocol              *ProtocolAccount
	Transactions          []*Transaction
}

// PublicDataPacker computes the SHA-256 digest of the block header
// concatenated with every transaction's 68-byte record (1-byte tx type
// plus 67 bytes of public data), truncated to config.NumBitsFieldCapacity
// bits so it fits one field element — the single public input §4.12/§6
// expose. Header fields serialize as 32-byte big-endian field elements.
type PublicDataPacker struct {
	Header  []protoboard.Variable
	Records []protoboard.Variable
	Digest  protoboard.Variable
}

// NewPublicDataPacker prepends the block header to the per-transaction
// records — each transaction's 1-byte tx type (selector.TxType) followed
// by its selected, padded public data — and records that Digest equals
// SHA-256 of the concatenation, truncated to the field's usable bit width.
func NewPublicDataPacker(s *protoboard.System, in *Inputs, name string) *PublicDataPacker {
	header := []protoboard.Variable{
		in.ExchangeID, in.RootBefore, in.RootAfter, in.Timestamp,
		in.ProtocolFeeBips, in.NumConditionalTxs, in.OperatorAccountID,
	}
	var records []protoboard.Variable
	for _, tx := range in.Transactions {
		records = append(records, tx.mux.TxType())
		records = append(records, tx.mux.Output().PublicData...)
	}
	digest := s.Allocate(name + ".digest")
	p := &PublicDataPacker{Header: header, Records: records, Digest: digest}
	s.AddConstraint(name+".sha256", func(s *protoboard.System) error {
		want := p.compute(s)
		got := s.Value(digest)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return p
}

// fieldBytes32 serializes a field element as a 32-byte big-endian string,
// the fixed width every block-header field contributes to the preimage.
func fieldBytes32(s *protoboard.System, v protoboard.Variable) []byte {
	bi := new(big.Int)
	e := s.Value(v)
	e.BigInt(bi)
	buf := make([]byte, 32)
	bi.FillBytes(buf)
	return buf
}

func (p *PublicDataPacker) compute(s *protoboard.System) fr.Element {
	raw := make([]byte, 0, 32*len(p.Header)+len(p.Records))
	for _, v := range p.Header {
		raw = append(raw, fieldBytes32(s, v)...)
	}
	for _, v := range p.Records {
		bi := new(big.Int)
		e := s.Value(v)
		e.BigInt(bi)
		raw = append(raw, byte(bi.Uint64()))
	}
	sum := sha256.Sum256(raw)
	digest := new(big.Int).SetBytes(sum[:])
	mask := new(big.Int).Lsh(big.NewInt(1), config.NumBitsFieldCapacity)
	mask.Sub(mask, big.NewInt(1))
	digest.And(digest, mask)
	var out fr.Element
	out.SetBigInt(digest)
	return out
}

// Fill computes Digest from the current header/record witness.
func (p *PublicDataPacker) Fill(s *protoboard.System) {
	s.Set(p.Digest, p.compute(s))
}

// bigAdd1 returns the field element one greater than v's current witness
// value, the same nonce-bump shape txcircuit.bumpConditionalCounter uses.
func bigAdd1(s *protoboard.System, v protoboard.Variable) fr.Element {
	e := s.Value(v)
	var one, want fr.Element
	one.SetOne()
	want.Add(&e, &one)
	return want
}

// Block composes every transaction slot's dispatch-and-update pipeline,
// the block-closing operator-nonce bump and protocol-fee-account commit,
// the public-data packing, and the operator signature check over the
// packed digest together with the operator's pre-bump nonce.
type Block struct {
	Inputs             *Inputs
	Packer             *PublicDataPacker
	OperatorNonceAfter protoboard.Variable
	UpdateOperator     *leaf.UpdateAccount
	UpdateProtocol     *leaf.UpdateAccount
	SignedMessage      *poseidon.Gadget
	Operator           *signature.Verifier
}

// NewBlock wires one selector.SelectTransaction/selector.Pipeline per
// transaction slot, threading each pipeline's RootAfter into the next
// slot's Roots.AccountsRootBefore and each pipeline's operator/protocol
// balances roots into the next slot's Roots.BalancesRootO/BalancesRootP
// (the operator and protocol-fee accounts persist across the whole block,
// unlike accounts A/B which vary per transaction). After the last
// transaction it bumps the operator's nonce and commits the protocol-fee
// account's final balances root (§4.11's closing paragraph), then records
// the public-data packing and the operator's signature over
// (digest, nonce before) (§4.12). ax, ay, rx, ry, sVar are the operator's
// public key and the (R, s) signature components; ax, ay are constrained
// to equal in.Operator.PublicKeyX/PublicKeyY.
func NewBlock(s *protoboard.System, in *Inputs, ax, ay, rx, ry, sVar protoboard.Variable, name string) *Block {
	operatorLeaf := &leaf.Account{
		Owner: in.Operator.Owner, PublicKeyX: in.Operator.PublicKeyX, PublicKeyY: in.Operator.PublicKeyY,
		Nonce: in.Operator.Nonce, FeeBipsAMM: in.Operator.FeeBipsAMM,
	}

	balO, balP := in.Operator.BalancesRoot, in.Protocol.BalancesRoot
	for i, tx := range in.Transactions {
		txName := name + ".tx" + strconv.Itoa(i)
		tx.mux = selector.NewSelectTransaction(s, tx.Selector, tx.Candidates, txName+".select")

		s.RequireEqual(txName+".balancesRootOBefore", balO, tx.Roots.BalancesRootO)
		s.RequireEqual(txName+".balancesRootPBefore", balP, tx.Roots.BalancesRootP)

		tx.pipeline = selector.NewPipeline(s, tx.Before, tx.mux.Output(), tx.Roots, operatorLeaf, txName+".pipeline")
		balO, balP = tx.pipeline.BalancesRootOAfter, tx.pipeline.BalancesRootPAfter
	}

	var rootAfterTxs protoboard.Variable
	if len(in.Transactions) > 0 {
		s.RequireEqual(name+".rootBefore", in.RootBefore, in.Transactions[0].Roots.AccountsRootBefore)
		for i := 1; i < len(in.Transactions); i++ {
			s.RequireEqual(name+".rootChain"+strconv.Itoa(i), in.Transactions[i].Roots.AccountsRootBefore, in.Transactions[i-1].RootAfter())
		}
		last := in.Transactions[len(in.Transactions)-1]
		rootAfterTxs = last.RootAfter()
		s.RequireEqual(name+".numConditionalTxs", in.NumConditionalTxs, last.Output().NumConditionalTxs)
	} else {
		rootAfterTxs = in.RootBefore
	}

	opNonceAfter := s.Allocate(name + ".operator.nonceAfter")
	s.AddConstraint(name+".operator.nonceBump", func(s *protoboard.System) error {
		want := bigAdd1(s, in.Operator.Nonce)
		got := s.Value(opNonceAfter)
		if !got.Equal(&want) {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	opBefore := &leaf.Account{
		Owner: in.Operator.Owner, PublicKeyX: in.Operator.PublicKeyX, PublicKeyY: in.Operator.PublicKeyY,
		Nonce: in.Operator.Nonce, FeeBipsAMM: in.Operator.FeeBipsAMM, BalancesRoot: balO,
	}
	opAfter := &leaf.Account{
		Owner: in.Operator.Owner, PublicKeyX: in.Operator.PublicKeyX, PublicKeyY: in.Operator.PublicKeyY,
		Nonce: opNonceAfter, FeeBipsAMM: in.Operator.FeeBipsAMM, BalancesRoot: balO,
	}
	updOperator := leaf.NewUpdateAccount(s, opBefore, opAfter, rootAfterTxs, name+".operatorNonceBump")

	protoBefore := &leaf.Account{
		Owner: in.Protocol.Owner, PublicKeyX: in.Protocol.PublicKeyX, PublicKeyY: in.Protocol.PublicKeyY,
		Nonce: in.Protocol.Nonce, FeeBipsAMM: in.Protocol.FeeBipsAMM, BalancesRoot: in.Protocol.BalancesRoot,
	}
	protoAfter := &leaf.Account{
		Owner: in.Protocol.Owner, PublicKeyX: in.Protocol.PublicKeyX, PublicKeyY: in.Protocol.PublicKeyY,
		Nonce: in.Protocol.Nonce, FeeBipsAMM: in.Protocol.FeeBipsAMM, BalancesRoot: balP,
	}
	updProtocol := leaf.NewUpdateAccount(s, protoBefore, protoAfter, updOperator.Tree.RootAfter, name+".protocolCommit")

	s.RequireEqual(name+".rootAfter", in.RootAfter, updProtocol.Tree.RootAfter)

	packer := NewPublicDataPacker(s, in, name+".publicData")
	signedMsg := poseidon.NewH2(s, packer.Digest, in.Operator.Nonce, name+".operatorMessage")
	s.RequireEqual(name+".operatorKeyX", ax, in.Operator.PublicKeyX)
	s.RequireEqual(name+".operatorKeyY", ay, in.Operator.PublicKeyY)
	op := signature.NewVerifier(s, ax, ay, rx, ry, sVar, signedMsg.Output, name+".operatorSig")
	s.AddConstraint(name+".operatorSigValid", func(s *protoboard.System) error {
		if s.Value(op.Valid).IsZero() {
			return protoboard.ErrUnsatisfied
		}
		return nil
	})
	return &Block{
		Inputs: in, Packer: packer,
		OperatorNonceAfter: opNonceAfter,
		UpdateOperator:     updOperator,
		UpdateProtocol:     updProtocol,
		SignedMessage:      signedMsg,
		Operator:           op,
	}
}

// Fill fills every transaction slot's selector and pipeline, the closing
// operator-nonce bump and protocol-fee commit, the public-data digest, the
// signed-message hash, and the operator signature's validity bit. Callers
// must have already filled each slot's Selector bits, every candidate
// sub-circuit's witness, and every Merkle proof sibling before calling
// Fill.
func (b *Block) Fill(s *protoboard.System) {
	for _, tx := range b.Inputs.Transactions {
		tx.mux.Fill(s)
		tx.pipeline.Fill(s)
	}
	s.Set(b.OperatorNonceAfter, bigAdd1(s, b.Inputs.Operator.Nonce))
	b.UpdateOperator.Fill(s)
	b.UpdateProtocol.Fill(s)
	b.Packer.Fill(s)
	b.SignedMessage.Fill(s)
	b.Operator.Fill(s)
}
