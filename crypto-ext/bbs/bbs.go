/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bbs binds BBS signatures over BLS12-381 G2 keys to the header,
// presentation header and disclosed index semantics of bbs-2023 proofs.
//
// The underlying primitive signs a plain list of messages, so the header is
// signed as message 0 and always disclosed, and the presentation header
// together with the disclosed indexes is bound into the proof nonce.
package bbs

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/trustbloc/bbs-signature-go/bbs12381g2pub"

	"github.com/trustbloc/bbs2023-go/crypto-ext/pubkey"
)

const seedSize = 32

// ErrInvalidIndex is returned when a disclosed index is out of range or not strictly increasing.
var ErrInvalidIndex = errors.New("invalid disclosed message index")

// BBS signs, derives and verifies BBS signatures and proofs.
type BBS struct {
	lib *bbs12381g2pub.BBSG2Pub
}

// New creates a BBS.
func New() *BBS {
	return &BBS{lib: bbs12381g2pub.New()}
}

// GenerateKeyPair creates a key pair and returns the marshaled public and private keys.
// A nil seed draws a random one.
func GenerateKeyPair(seed []byte) ([]byte, []byte, error) {
	if seed != nil && len(seed) != seedSize {
		return nil, nil, fmt.Errorf("seed must be %d bytes", seedSize)
	}

	pub, priv, err := bbs12381g2pub.GenerateKeyPair(sha256.New, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("generate BBS key pair: %w", err)
	}

	pubBytes, err := pub.Marshal()
	if err != nil {
		return nil, nil, err
	}

	privBytes, err := priv.Marshal()
	if err != nil {
		return nil, nil, err
	}

	return pubBytes, privBytes, nil
}

// Signer signs with a fixed private key.
type Signer struct {
	bbs     *BBS
	privKey []byte
	pubKey  []byte
}

// NewSigner creates a Signer from a marshaled private key.
func NewSigner(privKey []byte) (*Signer, error) {
	priv, err := bbs12381g2pub.UnmarshalPrivateKey(privKey)
	if err != nil {
		return nil, fmt.Errorf("parse BBS private key: %w", err)
	}

	pub, err := priv.PublicKey().Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal BBS public key: %w", err)
	}

	return &Signer{bbs: New(), privKey: bytes.Clone(privKey), pubKey: pub}, nil
}

// Sign signs the header and messages.
func (s *Signer) Sign(header []byte, messages [][]byte) ([]byte, error) {
	return s.bbs.lib.Sign(withHeader(header, messages), s.privKey)
}

// PublicKey returns the marshaled public key matching the signing key.
func (s *Signer) PublicKey() []byte {
	return bytes.Clone(s.pubKey)
}

// Verify verifies a signature over the header and messages.
func (b *BBS) Verify(pubKey, signature, header []byte, messages [][]byte) error {
	if err := checkPublicKey(pubKey); err != nil {
		return err
	}

	return b.lib.Verify(withHeader(header, messages), signature, pubKey)
}

// DeriveProof derives a proof disclosing the messages at disclosedIndexes.
func (b *BBS) DeriveProof(
	pubKey, signature, header, presentationHeader []byte,
	messages [][]byte,
	disclosedIndexes []int,
) ([]byte, error) {
	if err := checkPublicKey(pubKey); err != nil {
		return nil, err
	}

	if err := checkIndexes(disclosedIndexes, len(messages)); err != nil {
		return nil, err
	}

	revealed := make([]int, 0, len(disclosedIndexes)+1)
	revealed = append(revealed, 0)

	for _, i := range disclosedIndexes {
		revealed = append(revealed, i+1)
	}

	return b.lib.DeriveProof(withHeader(header, messages), bytes.Clone(signature),
		proofNonce(presentationHeader, disclosedIndexes), pubKey, revealed)
}

// VerifyProof verifies a proof against the disclosed messages, given in the order of disclosedIndexes.
func (b *BBS) VerifyProof(
	pubKey, proof, header, presentationHeader []byte,
	disclosedMessages [][]byte,
	disclosedIndexes []int,
) error {
	if err := checkPublicKey(pubKey); err != nil {
		return err
	}

	if len(disclosedMessages) != len(disclosedIndexes) {
		return fmt.Errorf("%w: %d disclosed messages for %d indexes",
			ErrInvalidIndex, len(disclosedMessages), len(disclosedIndexes))
	}

	if err := checkIndexes(disclosedIndexes, -1); err != nil {
		return err
	}

	return b.lib.VerifyProof(withHeader(header, disclosedMessages), bytes.Clone(proof),
		proofNonce(presentationHeader, disclosedIndexes), pubKey)
}

func withHeader(header []byte, messages [][]byte) [][]byte {
	out := make([][]byte, 0, len(messages)+1)
	out = append(out, header)

	return append(out, messages...)
}

// proofNonce is sha256(len(ph) || ph || index...), all integers as big-endian uint64.
func proofNonce(presentationHeader []byte, disclosedIndexes []int) []byte {
	h := sha256.New()

	var n [8]byte

	binary.BigEndian.PutUint64(n[:], uint64(len(presentationHeader)))
	h.Write(n[:])
	h.Write(presentationHeader)

	for _, i := range disclosedIndexes {
		binary.BigEndian.PutUint64(n[:], uint64(i))
		h.Write(n[:])
	}

	return h.Sum(nil)
}

// checkIndexes requires strictly increasing, non-negative indexes below limit (when limit >= 0).
func checkIndexes(indexes []int, limit int) error {
	for k, i := range indexes {
		if i < 0 || (limit >= 0 && i >= limit) {
			return fmt.Errorf("%w: %d", ErrInvalidIndex, i)
		}

		if k > 0 && i <= indexes[k-1] {
			return fmt.Errorf("%w: %d is not greater than %d", ErrInvalidIndex, i, indexes[k-1])
		}
	}

	return nil
}

func checkPublicKey(pubKey []byte) error {
	if len(pubKey) != pubkey.BLS12381G2KeySize {
		return fmt.Errorf("incorrect pub key, should contain %d key bytes", pubkey.BLS12381G2KeySize)
	}

	return nil
}
