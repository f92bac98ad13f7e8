/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs2023

//go:generate mockgen -destination interfaces_mocks_test.go -package bbs2023 -source=interfaces.go

// Signer signs a BBS header and messages with a private key it holds.
type Signer interface {
	Sign(header []byte, messages [][]byte) ([]byte, error)
	// PublicKey returns the marshaled BLS12-381 G2 public key matching the signing key.
	PublicKey() []byte
}

// Prover derives BBS proofs of knowledge of a signature.
type Prover interface {
	DeriveProof(pubKey, signature, header, presentationHeader []byte, messages [][]byte,
		disclosedIndexes []int) ([]byte, error)
}

// ProofVerifier verifies BBS proofs of knowledge of a signature.
type ProofVerifier interface {
	VerifyProof(pubKey, proof, header, presentationHeader []byte, disclosedMessages [][]byte,
		disclosedIndexes []int) error
}
