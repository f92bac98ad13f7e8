/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package suite defines the interfaces implemented by data integrity cryptographic suites.
package suite

import (
	"errors"

	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
	"github.com/trustbloc/bbs2023-go/dataintegrity/sd"
)

var (
	// ErrProofTransformation is returned when a document cannot be transformed for proof creation or verification.
	ErrProofTransformation = errors.New("error transforming document for proof")
	// ErrInvalidProofConfiguration is returned when the proof type, cryptosuite or options are unsupported.
	ErrInvalidProofConfiguration = errors.New("invalid proof configuration")
	// ErrMalformedProof is returned when a proof value cannot be decoded.
	ErrMalformedProof = errors.New("malformed proof value")
	// ErrSignatureBinding is returned when the signature primitive fails to sign or derive.
	ErrSignatureBinding = errors.New("signature binding failed")
	// ErrVerificationFailed is returned when a well-formed proof does not verify.
	ErrVerificationFailed = errors.New("proof verification failed")
)

// IsMalformedInput reports whether err was caused by invalid input rather than
// by a failed signature check.
func IsMalformedInput(err error) bool {
	for _, e := range []error{
		ErrProofTransformation,
		ErrInvalidProofConfiguration,
		ErrMalformedProof,
		sd.ErrCanonicalization,
		sd.ErrSelection,
	} {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// Signer creates data integrity proofs.
type Signer interface {
	CreateProof(doc []byte, opts *models.ProofOptions) (*models.Proof, error)
	RequiresCreated() bool
}

// Verifier verifies data integrity proofs.
type Verifier interface {
	VerifyProof(doc []byte, proof *models.Proof, opts *models.ProofOptions) error
	RequiresCreated() bool
}

// Deriver derives a selective disclosure proof from a base proof. doc is the
// secured document without its proof. It returns the disclosed document, also
// without a proof, and the derived proof.
type Deriver interface {
	DeriveProof(doc []byte, baseProof *models.Proof, opts *models.DeriveOptions) (map[string]interface{}, *models.Proof, error)
}

// Suite implements every role of a cryptographic suite.
type Suite interface {
	Signer
	Verifier
	Deriver
}

// SignerInitializer initializes a Signer for the suite types it reports.
type SignerInitializer interface {
	Signer() (Signer, error)
	Type() []string
}

// VerifierInitializer initializes a Verifier for the suite types it reports.
type VerifierInitializer interface {
	Verifier() (Verifier, error)
	Type() []string
}

// DeriverInitializer initializes a Deriver for the suite types it reports.
type DeriverInitializer interface {
	Deriver() (Deriver, error)
	Type() []string
}
