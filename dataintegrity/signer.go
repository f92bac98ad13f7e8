/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataintegrity

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
	"github.com/trustbloc/bbs2023-go/dataintegrity/suite"
)

// ErrProofGeneration is returned when Signer.AddProof() fails to generate a
// proof using a supported cryptographic suite.
var ErrProofGeneration = errors.New("data integrity proof generation error")

// Signer implements the Add Proof algorithm of the verifiable credential data
// integrity specification, using a set of provided cryptographic suites.
type Signer struct {
	suites   map[string]suite.Signer
	resolver VMResolver
	logger   *zap.Logger
}

// NewSigner initializes a Signer that supports using the provided cryptographic
// suites to perform data integrity signing.
func NewSigner(opts *Options, suites ...suite.SignerInitializer) (*Signer, error) {
	signer := &Signer{
		suites:   map[string]suite.Signer{},
		resolver: opts.resolver(),
		logger:   opts.logger(),
	}

	for _, initializer := range suites {
		signingSuite, err := initializer.Signer()
		if err != nil {
			return nil, err
		}

		for _, suiteType := range initializer.Type() {
			if _, ok := signer.suites[suiteType]; ok {
				continue
			}

			signer.suites[suiteType] = signingSuite
		}
	}

	return signer, nil
}

// AddProof returns the provided JSON doc, with a proof added, signed using the
// provided options. A proof already present on doc is kept, and the result
// carries a proof set.
//
// If the provided options request a cryptographic suite that this Signer does
// not support, AddProof returns ErrUnsupportedSuite.
//
// If signing fails, or the created proof is invalid, AddProof returns
// ErrProofGeneration.
func (s *Signer) AddProof(doc []byte, opts *models.ProofOptions) ([]byte, error) { // nolint:gocyclo
	signerSuite, ok := s.suites[opts.SuiteType]
	if !ok {
		return nil, ErrUnsupportedSuite
	}

	if err := resolveVM(opts, s.resolver, opts.VerificationMethodID); err != nil {
		return nil, err
	}

	unsecuredDoc, err := stripProof(doc)
	if err != nil {
		return nil, err
	}

	proof, err := signerSuite.CreateProof(unsecuredDoc, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProofGeneration, err)
	}

	if proof.Type == "" || proof.ProofPurpose == "" || proof.VerificationMethod == "" {
		return nil, fmt.Errorf("%w: proof is missing required fields", ErrProofGeneration)
	}

	if proof.Created == "" && signerSuite.RequiresCreated() {
		return nil, fmt.Errorf("%w: suite requires created", ErrProofGeneration)
	}

	if opts.Domain != proof.Domain || opts.Challenge != proof.Challenge {
		return nil, fmt.Errorf("%w: proof does not carry the requested domain and challenge", ErrProofGeneration)
	}

	proofRaw, err := json.Marshal(proof)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProofGeneration, err)
	}

	out, err := attachProof(doc, proofRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProofGeneration, err)
	}

	s.logger.Debug("added data integrity proof",
		zap.String("cryptosuite", proof.CryptoSuite),
		zap.String("verificationMethod", proof.VerificationMethod))

	return out, nil
}
