/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataintegrity

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
	"github.com/trustbloc/bbs2023-go/dataintegrity/suite"
)

var (
	// ErrOutOfDate is returned when Verifier.VerifyProof() is given a document with
	// a proof that was created more than models.ProofOptions.MaxAge seconds ago,
	// or whose expires time has passed.
	ErrOutOfDate = errors.New("data integrity proof out of date")
	// ErrInvalidDomain is returned when Verifier.VerifyProof() is given a document
	// with a proof without the expected domain.
	ErrInvalidDomain = errors.New("data integrity proof has invalid domain")
	// ErrInvalidChallenge is returned when Verifier.VerifyProof() is given a
	// document with a proof without the expected challenge.
	ErrInvalidChallenge = errors.New("data integrity proof has invalid challenge")
)

// Verifier implements the Verify Proof algorithm of the verifiable credential
// data integrity specification, using a set of provided cryptographic suites.
type Verifier struct {
	suites   map[string]suite.Verifier
	resolver VMResolver
	logger   *zap.Logger
}

// NewVerifier initializes a Verifier that supports using the provided
// cryptographic suites to perform data integrity verification.
func NewVerifier(opts *Options, suites ...suite.VerifierInitializer) (*Verifier, error) {
	verifier := &Verifier{
		suites:   map[string]suite.Verifier{},
		resolver: opts.resolver(),
		logger:   opts.logger(),
	}

	for _, initializer := range suites {
		verifierSuite, err := initializer.Verifier()
		if err != nil {
			return nil, err
		}

		for _, suiteType := range initializer.Type() {
			if _, ok := verifier.suites[suiteType]; ok {
				continue
			}

			verifier.suites[suiteType] = verifierSuite
		}
	}

	return verifier, nil
}

// VerifyProof verifies every data integrity proof on the given JSON document,
// returning an error if proof verification fails, and nil if verification
// succeeds.
//
// opts sets the expectations (purpose, domain, challenge, max age and an
// optional verification method); the remaining proof options are taken from
// the proof itself.
func (v *Verifier) VerifyProof(doc []byte, opts *models.ProofOptions) error {
	proofs, err := parseProofs(doc)
	if err != nil {
		return err
	}

	unsecuredDoc, err := stripProof(doc)
	if err != nil {
		return err
	}

	for _, proof := range proofs {
		if err = v.verify(unsecuredDoc, proof, *opts); err != nil {
			return err
		}
	}

	return nil
}

func (v *Verifier) verify(unsecuredDoc []byte, proof *models.Proof, opts models.ProofOptions) error { // nolint:gocyclo
	verifierSuite, ok := v.suites[proof.CryptoSuite]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedSuite, proof.CryptoSuite)
	}

	if verifierSuite.RequiresCreated() && proof.Created == "" {
		return fmt.Errorf("%w: created is required", ErrMalformedProof)
	}

	if opts.Purpose != "" && proof.ProofPurpose != opts.Purpose {
		return fmt.Errorf("%w: %q", ErrMismatchedPurpose, proof.ProofPurpose)
	}

	if opts.Domain != "" && opts.Domain != proof.Domain {
		return ErrInvalidDomain
	}

	if opts.Challenge != "" && opts.Challenge != proof.Challenge {
		return ErrInvalidChallenge
	}

	created, err := parseTime(proof.Created)
	if err != nil {
		return err
	}

	expires, err := parseTime(proof.Expires)
	if err != nil {
		return err
	}

	now := time.Now()

	if opts.MaxAge > 0 && !created.IsZero() && now.Sub(created) > time.Second*time.Duration(opts.MaxAge) {
		return ErrOutOfDate
	}

	if !expires.IsZero() && now.After(expires) {
		return ErrOutOfDate
	}

	opts.ProofID = proof.ID
	opts.ProofType = proof.Type
	opts.SuiteType = proof.CryptoSuite
	opts.Purpose = proof.ProofPurpose
	opts.Domain = proof.Domain
	opts.Challenge = proof.Challenge
	opts.Created = created
	opts.Expires = expires
	opts.VerificationMethodID = proof.VerificationMethod

	if err = resolveVM(&opts, v.resolver, proof.VerificationMethod); err != nil {
		return err
	}

	if err = verifierSuite.VerifyProof(unsecuredDoc, proof, &opts); err != nil {
		v.logger.Debug("data integrity proof verification failed",
			zap.String("cryptosuite", proof.CryptoSuite), zap.Error(err))

		return err
	}

	return nil
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(models.DateTimeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}

	return t, nil
}
