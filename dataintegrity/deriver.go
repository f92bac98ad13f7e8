/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataintegrity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
	"github.com/trustbloc/bbs2023-go/dataintegrity/suite"
)

var (
	// ErrMultipleProofs is returned when more than one base proof could be derived
	// from and models.DeriveOptions.ProofID does not choose between them.
	ErrMultipleProofs = errors.New("multiple matching proofs, a proof id is required")
	// ErrMismatchedPurpose is returned when a proof's purpose does not match the
	// expected purpose.
	ErrMismatchedPurpose = errors.New("data integrity proof does not match expected purpose")
)

// Deriver derives selective disclosure documents from documents secured with a
// base proof, using a set of provided cryptographic suites.
type Deriver struct {
	suites map[string]suite.Deriver
	logger *zap.Logger
}

// NewDeriver initializes a Deriver that supports the provided cryptographic suites.
func NewDeriver(opts *Options, suites ...suite.DeriverInitializer) (*Deriver, error) {
	deriver := &Deriver{
		suites: map[string]suite.Deriver{},
		logger: opts.logger(),
	}

	for _, initializer := range suites {
		derivingSuite, err := initializer.Deriver()
		if err != nil {
			return nil, err
		}

		for _, suiteType := range initializer.Type() {
			if _, ok := deriver.suites[suiteType]; ok {
				continue
			}

			deriver.suites[suiteType] = derivingSuite
		}
	}

	return deriver, nil
}

// DeriveProof selects the base proof of doc, by models.DeriveOptions.ProofID or
// as the only proof of a supported suite, and returns the reveal document with
// the derived proof attached.
func (d *Deriver) DeriveProof(doc []byte, opts *models.DeriveOptions) ([]byte, error) {
	proofs, err := parseProofs(doc)
	if err != nil {
		return nil, err
	}

	baseProof, err := d.selectBaseProof(proofs, opts.ProofID)
	if err != nil {
		return nil, err
	}

	if opts.Purpose != "" && opts.Purpose != baseProof.ProofPurpose {
		return nil, fmt.Errorf("%w: %q", ErrMismatchedPurpose, baseProof.ProofPurpose)
	}

	unsecuredDoc, err := stripProof(doc)
	if err != nil {
		return nil, err
	}

	revealDoc, derivedProof, err := d.suites[baseProof.CryptoSuite].DeriveProof(unsecuredDoc, baseProof, opts)
	if err != nil {
		return nil, err
	}

	revealRaw, err := json.Marshal(revealDoc)
	if err != nil {
		return nil, fmt.Errorf("marshal reveal document: %w", err)
	}

	proofRaw, err := json.Marshal(derivedProof)
	if err != nil {
		return nil, fmt.Errorf("marshal derived proof: %w", err)
	}

	d.logger.Debug("derived data integrity proof",
		zap.String("cryptosuite", derivedProof.CryptoSuite),
		zap.Int("selectivePointers", len(opts.SelectivePointers)))

	return attachProof(revealRaw, proofRaw)
}

func (d *Deriver) selectBaseProof(proofs []*models.Proof, proofID string) (*models.Proof, error) {
	candidates := lo.Filter(proofs, func(p *models.Proof, _ int) bool {
		if proofID != "" {
			return p.ID == proofID
		}

		_, ok := d.suites[p.CryptoSuite]

		return ok
	})

	switch len(candidates) {
	case 0:
		if proofID != "" {
			return nil, fmt.Errorf("%w: no proof with id %q", ErrMissingProof, proofID)
		}

		return nil, ErrUnsupportedSuite
	case 1:
		if _, ok := d.suites[candidates[0].CryptoSuite]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedSuite, candidates[0].CryptoSuite)
		}

		return candidates[0], nil
	default:
		return nil, ErrMultipleProofs
	}
}
