/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package dataintegrity adds, derives and verifies data integrity proofs on
// JSON-LD documents, delegating the cryptography to the suites it is given.
package dataintegrity

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
)

const (
	// AssertionMethod is the proof purpose of credential issuance.
	AssertionMethod = "assertionMethod"
	// Authentication is the proof purpose of presentations.
	Authentication = "authentication"

	proofPath = "proof"
)

var (
	// ErrUnsupportedSuite is returned when a Signer, Deriver or Verifier is required to use
	// a cryptographic suite for which it doesn't have a suite initialized.
	ErrUnsupportedSuite = errors.New("data integrity proof requires unsupported cryptographic suite")
	// ErrNoResolver is returned when a Signer or Verifier needs to resolve a
	// verification method but has no resolver.
	ErrNoResolver = errors.New("either verification method resolver or verification method must be provided")
	// ErrVMResolution is returned when a Signer or Verifier needs to resolve a
	// verification method but this fails.
	ErrVMResolution = errors.New("failed to resolve verification method")
)

// VMResolver resolves a verification method by its id.
type VMResolver interface {
	ResolveVerificationMethod(vmID string) (*models.VerificationMethod, error)
}

// VerificationMethods is a VMResolver over a fixed set of verification methods, keyed by id.
type VerificationMethods map[string]*models.VerificationMethod

// ResolveVerificationMethod implements VMResolver.
func (m VerificationMethods) ResolveVerificationMethod(vmID string) (*models.VerificationMethod, error) {
	vm, ok := m[vmID]
	if !ok {
		return nil, fmt.Errorf("unknown verification method %q", vmID)
	}

	return vm, nil
}

// Options contains initialization parameters for Data Integrity Signer, Deriver and Verifier.
type Options struct {
	VMResolver VMResolver
	Logger     *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}

	return o.Logger
}

func (o *Options) resolver() VMResolver {
	if o == nil {
		return nil
	}

	return o.VMResolver
}

// resolveVM makes sure opts carries the verification method identified by vmID.
func resolveVM(opts *models.ProofOptions, resolver VMResolver, vmID string) error {
	if opts.VerificationMethod != nil && (vmID == "" || opts.VerificationMethod.ID == vmID) {
		return nil
	}

	if vmID == "" {
		return fmt.Errorf("%w: no verification method id", ErrVMResolution)
	}

	if resolver == nil {
		return ErrNoResolver
	}

	vm, err := resolver.ResolveVerificationMethod(vmID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVMResolution, err)
	}

	opts.VerificationMethod = vm

	return nil
}
