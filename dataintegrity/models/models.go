/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package models holds the data model of data integrity proofs.
package models

import (
	"time"
)

const (
	// DataIntegrityProof is the proof type of every data integrity proof.
	DataIntegrityProof = "DataIntegrityProof"

	// DateTimeFormat is the format of proof timestamps.
	DateTimeFormat = time.RFC3339

	// MultikeyType is the verification method type carrying a publicKeyMultibase.
	MultikeyType = "Multikey"
)

// Proof is a data integrity proof as embedded in a secured document.
type Proof struct {
	ID                 string `json:"id,omitempty" mapstructure:"id"`
	Type               string `json:"type" mapstructure:"type"`
	CryptoSuite        string `json:"cryptosuite,omitempty" mapstructure:"cryptosuite"`
	ProofPurpose       string `json:"proofPurpose" mapstructure:"proofPurpose"`
	VerificationMethod string `json:"verificationMethod" mapstructure:"verificationMethod"`
	Created            string `json:"created,omitempty" mapstructure:"created"`
	Expires            string `json:"expires,omitempty" mapstructure:"expires"`
	Domain             string `json:"domain,omitempty" mapstructure:"domain"`
	Challenge          string `json:"challenge,omitempty" mapstructure:"challenge"`
	ProofValue         string `json:"proofValue" mapstructure:"proofValue"`
	PreviousProof      string `json:"previousProof,omitempty" mapstructure:"previousProof"`
}

// VerificationMethod is a Multikey verification method.
type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
}

// ProofOptions contains the options for creating and verifying a proof.
type ProofOptions struct {
	ProofID              string
	Purpose              string
	VerificationMethodID string
	VerificationMethod   *VerificationMethod
	ProofType            string
	SuiteType            string
	Domain               string
	Challenge            string
	Created              time.Time
	Expires              time.Time
	MaxAge               int64
	// MandatoryPointers are JSON pointers to the claims every derived proof discloses.
	MandatoryPointers []string
}

// DeriveOptions contains the options for deriving a selective disclosure proof.
type DeriveOptions struct {
	// ProofID selects the base proof by id when a document carries several.
	ProofID string
	// Purpose, when set, must match the purpose of the base proof.
	Purpose string
	// SelectivePointers are JSON pointers to the claims disclosed in addition to the mandatory ones.
	SelectivePointers  []string
	PresentationHeader []byte
}
