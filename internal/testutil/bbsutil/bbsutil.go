/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bbsutil contains BBS key fixtures for tests.
package bbsutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/did-go/doc/did"

	"github.com/trustbloc/bbs2023-go/crypto-ext/bbs"
	"github.com/trustbloc/bbs2023-go/crypto-ext/pubkey"
	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
)

const (
	// IssuerDID is the controller of the verification methods created here.
	IssuerDID = "did:example:issuer"

	vmFragment = "#bbs-key-1"
)

// KeyPair is a BBS signer with its Multikey verification method.
type KeyPair struct {
	Signer             *bbs.Signer
	VerificationMethod *models.VerificationMethod
}

// NewKeyPair creates a random BBS key pair controlled by IssuerDID.
func NewKeyPair(t testing.TB) *KeyPair {
	t.Helper()

	pub, priv, err := bbs.GenerateKeyPair(nil)
	require.NoError(t, err)

	signer, err := bbs.NewSigner(priv)
	require.NoError(t, err)

	return &KeyPair{
		Signer:             signer,
		VerificationMethod: VerificationMethod(t, pub),
	}
}

// VerificationMethod wraps a marshaled BLS12-381 G2 public key in a Multikey verification method.
func VerificationMethod(t testing.TB, pub []byte) *models.VerificationMethod {
	t.Helper()

	key, err := pubkey.NewBLS12381G2(pub)
	require.NoError(t, err)

	mk, err := key.Multikey()
	require.NoError(t, err)

	return &models.VerificationMethod{
		ID:                 IssuerDID + vmFragment,
		Type:               models.MultikeyType,
		Controller:         IssuerDID,
		PublicKeyMultibase: mk,
	}
}

// DIDDocument parses a DID document of IssuerDID listing vm as an assertion method.
func DIDDocument(t testing.TB, vm *models.VerificationMethod) *did.Doc {
	t.Helper()

	raw, err := json.Marshal(map[string]interface{}{
		"@context":           []string{"https://www.w3.org/ns/did/v1", "https://w3id.org/security/multikey/v1"},
		"id":                 IssuerDID,
		"verificationMethod": []interface{}{vm},
		"assertionMethod":    []string{vm.ID},
	})
	require.NoError(t, err)

	doc, err := did.ParseDocument(raw)
	require.NoError(t, err)

	return doc
}
