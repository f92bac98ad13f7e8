/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vermethod

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/did-go/doc/did"
	vdrapi "github.com/trustbloc/did-go/vdr/api"

	"github.com/trustbloc/bbs2023-go/internal/testutil/bbsutil"
)

type resolveFunc func(id string) (*did.DocResolution, error)

func (f resolveFunc) Resolve(id string, _ ...vdrapi.DIDMethodOption) (*did.DocResolution, error) {
	return f(id)
}

func didDocument(t *testing.T, mk string) *did.Doc {
	t.Helper()

	raw, err := json.Marshal(map[string]interface{}{
		"@context": []string{"https://www.w3.org/ns/did/v1", "https://w3id.org/security/multikey/v1"},
		"id":       bbsutil.IssuerDID,
		"verificationMethod": []interface{}{
			map[string]interface{}{
				"id":                 bbsutil.IssuerDID + "#bbs-key-1",
				"type":               "Multikey",
				"controller":         bbsutil.IssuerDID,
				"publicKeyMultibase": mk,
			},
		},
		"assertionMethod": []string{bbsutil.IssuerDID + "#bbs-key-1"},
		"keyAgreement": []interface{}{
			map[string]interface{}{
				"id":                 bbsutil.IssuerDID + "#agreement-key-1",
				"type":               "Multikey",
				"controller":         bbsutil.IssuerDID,
				"publicKeyMultibase": mk,
			},
		},
	})
	require.NoError(t, err)

	doc, err := did.ParseDocument(raw)
	require.NoError(t, err)

	return doc
}

func TestVDRResolver(t *testing.T) {
	kp := bbsutil.NewKeyPair(t)
	doc := didDocument(t, kp.VerificationMethod.PublicKeyMultibase)

	r := NewVDRResolver(resolveFunc(func(id string) (*did.DocResolution, error) {
		if id != bbsutil.IssuerDID {
			return nil, errors.New("DID not found")
		}

		return &did.DocResolution{DIDDocument: doc}, nil
	}))

	t.Run("success", func(t *testing.T) {
		vm, err := r.ResolveVerificationMethod(kp.VerificationMethod.ID)
		require.NoError(t, err)
		require.Equal(t, kp.VerificationMethod, vm)
	})

	t.Run("failures", func(t *testing.T) {
		for _, id := range []string{
			bbsutil.IssuerDID,
			bbsutil.IssuerDID + "#agreement-key-1",
			bbsutil.IssuerDID + "#missing",
			"did:example:unknown#bbs-key-1",
		} {
			_, err := r.ResolveVerificationMethod(id)
			require.Error(t, err, id)
		}
	})

	t.Run("empty resolution", func(t *testing.T) {
		_, err := NewVDRResolver(resolveFunc(func(string) (*did.DocResolution, error) {
			return &did.DocResolution{}, nil
		})).ResolveVerificationMethod(kp.VerificationMethod.ID)
		require.ErrorContains(t, err, "empty DID document")
	})
}
