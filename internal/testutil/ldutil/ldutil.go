/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ldutil contains JSON-LD fixtures for tests.
package ldutil

import (
	_ "embed"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	mockldstore "github.com/trustbloc/did-go/doc/ld/mock"
	"github.com/trustbloc/did-go/doc/ld/store"

	"github.com/trustbloc/bbs2023-go/ld/documentloader"
)

// TestContextURL is the URL the embedded test context is served under.
const TestContextURL = "https://example.org/contexts/bbs-test/v1"

var (
	//go:embed contexts/bbs-test-v1.jsonld
	testContext []byte

	// DriverLicenseCredential is an unsigned credential using the test context.
	//go:embed testdata/driver_license_credential.json
	DriverLicenseCredential []byte

	// UniversityDegreeCredential is an unsigned credential using the W3C VC v2 contexts.
	//go:embed testdata/university_degree_credential_v2.json
	UniversityDegreeCredential []byte
)

type provider struct {
	ContextStore        store.ContextStore
	RemoteProviderStore store.RemoteProviderStore
}

func (p *provider) JSONLDContextStore() store.ContextStore {
	return p.ContextStore
}

func (p *provider) JSONLDRemoteProviderStore() store.RemoteProviderStore {
	return p.RemoteProviderStore
}

// DocumentLoader returns a loader that serves the test context and never goes remote.
func DocumentLoader(t testing.TB) *documentloader.DocumentLoader {
	t.Helper()

	loader, err := documentloader.New(
		documentloader.WithContexts(documentloader.ContextDocument{URL: TestContextURL, Content: testContext}),
		documentloader.WithRemoteDisabled(),
	)
	require.NoError(t, err)

	return loader
}

// WellKnownDocumentLoader returns a loader that serves the test context and the contexts
// embedded in did-go from in-memory stores, and never goes remote.
func WellKnownDocumentLoader(t testing.TB) *documentloader.DocumentLoader {
	t.Helper()

	loader, err := documentloader.New(
		documentloader.WithContexts(documentloader.ContextDocument{URL: TestContextURL, Content: testContext}),
		documentloader.WithWellKnownContexts(&provider{
			ContextStore:        mockldstore.NewMockContextStore(),
			RemoteProviderStore: mockldstore.NewMockRemoteProviderStore(),
		}),
		documentloader.WithRemoteDisabled(),
	)
	require.NoError(t, err)

	return loader
}

// CredentialMap returns a fresh decoded copy of DriverLicenseCredential.
func CredentialMap(t testing.TB) map[string]interface{} {
	t.Helper()

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(DriverLicenseCredential, &doc))

	return doc
}
