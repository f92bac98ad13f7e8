/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package documentloader

import (
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/piprate/json-gold/ld"
	"github.com/stretchr/testify/require"
	mockldstore "github.com/trustbloc/did-go/doc/ld/mock"
	"github.com/trustbloc/did-go/doc/ld/store"
)

const (
	credentialsV2URL = "https://www.w3.org/ns/credentials/v2"
	embeddedURL = "https://example.org/contexts/embedded/v1"
	remoteURL   = "https://example.org/contexts/remote/v1"
)

type mockProvider struct {
	contextStore        store.ContextStore
	remoteProviderStore store.RemoteProviderStore
}

func (p *mockProvider) JSONLDContextStore() store.ContextStore {
	return p.contextStore
}

func (p *mockProvider) JSONLDRemoteProviderStore() store.RemoteProviderStore {
	return p.remoteProviderStore
}

func createMockProvider() *mockProvider {
	return &mockProvider{
		contextStore:        mockldstore.NewMockContextStore(),
		remoteProviderStore: mockldstore.NewMockRemoteProviderStore(),
	}
}

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	l.calls++

	if l.err != nil {
		return nil, l.err
	}

	return &ld.RemoteDocument{DocumentURL: u, Document: map[string]interface{}{"@context": map[string]interface{}{}}}, nil
}

func TestDocumentLoader(t *testing.T) {
	embedded := ContextDocument{URL: embeddedURL, Content: []byte(`{"@context": {"name": "https://schema.org/name"}}`)}

	t.Run("embedded context", func(t *testing.T) {
		remote := &countingLoader{}

		loader, err := New(WithContexts(embedded), WithRemoteLoader(remote))
		require.NoError(t, err)

		doc, err := loader.LoadDocument(embeddedURL)
		require.NoError(t, err)
		require.Equal(t, embeddedURL, doc.DocumentURL)
		require.Contains(t, doc.Document, "@context")
		require.Zero(t, remote.calls)
	})

	t.Run("remote documents are cached", func(t *testing.T) {
		remote := &countingLoader{}
		cache := expirable.NewLRU[string, *ld.RemoteDocument](10, nil, time.Minute)

		loader, err := New(WithRemoteLoader(remote), WithCache(cache))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			doc, err := loader.LoadDocument(remoteURL)
			require.NoError(t, err)
			require.Equal(t, remoteURL, doc.DocumentURL)
		}

		require.Equal(t, 1, remote.calls)
		require.True(t, cache.Contains(remoteURL))
	})

	t.Run("remote failure", func(t *testing.T) {
		errExpected := errors.New("connection refused")

		loader, err := New(WithRemoteLoader(&countingLoader{err: errExpected}))
		require.NoError(t, err)

		_, err = loader.LoadDocument(remoteURL)
		require.ErrorIs(t, err, ErrContextNotFound)
		require.ErrorIs(t, err, errExpected)
	})

	t.Run("remote disabled", func(t *testing.T) {
		remote := &countingLoader{}

		loader, err := New(WithContexts(embedded), WithRemoteLoader(remote), WithRemoteDisabled())
		require.NoError(t, err)

		_, err = loader.LoadDocument(remoteURL)
		require.ErrorIs(t, err, ErrContextNotFound)
		require.Zero(t, remote.calls)
	})

	t.Run("well-known context", func(t *testing.T) {
		remote := &countingLoader{}

		loader, err := New(WithWellKnownContexts(createMockProvider()), WithRemoteLoader(remote))
		require.NoError(t, err)

		doc, err := loader.LoadDocument(credentialsV2URL)
		require.NoError(t, err)
		require.Contains(t, doc.Document, "@context")
		require.Zero(t, remote.calls)
	})

	t.Run("well-known tier falls through to remote", func(t *testing.T) {
		remote := &countingLoader{}

		loader, err := New(WithWellKnownContexts(createMockProvider()), WithRemoteLoader(remote))
		require.NoError(t, err)

		_, err = loader.LoadDocument(remoteURL)
		require.NoError(t, err)
		require.Equal(t, 1, remote.calls)
	})

	t.Run("well-known tier with remote disabled", func(t *testing.T) {
		loader, err := New(WithWellKnownContexts(createMockProvider()), WithRemoteDisabled())
		require.NoError(t, err)

		_, err = loader.LoadDocument(remoteURL)
		require.ErrorIs(t, err, ErrContextNotFound)
	})

	t.Run("invalid embedded context", func(t *testing.T) {
		_, err := New(WithContexts(ContextDocument{URL: embeddedURL, Content: []byte("{")}))
		require.Error(t, err)
	})
}
