/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package documentloader provides a JSON-LD document loader serving embedded
// contexts first, then the well-known contexts shipped with did-go, and caching
// everything fetched through a fallback loader.
package documentloader

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/piprate/json-gold/ld"
	lddocloader "github.com/trustbloc/did-go/doc/ld/documentloader"
	"github.com/trustbloc/did-go/doc/ld/store"
)

const (
	defaultCacheSize = 100
	defaultCacheTTL  = 10 * time.Minute
)

// ErrContextNotFound is returned when a context is neither embedded nor loadable remotely.
var ErrContextNotFound = errors.New("context not found")

// ContextDocument is a JSON-LD context served under a fixed URL.
type ContextDocument struct {
	URL     string
	Content []byte
}

// StoreProvider supplies the stores backing the well-known context tier.
type StoreProvider interface {
	JSONLDContextStore() store.ContextStore
	JSONLDRemoteProviderStore() store.RemoteProviderStore
}

// Options configures a DocumentLoader.
type Options struct {
	Contexts      []ContextDocument
	WellKnown     StoreProvider
	RemoteLoader  ld.DocumentLoader
	DisableRemote bool
	Cache         *expirable.LRU[string, *ld.RemoteDocument]
}

// WithContexts adds embedded context documents.
func WithContexts(docs ...ContextDocument) func(*Options) {
	return func(o *Options) {
		o.Contexts = append(o.Contexts, docs...)
	}
}

// WithWellKnownContexts serves the contexts embedded in did-go (credentials v1 and v2,
// data integrity, DID core and others) out of the stores of p.
func WithWellKnownContexts(p StoreProvider) func(*Options) {
	return func(o *Options) {
		o.WellKnown = p
	}
}

// WithRemoteLoader sets the loader used for contexts that are not embedded.
func WithRemoteLoader(loader ld.DocumentLoader) func(*Options) {
	return func(o *Options) {
		o.RemoteLoader = loader
	}
}

// WithRemoteDisabled makes the loader serve embedded contexts only.
func WithRemoteDisabled() func(*Options) {
	return func(o *Options) {
		o.DisableRemote = true
	}
}

// WithCache sets the cache for remotely loaded documents.
func WithCache(cache *expirable.LRU[string, *ld.RemoteDocument]) func(*Options) {
	return func(o *Options) {
		o.Cache = cache
	}
}

// DocumentLoader implements ld.DocumentLoader.
type DocumentLoader struct {
	embedded  map[string]*ld.RemoteDocument
	wellKnown ld.DocumentLoader
	remote    ld.DocumentLoader
	cache    *expirable.LRU[string, *ld.RemoteDocument]
}

// New creates a DocumentLoader.
func New(opts ...func(*Options)) (*DocumentLoader, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.RemoteLoader == nil && !o.DisableRemote {
		o.RemoteLoader = ld.NewDefaultDocumentLoader(http.DefaultClient)
	}

	if o.Cache == nil {
		o.Cache = expirable.NewLRU[string, *ld.RemoteDocument](defaultCacheSize, nil, defaultCacheTTL)
	}

	l := &DocumentLoader{
		embedded: make(map[string]*ld.RemoteDocument, len(o.Contexts)),
		cache:    o.Cache,
	}

	if !o.DisableRemote {
		l.remote = o.RemoteLoader
	}

	if o.WellKnown != nil {
		wellKnown, err := lddocloader.NewDocumentLoader(o.WellKnown)
		if err != nil {
			return nil, fmt.Errorf("create well-known context loader: %w", err)
		}

		l.wellKnown = wellKnown
	}

	for _, c := range o.Contexts {
		var doc interface{}

		if err := json.Unmarshal(c.Content, &doc); err != nil {
			return nil, fmt.Errorf("parse embedded context %s: %w", c.URL, err)
		}

		l.embedded[c.URL] = &ld.RemoteDocument{DocumentURL: c.URL, Document: doc}
	}

	return l, nil
}

// LoadDocument resolves a context URL.
func (l *DocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if doc, ok := l.embedded[u]; ok {
		return doc, nil
	}

	if doc, ok := l.cache.Get(u); ok {
		return doc, nil
	}

	if l.wellKnown != nil {
		if doc, err := l.wellKnown.LoadDocument(u); err == nil {
			return doc, nil
		}
	}

	if l.remote == nil {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, u)
	}

	doc, err := l.remote.LoadDocument(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrContextNotFound, u, err)
	}

	l.cache.Add(u, doc)

	return doc, nil
}
