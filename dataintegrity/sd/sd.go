/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sd holds the selective disclosure primitives shared by data integrity
// cryptosuites: skolemization, JSON pointer selection, canonical grouping of
// N-Quads statements and HMAC based blank node relabeling.
package sd

import (
	"errors"
	"sort"

	"github.com/piprate/json-gold/ld"
	"go.uber.org/zap"
)

var (
	// ErrCanonicalization is returned when a document cannot be expanded,
	// converted to RDF or canonicalized.
	ErrCanonicalization = errors.New("canonicalization failed")
	// ErrSelection is returned when a JSON pointer is malformed or a pointer
	// set selects nothing.
	ErrSelection = errors.New("selection failed")
)

// Group is a partition of the canonical statements of a document into those
// selected by a set of JSON pointers and the rest. Both maps are keyed by the
// absolute position of the statement in the sorted canonical N-Quads.
type Group struct {
	Matching           map[int]string
	NonMatching        map[int]string
	DeskolemizedNQuads []string
}

// MatchingIndexes returns the absolute indexes of matching statements in ascending order.
func (g *Group) MatchingIndexes() []int {
	return sortedIndexes(g.Matching)
}

// NonMatchingIndexes returns the absolute indexes of non-matching statements in ascending order.
func (g *Group) NonMatchingIndexes() []int {
	return sortedIndexes(g.NonMatching)
}

// MatchingStatements returns the matching statements in canonical order.
func (g *Group) MatchingStatements() []string {
	return valuesByIndex(g.Matching)
}

// NonMatchingStatements returns the non-matching statements in canonical order.
func (g *Group) NonMatchingStatements() []string {
	return valuesByIndex(g.NonMatching)
}

// GroupResult is the output of CanonicalizeAndGroup.
type GroupResult struct {
	Groups map[string]*Group
	// LabelMap maps the document's input blank node labels to their replacement labels.
	LabelMap map[string]string
	// CanonicalIDMap maps the document's input blank node labels to canonical (c14nN) labels.
	CanonicalIDMap map[string]string
	// NQuads are the relabeled canonical statements in sorted order.
	NQuads []string
}

// CanonicalLabelMap returns the replacement labels keyed by canonical label.
// Unlike LabelMap it does not depend on skolemization randomness.
func (r *GroupResult) CanonicalLabelMap() map[string]string {
	out := make(map[string]string, len(r.CanonicalIDMap))

	for input, canonical := range r.CanonicalIDMap {
		out[canonical] = r.LabelMap[input]
	}

	return out
}

type processorOpts struct {
	documentLoader ld.DocumentLoader
	skolemRandom   string
	logger         *zap.Logger
}

// Opt configures the JSON-LD processing done by this package.
type Opt func(opts *processorOpts)

// WithDocumentLoader sets the JSON-LD document loader used to resolve contexts.
func WithDocumentLoader(loader ld.DocumentLoader) Opt {
	return func(opts *processorOpts) {
		opts.documentLoader = loader
	}
}

// WithSkolemRandom fixes the random component of skolem IRIs.
func WithSkolemRandom(random string) Opt {
	return func(opts *processorOpts) {
		opts.skolemRandom = random
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Opt {
	return func(opts *processorOpts) {
		opts.logger = logger
	}
}

func prepareOpts(opts []Opt) *processorOpts {
	po := &processorOpts{logger: zap.NewNop()}

	for _, opt := range opts {
		opt(po)
	}

	if po.documentLoader == nil {
		po.documentLoader = ld.NewDefaultDocumentLoader(nil)
	}

	return po
}

func sortedIndexes(m map[int]string) []int {
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}

	sort.Ints(out)

	return out
}

func valuesByIndex(m map[int]string) []string {
	out := make([]string, 0, len(m))
	for _, i := range sortedIndexes(m) {
		out = append(out, m[i])
	}

	return out
}
