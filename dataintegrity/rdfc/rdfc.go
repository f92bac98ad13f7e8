/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rdfc runs RDF Dataset Canonicalization (RDFC-1.0, formerly URDNA2015)
// through json-gold and reports the canonical blank node identifiers it issues.
package rdfc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piprate/json-gold/ld"
)

const (
	defaultGraph    = "@default"
	blankNodePrefix = "_:"

	// json-gold leaves labels that already carry the canonical prefix untouched,
	// so input labels are moved out of its way before normalization.
	inputPrefix = "_:in-"
)

// Result is the output of canonicalization.
type Result struct {
	// Quads are the canonically labeled quads, sorted by their serialization.
	Quads []*ld.Quad
	// CanonicalIDMap maps input blank node labels to canonical labels, both without the "_:" prefix.
	CanonicalIDMap map[string]string
}

// Statements returns the canonical N-Quads lines.
func (r *Result) Statements() []string {
	return Serialize(r.Quads)
}

// Canonicalize canonicalizes an N-Quads document.
func Canonicalize(nquads string) (*Result, error) {
	quads, err := ParseNQuads(nquads)
	if err != nil {
		return nil, err
	}

	return CanonicalizeQuads(quads)
}

// CanonicalizeQuads canonicalizes a parsed dataset. The input quads are not modified.
func CanonicalizeQuads(quads []*ld.Quad) (*Result, error) {
	cloned := Clone(quads)
	inputLabels := map[*ld.BlankNode]string{}

	for _, q := range cloned {
		for _, bn := range blankNodes(q) {
			inputLabels[bn] = Label(bn)
			bn.Attribute = inputPrefix + Label(bn)
		}
	}

	// every quad carries its own graph node, so the whole dataset goes under the default key
	dataset := ld.NewRDFDataset()
	dataset.Graphs[defaultGraph] = cloned

	na := ld.NewNormalisationAlgorithm(ld.AlgorithmURDNA2015, ld.MessageDigestAlgorithmSHA256)
	na.Normalize(dataset)

	idMap := make(map[string]string, len(inputLabels))

	for bn, input := range inputLabels {
		idMap[input] = Label(bn)
	}

	out := make([]*ld.Quad, len(na.Quads()))
	copy(out, na.Quads())

	sort.SliceStable(out, func(i, j int) bool {
		return NQuad(out[i]) < NQuad(out[j])
	})

	return &Result{Quads: out, CanonicalIDMap: idMap}, nil
}

// ParseNQuads parses an N-Quads document. Quads of named graphs carry their graph node.
func ParseNQuads(input string) ([]*ld.Quad, error) {
	dataset, err := ld.ParseNQuads(input)
	if err != nil {
		return nil, fmt.Errorf("parse n-quads: %w", err)
	}

	graphs := make([]string, 0, len(dataset.Graphs))
	for name := range dataset.Graphs {
		graphs = append(graphs, name)
	}

	sort.Strings(graphs)

	var quads []*ld.Quad
	for _, name := range graphs {
		quads = append(quads, dataset.Graphs[name]...)
	}

	return quads, nil
}

// ParseStatements parses a list of N-Quads statements.
func ParseStatements(statements []string) ([]*ld.Quad, error) {
	return ParseNQuads(strings.Join(statements, ""))
}

// NQuad serializes a single quad as an N-Quads line terminated by "\n".
func NQuad(q *ld.Quad) string {
	graph := defaultGraph
	if q.Graph != nil {
		graph = q.Graph.GetValue()
	}

	dataset := ld.NewRDFDataset()
	dataset.Graphs[graph] = []*ld.Quad{q}

	var sb strings.Builder

	// a strings.Builder never fails to write
	_ = (&ld.NQuadRDFSerializer{}).SerializeTo(&sb, dataset) //nolint:errcheck

	return sb.String()
}

// Serialize serializes quads into N-Quads lines, keeping their order.
func Serialize(quads []*ld.Quad) []string {
	out := make([]string, 0, len(quads))

	for _, q := range quads {
		out = append(out, NQuad(q))
	}

	return out
}

// Relabel returns a copy of q with blank node labels replaced through fn.
// Labels for which fn reports false are kept.
func Relabel(q *ld.Quad, fn func(label string) (string, bool)) *ld.Quad {
	out := cloneQuad(q)

	for _, bn := range blankNodes(out) {
		if label, ok := fn(Label(bn)); ok {
			bn.Attribute = blankNodePrefix + label
		}
	}

	return out
}

// Map returns a copy of q with the subject, object and graph passed through fn.
func Map(q *ld.Quad, fn func(n ld.Node) ld.Node) *ld.Quad {
	out := cloneQuad(q)
	out.Subject = fn(out.Subject)
	out.Object = fn(out.Object)

	if out.Graph != nil {
		out.Graph = fn(out.Graph)
	}

	return out
}

// Clone copies quads so that their blank nodes can be relabeled independently.
func Clone(quads []*ld.Quad) []*ld.Quad {
	out := make([]*ld.Quad, 0, len(quads))

	for _, q := range quads {
		out = append(out, cloneQuad(q))
	}

	return out
}

// Label returns the label of a blank node without the "_:" prefix.
func Label(bn *ld.BlankNode) string {
	return strings.TrimPrefix(bn.Attribute, blankNodePrefix)
}

// NewBlankNode creates a blank node for a label given without the "_:" prefix.
func NewBlankNode(label string) *ld.BlankNode {
	return ld.NewBlankNode(blankNodePrefix + label)
}

func cloneQuad(q *ld.Quad) *ld.Quad {
	return &ld.Quad{
		Subject:   cloneNode(q.Subject),
		Predicate: q.Predicate,
		Object:    cloneNode(q.Object),
		Graph:     cloneNode(q.Graph),
	}
}

func cloneNode(n ld.Node) ld.Node {
	if bn, ok := n.(*ld.BlankNode); ok {
		return ld.NewBlankNode(bn.Attribute)
	}

	return n
}

func blankNodes(q *ld.Quad) []*ld.BlankNode {
	var out []*ld.BlankNode

	for _, n := range []ld.Node{q.Subject, q.Object, q.Graph} {
		if bn, ok := n.(*ld.BlankNode); ok {
			out = append(out, bn)
		}
	}

	return out
}
