/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sd

import (
	"fmt"
	"strings"

	"github.com/piprate/json-gold/ld"

	"github.com/trustbloc/bbs2023-go/dataintegrity/rdfc"
	jsonutil "github.com/trustbloc/bbs2023-go/util/json"
)

const (
	ldContextKey = "@context"
	nQuadsFormat = "application/n-quads"
)

func (o *processorOpts) ldOptions() *ld.JsonLdOptions {
	opts := ld.NewJsonLdOptions("")
	opts.ProcessingMode = ld.JsonLd_1_1
	opts.DocumentLoader = o.documentLoader

	return opts
}

// expand runs JSON-LD expansion on a copy of doc.
func (o *processorOpts) expand(doc map[string]interface{}) ([]interface{}, error) {
	expanded, err := ld.NewJsonLdProcessor().Expand(jsonutil.DeepCopyObj(doc), o.ldOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: expand JSON-LD document: %w", ErrCanonicalization, err)
	}

	return expanded, nil
}

func (o *processorOpts) compact(expanded []interface{}, ctx interface{}) (map[string]interface{}, error) {
	compacted, err := ld.NewJsonLdProcessor().Compact(expanded,
		map[string]interface{}{ldContextKey: jsonutil.DeepCopy(ctx)}, o.ldOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: compact JSON-LD document: %w", ErrCanonicalization, err)
	}

	return compacted, nil
}

// toQuads converts a JSON-LD document into its RDF statements.
func (o *processorOpts) toQuads(doc interface{}) ([]*ld.Quad, error) {
	opts := o.ldOptions()
	opts.Format = nQuadsFormat

	view, err := ld.NewJsonLdProcessor().ToRDF(jsonutil.DeepCopy(doc), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: convert JSON-LD to RDF: %w", ErrCanonicalization, err)
	}

	nquads, ok := view.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected RDF output %T", ErrCanonicalization, view)
	}

	quads, err := rdfc.ParseNQuads(nquads)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanonicalization, err)
	}

	return quads, nil
}

func (o *processorOpts) toDeskolemizedQuads(doc interface{}) ([]*ld.Quad, error) {
	quads, err := o.toQuads(doc)
	if err != nil {
		return nil, err
	}

	return deskolemizeQuads(quads), nil
}

func (o *processorOpts) canonicalize(doc interface{}) (*rdfc.Result, error) {
	quads, err := o.toQuads(doc)
	if err != nil {
		return nil, err
	}

	res, err := rdfc.CanonicalizeQuads(quads)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanonicalization, err)
	}

	return res, nil
}

// CanonicalNQuads returns the sorted canonical N-Quads of a JSON-LD document.
func CanonicalNQuads(doc map[string]interface{}, opts ...Opt) ([]string, error) {
	res, err := prepareOpts(opts).canonicalize(doc)
	if err != nil {
		return nil, err
	}

	return res.Statements(), nil
}

func joinStatements(statements []string) string {
	return strings.Join(statements, "")
}
