/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sd

import (
	"fmt"
	"sort"

	"github.com/piprate/json-gold/ld"
	"go.uber.org/zap"

	"github.com/trustbloc/bbs2023-go/dataintegrity/rdfc"
)

// CanonicalizeAndGroup canonicalizes doc, relabels its blank nodes through
// labelMapFactory and partitions the resulting statements once per named
// pointer set in groups. doc is not modified.
func CanonicalizeAndGroup(
	doc map[string]interface{},
	labelMapFactory LabelMapFactory,
	groups map[string][]string,
	opts ...Opt,
) (*GroupResult, error) {
	po := prepareOpts(opts)

	expanded, err := po.expand(doc)
	if err != nil {
		return nil, err
	}

	skolemized := newSkolemizer(po.skolemRandom).skolemize(expanded)

	compacted, err := po.compact(skolemized, doc[ldContextKey])
	if err != nil {
		return nil, err
	}

	deskolemized, err := po.toDeskolemizedQuads(skolemized)
	if err != nil {
		return nil, err
	}

	labelMap, canonicalIDMap, nquads, err := labelReplacementCanonicalize(deskolemized, labelMapFactory)
	if err != nil {
		return nil, err
	}

	res := &GroupResult{
		Groups:         make(map[string]*Group, len(groups)),
		LabelMap:       labelMap,
		CanonicalIDMap: canonicalIDMap,
		NQuads:         nquads,
	}

	for name, pointers := range groups {
		group, err := po.group(compacted, pointers, labelMap, nquads)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}

		res.Groups[name] = group
	}

	return res, nil
}

func (o *processorOpts) group(
	compacted map[string]interface{},
	pointers []string,
	labelMap map[string]string,
	nquads []string,
) (*Group, error) {
	group := &Group{
		Matching:    map[int]string{},
		NonMatching: map[int]string{},
	}

	selection, matched, err := selectJSONLD(compacted, pointers)
	if err != nil {
		return nil, err
	}

	if len(matched) < len(pointers) {
		o.logger.Debug("JSON pointers without a match are skipped",
			zap.Int("pointers", len(pointers)), zap.Int("matched", len(matched)))
	}

	selected := map[string]struct{}{}

	if len(matched) > 0 {
		quads, err := o.toDeskolemizedQuads(selection)
		if err != nil {
			return nil, err
		}

		group.DeskolemizedNQuads = rdfc.Serialize(quads)

		for _, s := range relabel(quads, labelMap) {
			selected[s] = struct{}{}
		}
	}

	for i, s := range nquads {
		if _, ok := selected[s]; ok {
			group.Matching[i] = s
		} else {
			group.NonMatching[i] = s
		}
	}

	return group, nil
}

// LabelReplacementCanonicalizeJSONLD canonicalizes doc and relabels its blank
// nodes through labelMapFactory, returning the sorted statements.
func LabelReplacementCanonicalizeJSONLD(
	doc map[string]interface{},
	labelMapFactory LabelMapFactory,
	opts ...Opt,
) ([]string, error) {
	quads, err := prepareOpts(opts).toQuads(doc)
	if err != nil {
		return nil, err
	}

	_, _, nquads, err := labelReplacementCanonicalize(quads, labelMapFactory)

	return nquads, err
}

// VerifierLabelMap canonicalizes the deskolemized statements of a group and
// returns labelMap re-keyed by the resulting canonical labels. It is what a
// verifier needs to reproduce the relabeling of a disclosed document.
func VerifierLabelMap(group *Group, labelMap map[string]string) (map[string]string, error) {
	quads, err := rdfc.ParseStatements(group.DeskolemizedNQuads)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanonicalization, err)
	}

	res, err := rdfc.CanonicalizeQuads(quads)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanonicalization, err)
	}

	out := make(map[string]string, len(res.CanonicalIDMap))

	for input, canonical := range res.CanonicalIDMap {
		replacement, ok := labelMap[input]
		if !ok {
			return nil, fmt.Errorf("%w: no replacement label for %q", ErrCanonicalization, input)
		}

		out[canonical] = replacement
	}

	return out, nil
}

func labelReplacementCanonicalize(
	quads []*ld.Quad,
	labelMapFactory LabelMapFactory,
) (map[string]string, map[string]string, []string, error) {
	res, err := rdfc.CanonicalizeQuads(quads)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrCanonicalization, err)
	}

	labelMap, err := labelMapFactory(res.CanonicalIDMap)
	if err != nil {
		return nil, nil, nil, err
	}

	canonicalToReplacement := make(map[string]string, len(labelMap))

	for input, canonical := range res.CanonicalIDMap {
		replacement, ok := labelMap[input]
		if !ok {
			return nil, nil, nil, fmt.Errorf("%w: no replacement label for %q", ErrCanonicalization, input)
		}

		canonicalToReplacement[canonical] = replacement
	}

	nquads := relabel(res.Quads, canonicalToReplacement)
	sort.Strings(nquads)

	return labelMap, res.CanonicalIDMap, nquads, nil
}

func relabel(quads []*ld.Quad, labelMap map[string]string) []string {
	out := make([]string, 0, len(quads))

	for _, q := range quads {
		out = append(out, rdfc.NQuad(rdfc.Relabel(q, func(label string) (string, bool) {
			l, ok := labelMap[label]

			return l, ok
		})))
	}

	return out
}
