/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/piprate/json-gold/ld"

	"github.com/trustbloc/bbs2023-go/dataintegrity/rdfc"
)

const skolemPrefix = "urn:bnid:"

type skolemizer struct {
	random string
	count  int
}

func newSkolemizer(random string) *skolemizer {
	if random == "" {
		random = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	return &skolemizer{random: random}
}

// skolemize replaces blank node identifiers in an expanded JSON-LD document
// with urn:bnid: IRIs and names every unlabeled node object.
// Keys are visited in sorted order so that generated labels are stable for a fixed random.
func (s *skolemizer) skolemize(expanded []interface{}) []interface{} {
	out := make([]interface{}, 0, len(expanded))

	for _, el := range expanded {
		node, ok := el.(map[string]interface{})
		if !ok {
			out = append(out, el)

			continue
		}

		if _, isValue := node["@value"]; isValue {
			out = append(out, node)

			continue
		}

		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		sk := make(map[string]interface{}, len(node)+1)

		for _, k := range keys {
			if list, isList := node[k].([]interface{}); isList {
				sk[k] = s.skolemize(list)
			} else {
				sk[k] = s.skolemize([]interface{}{node[k]})[0]
			}
		}

		_, isList := node["@list"]
		_, isSet := node["@set"]

		if !isList && !isSet {
			id, _ := sk["@id"].(string) //nolint:errcheck

			switch {
			case id == "":
				sk["@id"] = fmt.Sprintf("%s_%s_%d", skolemPrefix, s.random, s.count)
				s.count++
			case strings.HasPrefix(id, "_:"):
				sk["@id"] = skolemPrefix + id[2:]
			}
		}

		out = append(out, sk)
	}

	return out
}

// deskolemizeQuads turns urn:bnid: IRIs back into blank nodes.
func deskolemizeQuads(quads []*ld.Quad) []*ld.Quad {
	out := make([]*ld.Quad, 0, len(quads))

	for _, q := range quads {
		out = append(out, rdfc.Map(q, func(n ld.Node) ld.Node {
			if iri, ok := n.(*ld.IRI); ok && strings.HasPrefix(iri.Value, skolemPrefix) {
				return rdfc.NewBlankNode(strings.TrimPrefix(iri.Value, skolemPrefix))
			}

			return n
		}))
	}

	return out
}
