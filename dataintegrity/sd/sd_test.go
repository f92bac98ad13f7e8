/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sd

import (
	"bytes"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/bbs2023-go/internal/testutil/ldutil"
)

var hmacLabel = regexp.MustCompile(`_:([^ ]+)`)

func TestSelectJSONLD(t *testing.T) {
	doc := ldutil.CredentialMap(t)

	t.Run("nested literal", func(t *testing.T) {
		selection, err := SelectJSONLD(doc, []string{"/credentialSubject/driverLicense/dateOfBirth"})
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{
			"@context": ldutil.TestContextURL,
			"id":       "urn:uuid:7f1c6e02-5c2b-4c7e-9a55-2f5b6c0d3a11",
			"type":     []interface{}{"VerifiableCredential", "DriverLicenseCredential"},
			"credentialSubject": map[string]interface{}{
				"id": "did:example:holder",
				"driverLicense": map[string]interface{}{
					"type":        "DriverLicense",
					"dateOfBirth": "1990-05-21",
				},
			},
		}, selection)
	})

	t.Run("array elements keep their order", func(t *testing.T) {
		selection, err := SelectJSONLD(doc, []string{
			"/credentialSubject/languages/2",
			"/credentialSubject/languages/0",
		})
		require.NoError(t, err)

		subject := selection["credentialSubject"].(map[string]interface{})
		require.Equal(t, []interface{}{"en", "de"}, subject["languages"])
	})

	t.Run("whole object", func(t *testing.T) {
		selection, err := SelectJSONLD(doc, []string{
			"/credentialSubject/driverLicense/licenseClass",
			"/credentialSubject/driverLicense",
		})
		require.NoError(t, err)

		subject := selection["credentialSubject"].(map[string]interface{})
		require.Equal(t, doc["credentialSubject"].(map[string]interface{})["driverLicense"], subject["driverLicense"])
	})

	t.Run("escaped tokens", func(t *testing.T) {
		selection, err := SelectJSONLD(map[string]interface{}{
			"a/b": "slash",
			"c~d": "tilde",
			"e":   "other",
		}, []string{"/a~1b", "/c~0d"})
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{"a/b": "slash", "c~d": "tilde"}, selection)
	})

	t.Run("objects inside arrays", func(t *testing.T) {
		selection, err := SelectJSONLD(map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"id": "urn:item:0", "name": "first", "price": 1.0},
				map[string]interface{}{"id": "_:b1", "type": "Item", "name": "second", "price": 2.0},
			},
		}, []string{"/items/1/name", "/items/0/price"})
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"id": "urn:item:0", "price": 1.0},
				map[string]interface{}{"type": "Item", "name": "second"},
			},
		}, selection)
	})

	t.Run("nested escaped tokens", func(t *testing.T) {
		selection, err := SelectJSONLD(map[string]interface{}{
			"a/b": map[string]interface{}{"c~d": "value", "e": "other"},
		}, []string{"/a~1b/c~0d"})
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{"a/b": map[string]interface{}{"c~d": "value"}}, selection)
	})

	t.Run("document is not modified", func(t *testing.T) {
		_, err := SelectJSONLD(doc, []string{"/credentialSubject/driverLicense"})
		require.NoError(t, err)
		require.Equal(t, ldutil.CredentialMap(t), doc)
	})

	t.Run("no pointers", func(t *testing.T) {
		selection, err := SelectJSONLD(doc, nil)
		require.NoError(t, err)
		require.Nil(t, selection)
	})

	t.Run("unmatched pointers are skipped", func(t *testing.T) {
		selection, err := SelectJSONLD(doc, []string{"/credentialSubject/missing", "/credentialSubject/languages/7"})
		require.NoError(t, err)
		require.Nil(t, selection)

		selection, err = SelectJSONLD(doc, []string{"/credentialSubject/missing", "/issuer"})
		require.NoError(t, err)
		require.Equal(t, "did:example:issuer", selection["issuer"])
	})

	t.Run("malformed pointer", func(t *testing.T) {
		_, err := SelectJSONLD(doc, []string{"issuer"})
		require.ErrorIs(t, err, ErrSelection)
	})
}

func TestCanonicalizeAndGroup(t *testing.T) {
	loader := ldutil.DocumentLoader(t)
	hmacKey := bytes.Repeat([]byte{7}, HMACKeySize)

	group := func(t *testing.T, groups map[string][]string, opts ...Opt) *GroupResult {
		t.Helper()

		h, err := NewHMAC(hmacKey)
		require.NoError(t, err)

		res, err := CanonicalizeAndGroup(ldutil.CredentialMap(t), CreateShuffledIDLabelMapFunction(h), groups,
			append([]Opt{WithDocumentLoader(loader)}, opts...)...)
		require.NoError(t, err)

		return res
	}

	mandatory := []string{"/issuer", "/validFrom"}
	selective := []string{"/credentialSubject/driverLicense/dateOfBirth", "/credentialSubject/languages/1"}
	combined := append(append([]string{}, mandatory...), selective...)

	t.Run("partitions every statement", func(t *testing.T) {
		res := group(t, map[string][]string{"mandatory": mandatory})

		g := res.Groups["mandatory"]
		require.Len(t, res.NQuads, len(g.Matching)+len(g.NonMatching))

		for i, s := range res.NQuads {
			_, matching := g.Matching[i]
			_, nonMatching := g.NonMatching[i]
			require.True(t, matching != nonMatching, s)
		}

		require.True(t, sort.StringsAreSorted(res.NQuads))
		require.True(t, containsSubstring(g.MatchingStatements(), "<did:example:issuer>"))
		require.False(t, containsSubstring(g.MatchingStatements(), "Alice Doe"))
		require.True(t, containsSubstring(g.NonMatchingStatements(), "Alice Doe"))
	})

	t.Run("replacement labels only", func(t *testing.T) {
		res := group(t, map[string][]string{"mandatory": mandatory})
		require.NotEmpty(t, res.LabelMap)

		for _, s := range res.NQuads {
			for _, m := range hmacLabel.FindAllStringSubmatch(s, -1) {
				require.Regexp(t, `^b\d+$`, m[1])
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		groups := map[string][]string{"mandatory": mandatory, "selective": selective}

		first := group(t, groups)
		second := group(t, groups)

		require.Equal(t, first.NQuads, second.NQuads)
		require.Equal(t, first.CanonicalLabelMap(), second.CanonicalLabelMap())

		for name := range groups {
			require.Equal(t, first.Groups[name].Matching, second.Groups[name].Matching)
			require.Equal(t, first.Groups[name].NonMatching, second.Groups[name].NonMatching)
		}

		fixed := group(t, groups, WithSkolemRandom("fixed"))
		fixedAgain := group(t, groups, WithSkolemRandom("fixed"))
		require.Equal(t, fixed.LabelMap, fixedAgain.LabelMap)
		require.Equal(t, fixed.Groups["selective"].DeskolemizedNQuads, fixedAgain.Groups["selective"].DeskolemizedNQuads)
	})

	t.Run("empty and unmatched pointer sets", func(t *testing.T) {
		res := group(t, map[string][]string{"empty": nil, "unmatched": {"/credentialSubject/missing"}})

		for _, name := range []string{"empty", "unmatched"} {
			require.Empty(t, res.Groups[name].Matching)
			require.Len(t, res.Groups[name].NonMatching, len(res.NQuads))
			require.Empty(t, res.Groups[name].DeskolemizedNQuads)
		}
	})

	t.Run("document is not modified", func(t *testing.T) {
		doc := ldutil.CredentialMap(t)

		h, err := NewHMAC(hmacKey)
		require.NoError(t, err)

		_, err = CanonicalizeAndGroup(doc, CreateShuffledIDLabelMapFunction(h),
			map[string][]string{"mandatory": mandatory}, WithDocumentLoader(loader))
		require.NoError(t, err)
		require.Equal(t, ldutil.CredentialMap(t), doc)
	})

	t.Run("same statements without skolemization", func(t *testing.T) {
		res := group(t, map[string][]string{"mandatory": mandatory})

		nquads, err := LabelReplacementCanonicalizeJSONLD(ldutil.CredentialMap(t),
			CreateLabelMapFunction(res.CanonicalLabelMap()), WithDocumentLoader(loader))
		require.NoError(t, err)
		require.Equal(t, res.NQuads, nquads)
	})

	t.Run("disclosed document reproduces the combined statements", func(t *testing.T) {
		res := group(t, map[string][]string{"combined": combined})
		g := res.Groups["combined"]

		verifierLabelMap, err := VerifierLabelMap(g, res.LabelMap)
		require.NoError(t, err)

		reveal, err := SelectJSONLD(ldutil.CredentialMap(t), combined)
		require.NoError(t, err)

		nquads, err := LabelReplacementCanonicalizeJSONLD(reveal,
			CreateLabelMapFunction(verifierLabelMap), WithDocumentLoader(loader))
		require.NoError(t, err)
		require.Equal(t, g.MatchingStatements(), nquads)
	})

	t.Run("unknown context", func(t *testing.T) {
		doc := ldutil.CredentialMap(t)
		doc["@context"] = "https://example.org/contexts/unknown"

		h, err := NewHMAC(hmacKey)
		require.NoError(t, err)

		_, err = CanonicalizeAndGroup(doc, CreateShuffledIDLabelMapFunction(h), nil, WithDocumentLoader(loader))
		require.ErrorIs(t, err, ErrCanonicalization)
	})

	t.Run("malformed pointer", func(t *testing.T) {
		h, err := NewHMAC(hmacKey)
		require.NoError(t, err)

		_, err = CanonicalizeAndGroup(ldutil.CredentialMap(t), CreateShuffledIDLabelMapFunction(h),
			map[string][]string{"mandatory": {"issuer"}}, WithDocumentLoader(loader))
		require.ErrorIs(t, err, ErrSelection)
	})
}

func TestHMAC(t *testing.T) {
	t.Run("random key", func(t *testing.T) {
		h, err := NewHMAC(nil)
		require.NoError(t, err)
		require.Len(t, h.Key(), HMACKeySize)

		other, err := NewHMAC(nil)
		require.NoError(t, err)
		require.NotEqual(t, h.Key(), other.Key())
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := NewHMAC([]byte("short"))
		require.Error(t, err)
	})

	t.Run("shuffled labels", func(t *testing.T) {
		h, err := NewHMAC(bytes.Repeat([]byte{1}, HMACKeySize))
		require.NoError(t, err)

		canonicalIDMap := map[string]string{"x": "c14n0", "y": "c14n1", "z": "c14n2"}

		labelMap, err := CreateShuffledIDLabelMapFunction(h)(canonicalIDMap)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"b0", "b1", "b2"}, values(labelMap))

		again, err := CreateShuffledIDLabelMapFunction(h)(canonicalIDMap)
		require.NoError(t, err)
		require.Equal(t, labelMap, again)
	})

	t.Run("known label map", func(t *testing.T) {
		labelMap, err := CreateLabelMapFunction(map[string]string{"c14n0": "b3"})(map[string]string{"x": "c14n0"})
		require.NoError(t, err)
		require.Equal(t, map[string]string{"x": "b3"}, labelMap)

		_, err = CreateLabelMapFunction(map[string]string{})(map[string]string{"x": "c14n0"})
		require.ErrorIs(t, err, ErrCanonicalization)
	})
}

func TestHash(t *testing.T) {
	require.Len(t, HashMandatory(nil), 32)
	require.NotEqual(t, HashMandatory([]string{"a .\n"}), HashMandatory([]string{"b .\n"}))

	proofConfig := map[string]interface{}{
		"@context":           ldutil.TestContextURL,
		"type":               "DataIntegrityProof",
		"cryptosuite":        "bbs-2023",
		"verificationMethod": "did:example:issuer#key-1",
		"proofPurpose":       "assertionMethod",
	}

	first, err := HashProofConfig(proofConfig, WithDocumentLoader(ldutil.DocumentLoader(t)))
	require.NoError(t, err)
	require.Len(t, first, 32)

	proofConfig["proofPurpose"] = "authentication"

	second, err := HashProofConfig(proofConfig, WithDocumentLoader(ldutil.DocumentLoader(t)))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func containsSubstring(statements []string, sub string) bool {
	for _, s := range statements {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

func values(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}

	return out
}
