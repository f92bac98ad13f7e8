/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs2023

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/multiformats/go-multibase"

	"github.com/trustbloc/bbs2023-go/dataintegrity/sd"
	"github.com/trustbloc/bbs2023-go/dataintegrity/suite"
)

var (
	baseProofHeader       = []byte{0xd9, 0x5d, 0x02}
	disclosureProofHeader = []byte{0xd9, 0x5d, 0x03}
)

const (
	baseProofComponents         = 5
	extendedBaseProofComponents = 6
	disclosureProofComponents   = 5

	canonicalLabelPrefix   = "c14n"
	replacementLabelPrefix = "b"
)

// BaseProofValue is the decoded proofValue of a base proof, created by the issuer.
type BaseProofValue struct {
	BBSSignature      []byte
	BBSHeader         []byte
	PublicKey         []byte
	HMACKey           []byte
	MandatoryPointers []string
	// Extension is an optional sixth component, carried through unchanged.
	Extension cbor.RawMessage
}

// DisclosureProofValue is the decoded proofValue of a derived proof, created by the holder.
type DisclosureProofValue struct {
	BBSProof []byte
	// LabelMap maps canonical labels (c14nN) of the disclosed document to replacement labels (bN).
	LabelMap           map[string]string
	MandatoryIndexes   []int
	SelectiveIndexes   []int
	PresentationHeader []byte
}

// SerializeBaseProofValue encodes a base proof value.
func SerializeBaseProofValue(v *BaseProofValue) (string, error) {
	components := []interface{}{
		nonNilBytes(v.BBSSignature),
		nonNilBytes(v.BBSHeader),
		nonNilBytes(v.PublicKey),
		nonNilBytes(v.HMACKey),
		nonNilStrings(v.MandatoryPointers),
	}

	if len(v.Extension) > 0 {
		components = append(components, v.Extension)
	}

	return encodeProofValue(baseProofHeader, components)
}

// ParseBaseProofValue decodes a base proof value.
func ParseBaseProofValue(proofValue string) (*BaseProofValue, error) {
	raw, err := decodeProofValue(proofValue, baseProofHeader)
	if err != nil {
		return nil, err
	}

	if len(raw) != baseProofComponents && len(raw) != extendedBaseProofComponents {
		return nil, malformed("base proof must have %d or %d components, got %d",
			baseProofComponents, extendedBaseProofComponents, len(raw))
	}

	components, err := decodeComponents(raw[:baseProofComponents])
	if err != nil {
		return nil, err
	}

	v := &BaseProofValue{}

	for i, dst := range []*[]byte{&v.BBSSignature, &v.BBSHeader, &v.PublicKey, &v.HMACKey} {
		if *dst, err = bytesComponent(components[i], i); err != nil {
			return nil, err
		}
	}

	if len(v.HMACKey) != sd.HMACKeySize {
		return nil, malformed("HMAC key must be %d bytes, got %d", sd.HMACKeySize, len(v.HMACKey))
	}

	if v.MandatoryPointers, err = stringsComponent(components[4], 4); err != nil {
		return nil, err
	}

	if len(raw) == extendedBaseProofComponents {
		v.Extension = raw[5]
	}

	return v, nil
}

// SerializeDisclosureProofValue encodes a derived proof value. The label map is
// compressed to integer keys and values.
func SerializeDisclosureProofValue(v *DisclosureProofValue) (string, error) {
	labelMap, err := compressLabelMap(v.LabelMap)
	if err != nil {
		return "", err
	}

	components := []interface{}{
		nonNilBytes(v.BBSProof),
		labelMap,
		nonNilInts(v.MandatoryIndexes),
		nonNilInts(v.SelectiveIndexes),
		nonNilBytes(v.PresentationHeader),
	}

	return encodeProofValue(disclosureProofHeader, components)
}

// ParseDisclosureProofValue decodes a derived proof value.
func ParseDisclosureProofValue(proofValue string) (*DisclosureProofValue, error) {
	raw, err := decodeProofValue(proofValue, disclosureProofHeader)
	if err != nil {
		return nil, err
	}

	if len(raw) != disclosureProofComponents {
		return nil, malformed("disclosure proof must have %d components, got %d",
			disclosureProofComponents, len(raw))
	}

	components, err := decodeComponents(raw)
	if err != nil {
		return nil, err
	}

	v := &DisclosureProofValue{}

	if v.BBSProof, err = bytesComponent(components[0], 0); err != nil {
		return nil, err
	}

	if v.LabelMap, err = labelMapComponent(components[1]); err != nil {
		return nil, err
	}

	if v.MandatoryIndexes, err = intsComponent(components[2], 2); err != nil {
		return nil, err
	}

	if v.SelectiveIndexes, err = intsComponent(components[3], 3); err != nil {
		return nil, err
	}

	if v.PresentationHeader, err = bytesComponent(components[4], 4); err != nil {
		return nil, err
	}

	return v, nil
}

// IsBaseProofValue reports whether proofValue carries a base proof header.
func IsBaseProofValue(proofValue string) bool {
	_, data, err := multibase.Decode(proofValue)

	return err == nil && bytes.HasPrefix(data, baseProofHeader)
}

func encodeProofValue(header []byte, components []interface{}) (string, error) {
	payload, err := encMode.Marshal(components)
	if err != nil {
		return "", fmt.Errorf("encode proof value: %w", err)
	}

	return multibase.Encode(multibase.Base64url, append(bytes.Clone(header), payload...))
}

func decodeProofValue(proofValue string, header []byte) ([]cbor.RawMessage, error) {
	if !strings.HasPrefix(proofValue, "u") {
		return nil, malformed("proof value must be multibase base64url encoded")
	}

	_, data, err := multibase.Decode(proofValue)
	if err != nil {
		return nil, malformed("decode proof value: %s", err)
	}

	if !bytes.HasPrefix(data, header) {
		return nil, malformed("unexpected proof value header %x", data[:min(len(data), len(header))])
	}

	var components []cbor.RawMessage

	if err = decMode.Unmarshal(data[len(header):], &components); err != nil {
		return nil, malformed("decode proof value payload: %s", err)
	}

	return components, nil
}

func decodeComponents(raw []cbor.RawMessage) ([]interface{}, error) {
	out := make([]interface{}, len(raw))

	for i, r := range raw {
		var v interface{}

		if err := decMode.Unmarshal(r, &v); err != nil {
			return nil, malformed("decode component %d: %s", i, err)
		}

		u, err := untag(v)
		if err != nil {
			return nil, malformed("component %d: %s", i, err)
		}

		out[i] = u
	}

	return out, nil
}

func bytesComponent(v interface{}, i int) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, malformed("component %d must be a byte string, got %T", i, v)
	}

	return b, nil
}

func stringsComponent(v interface{}, i int) ([]string, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, malformed("component %d must be an array, got %T", i, v)
	}

	out := make([]string, 0, len(arr))

	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, malformed("component %d must hold strings, got %T", i, e)
		}

		out = append(out, s)
	}

	return out, nil
}

func intsComponent(v interface{}, i int) ([]int, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, malformed("component %d must be an array, got %T", i, v)
	}

	out := make([]int, 0, len(arr))

	for _, e := range arr {
		n, err := toIndex(e)
		if err != nil {
			return nil, malformed("component %d: %s", i, err)
		}

		out = append(out, n)
	}

	return out, nil
}

func labelMapComponent(v interface{}) (map[string]string, error) {
	m, ok := v.(map[interface{}]interface{})
	if !ok {
		return nil, malformed("label map must be a map, got %T", v)
	}

	out := make(map[string]string, len(m))

	for k, e := range m {
		key, err := toIndex(k)
		if err != nil {
			return nil, malformed("label map key: %s", err)
		}

		value, err := toIndex(e)
		if err != nil {
			return nil, malformed("label map value: %s", err)
		}

		out[canonicalLabelPrefix+strconv.Itoa(key)] = replacementLabelPrefix + strconv.Itoa(value)
	}

	return out, nil
}

func compressLabelMap(labelMap map[string]string) (map[int]int, error) {
	out := make(map[int]int, len(labelMap))

	for k, v := range labelMap {
		key, err := labelNumber(k, canonicalLabelPrefix)
		if err != nil {
			return nil, err
		}

		value, err := labelNumber(v, replacementLabelPrefix)
		if err != nil {
			return nil, err
		}

		out[key] = value
	}

	return out, nil
}

func labelNumber(label, prefix string) (int, error) {
	suffix := strings.TrimPrefix(label, prefix)

	n, err := strconv.ParseUint(suffix, 10, 31)
	if err != nil || !strings.HasPrefix(label, prefix) || strconv.FormatUint(n, 10) != suffix {
		return 0, fmt.Errorf("%w: label %q must be %s followed by a number", suite.ErrMalformedProof, label, prefix)
	}

	return int(n), nil
}

func toIndex(v interface{}) (int, error) {
	switch n := v.(type) {
	case int64:
		if n < 0 || n > math.MaxInt32 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}

		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}

		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return b
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}

	return s
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", suite.ErrMalformedProof, fmt.Sprintf(format, args...))
}
