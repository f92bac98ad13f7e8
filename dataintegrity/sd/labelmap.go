/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sd

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// HMACKeySize is the size of the HMAC key used to randomize blank node labels.
const HMACKeySize = 32

// ErrLabelCollision is returned when two canonical labels produce the same HMAC digest.
var ErrLabelCollision = errors.New("HMAC label collision")

// LabelMapFactory turns a canonical id map (input label to c14nN label) into
// a label map (input label to replacement label).
type LabelMapFactory func(canonicalIDMap map[string]string) (map[string]string, error)

// HMAC is a keyed HMAC-SHA256 used to randomize blank node labels.
type HMAC struct {
	key []byte
}

// NewHMAC creates an HMAC with the given key. A nil key is replaced by a fresh random one.
func NewHMAC(key []byte) (*HMAC, error) {
	if key == nil {
		key = make([]byte, HMACKeySize)

		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate HMAC key: %w", err)
		}
	}

	if len(key) != HMACKeySize {
		return nil, fmt.Errorf("HMAC key must be %d bytes, got %d", HMACKeySize, len(key))
	}

	return &HMAC{key: bytes.Clone(key)}, nil
}

// Sum returns the HMAC-SHA256 digest of data.
func (h *HMAC) Sum(data []byte) []byte {
	mac := hmac.New(sha256.New, h.key)
	mac.Write(data)

	return mac.Sum(nil)
}

// Key returns a copy of the HMAC key.
func (h *HMAC) Key() []byte {
	return bytes.Clone(h.key)
}

// CreateShuffledIDLabelMapFunction returns a LabelMapFactory that replaces every
// canonical label with "b" followed by the rank of its HMAC digest among all digests.
func CreateShuffledIDLabelMapFunction(h *HMAC) LabelMapFactory {
	return func(canonicalIDMap map[string]string) (map[string]string, error) {
		digests := make(map[string]string, len(canonicalIDMap))

		for input, canonical := range canonicalIDMap {
			digests[input] = base64.RawURLEncoding.EncodeToString(h.Sum([]byte(canonical)))
		}

		sorted := lo.Uniq(lo.Values(digests))
		if len(sorted) != len(digests) {
			return nil, ErrLabelCollision
		}

		slices.Sort(sorted)

		rank := make(map[string]int, len(sorted))
		for i, d := range sorted {
			rank[d] = i
		}

		labelMap := make(map[string]string, len(digests))
		for input, d := range digests {
			labelMap[input] = "b" + strconv.Itoa(rank[d])
		}

		return labelMap, nil
	}
}

// CreateLabelMapFunction returns a LabelMapFactory that replaces canonical labels
// through a known map from canonical label to replacement label.
func CreateLabelMapFunction(labelMap map[string]string) LabelMapFactory {
	return func(canonicalIDMap map[string]string) (map[string]string, error) {
		out := make(map[string]string, len(canonicalIDMap))

		for input, canonical := range canonicalIDMap {
			replacement, ok := labelMap[canonical]
			if !ok {
				return nil, fmt.Errorf("%w: label map has no entry for %q", ErrCanonicalization, canonical)
			}

			out[input] = replacement
		}

		return out, nil
	}
}
