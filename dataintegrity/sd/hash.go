/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sd

import (
	"crypto/sha256"
)

// HashMandatory returns the SHA-256 digest of the concatenated mandatory statements.
func HashMandatory(statements []string) []byte {
	sum := sha256.Sum256([]byte(joinStatements(statements)))

	return sum[:]
}

// HashProofConfig returns the SHA-256 digest of the canonical N-Quads of a proof configuration.
func HashProofConfig(proofConfig map[string]interface{}, opts ...Opt) ([]byte, error) {
	statements, err := CanonicalNQuads(proofConfig, opts...)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(joinStatements(statements)))

	return sum[:], nil
}
