/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dataintegrity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
	"github.com/trustbloc/bbs2023-go/dataintegrity/suite"
)

var (
	// ErrMissingProof is returned when a document has no data integrity proof field.
	ErrMissingProof = errors.New("missing data integrity proof")
	// ErrMalformedProof is returned when a proof isn't a JSON object or is missing
	// necessary standard fields.
	ErrMalformedProof = errors.New("malformed data integrity proof")
	// ErrWrongProofType is returned when a proof isn't a Data Integrity proof.
	ErrWrongProofType = errors.New("proof provided is not a data integrity proof")
)

const proofSchema = `{
  "type": "object",
  "required": ["type", "cryptosuite", "proofPurpose", "verificationMethod", "proofValue"],
  "properties": {
    "id": {"type": "string"},
    "type": {"type": "string", "minLength": 1},
    "cryptosuite": {"type": "string", "minLength": 1},
    "proofPurpose": {"type": "string", "minLength": 1},
    "verificationMethod": {"type": "string", "minLength": 1},
    "created": {"type": "string"},
    "expires": {"type": "string"},
    "domain": {"type": "string"},
    "challenge": {"type": "string"},
    "proofValue": {"type": "string", "minLength": 1},
    "previousProof": {"type": "string"}
  }
}`

var proofSchemaLoader = gojsonschema.NewStringLoader(proofSchema)

// parseProofs returns every proof attached to doc, a single proof or a proof set.
func parseProofs(doc []byte) ([]*models.Proof, error) {
	proofRaw := gjson.GetBytes(doc, proofPath)
	if !proofRaw.Exists() {
		return nil, ErrMissingProof
	}

	elements := []gjson.Result{proofRaw}
	if proofRaw.IsArray() {
		elements = proofRaw.Array()
	}

	if len(elements) == 0 {
		return nil, ErrMissingProof
	}

	proofs := make([]*models.Proof, 0, len(elements))

	for _, e := range elements {
		proof, err := decodeProof(e)
		if err != nil {
			return nil, err
		}

		proofs = append(proofs, proof)
	}

	return proofs, nil
}

func decodeProof(raw gjson.Result) (*models.Proof, error) {
	if !raw.IsObject() {
		return nil, fmt.Errorf("%w: proof must be a JSON object", ErrMalformedProof)
	}

	result, err := gojsonschema.Validate(proofSchemaLoader, gojsonschema.NewStringLoader(raw.Raw))
	if err != nil {
		return nil, fmt.Errorf("%w: validate proof: %w", ErrMalformedProof, err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %w: %s", ErrMalformedProof, suite.ErrInvalidProofConfiguration,
			describeSchemaValidationError(result))
	}

	proof := &models.Proof{}

	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  proof,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("proof decoder: %w", err)
	}

	if err = d.Decode(raw.Value()); err != nil {
		return nil, fmt.Errorf("%w: decode proof: %w", ErrMalformedProof, err)
	}

	if proof.Type != models.DataIntegrityProof {
		return nil, fmt.Errorf("%w: %q", ErrWrongProofType, proof.Type)
	}

	return proof, nil
}

func describeSchemaValidationError(result *gojsonschema.Result) string {
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}

	return "proof is not valid: " + strings.Join(msgs, "; ")
}

// stripProof returns doc without its proof field.
func stripProof(doc []byte) ([]byte, error) {
	out, err := sjson.DeleteBytes(doc, proofPath)
	if err != nil {
		return nil, fmt.Errorf("%w: remove proof: %w", ErrMalformedProof, err)
	}

	return out, nil
}

// attachProof adds proofRaw to doc, turning an existing proof into a proof set.
func attachProof(doc, proofRaw []byte) ([]byte, error) {
	existing := gjson.GetBytes(doc, proofPath)

	switch {
	case !existing.Exists():
		return sjson.SetRawBytes(doc, proofPath, proofRaw)
	case existing.IsArray():
		return sjson.SetRawBytes(doc, proofPath+".-1", proofRaw)
	default:
		return sjson.SetRawBytes(doc, proofPath, []byte("["+existing.Raw+","+string(proofRaw)+"]"))
	}
}
