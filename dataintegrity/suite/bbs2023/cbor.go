/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs2023

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// typedArrayUint8Tag is the CBOR tag of a Uint8Array (RFC 8746).
const typedArrayUint8Tag = 64

// Pre-configured modes for CBOR encoding and decoding.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// init encode mode
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCoreDeterministic, // sort map keys
		IndefLength: cbor.IndefLengthForbidden,  // no streaming
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(err)
	}

	// init decode mode
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF, // duplicated key not allowed
		IndefLength: cbor.IndefLengthForbidden, // no streaming
		IntDec:      cbor.IntDecConvertSigned,  // decode CBOR uint/int to Go int64
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(err)
	}
}

// untag strips Uint8Array tags around byte strings. Any other tag is rejected.
func untag(v interface{}) (interface{}, error) {
	switch tv := v.(type) {
	case cbor.Tag:
		if tv.Number == typedArrayUint8Tag {
			if b, ok := tv.Content.([]byte); ok {
				return b, nil
			}
		}

		return nil, fmt.Errorf("unsupported CBOR tag %d", tv.Number)
	case []interface{}:
		out := make([]interface{}, len(tv))

		for i, e := range tv {
			u, err := untag(e)
			if err != nil {
				return nil, err
			}

			out[i] = u
		}

		return out, nil
	case map[interface{}]interface{}:
		out := make(map[interface{}]interface{}, len(tv))

		for k, e := range tv {
			ue, err := untag(e)
			if err != nil {
				return nil, err
			}

			out[k] = ue
		}

		return out, nil
	default:
		return v, nil
	}
}
