/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs2023

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

// decModeWithTagsForbidden checks that the encoder never emits tags.
var decModeWithTagsForbidden = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
		IntDec:      cbor.IntDecConvertSigned,
		TagsMd:      cbor.TagsForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}

	return mode
}()

func TestUntag(t *testing.T) {
	t.Run("Uint8Array tags are stripped", func(t *testing.T) {
		v, err := untag([]interface{}{
			cbor.Tag{Number: typedArrayUint8Tag, Content: []byte{1, 2}},
			map[interface{}]interface{}{int64(1): cbor.Tag{Number: typedArrayUint8Tag, Content: []byte{3}}},
			"plain",
		})
		require.NoError(t, err)
		require.Equal(t, []interface{}{
			[]byte{1, 2},
			map[interface{}]interface{}{int64(1): []byte{3}},
			"plain",
		}, v)
	})

	t.Run("other tags are rejected", func(t *testing.T) {
		_, err := untag([]interface{}{cbor.Tag{Number: 1, Content: int64(0)}})
		require.ErrorContains(t, err, "unsupported CBOR tag 1")

		_, err = untag(map[interface{}]interface{}{
			int64(0): cbor.Tag{Number: typedArrayUint8Tag, Content: "not bytes"},
		})
		require.Error(t, err)
	})
}
