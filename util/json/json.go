/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package json

import (
	"encoding/json"
)

// ShallowCopyObj creates new json object with copied fields form provided object.
func ShallowCopyObj(json map[string]interface{}) map[string]interface{} {
	flds := make(map[string]interface{}, len(json))

	for k, v := range json {
		flds[k] = v
	}

	return flds
}

// CopyExcept copies all fields except fields with given names.
func CopyExcept(json map[string]interface{}, flds ...string) map[string]interface{} {
	newJSON := ShallowCopyObj(json)

	for _, fld := range flds {
		delete(newJSON, fld)
	}

	return newJSON
}

// DeepCopy copies a decoded JSON value (objects, arrays and literals) recursively.
// Values of other types are returned as is.
func DeepCopy(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(tv))
		for k, e := range tv {
			out[k] = DeepCopy(e)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(tv))
		for i, e := range tv {
			out[i] = DeepCopy(e)
		}

		return out
	default:
		return v
	}
}

// DeepCopyObj copies a JSON object recursively.
func DeepCopyObj(json map[string]interface{}) map[string]interface{} {
	if json == nil {
		return nil
	}

	return DeepCopy(json).(map[string]interface{}) //nolint:errcheck
}

// ToMap convert object, string or bytes to json object represented by map.
func ToMap(v interface{}) (map[string]interface{}, error) {
	var (
		b   []byte
		err error
	)

	switch cv := v.(type) {
	case []byte:
		b = cv
	case string:
		b = []byte(cv)
	default:
		b, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}

	var m map[string]interface{}

	err = json.Unmarshal(b, &m)
	if err != nil {
		return nil, err
	}

	return m, nil
}
