/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonpointer"

	jsonutil "github.com/trustbloc/bbs2023-go/util/json"
)

var errNoMatch = errors.New("JSON pointer does not match document")

// unselected marks array elements that no pointer reached.
type unselected struct{}

// SelectJSONLD returns the sub-document of doc selected by JSON pointers. The
// selection keeps the document's @context and, for every object on a selected
// path, its non-blank id and its type. Pointers that match nothing in doc are
// skipped; nil is returned when no pointer matches.
func SelectJSONLD(doc map[string]interface{}, pointers []string) (map[string]interface{}, error) {
	selection, matched, err := selectJSONLD(doc, pointers)
	if err != nil {
		return nil, err
	}

	if len(matched) == 0 {
		return nil, nil
	}

	return selection, nil
}

func selectJSONLD(doc map[string]interface{}, pointers []string) (map[string]interface{}, []string, error) {
	if len(pointers) == 0 {
		return nil, nil, nil
	}

	selection := initialSelection(doc)
	if ctx, ok := doc[ldContextKey]; ok {
		selection[ldContextKey] = jsonutil.DeepCopy(ctx)
	}

	var matched []string

	for _, pointer := range pointers {
		err := selectPath(doc, pointer, selection)
		if errors.Is(err, errNoMatch) {
			continue
		}

		if err != nil {
			return nil, nil, err
		}

		matched = append(matched, pointer)
	}

	return compactSparse(selection).(map[string]interface{}), matched, nil //nolint:errcheck
}

func selectPath(doc map[string]interface{}, pointer string, selection map[string]interface{}) error {
	jp, err := gojsonpointer.NewJsonPointer(pointer)
	if err != nil {
		return fmt.Errorf("%w: invalid JSON pointer %q: %w", ErrSelection, pointer, err)
	}

	value, _, err := jp.Get(doc)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", errNoMatch, pointer, err)
	}

	if pointer == "" {
		for k, v := range doc {
			selection[k] = jsonutil.DeepCopy(v)
		}

		return nil
	}

	tokens := strings.Split(pointer[1:], "/")

	// every object and array on the way to the selected value
	for depth := 1; depth < len(tokens); depth++ {
		parent, err := gojsonpointer.NewJsonPointer("/" + strings.Join(tokens[:depth], "/"))
		if err != nil {
			return fmt.Errorf("%w: invalid JSON pointer %q: %w", ErrSelection, pointer, err)
		}

		existing, _, err := parent.Get(selection)
		if _, isPlaceholder := existing.(unselected); err == nil && !isPlaceholder {
			continue
		}

		source, _, err := parent.Get(doc)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", errNoMatch, pointer, err)
		}

		if _, err = parent.Set(selection, emptySelection(source)); err != nil {
			return fmt.Errorf("%w: %q: %w", errNoMatch, pointer, err)
		}
	}

	final := jsonutil.DeepCopy(value)

	if obj, ok := value.(map[string]interface{}); ok {
		merged := map[string]interface{}{}
		if existing, _, err := jp.Get(selection); err == nil {
			if existingObj, isObj := existing.(map[string]interface{}); isObj {
				merged = jsonutil.ShallowCopyObj(existingObj)
			}
		}

		for k, e := range obj {
			merged[k] = jsonutil.DeepCopy(e)
		}

		final = merged
	}

	if _, err = jp.Set(selection, final); err != nil {
		return fmt.Errorf("%w: %q: %w", errNoMatch, pointer, err)
	}

	return nil
}

// emptySelection is the container a selected path starts from inside source.
func emptySelection(source interface{}) interface{} {
	switch v := source.(type) {
	case map[string]interface{}:
		return initialSelection(v)
	case []interface{}:
		placeholders := make([]interface{}, len(v))
		for i := range placeholders {
			placeholders[i] = unselected{}
		}

		return placeholders
	default:
		return map[string]interface{}{}
	}
}

// initialSelection keeps what identifies a node: its non-blank id and its type.
func initialSelection(source map[string]interface{}) map[string]interface{} {
	selection := map[string]interface{}{}

	if id, ok := source["id"].(string); ok && !strings.HasPrefix(id, "_:") {
		selection["id"] = id
	}

	if t, ok := source["type"]; ok {
		selection["type"] = jsonutil.DeepCopy(t)
	}

	return selection
}

// compactSparse drops array elements that were never selected, keeping element order.
func compactSparse(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		for k, e := range tv {
			tv[k] = compactSparse(e)
		}

		return tv
	case []interface{}:
		out := make([]interface{}, 0, len(tv))

		for _, e := range tv {
			if _, skip := e.(unselected); skip {
				continue
			}

			out = append(out, compactSparse(e))
		}

		return out
	default:
		return v
	}
}
