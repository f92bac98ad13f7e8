/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs2023

import (
	"github.com/trustbloc/bbs2023-go/dataintegrity/sd"
)

// MandatoryIndexes returns the positions of the mandatory statements among the
// disclosed (combined) statements.
func MandatoryIndexes(combined, mandatory *sd.Group) []int {
	return relativeIndexes(combined.MatchingIndexes(), mandatory.Matching)
}

// SelectiveIndexes returns the positions of the selectively disclosed statements
// among the non-mandatory statements, which are the signed BBS messages.
func SelectiveIndexes(mandatory, selective *sd.Group) []int {
	return relativeIndexes(mandatory.NonMatchingIndexes(), selective.Matching)
}

func relativeIndexes(absolute []int, members map[int]string) []int {
	out := []int{}

	for relative, i := range absolute {
		if _, ok := members[i]; ok {
			out = append(out, relative)
		}
	}

	return out
}

// splitByIndexes partitions statements into those at the given (ascending)
// indexes and the rest, both keeping their order.
func splitByIndexes(statements []string, indexes []int) ([]string, []string, bool) {
	var selected, rest []string

	next := 0

	for i, s := range statements {
		if next < len(indexes) && indexes[next] == i {
			selected = append(selected, s)
			next++

			continue
		}

		rest = append(rest, s)
	}

	return selected, rest, next == len(indexes)
}
