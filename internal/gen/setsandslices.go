//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package gen

import (
	"sort"

	"golang.org/x/exp/constraints"
)

//
// SETS AND SLICES
//

// Unique - the distinct items of a slice in order of first appearance
func Unique[T comparable](s []T) []T {
	// slices.Compact only looks at consecutive repeats: [a, a, b, a] -> [a, b, a]
	seen := make(map[T]struct{}, len(s))
	result := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// SortedKeys - the keys of a map in ascending order
func SortedKeys[K constraints.Ordered, V any](mp map[K]V) []K {
	sl := make([]K, 0, len(mp))
	for k := range mp {
		sl = append(sl, k)
	}
	sort.Slice(sl, func(i, j int) bool { return sl[i] < sl[j] })
	return sl
}

// ChunkSlice - turn a slice into a slice of slices of size N; thanks to https://stackoverflow.com/questions/35179656/slice-chunking-in-go
func ChunkSlice[T any](items []T, size int) (chunks [][]T) {
	if size <= 0 {
		return [][]T{items}
	}
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[0:size:size])
	}
	return append(chunks, items)
}
