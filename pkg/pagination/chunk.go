package pagination

import (
	"fmt"
	"iter"
	"slices"
)

// Chunk splits ids into contiguous groups of at most size elements, in order.
// The sequence is lazy and can be ranged over any number of times. Each chunk
// is a copy, so ids is never modified through it. Empty input yields no chunks.
// Chunk panics if size is not positive.
func Chunk(ids []string, size int) iter.Seq[[]string] {
	if size <= 0 {
		panic(fmt.Sprintf("pagination: chunk size must be positive, got %d", size))
	}
	return func(yield func([]string) bool) {
		for start := 0; start < len(ids); start += size {
			end := min(start+size, len(ids))
			if !yield(slices.Clone(ids[start:end])) {
				return
			}
		}
	}
}
