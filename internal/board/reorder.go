package board

import "slices"

// move returns a copy of items with the element at from moved to index to.
// to is clamped to the bounds of the result.
func move[T any](items []T, from, to int) []T {
	item := items[from]
	rest := slices.Delete(slices.Clone(items), from, from+1)
	return slices.Insert(rest, clampIndex(to, len(rest)), item)
}

// transfer removes the element at from in src and inserts it into dst at
// index to, clamped to dst's bounds. Both results are fresh slices.
func transfer[T any](src, dst []T, from, to int) ([]T, []T) {
	item := src[from]
	newSrc := slices.Delete(slices.Clone(src), from, from+1)
	newDst := slices.Insert(slices.Clone(dst), clampIndex(to, len(dst)), item)
	return newSrc, newDst
}

func clampIndex(i, n int) int {
	return max(0, min(i, n))
}
