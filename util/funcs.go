package util

import (
	"fmt"
	"iter"
	"slices"
)

func MapIter[A, B any](iter iter.Seq[A], f func(A) B) iter.Seq[B] {
	return func(yield func(B) bool) {
		for v := range iter {
			if !yield(f(v)) {
				return
			}
		}
	}
}

// Strings renders every element with its String method
func Strings[S fmt.Stringer](elems []S) []string {
	return slices.Collect(MapIter(slices.Values(elems), func(s S) string { return s.String() }))
}
