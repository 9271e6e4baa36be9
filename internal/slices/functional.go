// Package slices contains generic helpers over slices that are missing from
// golang.org/x/exp/slices.
package slices

func Map[L ~[]X, X, Y any](l L, f func(X) Y) []Y {
	r := make([]Y, len(l))
	for i, x := range l {
		r[i] = f(x)
	}
	return r
}

// Filter returns the elements of l satisfying keep, in order.
func Filter[L ~[]E, E any](l L, keep func(E) bool) L {
	var r L
	for _, x := range l {
		if keep(x) {
			r = append(r, x)
		}
	}
	return r
}

// Distinct returns the elements of l without duplicates, keeping the first
// occurrence of each. Intended for short slices.
func Distinct[L ~[]E, E comparable](l L) L {
	r := make(L, 0, len(l))
OUTER:
	for _, x := range l {
		for _, y := range r {
			if x == y {
				continue OUTER
			}
		}
		r = append(r, x)
	}
	return r
}
