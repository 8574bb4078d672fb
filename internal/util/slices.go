// Package util holds small helpers shared between packages.
package util

// FindFunc returns the first element of s for which f returns true.
func FindFunc[E any](s []E, f func(E) bool) (e E, ok bool) {
	for _, e := range s {
		if f(e) {
			return e, true
		}
	}
	return e, false
}
