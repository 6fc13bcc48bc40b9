// Package utils has small generic helpers.
package utils

// Map converts each element of sli with mapper, keeping the order.
//
// A nil sli gives an empty, non-nil slice, so that it is encoded as [] in JSON.
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}
