package helpers

import (
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Compare returns -1, 0 or 1 the way bytes.Compare does.
func Compare[T constraints.Ordered](a, b T) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// ParseUnsigned parses a base-10 unsigned integer that must fit into T.
// Surrounding whitespace is ignored.
func ParseUnsigned[T constraints.Unsigned](s string) (T, error) {
	var zero T
	bits := Sizeof(zero) * 8
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits)
	if err != nil {
		return zero, err
	}
	return T(v), nil
}
