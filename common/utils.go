package common

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// ExpandPath resolves a leading "~" in path to the current user's home directory.
// Paths without a leading "~" are returned unchanged.
//
// Parameters:
//   - path: the user supplied path
//
// Returns:
//   - string: the expanded path
//   - error: error if the home directory cannot be determined
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}
