package resource

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ContentKey hashes the given byte parts into a cache key. Each part is length
// prefixed so ("ab", "c") and ("a", "bc") produce different keys.
//
// Parameters:
//   - parts: the content to hash
//
// Returns:
//   - string: a 16 character hex key
func ContentKey(parts ...[]byte) string {
	d := xxhash.New()
	var size [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(size[:], uint64(len(p)))
		_, _ = d.Write(size[:])
		_, _ = d.Write(p)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
