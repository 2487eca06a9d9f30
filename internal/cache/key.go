package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key derives a deterministic cache key from an operation name and its
// already-canonical arguments.
func Key(function string, args ...string) string {
	h := sha256.New()
	h.Write([]byte(function))
	for _, a := range args {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(a)))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
