package geocode

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// cacheKey returns SHA-256 hex of the normalized query for cache lookup.
// Whitespace runs collapse so "downtown  Austin" and "downtown Austin"
// share an entry.
func cacheKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}
