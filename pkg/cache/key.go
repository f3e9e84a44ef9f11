package cache

import (
	"fmt"
	"hash/crc32"
	"strings"
)

// Key derives the cache key for a request identifier (path plus query string).
// The key is the CRC32 checksum of the identifier as 8 lowercase hex digits.
// Collisions are tolerated: the identifier space of a single site is small.
func Key(identifier string) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(identifier)))
}

// validName reports whether s can be used as a namespace or key segment.
func validName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\:`)
}

// checkNames validates a namespace/key pair before it reaches a backend.
func checkNames(namespace, key string) error {
	if !validName(namespace) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidName, namespace)
	}
	if !validName(key) {
		return fmt.Errorf("%w: key %q", ErrInvalidName, key)
	}
	return nil
}
