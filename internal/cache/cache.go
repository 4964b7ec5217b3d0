// Package cache stores lookup responses in memory and on disk.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Cache is a byte store with per-entry expiry. A zero ttl means the store default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyPrefix versions the key space; bump it when the stored encoding changes
const keyPrefix = "hoverlex:v1:"

// Key hashes parts into a cache key. Parts are separated unambiguously, so
// Key("ab", "c") != Key("a", "bc").
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
