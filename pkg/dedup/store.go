package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the content digest addressing a batch key. The same key
// always maps to the same digest across processes and runs. The digest is a
// filesystem-safe filename component, not a security control.
func Digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Store maps batch keys to persisted payloads. A key is satisfied once a
// payload exists under its digest; stores are write-once and never overwrite.
type Store interface {
	// Has reports whether the key's payload is already persisted.
	Has(ctx context.Context, key string) (bool, error)

	// Put persists the payload under the key's digest.
	// An existing payload is left untouched.
	Put(ctx context.Context, key string, data []byte) error
}
