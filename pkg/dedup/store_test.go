package dedup

import (
	"strings"
	"testing"
)

func TestDigest_Deterministic(t *testing.T) {
	key := "AB123456.1,CD789012.1"

	first := Digest(key)
	second := Digest(key)

	if first != second {
		t.Errorf("Digest not deterministic: %s != %s", first, second)
	}

	// Pinned value: the same key must map to the same file name across
	// process runs, or re-runs would re-fetch everything
	want := "1da49d21a12532f6711804f66c433988377d68b99840f1ae7da32f3aced21ae0"
	if first != want {
		t.Errorf("Digest(%q) = %s, want %s", key, first, want)
	}
}

func TestDigest_DistinctKeys(t *testing.T) {
	a := Digest("AB123456.1")
	b := Digest("CD789012.1")

	if a == b {
		t.Errorf("Distinct keys produced the same digest: %s", a)
	}
}

func TestDigest_FilesystemSafe(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty_key", ""},
		{"single_accession", "AB123456.1"},
		{"comma_joined", "AB123456.1,CD789012.1,EF345678.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest := Digest(tt.key)

			if len(digest) != 64 {
				t.Errorf("Digest length = %d, want 64 hex characters", len(digest))
			}
			if strings.ContainsAny(digest, "/\\:,") {
				t.Errorf("Digest %q contains filesystem-unsafe characters", digest)
			}
		})
	}
}
