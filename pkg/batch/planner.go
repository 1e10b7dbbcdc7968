// Package batch groups sequence accessions into comma-joined archive request
// keys bounded by a character ceiling.
package batch

import "strings"

// DefaultCeiling is the accumulated accession length at which a batch closes.
// ENA browser URLs degrade beyond a few thousand characters, so keys are kept
// well below that.
const DefaultCeiling = 1000

// Key is a comma-joined list of accessions forming a single archive request.
type Key string

// Accessions splits the key back into its accession list.
// An empty key yields nil.
func (k Key) Accessions() []string {
	if k == "" {
		return nil
	}
	return strings.Split(string(k), ",")
}

// Empty reports whether the key contains no accessions.
func (k Key) Empty() bool {
	return k == ""
}

// Plan groups accessions into keys, preserving input order. A batch closes as
// soon as adding the next accession would bring the accumulated accession
// length to the ceiling or beyond; only accession characters count toward the
// ceiling, separators do not. The trailing batch is always emitted, so an
// empty accession list yields a single empty key. An accession longer than
// the ceiling occupies a key of its own.
func Plan(accessions []string, ceiling int) []Key {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}

	var keys []Key
	var cur []string
	running := 0

	for _, acc := range accessions {
		if len(cur) > 0 && running+len(acc) >= ceiling {
			keys = append(keys, Key(strings.Join(cur, ",")))
			cur = nil
			running = 0
		}
		cur = append(cur, acc)
		running += len(acc)
	}

	return append(keys, Key(strings.Join(cur, ",")))
}
