package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidSuffix is returned when a filename ends in underscores and yields
// an empty suffix. Callers fall back to DefaultFormat and keep going.
var ErrInvalidSuffix = errors.New("empty suffix")

// SuffixMap maps a filename suffix to its target format. Keys are stored
// case-sensitively; only Resolve's lookup is forgiving about letter case.
type SuffixMap map[string]Format

// Clone returns an independent copy of the map. Batches snapshot the active
// profile with this so a mid-run profile edit cannot affect files in flight.
func (m SuffixMap) Clone() SuffixMap {
	out := make(SuffixMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Resolve derives the target format for a texture filename.
//
// The suffix is the token after the last underscore in the filename's stem,
// with trailing underscores stripped. A stem without underscores resolves to
// DefaultFormat. Lookup tries the suffix exactly as written, then lowercased,
// then uppercased; artists type suffixes inconsistently, so the lookup is
// tolerant even though the map itself keeps distinct keys for distinct cases.
//
// A filename like "rock_.png" produces an empty suffix; Resolve reports
// ErrInvalidSuffix alongside DefaultFormat so the caller can log and continue.
func (m SuffixMap) Resolve(filename string) (Format, string, error) {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	idx := strings.LastIndex(stem, "_")
	if idx < 0 {
		return DefaultFormat, "", nil
	}

	suffix := strings.TrimRight(stem[idx+1:], "_")
	if suffix == "" {
		return DefaultFormat, "", fmt.Errorf("%s: %w", base, ErrInvalidSuffix)
	}

	if f, ok := m[suffix]; ok {
		return f, suffix, nil
	}
	if f, ok := m[strings.ToLower(suffix)]; ok {
		return f, suffix, nil
	}
	if f, ok := m[strings.ToUpper(suffix)]; ok {
		return f, suffix, nil
	}
	return DefaultFormat, suffix, nil
}
