// Package cas provides helpers for working with CAS registry numbers: the
// hyphen-separated identifiers assigned to chemical substances by the
// Chemical Abstracts Service (e.g. "51-84-3").
//
// No checksum validation is performed; the helpers here only recognise the
// shape of a CAS number, which is what best-effort extraction from free-text
// synonym data requires.
package cas

import (
	"regexp"
	"strings"
)

// pattern matches a CAS-shaped token: 1-7 digits, 2 digits, 1 digit,
// hyphen-separated, optionally prefixed by a "CAS" label as PubChem synonym
// strings often are ("CAS-64-17-5", "CAS 64-17-5").
var pattern = regexp.MustCompile(`(?:CAS[ -]+)?(\d{1,7}-\d{2}-\d{1})`)

// strict anchors the pattern to a whole trimmed string.
var strict = regexp.MustCompile(`^\d{1,7}-\d{2}-\d{1}$`)

// Extract returns the first CAS-shaped number found in s, stripped of any
// "CAS" label prefix, and true on success. It is used to pull a CAS number
// out of free-text synonym strings; absence of a match is not an error.
func Extract(s string) (string, bool) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractFirst scans the slice in order and returns the first CAS number
// found in any element. The first match wins.
func ExtractFirst(candidates []string) (string, bool) {
	for _, c := range candidates {
		if n, ok := Extract(c); ok {
			return n, true
		}
	}
	return "", false
}

// IsShaped reports whether s, after trimming, is exactly a CAS-shaped number.
func IsShaped(s string) bool {
	return strict.MatchString(strings.TrimSpace(s))
}

// listSeparators splits user-supplied identifier lists on newlines, commas,
// and semicolons, matching the input handling of the ingredient forms this
// engine serves.
var listSeparators = regexp.MustCompile(`[\n,;]+`)

// SplitList splits raw user input into trimmed, non-empty identifier strings.
// Case is preserved; order is preserved.
func SplitList(raw string) []string {
	parts := listSeparators.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
