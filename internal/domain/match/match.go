// Package match defines the query and result types shared by the identifier
// resolver and the cross-annex search engine, plus the cell predicates both
// engines apply.
package match

import "strings"

// Mode selects how the identifier resolver compares a query against a name
// cell.
type Mode int

const (
	// ModeExact matches on case-folded, trimmed equality.
	ModeExact Mode = iota
	// ModeFuzzy matches on case-insensitive substring containment. Every
	// exact match is also a fuzzy match.
	ModeFuzzy
)

func (m Mode) String() string {
	if m == ModeExact {
		return "exact"
	}
	return "fuzzy"
}

// ParseMode converts a user-facing mode name. Unknown names fall back to
// ModeExact.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "fuzzy") {
		return ModeFuzzy
	}
	return ModeExact
}

// CASPolicy selects how the cross-annex engine compares a CAS query against
// a CAS cell. Annex cells frequently pack several CAS numbers into one cell,
// which substring containment tolerates at the cost of false positives when
// one number is a textual substring of another.
type CASPolicy int

const (
	// PolicySubstring matches when the cell contains the query.
	PolicySubstring CASPolicy = iota
	// PolicyExact matches only on trimmed equality.
	PolicyExact
)

func (p CASPolicy) String() string {
	if p == PolicyExact {
		return "exact"
	}
	return "substring"
}

// ParseCASPolicy converts a user-facing policy name. Unknown names fall
// back to PolicySubstring.
func ParseCASPolicy(s string) CASPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "exact") {
		return PolicyExact
	}
	return PolicySubstring
}

// Query is one user-supplied identifier: a CAS number or an ingredient
// name. It is trimmed on creation and never mutated afterwards.
type Query string

// NewQuery trims the raw input into a Query.
func NewQuery(raw string) Query {
	return Query(strings.TrimSpace(raw))
}

// Empty reports whether the query carries no text.
func (q Query) Empty() bool {
	return q == ""
}

func (q Query) String() string {
	return string(q)
}

// NameMatches applies the resolver mode to one name cell.
func (q Query) NameMatches(cell string, mode Mode) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	needle := strings.ToLower(string(q))
	if needle == "" {
		return false
	}
	if mode == ModeExact {
		return c == needle
	}
	return strings.Contains(c, needle)
}

// CASMatches applies the cross-annex policy to one CAS cell. Both sides are
// case-folded; annex cells sometimes carry lettered annotations around the
// numbers.
func (q Query) CASMatches(cell string, policy CASPolicy) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	needle := strings.ToLower(string(q))
	if needle == "" {
		return false
	}
	if policy == PolicyExact {
		return c == needle
	}
	return strings.Contains(c, needle)
}

// Hit is one matched body row, keyed by column label for display.
type Hit struct {
	Row    int               `json:"row"`
	Values map[string]string `json:"values"`
}

// Result is the resolver outcome for one query against one source: either
// one or more hits, or an explicit not-found record. The two states are
// mutually exclusive.
type Result struct {
	Query  Query  `json:"query"`
	Source string `json:"source"`
	Mode   Mode   `json:"-"`
	Hits   []Hit  `json:"hits,omitempty"`
}

// Found reports whether the query matched at least one row.
func (r Result) Found() bool {
	return len(r.Hits) > 0
}

// SourceHits is one annex source's contribution to a cross-annex result:
// the column the match short-circuited on and the rows it matched.
type SourceHits struct {
	Source string `json:"source"`
	Column string `json:"column"`
	Hits   []Hit  `json:"hits"`
}

// CrossAnnexResult aggregates one CAS query across every searchable annex
// source. Sources with no match are absent from Sources rather than present
// with zero hits.
type CrossAnnexResult struct {
	Query   Query        `json:"query"`
	Sources []SourceHits `json:"sources,omitempty"`
}

// Found reports whether any source matched.
func (r CrossAnnexResult) Found() bool {
	return len(r.Sources) > 0
}
