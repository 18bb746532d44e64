// Package registry groups normalized tables into the active working set: one
// canonical ingredient registry plus an ordered list of regulatory annex
// tables searched in priority order.
package registry

import (
	"fmt"

	"github.com/coscheck/coscheck/internal/domain/table"
)

// Kind tags what role a source plays in the working set.
type Kind int

const (
	// KindRegistry is the canonical ingredient registry holding
	// identifier to name mappings. Exactly one per catalog.
	KindRegistry Kind = iota
	// KindAnnex is one of the ordered regulatory tables.
	KindAnnex
)

func (k Kind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindAnnex:
		return "annex"
	default:
		return "unknown"
	}
}

// Source is a named NormalizedTable tagged with its role. The name is unique
// within the active set and doubles as the key for cached tables and
// persisted version state.
type Source struct {
	Name  string
	Kind  Kind
	Table *table.NormalizedTable
}

// CASColumns returns the CAS-candidate columns of the source, in header
// order. Empty means the source is not searchable by CAS number.
func (s *Source) CASColumns() []table.Column {
	if s.Table == nil {
		return nil
	}
	return s.Table.FindColumns(table.RoleCAS)
}

// NameColumns returns the name-candidate columns of the source.
func (s *Source) NameColumns() []table.Column {
	if s.Table == nil {
		return nil
	}
	return s.Table.FindColumns(table.RoleName)
}

// Catalog is the active working set: the canonical registry plus annex
// sources in their fixed search order. A Catalog is rebuilt whenever any
// underlying source is refreshed and is immutable in between.
type Catalog struct {
	registry *Source
	annexes  []*Source
	byName   map[string]*Source
}

// NewCatalog assembles a catalog. The registry may be nil when only annex
// searches are needed. Source names must be unique across the whole set.
func NewCatalog(reg *Source, annexes []*Source) (*Catalog, error) {
	c := &Catalog{
		registry: reg,
		annexes:  annexes,
		byName:   make(map[string]*Source, len(annexes)+1),
	}
	all := annexes
	if reg != nil {
		all = append([]*Source{reg}, annexes...)
	}
	for _, s := range all {
		if s.Name == "" {
			return nil, fmt.Errorf("registry: source with empty name")
		}
		if _, dup := c.byName[s.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate source name %q", s.Name)
		}
		c.byName[s.Name] = s
	}
	return c, nil
}

// Registry returns the canonical registry source, or nil when absent.
func (c *Catalog) Registry() *Source {
	return c.registry
}

// Annexes returns the annex sources in search order. Callers must not
// modify the returned slice.
func (c *Catalog) Annexes() []*Source {
	return c.annexes
}

// Source looks a source up by name, or nil when unknown.
func (c *Catalog) Source(name string) *Source {
	return c.byName[name]
}

// SourceReport describes how one source loaded: its size and which roles it
// is searchable for. Surfaced to operators after every ingestion cycle.
type SourceReport struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	CASColumns  int    `json:"cas_columns"`
	NameColumns int    `json:"name_columns"`
}

// Report summarizes every source in catalog order, registry first.
func (c *Catalog) Report() []SourceReport {
	var reports []SourceReport
	add := func(s *Source) {
		r := SourceReport{Name: s.Name, Kind: s.Kind.String()}
		if s.Table != nil {
			r.Rows = s.Table.Len()
			r.Columns = s.Table.Width()
			r.CASColumns = len(s.CASColumns())
			r.NameColumns = len(s.NameColumns())
		}
		reports = append(reports, r)
	}
	if c.registry != nil {
		add(c.registry)
	}
	for _, s := range c.annexes {
		add(s)
	}
	return reports
}
