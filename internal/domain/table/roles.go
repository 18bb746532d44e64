package table

import "strings"

// Role classifies what a column holds, derived from its header label.
type Role int

const (
	// RoleCAS marks columns whose label suggests CAS registry numbers.
	RoleCAS Role = iota
	// RoleName marks columns whose label suggests ingredient display names.
	RoleName
)

func (r Role) String() string {
	switch r {
	case RoleCAS:
		return "cas"
	case RoleName:
		return "name"
	default:
		return "unknown"
	}
}

// Column is a handle to one column of a NormalizedTable.
type Column struct {
	Index int
	Label string
}

var nameMarkers = []string{"name", "ingredient", "inci", "substance"}

// FindColumns returns the columns whose labels match the given role, in
// header order. Detection is a case-insensitive substring scan over labels
// and depends only on the header, never on row content. An empty result
// means the table is not searchable for that role; it is not an error.
func (t *NormalizedTable) FindColumns(role Role) []Column {
	var cols []Column
	for i, label := range t.header {
		if matchesRole(label, role) {
			cols = append(cols, Column{Index: i, Label: label})
		}
	}
	return cols
}

func matchesRole(label string, role Role) bool {
	l := strings.ToLower(label)
	switch role {
	case RoleCAS:
		return strings.Contains(l, "cas")
	case RoleName:
		for _, m := range nameMarkers {
			if strings.Contains(l, m) {
				return true
			}
		}
	}
	return false
}
