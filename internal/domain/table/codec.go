package table

import (
	"encoding/json"
	"fmt"
)

type normalizedTableJSON struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// MarshalJSON encodes the table for caching.
func (t *NormalizedTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(normalizedTableJSON{Header: t.header, Rows: t.rows})
}

// UnmarshalJSON decodes a cached table, re-checking the width invariant so a
// stale or tampered cache entry cannot smuggle in a ragged table.
func (t *NormalizedTable) UnmarshalJSON(data []byte) error {
	var raw normalizedTableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, row := range raw.Rows {
		if len(row) != len(raw.Header) {
			return fmt.Errorf("table: row %d has %d cells, header has %d", i, len(row), len(raw.Header))
		}
	}
	t.header = raw.Header
	t.rows = raw.Rows
	return nil
}
