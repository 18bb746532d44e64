package table

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe recognizes the generic "unnamed" marker that spreadsheet
// tooling synthesizes for blank header cells (e.g. "Unnamed: 0").
var placeholderRe = regexp.MustCompile(`(?i)^unnamed(\s*:.*)?$`)

// isPlaceholder reports whether a trimmed header cell is blank or carries a
// recognized placeholder marker.
func isPlaceholder(label string) bool {
	return label == "" || placeholderRe.MatchString(label)
}

// Normalize builds a NormalizedTable from raw using the row at headerRow as
// the header. Every header cell is trimmed; cells recognized as placeholders
// are replaced by the corresponding cell of fallbackRow when that cell is
// non-empty, otherwise the placeholder is retained. Pass fallbackRow < 0 to
// disable fallback renaming. Column order is preserved; no columns are added
// or removed. Body rows are the rows after headerRow, padded or truncated to
// the header width.
//
// Normalize is a pure function of (raw, headerRow, fallbackRow): re-running
// it on the same inputs yields an identical table.
func Normalize(raw RawTable, headerRow, fallbackRow int) (*NormalizedTable, error) {
	if headerRow < 0 || headerRow >= len(raw.Rows) {
		return nil, fmt.Errorf("table: header row %d out of range (have %d rows)", headerRow, len(raw.Rows))
	}

	src := raw.Rows[headerRow]
	fallback := raw.Row(fallbackRow)

	header := make([]string, len(src))
	for i, cell := range src {
		label := strings.TrimSpace(cell)
		if isPlaceholder(label) && i < len(fallback) {
			if fb := strings.TrimSpace(fallback[i]); fb != "" {
				label = fb
			}
		}
		if label == "" {
			// Blank with no usable fallback: keep a synthetic placeholder so
			// the non-empty invariant holds.
			label = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = label
	}
	dedupeLabels(header)

	body := raw.Rows[headerRow+1:]
	rows := make([][]string, len(body))
	for i, r := range body {
		row := make([]string, len(header))
		copy(row, r)
		rows[i] = row
	}

	return &NormalizedTable{header: header, rows: rows}, nil
}

// dedupeLabels enforces label uniqueness in place by suffixing repeats with
// ".1", ".2", … in header order, mirroring what spreadsheet tooling does.
func dedupeLabels(labels []string) {
	seen := make(map[string]int, len(labels))
	for i, l := range labels {
		n, dup := seen[l]
		if !dup {
			seen[l] = 0
			continue
		}
		n++
		seen[l] = n
		labels[i] = fmt.Sprintf("%s.%d", l, n)
		seen[labels[i]] = 0
	}
}
