package cli

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable writes one bordered table.
func renderTable(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.AppendBulk(rows)
	t.Render()
}

// hitSummary renders a matched row compactly: up to three labeled cells.
// Preferred labels are tried first; remaining columns fill the gap in
// sorted order so the output is stable.
func hitSummary(values map[string]string, preferred []string) string {
	var parts []string
	seen := make(map[string]bool)
	add := func(label string) {
		if seen[label] || len(parts) == 3 {
			return
		}
		if v := strings.TrimSpace(values[label]); v != "" {
			parts = append(parts, label+"="+v)
			seen[label] = true
		}
	}
	for _, l := range preferred {
		add(l)
	}
	rest := make([]string, 0, len(values))
	for l := range values {
		rest = append(rest, l)
	}
	sort.Strings(rest)
	for _, l := range rest {
		add(l)
	}
	return strings.Join(parts, "  ")
}
