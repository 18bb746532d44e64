// Package integration exercises the full pipeline in-process: spreadsheets
// are built with excelize, served over httptest, loaded into a catalog, and
// tracked for freshness. No external services are required.
package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/coscheck/coscheck/internal/config"
)

// workbookBytes builds a single-sheet xlsx from the given rows.
func workbookBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, cell := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, axis, cell); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// spreadsheetServer serves mutable workbooks by path.
type spreadsheetServer struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newSpreadsheetServer() *spreadsheetServer {
	return &spreadsheetServer{files: make(map[string][]byte)}
}

func (s *spreadsheetServer) set(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
}

func (s *spreadsheetServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.files[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Write(data)
}

// testSources points the standard registry-plus-one-annex layout at the
// given base URL. The fixtures carry one preamble row, so the 0-based
// header index is 1.
func testSources(baseURL string) config.SourcesConfig {
	return config.SourcesConfig{
		Registry: config.SourceConfig{
			Name:      "Ingredients Inventory",
			URL:       fmt.Sprintf("%s/registry.xlsx", baseURL),
			HeaderRow: 1,
		},
		Annexes: []config.SourceConfig{
			{
				Name:      "Annex II",
				URL:       fmt.Sprintf("%s/annex2.xlsx", baseURL),
				HeaderRow: 1,
			},
		},
	}
}
