package freshness

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/fetch"
)

// markerScanRows bounds how deep the preamble scan goes; the COSING exports
// carry their "Last update" cell within the first few rows.
const markerScanRows = 10

// lastUpdateRe matches the embedded revision date, e.g. "Last update: 15/03/2024".
var lastUpdateRe = regexp.MustCompile(`Last update:\s*(\d{2}/\d{2}/\d{4})`)

// MarkerKind records which extraction rung produced the marker.
type MarkerKind string

const (
	// MarkerDate is the embedded "Last update" cell.
	MarkerDate MarkerKind = "date"
	// MarkerHeader is the HTTP Last-Modified timestamp.
	MarkerHeader MarkerKind = "header"
	// MarkerHash is a content digest, the rung of last resort.
	MarkerHash MarkerKind = "hash"
)

// ExtractMarker derives the version marker of a fetched artifact. The
// embedded revision date wins when present; the Last-Modified header is the
// fallback; a content hash guarantees a marker even without either.
func ExtractMarker(artifact *fetch.Artifact, raw table.RawTable) (string, MarkerKind) {
	limit := markerScanRows
	if len(raw.Rows) < limit {
		limit = len(raw.Rows)
	}
	for i := 0; i < limit; i++ {
		for _, cell := range raw.Rows[i] {
			if m := lastUpdateRe.FindStringSubmatch(cell); m != nil {
				return m[1], MarkerDate
			}
		}
	}

	if artifact.LastModified != "" {
		return artifact.LastModified, MarkerHeader
	}

	sum := sha256.Sum256(artifact.Body)
	return "sha256:" + hex.EncodeToString(sum[:]), MarkerHash
}
