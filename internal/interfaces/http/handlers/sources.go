package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/internal/application/ingest"
	"github.com/coscheck/coscheck/internal/domain/registry"
)

// SourcesHandler reports the active catalog and how it loaded.
type SourcesHandler struct {
	catalog  *registry.Catalog
	statuses []ingest.SourceStatus
}

// NewSourcesHandler builds a SourcesHandler over the loaded catalog.
func NewSourcesHandler(catalog *registry.Catalog, statuses []ingest.SourceStatus) *SourcesHandler {
	return &SourcesHandler{catalog: catalog, statuses: statuses}
}

type sourcesResponse struct {
	Sources []registry.SourceReport `json:"sources"`
	Load    []ingest.SourceStatus   `json:"load"`
}

// List returns the per-source structure report and load summary.
func (h *SourcesHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, sourcesResponse{
		Sources: h.catalog.Report(),
		Load:    h.statuses,
	})
}
