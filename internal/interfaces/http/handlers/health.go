package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/internal/domain/registry"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	catalog *registry.Catalog
}

// NewHealthHandler builds a HealthHandler.
func NewHealthHandler(catalog *registry.Catalog) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports whether the catalog holds a searchable registry.
func (h *HealthHandler) Readiness(c *gin.Context) {
	reg := h.catalog.Registry()
	if reg == nil || reg.Table == nil || reg.Table.Empty() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "no registry loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
