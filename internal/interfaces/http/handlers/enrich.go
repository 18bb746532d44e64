package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/internal/application/enrichment"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/prometheus"
	"github.com/coscheck/coscheck/pkg/cas"
)

// EnrichHandler serves external identity resolution.
type EnrichHandler struct {
	svc     enrichment.Service
	metrics *prometheus.Metrics
}

// NewEnrichHandler builds an EnrichHandler.
func NewEnrichHandler(svc enrichment.Service, metrics *prometheus.Metrics) *EnrichHandler {
	return &EnrichHandler{svc: svc, metrics: metrics}
}

type enrichRequest struct {
	// Queries carries names or CAS numbers, separated by newlines, commas
	// or semicolons.
	Queries string `json:"queries" binding:"required"`
}

type enrichResponse struct {
	Outcomes []enrichment.Outcome `json:"outcomes"`
}

// Enrich resolves a batch against the external database. Lookups are paced
// server-side, so large batches take proportionally long.
func (h *EnrichHandler) Enrich(c *gin.Context) {
	var req enrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must carry a non-empty \"queries\" field")
		return
	}

	queries := cas.SplitList(req.Queries)
	if len(queries) == 0 {
		badRequest(c, "no queries in input")
		return
	}

	outcomes := h.svc.EnrichBatch(c.Request.Context(), queries)
	if h.metrics != nil {
		for _, o := range outcomes {
			h.metrics.ExternalRequestsTotal.WithLabelValues(o.Status.String()).Inc()
		}
	}
	c.JSON(http.StatusOK, enrichResponse{Outcomes: outcomes})
}
