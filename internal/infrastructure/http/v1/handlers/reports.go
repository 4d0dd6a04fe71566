package handlers

import (
	"github.com/gin-gonic/gin"

	"kitchenledger/internal/domain/reports"
	"kitchenledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles sales report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// SalesSummary handles GET /reports/sales.
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	var q dto.SalesSummaryQuery
	if !h.BindQuery(c, &q) {
		return
	}

	summary, err := h.service.ComputeSalesSummary(c.Request.Context(), q.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}
