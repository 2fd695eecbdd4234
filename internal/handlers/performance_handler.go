package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/utils"
)

type PerformanceHandler struct {
	BaseHandler
	performanceService services.PerformanceService
}

func NewPerformanceHandler(performanceService services.PerformanceService, logger utils.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		BaseHandler:        NewBaseHandler(logger),
		performanceService: performanceService,
	}
}

// GetPerformance returns performance projections, policy-scoped
func (h *PerformanceHandler) GetPerformance(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	report, err := h.performanceService.Report(c.Request.Context(), p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", report)
}

// ExportPerformance streams the report as an .xlsx download
func (h *PerformanceHandler) ExportPerformance(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	data, err := h.performanceService.ExportXLSX(c.Request.Context(), p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("performance-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
