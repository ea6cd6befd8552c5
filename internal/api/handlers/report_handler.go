package handlers

import (
	"net/http"

	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/CHOISC1208/psi-erp/internal/storage"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Generate(c *gin.Context) {
	sessionID, err := parseUUIDQuery(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	skuCode := c.Query("sku_code")
	if skuCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku_code is required"})
		return
	}
	startDate, err := parseDateQuery(c, "start_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endDate, err := parseDateQuery(c, "end_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
		return
	}

	rep, err := h.service.GenerateSKUReport(c.Request.Context(), sessionID, skuCode, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportHandler) ListPublished(c *gin.Context) {
	sessionID, err := parseUUIDQuery(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	objects, err := h.service.ListPublishedReports(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	if objects == nil {
		objects = make([]storage.ObjectInfo, 0)
	}
	c.JSON(http.StatusOK, gin.H{"reports": objects})
}
