package handlers

import (
	"net/http"
	"strings"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PSIHandler struct {
	service *service.PSIService
}

func NewPSIHandler(service *service.PSIService) *PSIHandler {
	return &PSIHandler{service: service}
}

func (h *PSIHandler) parseMatrixQuery(c *gin.Context) (domain.MatrixQuery, error) {
	sessionID, err := parseUUIDQuery(c, "session_id")
	if err != nil {
		return domain.MatrixQuery{}, err
	}
	startDate, err := parseDateQuery(c, "start_date")
	if err != nil {
		return domain.MatrixQuery{}, err
	}
	endDate, err := parseDateQuery(c, "end_date")
	if err != nil {
		return domain.MatrixQuery{}, err
	}

	query := domain.MatrixQuery{
		SessionID:  sessionID,
		StartDate:  startDate,
		EndDate:    endDate,
		SKUCodes:   parseListQuery(c, "sku_code"),
		Warehouses: parseListQuery(c, "warehouse"),
		Channels:   parseListQuery(c, "channel"),
	}
	if raw := strings.TrimSpace(c.Query("plan_id")); raw != "" {
		planID, err := uuid.Parse(raw)
		if err != nil {
			return domain.MatrixQuery{}, err
		}
		query.PlanID = &planID
	}
	return query, nil
}

// GetMatrix serves the aggregated PSI matrix for a session window.
func (h *PSIHandler) GetMatrix(c *gin.Context) {
	query, err := h.parseMatrixQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.service.GetMatrix(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch matrix"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// ExportMatrix streams the matrix as an xlsx workbook.
func (h *PSIHandler) ExportMatrix(c *gin.Context) {
	query, err := h.parseMatrixQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.service.ExportMatrixXLSX(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export matrix"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="psi_matrix.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

// ImportBase accepts a CSV upload and replaces the session's base data.
func (h *PSIHandler) ImportBase(c *gin.Context) {
	sessionID, err := parseUUIDQuery(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}
	defer file.Close()

	inserted, err := h.service.ImportBaseCSV(c.Request.Context(), sessionID, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}
