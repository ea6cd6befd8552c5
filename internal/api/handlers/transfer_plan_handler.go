package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository/postgres"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferPlanHandler struct {
	service *service.TransferService
}

func NewTransferPlanHandler(service *service.TransferService) *TransferPlanHandler {
	return &TransferPlanHandler{service: service}
}

type planRequest struct {
	SessionID uuid.UUID `json:"session_id" binding:"required"`
	StartDate string    `json:"start_date" binding:"required"`
	EndDate   string    `json:"end_date" binding:"required"`
}

func (r planRequest) window() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Recommend runs the engine and persists the result as a draft plan.
func (h *TransferPlanHandler) Recommend(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end, err := req.window()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, lines, err := h.service.RecommendPlan(c.Request.Context(), req.SessionID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plan"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": plan, "lines": lines})
}

// Preview runs the engine without persisting.
func (h *TransferPlanHandler) Preview(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end, err := req.window()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moves, err := h.service.Preview(c.Request.Context(), req.SessionID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to preview plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"moves": moves, "count": len(moves)})
}

type sandboxRequest struct {
	Rows         []domain.MatrixRow        `json:"rows" binding:"required"`
	MainChannels map[string]string         `json:"main_channels" binding:"required"`
	Policy       domain.ReallocationPolicy `json:"policy" binding:"required"`
}

// Sandbox runs the engine on caller-supplied stock rows and policy.
func (h *TransferPlanHandler) Sandbox(c *gin.Context) {
	var req sandboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moves, err := h.service.RunSandbox(req.Rows, req.MainChannels, req.Policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"moves": moves, "count": len(moves)})
}

func (h *TransferPlanHandler) List(c *gin.Context) {
	sessionID, err := parseUUIDQuery(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plans, err := h.service.ListPlans(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plans"})
		return
	}
	if plans == nil {
		plans = make([]domain.TransferPlan, 0)
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *TransferPlanHandler) Get(c *gin.Context) {
	planID, err := parseUUIDParam(c, "plan_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := h.service.GetPlan(c.Request.Context(), planID)
	if errors.Is(err, postgres.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *TransferPlanHandler) GetLines(c *gin.Context) {
	planID, err := parseUUIDParam(c, "plan_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lines, err := h.service.GetLines(c.Request.Context(), planID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get plan lines"})
		return
	}
	if lines == nil {
		lines = make([]domain.TransferPlanLine, 0)
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

type lineRequest struct {
	LineID        *uuid.UUID      `json:"line_id"`
	SKUCode       string          `json:"sku_code" binding:"required"`
	FromWarehouse string          `json:"from_warehouse" binding:"required"`
	FromChannel   string          `json:"from_channel" binding:"required"`
	ToWarehouse   string          `json:"to_warehouse" binding:"required"`
	ToChannel     string          `json:"to_channel" binding:"required"`
	Qty           decimal.Decimal `json:"qty" binding:"required"`
	IsManual      bool            `json:"is_manual"`
	Reason        *string         `json:"reason"`
}

// ReplaceLines swaps the full line set of a plan. Lines without an id get a
// fresh one, so clients can post hand-written moves directly.
func (h *TransferPlanHandler) ReplaceLines(c *gin.Context) {
	planID, err := parseUUIDParam(c, "plan_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Lines []lineRequest `json:"lines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]domain.TransferPlanLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lineID := uuid.New()
		if l.LineID != nil {
			lineID = *l.LineID
		}
		lines = append(lines, domain.TransferPlanLine{
			LineID:        lineID,
			PlanID:        planID,
			SKUCode:       l.SKUCode,
			FromWarehouse: l.FromWarehouse,
			FromChannel:   l.FromChannel,
			ToWarehouse:   l.ToWarehouse,
			ToChannel:     l.ToChannel,
			Qty:           l.Qty,
			IsManual:      l.IsManual,
			Reason:        l.Reason,
		})
	}

	err = h.service.ReplaceLines(c.Request.Context(), planID, lines)
	if errors.Is(err, postgres.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": len(lines)})
}

func (h *TransferPlanHandler) UpdateStatus(c *gin.Context) {
	planID, err := parseUUIDParam(c, "plan_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.UpdateStatus(c.Request.Context(), planID, req.Status)
	if errors.Is(err, postgres.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update plan status"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TransferPlanHandler) Delete(c *gin.Context) {
	planID, err := parseUUIDParam(c, "plan_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.DeletePlan(c.Request.Context(), planID)
	if errors.Is(err, postgres.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete plan"})
		return
	}
	c.Status(http.StatusNoContent)
}
