package handlers

import (
	"errors"
	"net/http"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository/postgres"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	service *service.PolicyService
}

func NewPolicyHandler(service *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{service: service}
}

func (h *PolicyHandler) Get(c *gin.Context) {
	policy, err := h.service.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get policy"})
		return
	}
	c.JSON(http.StatusOK, policy)
}

type policyUpdateRequest struct {
	TakeFromOtherMain bool    `json:"take_from_other_main"`
	RoundingMode      string  `json:"rounding_mode" binding:"required"`
	AllowOverfill     bool    `json:"allow_overfill"`
	FairShareMode     string  `json:"fair_share_mode" binding:"required"`
	DeficitBasis      string  `json:"deficit_basis" binding:"required"`
	UpdatedBy         *string `json:"updated_by"`
}

func (h *PolicyHandler) Update(c *gin.Context) {
	var req policyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy := domain.ReallocationPolicy{
		TakeFromOtherMain: req.TakeFromOtherMain,
		RoundingMode:      domain.RoundingMode(req.RoundingMode),
		AllowOverfill:     req.AllowOverfill,
		FairShareMode:     domain.FairShareMode(req.FairShareMode),
		DeficitBasis:      domain.DeficitBasis(req.DeficitBasis),
	}

	updated, err := h.service.Update(c.Request.Context(), policy, req.UpdatedBy)
	if errors.Is(err, postgres.ErrPolicyTableMissing) {
		c.JSON(http.StatusConflict, gin.H{"error": "policy storage is not migrated"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}
