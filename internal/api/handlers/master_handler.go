package handlers

import (
	"net/http"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/gin-gonic/gin"
)

type MasterHandler struct {
	service *service.MasterService
}

func NewMasterHandler(service *service.MasterService) *MasterHandler {
	return &MasterHandler{service: service}
}

func (h *MasterHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.service.ListWarehouses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list warehouses"})
		return
	}
	if warehouses == nil {
		warehouses = make([]domain.Warehouse, 0)
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": warehouses})
}

func (h *MasterHandler) UpsertWarehouses(c *gin.Context) {
	var req struct {
		Warehouses []domain.Warehouse `json:"warehouses" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.UpsertWarehouses(c.Request.Context(), req.Warehouses); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upserted": len(req.Warehouses)})
}

func (h *MasterHandler) ListChannels(c *gin.Context) {
	channels, err := h.service.ListChannels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channels"})
		return
	}
	if channels == nil {
		channels = make([]domain.Channel, 0)
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *MasterHandler) UpsertChannels(c *gin.Context) {
	var req struct {
		Channels []domain.Channel `json:"channels" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.UpsertChannels(c.Request.Context(), req.Channels); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upserted": len(req.Channels)})
}
