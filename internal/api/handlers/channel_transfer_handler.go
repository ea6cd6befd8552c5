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

type ChannelTransferHandler struct {
	service *service.ChannelTransferService
}

func NewChannelTransferHandler(service *service.ChannelTransferService) *ChannelTransferHandler {
	return &ChannelTransferHandler{service: service}
}

func (h *ChannelTransferHandler) List(c *gin.Context) {
	var filter domain.ChannelTransferFilter

	sessionID, err := parseUUIDQuery(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.SessionID = &sessionID
	filter.SKUCode = c.Query("sku_code")
	filter.WarehouseName = c.Query("warehouse")

	if raw := c.Query("start_date"); raw != "" {
		start, err := parseDateQuery(c, "start_date")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.StartDate = &start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := parseDateQuery(c, "end_date")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.EndDate = &end
	}

	transfers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channel transfers"})
		return
	}
	if transfers == nil {
		transfers = make([]domain.ChannelTransfer, 0)
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

type channelTransferRequest struct {
	SessionID     uuid.UUID       `json:"session_id" binding:"required"`
	SKUCode       string          `json:"sku_code" binding:"required"`
	WarehouseName string          `json:"warehouse_name" binding:"required"`
	TransferDate  string          `json:"transfer_date" binding:"required"`
	FromChannel   string          `json:"from_channel" binding:"required"`
	ToChannel     string          `json:"to_channel" binding:"required"`
	Qty           decimal.Decimal `json:"qty"`
	Note          *string         `json:"note"`
}

func (r channelTransferRequest) transfer() (*domain.ChannelTransfer, error) {
	date, err := time.Parse(dateLayout, r.TransferDate)
	if err != nil {
		return nil, err
	}
	return &domain.ChannelTransfer{
		SessionID:     r.SessionID,
		SKUCode:       r.SKUCode,
		WarehouseName: r.WarehouseName,
		TransferDate:  date,
		FromChannel:   r.FromChannel,
		ToChannel:     r.ToChannel,
		Qty:           r.Qty,
		Note:          r.Note,
	}, nil
}

func (h *ChannelTransferHandler) Upsert(c *gin.Context) {
	var req channelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	transfer, err := req.transfer()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transfer_date must be YYYY-MM-DD"})
		return
	}
	if err := h.service.Upsert(c.Request.Context(), transfer); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, transfer)
}

func (h *ChannelTransferHandler) Delete(c *gin.Context) {
	var req channelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	transfer, err := req.transfer()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transfer_date must be YYYY-MM-DD"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), *transfer); err != nil {
		if errors.Is(err, postgres.ErrTransferNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel transfer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete channel transfer"})
		return
	}
	c.Status(http.StatusNoContent)
}
