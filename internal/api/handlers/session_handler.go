package handlers

import (
	"errors"
	"net/http"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository/postgres"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service *service.SessionService
}

func NewSessionHandler(service *service.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	if sessions == nil {
		sessions = make([]domain.Session, 0)
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.service.Get(c.Request.Context(), id)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}
	c.JSON(http.StatusOK, session)
}

type sessionRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.service.Create(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := &domain.Session{ID: id, Title: req.Title, Description: req.Description}
	err = h.service.Update(c.Request.Context(), session)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	id, err := parseUUIDParam(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = h.service.Delete(c.Request.Context(), id)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) SetLeader(c *gin.Context) {
	id, err := parseUUIDParam(c, "session_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = h.service.SetLeader(c.Request.Context(), id)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set leader"})
		return
	}
	c.Status(http.StatusNoContent)
}
