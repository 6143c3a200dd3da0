package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"gympay/internal/models"
	"gympay/internal/service"

	"github.com/gin-gonic/gin"
)

type Sweeper interface {
	Sweep(ctx context.Context) (*service.SweepReport, error)
}

type EventLister interface {
	ListByResourceID(ctx context.Context, resourceID string) ([]models.WebhookEvent, error)
}

// SweepHandler exposes the drift-recovery sweep and the webhook event log to admins.
type SweepHandler struct {
	sweeper Sweeper
	events  EventLister
}

func NewSweepHandler(sweeper Sweeper, events EventLister) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, events: events}
}

func (h *SweepHandler) Sweep(c *gin.Context) {
	report, err := h.sweeper.Sweep(c.Request.Context())
	if errors.Is(err, service.ErrSweepInProgress) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("[MP sweep] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "sweep failed", "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Events lists the logged notifications for one gateway resource id.
func (h *SweepHandler) Events(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "event log disabled"})
		return
	}
	list, err := h.events.ListByResourceID(c.Request.Context(), c.Param("resourceId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}
