package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/middleware"
	"github.com/fieldserve/marketplace-core/internal/models"
	ucbooking "github.com/fieldserve/marketplace-core/internal/usecase/booking"
)

type HistoryHandler struct {
	ledger *ucbooking.HistoryLedger
}

func NewHistoryHandler(ledger *ucbooking.HistoryLedger) *HistoryHandler {
	return &HistoryHandler{ledger: ledger}
}

type historyEntryRequest struct {
	Title       string                     `json:"title"`
	EntryType   string                     `json:"entry_type"`
	Status      string                     `json:"status"`
	ActorRole   string                     `json:"actor_role"`
	OccurredAt  *time.Time                 `json:"occurred_at"`
	Attachments []models.HistoryAttachment `json:"attachments"`
	Meta        map[string]any             `json:"meta"`
}

func (r historyEntryRequest) toInput(actorID string) ucbooking.HistoryEntryInput {
	return ucbooking.HistoryEntryInput{
		Title:       r.Title,
		EntryType:   r.EntryType,
		Status:      r.Status,
		ActorID:     actorID,
		ActorRole:   r.ActorRole,
		OccurredAt:  r.OccurredAt,
		Attachments: r.Attachments,
		Meta:        r.Meta,
	}
}

func (h *HistoryHandler) Create(c *gin.Context) {
	var req historyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	e, err := h.ledger.Create(c.Request.Context(), c.Param("id"), req.toInput(middleware.ActorID(c)))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *HistoryHandler) Update(c *gin.Context) {
	var req historyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	e, err := h.ledger.Update(c.Request.Context(), c.Param("id"), c.Param("entryId"), req.toInput(middleware.ActorID(c)))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), c.Param("id"), c.Param("entryId"), middleware.ActorID(c)); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HistoryHandler) List(c *gin.Context) {
	items, err := h.ledger.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
