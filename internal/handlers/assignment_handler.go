package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/middleware"
	ucbooking "github.com/fieldserve/marketplace-core/internal/usecase/booking"
)

type AssignmentHandler struct {
	assignUC  *ucbooking.AssignProviders
	respondUC *ucbooking.RecordAssignmentResponse
	listUC    *ucbooking.ListAssignments
}

func NewAssignmentHandler(
	assignUC *ucbooking.AssignProviders,
	respondUC *ucbooking.RecordAssignmentResponse,
	listUC *ucbooking.ListAssignments,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignUC:  assignUC,
		respondUC: respondUC,
		listUC:    listUC,
	}
}

type assignRequest struct {
	Assignments []struct {
		ProviderID string `json:"provider_id"`
		Role       string `json:"role"`
	} `json:"assignments"`
}

func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	entries := make([]ucbooking.AssignmentEntry, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		entries = append(entries, ucbooking.AssignmentEntry{
			ProviderID: a.ProviderID,
			Role:       a.Role,
		})
	}

	results, err := h.assignUC.Execute(c.Request.Context(), c.Param("id"), entries, middleware.ActorID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		out = append(out, gin.H{"assignment": r.Assignment, "created": r.Created})
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

type respondRequest struct {
	ProviderID string `json:"provider_id"`
	Status     string `json:"status"`
}

func (h *AssignmentHandler) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	providerID := req.ProviderID
	if providerID == "" {
		providerID = middleware.ActorID(c)
	}

	a, err := h.respondUC.Execute(c.Request.Context(), c.Param("id"), providerID, req.Status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

func (h *AssignmentHandler) List(c *gin.Context) {
	items, err := h.listUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
