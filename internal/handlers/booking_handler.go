package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/middleware"
	ucbooking "github.com/fieldserve/marketplace-core/internal/usecase/booking"
)

type BookingHandler struct {
	createUC         *ucbooking.CreateBooking
	transitionUC     *ucbooking.TransitionStatus
	disputeUC        *ucbooking.TriggerDispute
	resolveDisputeUC *ucbooking.ResolveDispute
	getUC            *ucbooking.GetBooking
	listUC           *ucbooking.ListBookings
}

func NewBookingHandler(
	createUC *ucbooking.CreateBooking,
	transitionUC *ucbooking.TransitionStatus,
	disputeUC *ucbooking.TriggerDispute,
	resolveDisputeUC *ucbooking.ResolveDispute,
	getUC *ucbooking.GetBooking,
	listUC *ucbooking.ListBookings,
) *BookingHandler {
	return &BookingHandler{
		createUC:         createUC,
		transitionUC:     transitionUC,
		disputeUC:        disputeUC,
		resolveDisputeUC: resolveDisputeUC,
		getUC:            getUC,
		listUC:           listUC,
	}
}

// --------------------------------------------------
// Create (direct path, admin flows)
// --------------------------------------------------

type createBookingRequest struct {
	CustomerID     string         `json:"customer_id"`
	CompanyID      string         `json:"company_id"`
	ZoneID         string         `json:"zone_id"`
	Type           string         `json:"type"`
	DemandLevel    string         `json:"demand_level"`
	ScheduledStart *time.Time     `json:"scheduled_start"`
	ScheduledEnd   *time.Time     `json:"scheduled_end"`
	BaseAmount     float64        `json:"base_amount"`
	Currency       string         `json:"currency"`
	TargetCurrency string         `json:"target_currency"`
	Reference      string         `json:"reference"`
	Checklist      []string       `json:"checklist"`
	Tags           []string       `json:"tags"`
	Extra          map[string]any `json:"extra"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	b, err := h.createUC.Execute(c.Request.Context(), ucbooking.CreateBookingInput{
		CustomerID:     req.CustomerID,
		CompanyID:      req.CompanyID,
		ZoneID:         req.ZoneID,
		Type:           domain.Type(req.Type),
		DemandLevel:    req.DemandLevel,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		BaseAmount:     req.BaseAmount,
		Currency:       req.Currency,
		TargetCurrency: req.TargetCurrency,
		Reference:      req.Reference,
		Checklist:      req.Checklist,
		Tags:           req.Tags,
		Extra:          req.Extra,
		ActorID:        middleware.ActorID(c),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// --------------------------------------------------
// Status
// --------------------------------------------------

type transitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *BookingHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	b, err := h.transitionUC.Execute(
		c.Request.Context(),
		c.Param("id"),
		domain.Status(req.Status),
		middleware.ActorID(c),
		req.Reason,
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Dispute(c *gin.Context) {
	var req disputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	b, err := h.disputeUC.Execute(c.Request.Context(), c.Param("id"), req.Reason, middleware.ActorID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

type resolveDisputeRequest struct {
	Resolution string `json:"resolution"`
}

func (h *BookingHandler) ResolveDispute(c *gin.Context) {
	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	b, err := h.resolveDisputeUC.Execute(c.Request.Context(), c.Param("id"), req.Resolution, middleware.ActorID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.getUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	page, _ := atoiDefault(c.Query("page"), 1)
	size, _ := atoiDefault(c.Query("page_size"), 20)

	items, total, err := h.listUC.Execute(c.Request.Context(), domain.ListFilters{
		Status:     c.Query("status"),
		Type:       c.Query("type"),
		CustomerID: c.Query("customer_id"),
		CompanyID:  c.Query("company_id"),
		ZoneID:     c.Query("zone_id"),
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
	})
}
