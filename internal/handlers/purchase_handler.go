package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/finance"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/middleware"
	"github.com/fieldserve/marketplace-core/internal/usecase/purchase"
)

type PurchaseHandler struct {
	purchaseUC *purchase.PurchaseServiceOffering
	releaseUC  *purchase.ReleaseEscrow
	calc       *finance.Calculator
}

func NewPurchaseHandler(
	purchaseUC *purchase.PurchaseServiceOffering,
	releaseUC *purchase.ReleaseEscrow,
	calc *finance.Calculator,
) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseUC: purchaseUC,
		releaseUC:  releaseUC,
		calc:       calc,
	}
}

type purchaseRequest struct {
	ServiceID      string         `json:"service_id"`
	ZoneID         string         `json:"zone_id"`
	BookingType    string         `json:"booking_type"`
	DemandLevel    string         `json:"demand_level"`
	ScheduledStart *time.Time     `json:"scheduled_start"`
	ScheduledEnd   *time.Time     `json:"scheduled_end"`
	BaseAmount     *float64       `json:"base_amount"`
	Currency       string         `json:"currency"`
	Metadata       map[string]any `json:"metadata"`
}

func (h *PurchaseHandler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	result, err := h.purchaseUC.Execute(c.Request.Context(), purchase.Input{
		ServiceID:      req.ServiceID,
		BuyerID:        middleware.ActorID(c),
		ZoneID:         req.ZoneID,
		BookingType:    domain.Type(req.BookingType),
		DemandLevel:    req.DemandLevel,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		BaseAmount:     req.BaseAmount,
		Currency:       req.Currency,
		Metadata:       req.Metadata,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *PurchaseHandler) ReleaseEscrow(c *gin.Context) {
	esc, err := h.releaseUC.Execute(c.Request.Context(), c.Param("orderId"), middleware.ActorID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, esc)
}

// Quote prices a hypothetical booking without writing anything.
type quoteRequest struct {
	BaseAmount     float64 `json:"base_amount"`
	Currency       string  `json:"currency"`
	BookingType    string  `json:"booking_type"`
	DemandLevel    string  `json:"demand_level"`
	TargetCurrency string  `json:"target_currency"`
}

func (h *PurchaseHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	totals, err := h.calc.CalculateBookingTotals(c.Request.Context(), finance.TotalsInput{
		BaseAmount:     req.BaseAmount,
		Currency:       req.Currency,
		BookingType:    req.BookingType,
		DemandLevel:    req.DemandLevel,
		TargetCurrency: req.TargetCurrency,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}
