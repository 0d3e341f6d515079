package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/middleware"
	ucbooking "github.com/fieldserve/marketplace-core/internal/usecase/booking"
)

type BidHandler struct {
	submitUC  *ucbooking.SubmitBid
	statusUC  *ucbooking.UpdateBidStatus
	commentUC *ucbooking.AddBidComment
	listUC    *ucbooking.ListBids
}

func NewBidHandler(
	submitUC *ucbooking.SubmitBid,
	statusUC *ucbooking.UpdateBidStatus,
	commentUC *ucbooking.AddBidComment,
	listUC *ucbooking.ListBids,
) *BidHandler {
	return &BidHandler{
		submitUC:  submitUC,
		statusUC:  statusUC,
		commentUC: commentUC,
		listUC:    listUC,
	}
}

type submitBidRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Message  string  `json:"message"`
}

func (h *BidHandler) Submit(c *gin.Context) {
	var req submitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	bid, err := h.submitUC.Execute(
		c.Request.Context(),
		c.Param("id"),
		middleware.ActorID(c),
		req.Amount,
		req.Currency,
		req.Message,
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, bid)
}

type bidStatusRequest struct {
	Status string `json:"status"`
}

func (h *BidHandler) UpdateStatus(c *gin.Context) {
	var req bidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	bid, err := h.statusUC.Execute(
		c.Request.Context(),
		c.Param("id"),
		c.Param("bidId"),
		req.Status,
		middleware.ActorID(c),
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, bid)
}

type bidCommentRequest struct {
	AuthorType string `json:"author_type"`
	Body       string `json:"body"`
}

func (h *BidHandler) Comment(c *gin.Context) {
	var req bidCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Malformed request body.")
		return
	}

	comment, err := h.commentUC.Execute(
		c.Request.Context(),
		c.Param("id"),
		c.Param("bidId"),
		middleware.ActorID(c),
		req.AuthorType,
		req.Body,
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *BidHandler) List(c *gin.Context) {
	items, err := h.listUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
