package booking

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

// Message bodies are stored in full on the comment; the bid audit trail only
// keeps this much.
const bidAuditBodyLimit = 100

// ======================================================
// SUBMIT BID
// ======================================================

type SubmitBid struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewSubmitBid(repo domain.Repository, log *zap.Logger) *SubmitBid {
	return &SubmitBid{repo: repo, log: log}
}

// Execute upserts a provider's bid. An existing (booking, provider) bid gets
// the new amount and a fresh pending status, with the revision appended to
// its history; only a missing pair creates a new row.
func (uc *SubmitBid) Execute(
	ctx context.Context,
	bookingID string,
	providerID string,
	amount float64,
	currency string,
	message string,
) (*models.BookingBid, error) {

	if providerID == "" {
		return nil, httperr.ErrInvalidArgument("provider_id_required")
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, httperr.ErrInvalidArgument("invalid_amount")
	}
	if currency == "" {
		return nil, httperr.ErrInvalidArgument("currency_required")
	}
	currency = strings.ToUpper(currency)

	var out *models.BookingBid
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		// Lock the booking row so concurrent first-time bids for the same
		// provider serialize here instead of racing CreateBid into the
		// (booking, provider) unique index.
		b, err := uow.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}
		if domain.IsTerminal(domain.Status(b.Status)) {
			return httperr.ErrPreconditionFailed("booking_closed")
		}

		now := domain.Now()
		revision := models.BidRevision{
			Amount:    amount,
			Currency:  currency,
			Message:   message,
			CreatedAt: now,
		}
		auditEntry := models.BidAuditEntry{
			Action: "submit_bid",
			Actor:  providerID,
			At:     now,
			Payload: map[string]any{
				"amount":   amount,
				"currency": currency,
			},
		}

		bid, err := uow.GetBidByProviderForUpdate(ctx, bookingID, providerID)
		switch {
		case err == nil:
			bid.Amount = amount
			bid.Currency = currency
			bid.Status = "pending"
			bid.RevisionHistory = append(bid.RevisionHistory, revision)
			bid.AuditLog = append(bid.AuditLog, auditEntry)
			if err := uow.SaveBid(ctx, bid); err != nil {
				return err
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			bid = &models.BookingBid{
				BookingID:       bookingID,
				ProviderID:      providerID,
				Amount:          amount,
				Currency:        currency,
				Status:          "pending",
				RevisionHistory: []models.BidRevision{revision},
				AuditLog:        []models.BidAuditEntry{auditEntry},
			}
			if err := uow.CreateBid(ctx, bid); err != nil {
				return err
			}
			if strings.TrimSpace(message) != "" {
				comment := &models.BookingBidComment{
					BidID:      bid.ID,
					AuthorID:   providerID,
					AuthorType: "provider",
					Body:       message,
					CreatedAt:  now,
				}
				if err := uow.CreateBidComment(ctx, comment); err != nil {
					return err
				}
			}

		default:
			return err
		}

		ev := analytics.NewEvent(
			analytics.EventBidSubmitted,
			bid.ID,
			providerID,
			b.CompanyID,
			now,
			map[string]any{
				"booking_id": bookingID,
				"amount":     amount,
				"currency":   currency,
				"revisions":  len(bid.RevisionHistory),
			},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		out = bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ======================================================
// UPDATE BID STATUS
// ======================================================

type UpdateBidStatus struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewUpdateBidStatus(repo domain.Repository, log *zap.Logger) *UpdateBidStatus {
	return &UpdateBidStatus{repo: repo, log: log}
}

// Execute moves a bid between pending/accepted/declined/withdrawn. Accepting
// a bid stamps the booking's metadata but deliberately does not transition
// the booking: bids are negotiation, assignments are execution.
func (uc *UpdateBidStatus) Execute(
	ctx context.Context,
	bookingID string,
	bidID string,
	status string,
	actorID string,
) (*models.BookingBid, error) {

	if !domain.IsValidResponse(status) {
		return nil, httperr.ErrInvalidArgument("invalid_bid_status")
	}

	var out *models.BookingBid
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		bid, err := uow.GetBidForUpdate(ctx, bookingID, bidID)
		if err != nil {
			return notFoundAs(err, "bid_not_found")
		}

		now := domain.Now()
		bid.Status = status
		bid.AuditLog = append(bid.AuditLog, models.BidAuditEntry{
			Action: "update_status",
			Actor:  actorID,
			At:     now,
			Payload: map[string]any{
				"status": status,
			},
		})
		if err := uow.SaveBid(ctx, bid); err != nil {
			return err
		}

		if status == domain.ResponseAccepted {
			b.Meta.BidAcceptedAt = &now
			b.Meta.BidAcceptedBy = bid.ProviderID
			if err := uow.SaveBooking(ctx, b); err != nil {
				return err
			}
		}

		ev := analytics.NewEvent(
			analytics.EventBidStatusChanged,
			bid.ID,
			actorID,
			b.CompanyID,
			now,
			map[string]any{"booking_id": bookingID, "status": status},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		out = bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ======================================================
// ADD BID COMMENT
// ======================================================

type AddBidComment struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewAddBidComment(repo domain.Repository, log *zap.Logger) *AddBidComment {
	return &AddBidComment{repo: repo, log: log}
}

func (uc *AddBidComment) Execute(
	ctx context.Context,
	bookingID string,
	bidID string,
	authorID string,
	authorType string,
	body string,
) (*models.BookingBidComment, error) {

	if strings.TrimSpace(body) == "" {
		return nil, httperr.ErrInvalidArgument("comment_body_required")
	}
	if !domain.IsValidBidAuthorType(authorType) {
		return nil, httperr.ErrInvalidArgument("invalid_author_type")
	}

	var out *models.BookingBidComment
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		bid, err := uow.GetBidForUpdate(ctx, bookingID, bidID)
		if err != nil {
			return notFoundAs(err, "bid_not_found")
		}

		now := domain.Now()
		comment := &models.BookingBidComment{
			BidID:      bid.ID,
			AuthorID:   authorID,
			AuthorType: authorType,
			Body:       body,
			CreatedAt:  now,
		}
		if err := uow.CreateBidComment(ctx, comment); err != nil {
			return err
		}

		bid.AuditLog = append(bid.AuditLog, models.BidAuditEntry{
			Action: "comment",
			Actor:  authorID,
			At:     now,
			Payload: map[string]any{
				"author_type": authorType,
				"body":        truncate(body, bidAuditBodyLimit),
			},
		})
		if err := uow.SaveBid(ctx, bid); err != nil {
			return err
		}

		ev := analytics.NewEvent(
			analytics.EventBidCommentAdded,
			bid.ID,
			authorID,
			"",
			now,
			map[string]any{"booking_id": bookingID},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		out = comment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// truncate caps s at limit bytes without splitting a multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ======================================================
// LIST
// ======================================================

type ListBids struct {
	repo domain.Repository
}

func NewListBids(repo domain.Repository) *ListBids {
	return &ListBids{repo: repo}
}

func (uc *ListBids) Execute(
	ctx context.Context,
	bookingID string,
) ([]models.BookingBid, error) {

	if _, err := uc.repo.GetBooking(ctx, bookingID); err != nil {
		return nil, notFoundAs(err, "booking_not_found")
	}
	return uc.repo.ListBids(ctx, bookingID)
}
