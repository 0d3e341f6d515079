package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

const maxHistoryAttachments = 10

// ======================================================
// INPUT
// ======================================================

type HistoryEntryInput struct {
	Title       string
	EntryType   string
	Status      string
	ActorID     string
	ActorRole   string
	OccurredAt  *time.Time
	Attachments []models.HistoryAttachment
	Meta        map[string]any
}

func (in *HistoryEntryInput) normalize() error {
	if strings.TrimSpace(in.Title) == "" {
		return httperr.ErrInvalidArgument("title_required")
	}
	if in.EntryType == "" {
		in.EntryType = "note"
	}
	if !domain.IsValidHistoryEntryType(in.EntryType) {
		return httperr.ErrInvalidArgument("invalid_entry_type")
	}
	if in.Status == "" {
		in.Status = "open"
	}
	if !domain.IsValidHistoryStatus(in.Status) {
		return httperr.ErrInvalidArgument("invalid_entry_status")
	}
	if !domain.IsValidActorRole(in.ActorRole) {
		return httperr.ErrInvalidArgument("invalid_actor_role")
	}
	if len(in.Attachments) > maxHistoryAttachments {
		return httperr.ErrInvalidArgument("too_many_attachments")
	}
	for i := range in.Attachments {
		a := &in.Attachments[i]
		if strings.TrimSpace(a.URL) == "" {
			return httperr.ErrInvalidArgument("attachment_url_required")
		}
		if a.Label == "" {
			a.Label = fmt.Sprintf("Attachment %d", i+1)
		}
		if a.Type == "" {
			a.Type = "link"
		}
	}
	return nil
}

// ======================================================
// USE CASE
// ======================================================

// HistoryLedger is the operational timeline on a booking. Entries live
// independently of the booking status; the only cross-check is that the
// parent booking exists before every write.
type HistoryLedger struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewHistoryLedger(repo domain.Repository, log *zap.Logger) *HistoryLedger {
	return &HistoryLedger{repo: repo, log: log}
}

func (uc *HistoryLedger) Create(
	ctx context.Context,
	bookingID string,
	in HistoryEntryInput,
) (*models.BookingHistoryEntry, error) {

	if err := in.normalize(); err != nil {
		return nil, err
	}

	var out *models.BookingHistoryEntry
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBooking(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		now := domain.Now()
		occurredAt := now
		if in.OccurredAt != nil {
			occurredAt = *in.OccurredAt
		}

		e := &models.BookingHistoryEntry{
			BookingID:   bookingID,
			Title:       in.Title,
			EntryType:   in.EntryType,
			Status:      in.Status,
			ActorID:     in.ActorID,
			ActorRole:   in.ActorRole,
			OccurredAt:  occurredAt,
			Attachments: in.Attachments,
			Meta:        in.Meta,
		}
		if err := uow.CreateHistoryEntry(ctx, e); err != nil {
			return err
		}

		ev := analytics.NewEvent(
			analytics.EventHistoryEntryCreated,
			bookingID,
			in.ActorID,
			b.CompanyID,
			now,
			map[string]any{"entry_id": e.ID, "entry_type": e.EntryType},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (uc *HistoryLedger) Update(
	ctx context.Context,
	bookingID string,
	entryID string,
	in HistoryEntryInput,
) (*models.BookingHistoryEntry, error) {

	if err := in.normalize(); err != nil {
		return nil, err
	}

	var out *models.BookingHistoryEntry
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBooking(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		e, err := uow.GetHistoryEntry(ctx, bookingID, entryID)
		if err != nil {
			return notFoundAs(err, "history_entry_not_found")
		}

		e.Title = in.Title
		e.EntryType = in.EntryType
		e.Status = in.Status
		e.ActorRole = in.ActorRole
		if in.OccurredAt != nil {
			e.OccurredAt = *in.OccurredAt
		}
		if in.Attachments != nil {
			e.Attachments = in.Attachments
		}
		if in.Meta != nil {
			e.Meta = in.Meta
		}
		if err := uow.SaveHistoryEntry(ctx, e); err != nil {
			return err
		}

		ev := analytics.NewEvent(
			analytics.EventHistoryEntryUpdated,
			bookingID,
			in.ActorID,
			b.CompanyID,
			domain.Now(),
			map[string]any{"entry_id": e.ID},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (uc *HistoryLedger) Delete(
	ctx context.Context,
	bookingID string,
	entryID string,
	actorID string,
) error {
	return uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBooking(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		if err := uow.DeleteHistoryEntry(ctx, bookingID, entryID); err != nil {
			return notFoundAs(err, "history_entry_not_found")
		}

		ev := analytics.NewEvent(
			analytics.EventHistoryEntryDeleted,
			bookingID,
			actorID,
			b.CompanyID,
			domain.Now(),
			map[string]any{"entry_id": entryID},
		)
		return uow.RecordEvent(ctx, ev)
	})
}

func (uc *HistoryLedger) List(
	ctx context.Context,
	bookingID string,
) ([]models.BookingHistoryEntry, error) {

	if _, err := uc.repo.GetBooking(ctx, bookingID); err != nil {
		return nil, notFoundAs(err, "booking_not_found")
	}
	return uc.repo.ListHistory(ctx, bookingID)
}
