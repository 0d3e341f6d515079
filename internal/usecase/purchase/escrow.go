package purchase

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

type ReleaseEscrow struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewReleaseEscrow(repo domain.Repository, log *zap.Logger) *ReleaseEscrow {
	return &ReleaseEscrow{repo: repo, log: log}
}

// Execute releases held funds once. Only a funded escrow can release;
// disputed or already-released escrows fail the precondition.
func (uc *ReleaseEscrow) Execute(
	ctx context.Context,
	orderID string,
	actorID string,
) (*models.Escrow, error) {

	var out *models.Escrow
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		esc, err := uow.GetEscrowByOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("escrow_not_found")
			}
			return err
		}

		if esc.Status != "funded" {
			return httperr.ErrPreconditionFailed("escrow_not_funded")
		}

		now := domain.Now()
		esc.Status = "released"
		esc.ReleasedAt = &now
		if err := uow.SaveEscrow(ctx, esc); err != nil {
			return err
		}

		ev := analytics.NewEvent(
			analytics.EventEscrowReleased,
			orderID,
			actorID,
			"",
			now,
			map[string]any{"escrow_id": esc.ID},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		out = esc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
