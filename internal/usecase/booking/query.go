package booking

import (
	"context"

	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/models"
)

// Reads are not transactional; a booking mid-transition from another writer
// may be observed, which is accepted.

type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

func (uc *GetBooking) Execute(ctx context.Context, id string) (*models.Booking, error) {
	b, err := uc.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "booking_not_found")
	}
	return b, nil
}

type ListBookings struct {
	repo domain.Repository
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

func (uc *ListBookings) Execute(
	ctx context.Context,
	f domain.ListFilters,
) ([]models.Booking, int64, error) {
	return uc.repo.ListBookings(ctx, f)
}
