package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

func TestAssignProviders_CreatesAndTransitions(t *testing.T) {
	repo, db := newTestRepo(t)
	uc := NewAssignProviders(repo, zap.NewNop())
	b := seedBooking(t, db, domain.StatusPending, domain.TypeScheduled)

	results, err := uc.Execute(context.Background(), b.ID, []AssignmentEntry{
		{ProviderID: "prov-1", Role: "lead"},
		{ProviderID: "prov-2"},
	}, "admin-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Created)
	assert.True(t, results[1].Created)
	assert.Equal(t, "pending", results[0].Assignment.Status)

	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, string(domain.StatusAwaitingAssignment), stored.Status)
	assert.NotNil(t, stored.Meta.LastAssignmentAt)

	assert.Equal(t, int64(2), countEvents(t, db, analytics.EventAssignmentCreated))
	assert.Equal(t, int64(1), countEvents(t, db, analytics.EventStatusTransition))
}

func TestAssignProviders_Idempotent(t *testing.T) {
	repo, db := newTestRepo(t)
	uc := NewAssignProviders(repo, zap.NewNop())
	ctx := context.Background()
	b := seedBooking(t, db, domain.StatusPending, domain.TypeScheduled)

	first, err := uc.Execute(ctx, b.ID, []AssignmentEntry{{ProviderID: "prov-1"}}, "admin-1")
	require.NoError(t, err)
	require.True(t, first[0].Created)

	second, err := uc.Execute(ctx, b.ID, []AssignmentEntry{{ProviderID: "prov-1"}}, "admin-1")
	require.NoError(t, err)
	require.False(t, second[0].Created)
	assert.Equal(t, first[0].Assignment.ID, second[0].Assignment.ID)

	var n int64
	require.NoError(t, db.Model(&models.BookingAssignment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// The replay writes no second event and no second transition.
	assert.Equal(t, int64(1), countEvents(t, db, analytics.EventAssignmentCreated))
	assert.Equal(t, int64(1), countEvents(t, db, analytics.EventStatusTransition))
}

func TestAssignProviders_ClosedBooking(t *testing.T) {
	repo, db := newTestRepo(t)
	uc := NewAssignProviders(repo, zap.NewNop())
	ctx := context.Background()

	for _, status := range []domain.Status{domain.StatusCompleted, domain.StatusCancelled} {
		b := seedBooking(t, db, status, domain.TypeScheduled)
		_, err := uc.Execute(ctx, b.ID, []AssignmentEntry{{ProviderID: "prov-1"}}, "admin-1")
		assert.True(t, httperr.IsBusiness(err, "booking_closed"), "%s", status)
	}
}

func TestAssignProviders_Validation(t *testing.T) {
	repo, db := newTestRepo(t)
	uc := NewAssignProviders(repo, zap.NewNop())
	ctx := context.Background()
	b := seedBooking(t, db, domain.StatusPending, domain.TypeScheduled)

	_, err := uc.Execute(ctx, b.ID, nil, "admin-1")
	assert.True(t, httperr.IsBusiness(err, "assignments_required"))

	_, err = uc.Execute(ctx, b.ID, []AssignmentEntry{{ProviderID: ""}}, "admin-1")
	assert.True(t, httperr.IsBusiness(err, "provider_id_required"))

	_, err = uc.Execute(ctx, "no-such-id", []AssignmentEntry{{ProviderID: "prov-1"}}, "admin-1")
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}

func TestRecordAssignmentResponse_FirstAcceptanceTransitions(t *testing.T) {
	repo, db := newTestRepo(t)
	assign := NewAssignProviders(repo, zap.NewNop())
	respond := NewRecordAssignmentResponse(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusPending, domain.TypeScheduled)
	_, err := assign.Execute(ctx, b.ID, []AssignmentEntry{
		{ProviderID: "prov-1"},
		{ProviderID: "prov-2"},
	}, "admin-1")
	require.NoError(t, err)

	a, err := respond.Execute(ctx, b.ID, "prov-1", domain.ResponseAccepted)
	require.NoError(t, err)
	assert.Equal(t, "accepted", a.Status)
	assert.NotNil(t, a.AcknowledgedAt)

	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, string(domain.StatusScheduled), stored.Status)
	require.NotNil(t, stored.Meta.AssignmentAcceptedAt)
	firstAcceptedAt := *stored.Meta.AssignmentAcceptedAt

	// The second acceptance records but drives no further transition.
	_, err = respond.Execute(ctx, b.ID, "prov-2", domain.ResponseAccepted)
	require.NoError(t, err)

	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, string(domain.StatusScheduled), stored.Status)
	assert.Equal(t, firstAcceptedAt, *stored.Meta.AssignmentAcceptedAt)

	assert.Equal(t, int64(2), countEvents(t, db, analytics.EventAssignmentResponded))
}

func TestRecordAssignmentResponse_ConcurrentAcceptancesTransitionOnce(t *testing.T) {
	repo, db := newTestRepo(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One pooled connection: the goroutines still race the use case, but
	// sqlite never sees two writers at once.
	sqlDB.SetMaxOpenConns(1)

	assign := NewAssignProviders(repo, zap.NewNop())
	respond := NewRecordAssignmentResponse(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)
	_, err = assign.Execute(ctx, b.ID, []AssignmentEntry{
		{ProviderID: "prov-1"},
		{ProviderID: "prov-2"},
	}, "admin-1")
	require.NoError(t, err)

	providers := []string{"prov-1", "prov-2"}
	errs := make([]error, len(providers))
	var wg sync.WaitGroup
	for i, provider := range providers {
		wg.Add(1)
		go func(i int, provider string) {
			defer wg.Done()
			_, errs[i] = respond.Execute(ctx, b.ID, provider, domain.ResponseAccepted)
		}(i, provider)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Only the acceptance that saw the unset stamp drove the transition.
	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, string(domain.StatusScheduled), stored.Status)
	require.NotNil(t, stored.Meta.AssignmentAcceptedAt)

	assert.Equal(t, int64(2), countEvents(t, db, analytics.EventAssignmentResponded))
	assert.Equal(t, int64(1), countEvents(t, db, analytics.EventStatusTransition))
}

func TestRecordAssignmentResponse_OnDemandGoesInProgress(t *testing.T) {
	repo, db := newTestRepo(t)
	assign := NewAssignProviders(repo, zap.NewNop())
	respond := NewRecordAssignmentResponse(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusPending, domain.TypeOnDemand)
	_, err := assign.Execute(ctx, b.ID, []AssignmentEntry{{ProviderID: "prov-1"}}, "admin-1")
	require.NoError(t, err)

	_, err = respond.Execute(ctx, b.ID, "prov-1", domain.ResponseAccepted)
	require.NoError(t, err)

	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, string(domain.StatusInProgress), stored.Status)
}

func TestRecordAssignmentResponse_DeclineDoesNotTransition(t *testing.T) {
	repo, db := newTestRepo(t)
	assign := NewAssignProviders(repo, zap.NewNop())
	respond := NewRecordAssignmentResponse(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusPending, domain.TypeScheduled)
	_, err := assign.Execute(ctx, b.ID, []AssignmentEntry{{ProviderID: "prov-1"}}, "admin-1")
	require.NoError(t, err)

	a, err := respond.Execute(ctx, b.ID, "prov-1", domain.ResponseDeclined)
	require.NoError(t, err)
	assert.Equal(t, "declined", a.Status)
	assert.Nil(t, a.AcknowledgedAt)

	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, string(domain.StatusAwaitingAssignment), stored.Status)
	assert.Nil(t, stored.Meta.AssignmentAcceptedAt)
}

func TestRecordAssignmentResponse_Validation(t *testing.T) {
	repo, db := newTestRepo(t)
	respond := NewRecordAssignmentResponse(repo, zap.NewNop())
	ctx := context.Background()
	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)

	_, err := respond.Execute(ctx, b.ID, "prov-1", "maybe")
	assert.True(t, httperr.IsBusiness(err, "invalid_response_status"))

	_, err = respond.Execute(ctx, b.ID, "prov-1", domain.ResponseAccepted)
	assert.True(t, httperr.IsBusiness(err, "assignment_not_found"))

	_, err = respond.Execute(ctx, "no-such-id", "prov-1", domain.ResponseAccepted)
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}

func TestListAssignments(t *testing.T) {
	repo, db := newTestRepo(t)
	assign := NewAssignProviders(repo, zap.NewNop())
	list := NewListAssignments(repo)
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusPending, domain.TypeScheduled)
	_, err := assign.Execute(ctx, b.ID, []AssignmentEntry{
		{ProviderID: "prov-1"},
		{ProviderID: "prov-2"},
	}, "admin-1")
	require.NoError(t, err)

	rows, err := list.Execute(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = list.Execute(ctx, "no-such-id")
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}
