package reservation

import (
	"context"
	"fmt"
	"time"

	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitslot/trainer-booking-backend/internal/offering"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

// fakeRepo is an in-memory Repository for service and sweeper tests.
type fakeRepo struct {
	reservations     map[string]*Reservation
	nextID           int
	offeringConflict bool
	consumerConflict bool
	casErr           error
	listAcceptedErr  error
	acceptedOverride []AcceptedCandidate

	// durations maps offering ID to duration for ListAccepted; a missing
	// entry simulates a deleted offering row.
	durations map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reservations: make(map[string]*Reservation),
		durations:    make(map[string]int),
	}
}

func (f *fakeRepo) Create(_ context.Context, r *Reservation) error {
	f.nextID++
	r.ID = fmt.Sprintf("res-%d", f.nextID)
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	stored := *r
	f.reservations[r.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRepo) ListByConsumer(_ context.Context, consumerID string) ([]*Reservation, error) {
	var out []*Reservation
	for _, r := range f.reservations {
		if r.ConsumerID == consumerID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByProvider(_ context.Context, providerID string) ([]*Reservation, error) {
	var out []*Reservation
	for _, r := range f.reservations {
		if r.ProviderID == providerID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStateCAS(_ context.Context, id string, from, to State, newStart *time.Time) error {
	if f.casErr != nil {
		return f.casErr
	}
	r, ok := f.reservations[id]
	if !ok || r.State != from {
		return ErrStaleTransition
	}
	r.State = to
	if newStart != nil {
		r.StartTime = *newStart
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepo) HasOfferingConflict(context.Context, string, time.Time, time.Time, string) (bool, error) {
	return f.offeringConflict, nil
}

func (f *fakeRepo) HasConsumerConflict(context.Context, string, time.Time, time.Time, string) (bool, error) {
	return f.consumerConflict, nil
}

func (f *fakeRepo) ListAccepted(context.Context) ([]AcceptedCandidate, error) {
	if f.listAcceptedErr != nil {
		return nil, f.listAcceptedErr
	}
	if f.acceptedOverride != nil {
		return f.acceptedOverride, nil
	}
	var out []AcceptedCandidate
	for _, r := range f.reservations {
		if r.State != StateAccepted {
			continue
		}
		c := AcceptedCandidate{ID: r.ID, StartTime: r.StartTime, State: r.State}
		if d, ok := f.durations[r.OfferingID]; ok {
			c.Duration = &d
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) ReservedStarts(context.Context, string, time.Time, time.Time) ([]time.Time, error) {
	return nil, nil
}

func (f *fakeRepo) HasActive(context.Context, string) (bool, error) {
	return false, nil
}

// fakeOfferings is an in-memory OfferingSource.
type fakeOfferings struct {
	offerings map[string]*offering.Offering
}

func (f *fakeOfferings) GetByID(_ context.Context, id string) (*offering.Offering, error) {
	o, ok := f.offerings[id]
	if !ok {
		return nil, offering.ErrNotFound
	}
	return o, nil
}

// 2025-03-10 is a Monday.
var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) (*service, *fakeOfferings) {
	offs := &fakeOfferings{offerings: map[string]*offering.Offering{
		"off-1": {
			ID:         "off-1",
			ProviderID: "provider-1",
			Title:      "Strength Training",
			Duration:   60,
			Schedule: timeblock.Schedule{
				timeblock.Monday: {
					{Start: "09:00", End: "12:00"},
				},
			},
		},
	}}
	return &service{
		repo:      repo,
		offerings: offs,
		loc:       time.UTC,
		now:       func() time.Time { return testNow },
	}, offs
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("aligned slot creates a pending reservation", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
		r, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "off-1", StartTime: start})
		require.NoError(t, err)
		assert.Equal(t, StatePending, r.State)
		assert.Equal(t, "provider-1", r.ProviderID)
		assert.Equal(t, 60, r.Duration)
		assert.Len(t, repo.reservations, 1)
	})

	t.Run("unknown offering", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "missing", StartTime: start})
		assert.ErrorIs(t, err, offering.ErrNotFound)
	})

	t.Run("misaligned start is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		start := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)
		_, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "off-1", StartTime: start})
		assert.ErrorIs(t, err, ErrSlotMisaligned)
	})

	t.Run("nonzero seconds are rejected even on an aligned minute", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		start := time.Date(2025, 3, 10, 10, 0, 30, 0, time.UTC)
		_, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "off-1", StartTime: start})
		assert.ErrorIs(t, err, ErrSlotMisaligned)
	})

	t.Run("day outside the schedule is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		// 2025-03-11 is a Tuesday; the offering only runs Mondays.
		start := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "off-1", StartTime: start})
		assert.ErrorIs(t, err, ErrSlotMisaligned)
	})

	t.Run("past start is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "off-1", StartTime: start})
		assert.ErrorIs(t, err, ErrStartTimePast)
	})

	t.Run("taken slot is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		repo.offeringConflict = true
		svc, _ := newTestService(repo)

		start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "off-1", StartTime: start})
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("overlapping reservation elsewhere is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		repo.consumerConflict = true
		svc, _ := newTestService(repo)

		start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, CreateRequest{ConsumerID: "consumer-1", OfferingID: "off-1", StartTime: start})
		assert.ErrorIs(t, err, ErrConsumerDoubleBooked)
	})
}

func seedReservation(repo *fakeRepo, id string, state State, start time.Time) {
	repo.reservations[id] = &Reservation{
		ID:         id,
		ConsumerID: "consumer-1",
		OfferingID: "off-1",
		ProviderID: "provider-1",
		Duration:   60,
		StartTime:  start,
		State:      state,
	}
}

func TestServiceApplyTransition(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("provider confirms a pending reservation", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StatePending, start)
		svc, _ := newTestService(repo)

		r, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "provider-1", Role: RoleProvider}, ActionConfirm, nil)
		require.NoError(t, err)
		assert.Equal(t, StateAccepted, r.State)
		assert.Equal(t, StateAccepted, repo.reservations["res-1"].State)
	})

	t.Run("another provider cannot act on the reservation", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StatePending, start)
		svc, _ := newTestService(repo)

		_, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "provider-2", Role: RoleProvider}, ActionConfirm, nil)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("consumer cannot confirm", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StatePending, start)
		svc, _ := newTestService(repo)

		_, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "consumer-1", Role: RoleConsumer}, ActionConfirm, nil)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("cancelled reservation accepts nothing", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StateCancelled, start)
		svc, _ := newTestService(repo)

		_, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "provider-1", Role: RoleProvider}, ActionConfirm, nil)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("reschedule requires a new start", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StatePending, start)
		svc, _ := newTestService(repo)

		_, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "consumer-1", Role: RoleConsumer}, ActionReschedule, nil)
		assert.ErrorIs(t, err, ErrMissingStart)
	})

	t.Run("reschedule moves to a validated slot", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StatePending, start)
		svc, _ := newTestService(repo)

		newStart := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
		r, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "consumer-1", Role: RoleConsumer}, ActionReschedule, &newStart)
		require.NoError(t, err)
		assert.Equal(t, StatePending, r.State)
		assert.True(t, r.StartTime.Equal(newStart))
		assert.True(t, repo.reservations["res-1"].StartTime.Equal(newStart))
	})

	t.Run("reschedule to a misaligned slot is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StatePending, start)
		svc, _ := newTestService(repo)

		newStart := time.Date(2025, 3, 10, 11, 15, 0, 0, time.UTC)
		_, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "consumer-1", Role: RoleConsumer}, ActionReschedule, &newStart)
		assert.ErrorIs(t, err, ErrSlotMisaligned)
		assert.True(t, repo.reservations["res-1"].StartTime.Equal(start))
	})

	t.Run("lost race surfaces as a stale transition", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StatePending, start)
		repo.casErr = ErrStaleTransition
		svc, _ := newTestService(repo)

		_, err := svc.ApplyTransition(ctx, "res-1", Actor{ID: "provider-1", Role: RoleProvider}, ActionConfirm, nil)
		assert.ErrorIs(t, err, ErrStaleTransition)
	})

	t.Run("system finalizes an accepted reservation", func(t *testing.T) {
		repo := newFakeRepo()
		seedReservation(repo, "res-1", StateAccepted, start)
		svc, _ := newTestService(repo)

		r, err := svc.ApplyTransition(ctx, "res-1", Actor{Role: RoleSystem}, ActionAutoFinalize, nil)
		require.NoError(t, err)
		assert.Equal(t, StateFinalized, r.State)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		_, err := svc.ApplyTransition(ctx, "missing", Actor{ID: "provider-1", Role: RoleProvider}, ActionConfirm, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceGetByID(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	seedReservation(repo, "res-1", StatePending, start)
	svc, _ := newTestService(repo)

	t.Run("owning consumer can read", func(t *testing.T) {
		r, err := svc.GetByID(ctx, "res-1", Actor{ID: "consumer-1", Role: RoleConsumer})
		require.NoError(t, err)
		assert.Equal(t, "res-1", r.ID)
	})

	t.Run("owning provider can read", func(t *testing.T) {
		_, err := svc.GetByID(ctx, "res-1", Actor{ID: "provider-1", Role: RoleProvider})
		assert.NoError(t, err)
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		_, err := svc.GetByID(ctx, "res-1", Actor{ID: "consumer-2", Role: RoleConsumer})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}
