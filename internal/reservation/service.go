package reservation

import (
	"context"
	"time"

	"github.com/fitslot/trainer-booking-backend/internal/offering"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

// OfferingSource is the narrow view of offering storage this module
// needs when validating slot alignment.
type OfferingSource interface {
	GetByID(ctx context.Context, id string) (*offering.Offering, error)
}

type CreateRequest struct {
	ConsumerID string
	OfferingID string
	StartTime  time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)

	// ApplyTransition is the single entry point for every lifecycle
	// change: it consults the state machine and performs the
	// compare-and-swap write. newStart is required for reschedules and
	// ignored otherwise.
	ApplyTransition(ctx context.Context, id string, actor Actor, action Action, newStart *time.Time) (*Reservation, error)

	GetByID(ctx context.Context, id string, actor Actor) (*Reservation, error)
	ListForConsumer(ctx context.Context, consumerID string) ([]*Reservation, error)
	ListForProvider(ctx context.Context, providerID string) ([]*Reservation, error)
}

type service struct {
	repo      Repository
	offerings OfferingSource
	loc       *time.Location
	now       func() time.Time
}

// NewService creates the reservation Service. loc is the service
// reference timezone; slot alignment is checked against the offering
// schedule's wall-clock times in that location.
func NewService(repo Repository, offerings OfferingSource, loc *time.Location) Service {
	return &service{
		repo:      repo,
		offerings: offerings,
		loc:       loc,
		now:       time.Now,
	}
}

// validateStart checks that start lands exactly on a slot boundary of
// the offering's schedule, is not already taken on that offering, and
// does not overlap the consumer's other active reservations.
// excludeID leaves a reservation out of the conflict checks when it is
// itself being rescheduled.
func (s *service) validateStart(ctx context.Context, off *offering.Offering, consumerID string, start time.Time, excludeID string) error {
	if start.Before(s.now()) {
		return ErrStartTimePast
	}

	local := start.In(s.loc)
	blocks := off.Schedule[timeblock.WeekdayOf(local)]
	candidates, err := offering.ExpandDay(blocks, off.Duration)
	if err != nil {
		return err
	}

	hhmm := local.Format("15:04")
	aligned := false
	for _, c := range candidates {
		if c == hhmm {
			aligned = true
			break
		}
	}
	if !aligned || local.Second() != 0 || local.Nanosecond() != 0 {
		return ErrSlotMisaligned
	}

	end := start.Add(time.Duration(off.Duration) * time.Minute)

	taken, err := s.repo.HasOfferingConflict(ctx, off.ID, start, end, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	doubleBooked, err := s.repo.HasConsumerConflict(ctx, consumerID, start, end, excludeID)
	if err != nil {
		return err
	}
	if doubleBooked {
		return ErrConsumerDoubleBooked
	}

	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	off, err := s.offerings.GetByID(ctx, req.OfferingID)
	if err != nil {
		return nil, err
	}

	if err := s.validateStart(ctx, off, req.ConsumerID, req.StartTime, ""); err != nil {
		return nil, err
	}

	r := &Reservation{
		ConsumerID: req.ConsumerID,
		OfferingID: req.OfferingID,
		StartTime:  req.StartTime,
		State:      StatePending,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	r.OfferingTitle = off.Title
	r.ProviderID = off.ProviderID
	r.Duration = off.Duration

	return r, nil
}

func (s *service) ApplyTransition(ctx context.Context, id string, actor Actor, action Action, newStart *time.Time) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The actor must own the side of the reservation it claims to act
	// for. The system role bypasses ownership: only the sweeper holds it.
	switch actor.Role {
	case RoleConsumer:
		if r.ConsumerID != actor.ID {
			return nil, ErrPermissionDenied
		}
	case RoleProvider:
		if r.ProviderID != actor.ID {
			return nil, ErrPermissionDenied
		}
	case RoleSystem:
		// no ownership check
	default:
		return nil, ErrPermissionDenied
	}

	if !CanTransition(actor.Role, r.State, action) {
		return nil, ErrIllegalTransition
	}
	to, ok := NextState(r.State, action)
	if !ok {
		return nil, ErrIllegalTransition
	}

	var startUpdate *time.Time
	if action == ActionReschedule {
		if newStart == nil {
			return nil, ErrMissingStart
		}
		off, err := s.offerings.GetByID(ctx, r.OfferingID)
		if err != nil {
			return nil, err
		}
		if err := s.validateStart(ctx, off, r.ConsumerID, *newStart, r.ID); err != nil {
			return nil, err
		}
		startUpdate = newStart
	}

	// Conditional write: only succeeds if the stored state still equals
	// the state we loaded. Losing a race surfaces as ErrStaleTransition.
	if err := s.repo.UpdateStateCAS(ctx, id, r.State, to, startUpdate); err != nil {
		return nil, err
	}

	r.State = to
	if startUpdate != nil {
		r.StartTime = *startUpdate
	}
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string, actor Actor) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case RoleConsumer:
		if r.ConsumerID != actor.ID {
			return nil, ErrPermissionDenied
		}
	case RoleProvider:
		if r.ProviderID != actor.ID {
			return nil, ErrPermissionDenied
		}
	case RoleSystem:
	default:
		return nil, ErrPermissionDenied
	}
	return r, nil
}

func (s *service) ListForConsumer(ctx context.Context, consumerID string) ([]*Reservation, error) {
	return s.repo.ListByConsumer(ctx, consumerID)
}

func (s *service) ListForProvider(ctx context.Context, providerID string) ([]*Reservation, error) {
	return s.repo.ListByProvider(ctx, providerID)
}
