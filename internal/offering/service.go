package offering

import (
	"context"
	"strings"
	"time"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

// ReservationSource is the narrow view of reservation storage the
// offering module needs: which slots are taken on a date, and whether an
// offering is pinned by active reservations.
type ReservationSource interface {
	ReservedStarts(ctx context.Context, offeringID string, from, to time.Time) ([]time.Time, error)
	HasActive(ctx context.Context, offeringID string) (bool, error)
}

type CreateRequest struct {
	ProviderID  string
	Title       string
	Description string
	Price       float64
	Category    string
	Duration    int
	InPerson    bool
	Schedule    timeblock.Schedule
}

// UpdateRequest replaces validated whole fields only; the service never
// merges partial schedule edits into the stored document.
type UpdateRequest struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Duration    int
	InPerson    bool
	Schedule    timeblock.Schedule
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Offering, error)
	Update(ctx context.Context, id, providerID string, req UpdateRequest) (*Offering, error)
	Delete(ctx context.Context, id, providerID string) error
	GetByID(ctx context.Context, id, viewerRole string) (*Offering, error)
	ListByProvider(ctx context.Context, providerID string) ([]*Offering, error)
	ListPublishedByProvider(ctx context.Context, providerID string) ([]*Offering, error)
	TogglePublish(ctx context.Context, id, providerID string) (*Offering, error)
	Availability(ctx context.Context, id, date string) ([]string, error)
}

type service struct {
	repo         Repository
	reservations ReservationSource
	loc          *time.Location
	now          func() time.Time
}

// NewService creates the offering Service. loc is the service reference
// timezone used to decide what "today" means for availability queries.
func NewService(repo Repository, reservations ReservationSource, loc *time.Location) Service {
	return &service{
		repo:         repo,
		reservations: reservations,
		loc:          loc,
		now:          time.Now,
	}
}

// validateFields gatekeeps the scalar fields shared by create and update.
func validateFields(title, description string, price float64, category string, duration int) error {
	if len(strings.TrimSpace(title)) < 3 {
		return ErrInvalidTitle
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	if !ValidCategory(category) {
		return ErrInvalidCategory
	}
	if !ValidDuration(duration) {
		return ErrInvalidDuration
	}
	return nil
}

// validateSchedule runs the three schedule validations in order:
// internal consistency, block/duration arithmetic, then the
// cross-offering disjointness check. The first failure short-circuits.
func (s *service) validateSchedule(ctx context.Context, providerID, excludeID string, schedule timeblock.Schedule, duration int) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}
	if err := ValidateBlockDurations(schedule, duration); err != nil {
		return err
	}
	others, err := s.repo.ListByProvider(ctx, providerID, excludeID)
	if err != nil {
		return err
	}
	return CheckCrossOffering(schedule, others)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Offering, error) {
	if err := validateFields(req.Title, req.Description, req.Price, req.Category, req.Duration); err != nil {
		return nil, err
	}
	if err := s.validateSchedule(ctx, req.ProviderID, "", req.Schedule, req.Duration); err != nil {
		return nil, err
	}

	off := &Offering{
		ProviderID:  req.ProviderID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Duration:    req.Duration,
		InPerson:    req.InPerson,
		Schedule:    req.Schedule,
	}

	if err := s.repo.Create(ctx, off); err != nil {
		return nil, err
	}
	return off, nil
}

func (s *service) Update(ctx context.Context, id, providerID string, req UpdateRequest) (*Offering, error) {
	off, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if off.ProviderID != providerID {
		return nil, ErrPermissionDenied
	}

	// A schedule referenced by pending or accepted reservations is
	// immutable: consumers booked against the published calendar.
	active, err := s.reservations.HasActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrActiveReservations
	}

	if err := validateFields(req.Title, req.Description, req.Price, req.Category, req.Duration); err != nil {
		return nil, err
	}
	if err := s.validateSchedule(ctx, providerID, id, req.Schedule, req.Duration); err != nil {
		return nil, err
	}

	off.Title = strings.TrimSpace(req.Title)
	off.Description = req.Description
	off.Price = req.Price
	off.Category = req.Category
	off.Duration = req.Duration
	off.InPerson = req.InPerson
	off.Schedule = req.Schedule

	if err := s.repo.Update(ctx, off); err != nil {
		return nil, err
	}
	return off, nil
}

func (s *service) Delete(ctx context.Context, id, providerID string) error {
	off, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if off.ProviderID != providerID {
		return ErrPermissionDenied
	}

	active, err := s.reservations.HasActive(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return ErrActiveReservations
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) GetByID(ctx context.Context, id, viewerRole string) (*Offering, error) {
	off, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Providers browsing listings do not count as views.
	if viewerRole != "provider" {
		if err := s.repo.IncrementViews(ctx, id); err == nil {
			off.Views++
		}
	}
	return off, nil
}

func (s *service) ListByProvider(ctx context.Context, providerID string) ([]*Offering, error) {
	return s.repo.ListByProvider(ctx, providerID, "")
}

func (s *service) ListPublishedByProvider(ctx context.Context, providerID string) ([]*Offering, error) {
	return s.repo.ListPublishedByProvider(ctx, providerID)
}

func (s *service) TogglePublish(ctx context.Context, id, providerID string) (*Offering, error) {
	off, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if off.ProviderID != providerID {
		return nil, ErrPermissionDenied
	}

	off.Published = !off.Published
	if err := s.repo.SetPublished(ctx, id, off.Published); err != nil {
		return nil, err
	}
	return off, nil
}

// Availability returns the bookable "HH:MM" slot starts of an offering
// on a calendar date: the schedule's candidate slots for that weekday
// minus the starts already taken by active reservations. Past dates are
// rejected so callers can tell "no slots" from "invalid query".
func (s *service) Availability(ctx context.Context, id, date string) ([]string, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	if day.Before(today) {
		return nil, ErrPastDateQuery
	}

	off, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	blocks := off.Schedule[timeblock.WeekdayOf(day)]
	if len(blocks) == 0 {
		return []string{}, nil
	}

	candidates, err := ExpandDay(blocks, off.Duration)
	if err != nil {
		return nil, err
	}

	starts, err := s.reservations.ReservedStarts(ctx, id, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	reserved := make(map[string]struct{}, len(starts))
	for _, t := range starts {
		reserved[t.In(s.loc).Format("15:04")] = struct{}{}
	}

	return FreeSlots(candidates, reserved), nil
}
