package http

import (
	"fmt"
	"time"

	"github.com/fitslot/trainer-booking-backend/internal/offering"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
	userHttp "github.com/fitslot/trainer-booking-backend/internal/user/http"
)

// OfferingBody is the create/update payload. The schedule arrives keyed
// by day label (canonical or localized) with ["HH:MM","HH:MM"] pairs;
// keys are translated to the seven canonical weekdays before the domain
// layer sees them.
type OfferingBody struct {
	Title       string                       `json:"title" binding:"required"`
	Description string                       `json:"description" binding:"required"`
	Price       float64                      `json:"price" binding:"required"`
	Category    string                       `json:"category" binding:"required"`
	Duration    int                          `json:"duration" binding:"required"`
	InPerson    *bool                        `json:"in_person" binding:"required"`
	Schedule    map[string][]timeblock.Block `json:"schedule" binding:"required"`
}

// CanonicalSchedule translates the request's day labels into a
// canonical-keyed schedule.
func (b *OfferingBody) CanonicalSchedule() (timeblock.Schedule, error) {
	s := timeblock.Schedule{}
	for label, blocks := range b.Schedule {
		day, err := timeblock.ParseWeekday(label)
		if err != nil {
			return nil, err
		}
		if _, dup := s[day]; dup {
			return nil, fmt.Errorf("duplicate schedule entry for %s", day)
		}
		s[day] = blocks
	}
	return s, nil
}

type OfferingResponse struct {
	ID          string             `json:"id"`
	Provider    userHttp.UserTag   `json:"provider"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Category    string             `json:"category"`
	Duration    int                `json:"duration"`
	InPerson    bool               `json:"in_person"`
	Published   bool               `json:"published"`
	Schedule    timeblock.Schedule `json:"schedule"`
	Views       int                `json:"views"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func NewOfferingResponse(o *offering.Offering) OfferingResponse {
	return OfferingResponse{
		ID:          o.ID,
		Provider:    userHttp.UserTag{ID: o.ProviderID, Name: o.ProviderName},
		Title:       o.Title,
		Description: o.Description,
		Price:       o.Price,
		Category:    o.Category,
		Duration:    o.Duration,
		InPerson:    o.InPerson,
		Published:   o.Published,
		Schedule:    o.Schedule,
		Views:       o.Views,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// OfferingPreview is the public listing shape: no schedule internals.
type OfferingPreview struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Duration int     `json:"duration"`
	InPerson bool    `json:"in_person"`
}

func NewOfferingPreview(o *offering.Offering) OfferingPreview {
	return OfferingPreview{
		ID:       o.ID,
		Title:    o.Title,
		Price:    o.Price,
		Category: o.Category,
		Duration: o.Duration,
		InPerson: o.InPerson,
	}
}

// AvailabilityResponse lists the free "HH:MM" slot starts of one date.
type AvailabilityResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}
