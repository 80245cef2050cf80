package http

import (
	"time"

	"github.com/fitslot/trainer-booking-backend/internal/reservation"
)

type CreateReservationRequest struct {
	OfferingID string    `json:"offering_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
}

// TransitionRequest carries a lifecycle action. start_time is only
// meaningful for reschedules.
type TransitionRequest struct {
	Action    string     `json:"action" binding:"required"`
	StartTime *time.Time `json:"start_time"`
}

type ReservationResponse struct {
	ID            string    `json:"id"`
	OfferingID    string    `json:"offering_id"`
	OfferingTitle string    `json:"offering_title"`
	ConsumerID    string    `json:"consumer_id"`
	ConsumerName  string    `json:"consumer_name,omitempty"`
	ProviderID    string    `json:"provider_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Duration      int       `json:"duration"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:            r.ID,
		OfferingID:    r.OfferingID,
		OfferingTitle: r.OfferingTitle,
		ConsumerID:    r.ConsumerID,
		ConsumerName:  r.ConsumerName,
		ProviderID:    r.ProviderID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime(),
		Duration:      r.Duration,
		State:         string(r.State),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
