package reservation

import (
	"net/http"
	"strings"
	"time"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "reservation not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")

	// ErrIllegalTransition covers both "action not defined for this
	// state" and "role not allowed to trigger it".
	ErrIllegalTransition = apperror.New(http.StatusForbidden, "action not allowed for this reservation")

	// ErrStaleTransition is the optimistic-concurrency failure: the
	// stored state changed between load and write. The caller should
	// reload and retry or surface the conflict.
	ErrStaleTransition = apperror.New(http.StatusConflict, "reservation was modified concurrently, reload and retry")

	ErrSlotMisaligned       = apperror.New(http.StatusBadRequest, "start time does not align with an available slot")
	ErrSlotTaken            = apperror.New(http.StatusConflict, "slot already reserved")
	ErrConsumerDoubleBooked = apperror.New(http.StatusConflict, "you already have an active reservation overlapping this time")
	ErrStartTimePast        = apperror.New(http.StatusBadRequest, "cannot reserve a slot in the past")
	ErrMissingStart         = apperror.New(http.StatusBadRequest, "start time is required to reschedule")
	ErrUnknownAction        = apperror.New(http.StatusBadRequest, "unknown action")
)

// State is a reservation lifecycle state. Finalized and cancelled are
// terminal; reservations are never physically deleted.
type State string

const (
	StatePending   State = "pending"
	StateAccepted  State = "accepted"
	StateFinalized State = "finalized"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no transition can ever leave s.
func (s State) Terminal() bool {
	return s == StateFinalized || s == StateCancelled
}

// Action is a lifecycle transition trigger.
type Action string

const (
	ActionConfirm      Action = "confirm"
	ActionCancel       Action = "cancel"
	ActionReschedule   Action = "reschedule"
	ActionAutoFinalize Action = "auto_finalize"
)

// ParseAction normalizes a client-supplied action name. AutoFinalize is
// deliberately not parseable: it belongs to the sweeper alone.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionConfirm:
		return ActionConfirm, nil
	case ActionCancel:
		return ActionCancel, nil
	case ActionReschedule:
		return ActionReschedule, nil
	default:
		return "", ErrUnknownAction
	}
}

// Role identifies which side of a reservation an actor is on.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleProvider Role = "provider"
	RoleSystem   Role = "system"
)

// Actor is whoever requests a transition.
type Actor struct {
	ID   string
	Role Role
}

// Reservation is a consumer's claim on one slot of one offering.
type Reservation struct {
	ID         string
	ConsumerID string
	OfferingID string

	// Joined display fields.
	ConsumerName  string
	OfferingTitle string
	ProviderID    string
	Duration      int // minutes, from the referenced offering

	StartTime time.Time
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime derives the service window end from the offering duration.
func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.Duration) * time.Minute)
}
