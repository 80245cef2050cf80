package offering

import (
	"net/http"
	"time"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/apperror"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "offering not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")

	// Schedule validation failures. Each kind keeps a stable message so
	// clients can branch on it; details are attached by wrapping.
	ErrMalformedTime         = apperror.New(http.StatusBadRequest, "malformed time: must be \"HH:MM\" in 24-hour format with start before end")
	ErrInternalOverlap       = apperror.New(http.StatusBadRequest, "schedule has overlapping blocks on the same weekday")
	ErrBlockTooShort         = apperror.New(http.StatusBadRequest, "block is shorter than the offering duration")
	ErrBlockNotDivisible     = apperror.New(http.StatusBadRequest, "block span is not an exact multiple of the offering duration")
	ErrCrossOfferingConflict = apperror.New(http.StatusConflict, "schedule conflicts with another offering of the same provider")

	ErrInvalidDuration    = apperror.New(http.StatusBadRequest, "duration must be one of 30, 45, 60 or 90 minutes")
	ErrInvalidCategory    = apperror.New(http.StatusBadRequest, "category must be one of training, nutrition or consulting")
	ErrInvalidTitle       = apperror.New(http.StatusBadRequest, "title must be at least 3 characters")
	ErrInvalidPrice       = apperror.New(http.StatusBadRequest, "price must be positive")
	ErrActiveReservations = apperror.New(http.StatusConflict, "offering has active reservations; cancel or finalize them first")

	// Availability query failures.
	ErrInvalidDate   = apperror.New(http.StatusBadRequest, "invalid date: must be YYYY-MM-DD")
	ErrPastDateQuery = apperror.New(http.StatusBadRequest, "cannot query availability for past dates")
)

// ValidDurations is the fixed set of bookable service lengths in minutes.
var ValidDurations = []int{30, 45, 60, 90}

// Offering categories.
const (
	CategoryTraining   = "training"
	CategoryNutrition  = "nutrition"
	CategoryConsulting = "consulting"
)

var validCategories = []string{CategoryTraining, CategoryNutrition, CategoryConsulting}

// Offering is a provider's bookable service definition: a fixed slot
// duration plus a weekly recurring availability schedule.
type Offering struct {
	ID           string
	ProviderID   string
	ProviderName string // joined display field
	Title        string
	Description  string
	Price        float64
	Category     string
	Duration     int // minutes, one of ValidDurations
	InPerson     bool
	Published    bool
	Schedule     timeblock.Schedule
	Views        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidDuration reports whether d is an allowed service length.
func ValidDuration(d int) bool {
	for _, v := range ValidDurations {
		if d == v {
			return true
		}
	}
	return false
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, v := range validCategories {
		if c == v {
			return true
		}
	}
	return false
}
