package offering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

func block(start, end string) timeblock.Block {
	return timeblock.Block{Start: start, End: end}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule timeblock.Schedule
		wantErr  error
	}{
		{
			name: "valid multi-day schedule",
			schedule: timeblock.Schedule{
				timeblock.Monday:    {block("09:00", "12:00"), block("14:00", "18:00")},
				timeblock.Wednesday: {block("10:00", "11:30")},
			},
		},
		{
			name:     "empty schedule is valid",
			schedule: timeblock.Schedule{},
		},
		{
			name: "adjacent blocks do not overlap",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("09:00", "10:00"), block("10:00", "11:00")},
			},
		},
		{
			name: "malformed hour",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("25:00", "26:00")},
			},
			wantErr: ErrMalformedTime,
		},
		{
			name: "malformed minute",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("09:61", "10:00")},
			},
			wantErr: ErrMalformedTime,
		},
		{
			name: "missing zero padding",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("9:00", "10:00")},
			},
			wantErr: ErrMalformedTime,
		},
		{
			name: "start equals end",
			schedule: timeblock.Schedule{
				timeblock.Tuesday: {block("09:00", "09:00")},
			},
			wantErr: ErrMalformedTime,
		},
		{
			name: "start after end",
			schedule: timeblock.Schedule{
				timeblock.Tuesday: {block("15:00", "09:00")},
			},
			wantErr: ErrMalformedTime,
		},
		{
			name: "overlapping blocks on same day",
			schedule: timeblock.Schedule{
				timeblock.Friday: {block("09:00", "11:00"), block("10:30", "12:00")},
			},
			wantErr: ErrInternalOverlap,
		},
		{
			name: "overlap detected regardless of input order",
			schedule: timeblock.Schedule{
				timeblock.Friday: {block("10:30", "12:00"), block("09:00", "11:00")},
			},
			wantErr: ErrInternalOverlap,
		},
		{
			name: "contained block overlaps",
			schedule: timeblock.Schedule{
				timeblock.Saturday: {block("08:00", "20:00"), block("12:00", "13:00")},
			},
			wantErr: ErrInternalOverlap,
		},
		{
			name: "same blocks on different days do not overlap",
			schedule: timeblock.Schedule{
				timeblock.Monday:  {block("09:00", "11:00")},
				timeblock.Tuesday: {block("09:00", "11:00")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBlockDurations(t *testing.T) {
	tests := []struct {
		name     string
		schedule timeblock.Schedule
		duration int
		wantErr  error
	}{
		{
			name: "blocks divide evenly",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("09:00", "10:00"), block("14:00", "15:30")},
			},
			duration: 30,
		},
		{
			name: "block equals one slot",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("09:00", "09:45")},
			},
			duration: 45,
		},
		{
			name: "block shorter than duration",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("09:00", "09:20")},
			},
			duration: 30,
			wantErr:  ErrBlockTooShort,
		},
		{
			name: "leftover minutes rejected",
			schedule: timeblock.Schedule{
				timeblock.Monday: {block("09:00", "10:15")},
			},
			duration: 30,
			wantErr:  ErrBlockNotDivisible,
		},
		{
			name: "ninety minute slots",
			schedule: timeblock.Schedule{
				timeblock.Sunday: {block("08:00", "11:00")},
			},
			duration: 90,
		},
		{
			name: "two hours is not divisible by 90",
			schedule: timeblock.Schedule{
				timeblock.Sunday: {block("08:00", "10:00")},
			},
			duration: 90,
			wantErr:  ErrBlockNotDivisible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlockDurations(tt.schedule, tt.duration)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckCrossOffering(t *testing.T) {
	existing := &Offering{
		ID: "existing-id",
		Schedule: timeblock.Schedule{
			timeblock.Monday: {block("09:30", "11:00")},
			timeblock.Friday: {block("14:00", "16:00")},
		},
	}

	t.Run("overlap with another offering is rejected", func(t *testing.T) {
		candidate := timeblock.Schedule{
			timeblock.Monday: {block("09:00", "10:00")},
		}
		err := CheckCrossOffering(candidate, []*Offering{existing})
		require.ErrorIs(t, err, ErrCrossOfferingConflict)
		assert.Contains(t, err.Error(), "existing-id")
	})

	t.Run("same hours on a different day pass", func(t *testing.T) {
		candidate := timeblock.Schedule{
			timeblock.Tuesday: {block("09:30", "11:00")},
		}
		assert.NoError(t, CheckCrossOffering(candidate, []*Offering{existing}))
	})

	t.Run("touching endpoints do not conflict", func(t *testing.T) {
		candidate := timeblock.Schedule{
			timeblock.Monday: {block("11:00", "12:00")},
			timeblock.Friday: {block("13:00", "14:00")},
		}
		assert.NoError(t, CheckCrossOffering(candidate, []*Offering{existing}))
	})

	t.Run("no other offerings always passes", func(t *testing.T) {
		candidate := timeblock.Schedule{
			timeblock.Monday: {block("00:00", "23:00")},
		}
		assert.NoError(t, CheckCrossOffering(candidate, nil))
	})

	t.Run("first conflicting offering is reported", func(t *testing.T) {
		other := &Offering{
			ID: "other-id",
			Schedule: timeblock.Schedule{
				timeblock.Friday: {block("15:00", "17:00")},
			},
		}
		candidate := timeblock.Schedule{
			timeblock.Friday: {block("15:30", "16:30")},
		}
		err := CheckCrossOffering(candidate, []*Offering{existing, other})
		require.ErrorIs(t, err, ErrCrossOfferingConflict)
		assert.Contains(t, err.Error(), "existing-id")
	})
}
