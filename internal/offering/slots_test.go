package offering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

func TestExpandDay(t *testing.T) {
	tests := []struct {
		name     string
		blocks   []timeblock.Block
		duration int
		want     []string
	}{
		{
			name:     "single block, half-hour slots",
			blocks:   []timeblock.Block{block("09:00", "10:00")},
			duration: 30,
			want:     []string{"09:00", "09:30"},
		},
		{
			name:     "no partial trailing slot",
			blocks:   []timeblock.Block{block("09:00", "10:15")},
			duration: 30,
			want:     []string{"09:00", "09:30"},
		},
		{
			name:     "multiple blocks merge in ascending order",
			blocks:   []timeblock.Block{block("14:00", "15:00"), block("09:00", "09:45")},
			duration: 45,
			want:     []string{"09:00", "14:00"},
		},
		{
			name:     "ninety minute slots",
			blocks:   []timeblock.Block{block("08:00", "12:30")},
			duration: 90,
			want:     []string{"08:00", "09:30", "11:00"},
		},
		{
			name:     "block shorter than duration yields nothing",
			blocks:   []timeblock.Block{block("09:00", "09:20")},
			duration: 30,
			want:     nil,
		},
		{
			name:     "no blocks yields nothing",
			blocks:   nil,
			duration: 30,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandDay(tt.blocks, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandDayDeterministic(t *testing.T) {
	blocks := []timeblock.Block{block("16:00", "17:00"), block("09:00", "10:00"), block("12:00", "13:00")}

	first, err := ExpandDay(blocks, 60)
	require.NoError(t, err)
	for range 10 {
		again, err := ExpandDay(blocks, 60)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"09:00", "12:00", "16:00"}, first)
}

func TestFreeSlots(t *testing.T) {
	candidates := []string{"09:00", "09:30", "10:00", "10:30"}

	t.Run("reserved starts are removed", func(t *testing.T) {
		reserved := map[string]struct{}{"09:30": {}, "10:30": {}}
		assert.Equal(t, []string{"09:00", "10:00"}, FreeSlots(candidates, reserved))
	})

	t.Run("nothing reserved returns all candidates", func(t *testing.T) {
		assert.Equal(t, candidates, FreeSlots(candidates, nil))
	})

	t.Run("everything reserved returns empty, not nil", func(t *testing.T) {
		reserved := map[string]struct{}{"09:00": {}, "09:30": {}, "10:00": {}, "10:30": {}}
		got := FreeSlots(candidates, reserved)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
