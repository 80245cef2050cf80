package offering

import (
	"sort"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

// ExpandDay expands one weekday's blocks into candidate slot start times
// ("HH:MM", ascending). A slot is emitted only when the full duration
// fits inside the block; no partial final slot. Blocks are assumed to
// have passed ValidateSchedule.
func ExpandDay(blocks []timeblock.Block, duration int) ([]string, error) {
	parsed := make([]parsedBlock, 0, len(blocks))
	for _, b := range blocks {
		start, err := timeblock.ToMinutes(b.Start)
		if err != nil {
			return nil, err
		}
		end, err := timeblock.ToMinutes(b.End)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, parsedBlock{start: start, end: end, block: b})
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].start < parsed[j].start })

	var slots []string
	for _, p := range parsed {
		for cur := p.start; cur+duration <= p.end; cur += duration {
			slots = append(slots, timeblock.FormatMinutes(cur))
		}
	}
	return slots, nil
}

// FreeSlots returns the candidate slots minus the already-reserved start
// times, preserving order.
func FreeSlots(candidates []string, reserved map[string]struct{}) []string {
	free := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if _, taken := reserved[s]; !taken {
			free = append(free, s)
		}
	}
	return free
}
