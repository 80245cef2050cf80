package offering

import (
	"fmt"
	"sort"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

// parsedBlock carries a block's endpoints in minutes alongside the
// original strings for error reporting.
type parsedBlock struct {
	start, end int
	block      timeblock.Block
}

// parseDay parses and range-checks every block of one weekday, returning
// them sorted by start time.
func parseDay(day timeblock.Weekday, blocks []timeblock.Block) ([]parsedBlock, error) {
	parsed := make([]parsedBlock, 0, len(blocks))
	for _, b := range blocks {
		start, err := timeblock.ToMinutes(b.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: %q on %s", ErrMalformedTime, b.Start, day)
		}
		end, err := timeblock.ToMinutes(b.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %q on %s", ErrMalformedTime, b.End, day)
		}
		if end <= start {
			return nil, fmt.Errorf("%w: on %s start %s must be before end %s", ErrMalformedTime, day, b.Start, b.End)
		}
		parsed = append(parsed, parsedBlock{start: start, end: end, block: b})
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].start < parsed[j].start })
	return parsed, nil
}

// ValidateSchedule checks internal consistency of a weekly schedule:
// every block parses as strict "HH:MM" with start before end, and blocks
// within one weekday do not overlap. Weekdays are visited in calendar
// order so the first reported violation is deterministic.
func ValidateSchedule(s timeblock.Schedule) error {
	for _, day := range timeblock.Weekdays {
		blocks, ok := s[day]
		if !ok {
			continue
		}
		parsed, err := parseDay(day, blocks)
		if err != nil {
			return err
		}
		for i := 1; i < len(parsed); i++ {
			prev, curr := parsed[i-1], parsed[i]
			if curr.start < prev.end {
				return fmt.Errorf("%w: on %s block %s-%s overlaps %s-%s",
					ErrInternalOverlap, day,
					curr.block.Start, curr.block.End,
					prev.block.Start, prev.block.End)
			}
		}
	}
	return nil
}

// ValidateBlockDurations checks that every block spans at least one full
// slot of the given duration and divides into whole slots. A partial
// trailing slot is rejected, not silently truncated.
func ValidateBlockDurations(s timeblock.Schedule, duration int) error {
	for _, day := range timeblock.Weekdays {
		for _, b := range s[day] {
			start, err := timeblock.ToMinutes(b.Start)
			if err != nil {
				return fmt.Errorf("%w: %q on %s", ErrMalformedTime, b.Start, day)
			}
			end, err := timeblock.ToMinutes(b.End)
			if err != nil {
				return fmt.Errorf("%w: %q on %s", ErrMalformedTime, b.End, day)
			}
			span := end - start
			if span < duration {
				return fmt.Errorf("%w: on %s block %s-%s spans %d min, less than the %d min duration",
					ErrBlockTooShort, day, b.Start, b.End, span, duration)
			}
			if span%duration != 0 {
				return fmt.Errorf("%w: on %s block %s-%s spans %d min, leaving %d min over",
					ErrBlockNotDivisible, day, b.Start, b.End, span, span%duration)
			}
		}
	}
	return nil
}

// CheckCrossOffering tests a candidate schedule against the schedules of
// the provider's other offerings. Published calendars of one provider
// must be disjoint: the first colliding block pair fails the check,
// naming the conflicting offering, weekday and time range.
func CheckCrossOffering(candidate timeblock.Schedule, others []*Offering) error {
	for _, other := range others {
		for _, day := range timeblock.Weekdays {
			newBlocks := candidate[day]
			existingBlocks := other.Schedule[day]
			if len(newBlocks) == 0 || len(existingBlocks) == 0 {
				continue
			}
			for _, nb := range newBlocks {
				nStart, err := timeblock.ToMinutes(nb.Start)
				if err != nil {
					return fmt.Errorf("%w: %q on %s", ErrMalformedTime, nb.Start, day)
				}
				nEnd, err := timeblock.ToMinutes(nb.End)
				if err != nil {
					return fmt.Errorf("%w: %q on %s", ErrMalformedTime, nb.End, day)
				}
				for _, eb := range existingBlocks {
					eStart, err := timeblock.ToMinutes(eb.Start)
					if err != nil {
						// Stored schedules are validated on write; a bad
						// one here means corrupted data.
						return fmt.Errorf("stored schedule of offering %s is invalid: %w", other.ID, err)
					}
					eEnd, err := timeblock.ToMinutes(eb.End)
					if err != nil {
						return fmt.Errorf("stored schedule of offering %s is invalid: %w", other.ID, err)
					}
					if timeblock.Overlaps(nStart, nEnd, eStart, eEnd) {
						return fmt.Errorf("%w: offering %s already covers %s %s-%s",
							ErrCrossOfferingConflict, other.ID, day, eb.Start, eb.End)
					}
				}
			}
		}
	}
	return nil
}
