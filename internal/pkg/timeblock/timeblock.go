// Package timeblock holds the wall-clock value types shared by the
// availability validator and the slot generator. It is pure data plus
// arithmetic; nothing here touches storage or the clock.
package timeblock

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Weekday is one of the seven canonical schedule keys. Free-form day
// strings never make it past ParseWeekday.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the canonical labels in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// weekdayAliases maps localized labels accepted at the API boundary to
// the canonical keys. The mobile clients still send Spanish day names.
var weekdayAliases = map[string]Weekday{
	"Lunes":     Monday,
	"Martes":    Tuesday,
	"Miércoles": Wednesday,
	"Miercoles": Wednesday,
	"Jueves":    Thursday,
	"Viernes":   Friday,
	"Sábado":    Saturday,
	"Sabado":    Saturday,
	"Domingo":   Sunday,
}

// ParseWeekday translates a day label into a canonical Weekday.
// It accepts the seven canonical English labels and their Spanish aliases.
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range Weekdays {
		if s == string(d) {
			return d, nil
		}
	}
	if d, ok := weekdayAliases[s]; ok {
		return d, nil
	}
	return "", fmt.Errorf("invalid weekday %q", s)
}

// WeekdayOf returns the canonical label for a calendar date.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// Block is a contiguous [Start, End) interval within one weekday,
// both endpoints as "HH:MM" wall-clock strings.
type Block struct {
	Start string
	End   string
}

// MarshalJSON encodes the block as a two-element array ["HH:MM","HH:MM"],
// the wire format the clients already speak.
func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{b.Start, b.End})
}

// UnmarshalJSON decodes the ["start","end"] pair form.
func (b *Block) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("time block must be a [start, end] pair, got %d elements", len(pair))
	}
	b.Start = pair[0]
	b.End = pair[1]
	return nil
}

// Schedule is a weekly availability calendar: weekday to ordered blocks.
type Schedule map[Weekday][]Block

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ToMinutes parses a strict 24-hour "HH:MM" string into minutes since
// midnight (0-1439).
func ToMinutes(hhmm string) (int, error) {
	if !hhmmPattern.MatchString(hhmm) {
		return 0, fmt.Errorf("invalid time %q: must be \"HH:MM\" in 24-hour format", hhmm)
	}
	h, _ := strconv.Atoi(hhmm[:2])
	m, _ := strconv.Atoi(hhmm[3:])
	return h*60 + m, nil
}

// FormatMinutes renders minutes since midnight back to "HH:MM".
func FormatMinutes(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Overlaps reports whether two half-open [start, end) minute intervals
// intersect. Touching endpoints do not overlap: a block ending at 10:00
// and one starting at 10:00 are compatible.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
