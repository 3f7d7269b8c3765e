package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// Frequency represents supported repetition kinds.
type Frequency int

const (
	// FrequencyUnspecified indicates the frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily repeats every Interval days.
	FrequencyDaily
	// FrequencyWeekly repeats on selected weekdays every Interval weeks.
	FrequencyWeekly
	// FrequencyMonthlyByDay repeats on (weekday, ordinal) pairs every Interval months.
	FrequencyMonthlyByDay
	// FrequencyMonthlyByDate repeats on fixed days of the month every Interval months.
	FrequencyMonthlyByDate
)

// EndKind describes how a pattern terminates.
type EndKind int

const (
	// EndNever leaves the rule unbounded.
	EndNever EndKind = iota
	// EndAfterCount stops after Count occurrences.
	EndAfterCount
	// EndAtDate stops at EndDate inclusive.
	EndAtDate
)

// WeekdayOrdinal selects the nth weekday of a month. Ordinal -1 means the
// last matching weekday; -2 the one before it, and so on.
type WeekdayOrdinal struct {
	Weekday time.Weekday
	Ordinal int
}

// Pattern is the ephemeral user-submitted repeat configuration. Start is a
// zoned instant; everything downstream of Compile works in UTC.
type Pattern struct {
	Frequency Frequency
	Interval  int
	Start     time.Time

	End     EndKind
	Count   int
	EndDate time.Time

	Weekdays        []time.Weekday
	WeekdayOrdinals []WeekdayOrdinal
	MonthDays       []int
}

// Rule is the parsed canonical form of a compiled pattern. Start and Until
// are UTC instants at second precision.
type Rule struct {
	Start     time.Time
	Frequency Frequency
	Interval  int
	Until     *time.Time
	Count     int

	Weekdays        []time.Weekday
	WeekdayOrdinals []WeekdayOrdinal
	MonthDays       []int

	// Location is the calendar the rule expands in. Weekday and day-of-month
	// decisions, and the dates Occurrences returns, follow this calendar; the
	// rule string itself carries no timezone, so callers that stored one next
	// to the rule must set it after Parse. Nil means UTC.
	Location *time.Location
}

func (r Rule) location() *time.Location {
	if r.Location != nil {
		return r.Location
	}
	return time.UTC
}

// Unbounded reports whether the rule has neither UNTIL nor COUNT.
func (r Rule) Unbounded() bool { return r.Until == nil && r.Count == 0 }

// ValidationError attributes a malformed pattern to a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("recurrence: invalid %s: %s", e.Field, e.Reason)
}

// ErrMalformedRule indicates a stored rule string could not be parsed.
var ErrMalformedRule = errors.New("recurrence: malformed rule string")

// ErrUnboundedWindow indicates occurrence generation for an unbounded rule
// was requested without a finite window end.
var ErrUnboundedWindow = errors.New("recurrence: unbounded rule requires a finite window")

var weekdayCodes = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// WeekdayFromToken maps a two-letter iCalendar weekday token (MO..SU) to a
// calendar weekday.
func WeekdayFromToken(tok string) (time.Weekday, bool) {
	wd, ok := codeWeekdays[tok]
	return wd, ok
}

var codeWeekdays = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}
