package recurrence

import (
	"fmt"
	"strings"
	"time"
)

const instantLayout = "20060102T150405Z"

// Compile turns a pattern into the canonical two-line rule string:
//
//	DTSTART:20231001T083000Z
//	RRULE:FREQ=WEEKLY;UNTIL=20231231T193000Z;BYDAY=MO,WE,FR
//
// INTERVAL is omitted when 1. Exactly one of UNTIL/COUNT appears for bounded
// patterns; neither appears for unbounded ones. The output round-trips
// through Parse to an equivalent rule.
func Compile(p Pattern) (string, error) {
	if err := validate(p); err != nil {
		return "", err
	}

	parts := []string{"FREQ=" + freqName(p.Frequency)}
	if p.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", p.Interval))
	}

	switch p.End {
	case EndAfterCount:
		parts = append(parts, fmt.Sprintf("COUNT=%d", p.Count))
	case EndAtDate:
		parts = append(parts, "UNTIL="+p.EndDate.UTC().Format(instantLayout))
	}

	switch p.Frequency {
	case FrequencyWeekly:
		if len(p.Weekdays) > 0 {
			parts = append(parts, "BYDAY="+strings.Join(weekdayTokens(p.Weekdays), ","))
		}
	case FrequencyMonthlyByDay:
		parts = append(parts, "BYDAY="+strings.Join(ordinalTokens(p.WeekdayOrdinals), ","))
	case FrequencyMonthlyByDate:
		if len(p.MonthDays) > 0 {
			parts = append(parts, "BYMONTHDAY="+joinInts(p.MonthDays))
		}
	}

	return "DTSTART:" + p.Start.UTC().Format(instantLayout) + "\n" +
		"RRULE:" + strings.Join(parts, ";"), nil
}

func validate(p Pattern) error {
	if p.Start.IsZero() {
		return &ValidationError{Field: "start", Reason: "start instant is required"}
	}
	if p.Interval < 1 {
		return &ValidationError{Field: "interval", Reason: "must be at least 1"}
	}

	switch p.End {
	case EndNever:
	case EndAfterCount:
		if p.Count < 1 {
			return &ValidationError{Field: "count", Reason: "must be at least 1"}
		}
	case EndAtDate:
		if p.EndDate.Before(p.Start) {
			return &ValidationError{Field: "end_date", Reason: "must not be before the start instant"}
		}
	default:
		return &ValidationError{Field: "end", Reason: "unknown end condition"}
	}

	switch p.Frequency {
	case FrequencyDaily:
	case FrequencyWeekly:
		for _, d := range p.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return &ValidationError{Field: "weekdays", Reason: fmt.Sprintf("unknown weekday %d", d)}
			}
		}
	case FrequencyMonthlyByDay:
		if len(p.WeekdayOrdinals) == 0 {
			return &ValidationError{Field: "weekday_ordinals", Reason: "at least one (weekday, ordinal) pair is required"}
		}
		for _, wo := range p.WeekdayOrdinals {
			if wo.Weekday < time.Sunday || wo.Weekday > time.Saturday {
				return &ValidationError{Field: "weekday_ordinals", Reason: fmt.Sprintf("unknown weekday %d", wo.Weekday)}
			}
			if wo.Ordinal == 0 || wo.Ordinal > 5 || wo.Ordinal < -5 {
				return &ValidationError{Field: "weekday_ordinals", Reason: fmt.Sprintf("ordinal %d out of range", wo.Ordinal)}
			}
		}
	case FrequencyMonthlyByDate:
		for _, d := range p.MonthDays {
			if d < 1 || d > 31 {
				return &ValidationError{Field: "month_days", Reason: fmt.Sprintf("day %d out of range", d)}
			}
		}
	default:
		return &ValidationError{Field: "frequency", Reason: "unknown frequency"}
	}

	return nil
}

func freqName(f Frequency) string {
	switch f {
	case FrequencyDaily:
		return "DAILY"
	case FrequencyWeekly:
		return "WEEKLY"
	default:
		return "MONTHLY"
	}
}

func weekdayTokens(days []time.Weekday) []string {
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, weekdayCodes[d])
	}
	return out
}

func ordinalTokens(pairs []WeekdayOrdinal) []string {
	seen := make(map[WeekdayOrdinal]bool, len(pairs))
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, fmt.Sprintf("%d%s", p.Ordinal, weekdayCodes[p.Weekday]))
	}
	return out
}

func joinInts(ns []int) string {
	seen := make(map[int]bool, len(ns))
	var b strings.Builder
	for _, n := range ns {
		if seen[n] {
			continue
		}
		seen[n] = true
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	return b.String()
}
