package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse reads a canonical rule string produced by Compile back into a Rule.
func Parse(s string) (Rule, error) {
	var r Rule

	var dtstart, rrule string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "DTSTART:"):
			dtstart = strings.TrimPrefix(line, "DTSTART:")
		case strings.HasPrefix(line, "RRULE:"):
			rrule = strings.TrimPrefix(line, "RRULE:")
		default:
			return r, fmt.Errorf("%w: unexpected line %q", ErrMalformedRule, line)
		}
	}
	if dtstart == "" {
		return r, fmt.Errorf("%w: missing DTSTART line", ErrMalformedRule)
	}
	if rrule == "" {
		return r, fmt.Errorf("%w: missing RRULE line", ErrMalformedRule)
	}

	start, err := time.Parse(instantLayout, dtstart)
	if err != nil {
		return r, fmt.Errorf("%w: bad DTSTART %q", ErrMalformedRule, dtstart)
	}
	r.Start = start
	r.Interval = 1

	var freq string
	var byday, bymonthday []string
	for _, part := range strings.Split(rrule, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || value == "" {
			return r, fmt.Errorf("%w: bad rule part %q", ErrMalformedRule, part)
		}
		switch key {
		case "FREQ":
			freq = value
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return r, fmt.Errorf("%w: bad INTERVAL %q", ErrMalformedRule, value)
			}
			r.Interval = n
		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return r, fmt.Errorf("%w: bad COUNT %q", ErrMalformedRule, value)
			}
			r.Count = n
		case "UNTIL":
			t, err := time.Parse(instantLayout, value)
			if err != nil {
				return r, fmt.Errorf("%w: bad UNTIL %q", ErrMalformedRule, value)
			}
			r.Until = &t
		case "BYDAY":
			byday = strings.Split(value, ",")
		case "BYMONTHDAY":
			bymonthday = strings.Split(value, ",")
		default:
			return r, fmt.Errorf("%w: unsupported rule part %q", ErrMalformedRule, key)
		}
	}

	if r.Count > 0 && r.Until != nil {
		return r, fmt.Errorf("%w: both COUNT and UNTIL present", ErrMalformedRule)
	}

	switch freq {
	case "DAILY":
		r.Frequency = FrequencyDaily
	case "WEEKLY":
		r.Frequency = FrequencyWeekly
		for _, tok := range byday {
			wd, ok := codeWeekdays[tok]
			if !ok {
				return r, fmt.Errorf("%w: bad BYDAY token %q", ErrMalformedRule, tok)
			}
			r.Weekdays = append(r.Weekdays, wd)
		}
	case "MONTHLY":
		if len(byday) > 0 {
			r.Frequency = FrequencyMonthlyByDay
			for _, tok := range byday {
				wo, err := parseOrdinalToken(tok)
				if err != nil {
					return r, err
				}
				r.WeekdayOrdinals = append(r.WeekdayOrdinals, wo)
			}
		} else {
			r.Frequency = FrequencyMonthlyByDate
			for _, tok := range bymonthday {
				n, err := strconv.Atoi(tok)
				if err != nil || n < 1 || n > 31 {
					return r, fmt.Errorf("%w: bad BYMONTHDAY token %q", ErrMalformedRule, tok)
				}
				r.MonthDays = append(r.MonthDays, n)
			}
		}
	case "":
		return r, fmt.Errorf("%w: missing FREQ", ErrMalformedRule)
	default:
		return r, fmt.Errorf("%w: unsupported FREQ %q", ErrMalformedRule, freq)
	}

	return r, nil
}

// parseOrdinalToken reads tokens like "2MO" or "-1SU".
func parseOrdinalToken(tok string) (WeekdayOrdinal, error) {
	if len(tok) < 3 {
		return WeekdayOrdinal{}, fmt.Errorf("%w: bad BYDAY token %q", ErrMalformedRule, tok)
	}
	code := tok[len(tok)-2:]
	wd, ok := codeWeekdays[code]
	if !ok {
		return WeekdayOrdinal{}, fmt.Errorf("%w: bad BYDAY token %q", ErrMalformedRule, tok)
	}
	n, err := strconv.Atoi(tok[:len(tok)-2])
	if err != nil || n == 0 || n > 5 || n < -5 {
		return WeekdayOrdinal{}, fmt.Errorf("%w: bad BYDAY ordinal in %q", ErrMalformedRule, tok)
	}
	return WeekdayOrdinal{Weekday: wd, Ordinal: n}, nil
}
