package recurrence

import (
	"sort"
	"time"
)

// Occurrences expands the rule into calendar days within the inclusive
// window, ascending and deduplicated. Each result is the occurrence's day
// on the rule's calendar, encoded as midnight UTC; window bounds use the
// same encoding. windowStart zero means "from the rule's start". For
// unbounded rules a finite windowEnd is mandatory; bounded rules may pass a
// zero windowEnd to exhaust the rule.
func (r Rule) Occurrences(windowStart, windowEnd time.Time) ([]time.Time, error) {
	if r.Unbounded() && windowEnd.IsZero() {
		return nil, ErrUnboundedWindow
	}
	loc := r.location()

	ws := dateOf(r.Start, loc)
	if !windowStart.IsZero() && dateOf(windowStart, time.UTC).After(ws) {
		ws = dateOf(windowStart, time.UTC)
	}
	bounded := !windowEnd.IsZero()
	we := dateOf(windowEnd, time.UTC)

	out := make([]time.Time, 0)
	r.iterate(func(t time.Time) bool {
		d := dateOf(t, loc)
		if bounded && d.After(we) {
			return false
		}
		if d.Before(ws) {
			return true
		}
		if n := len(out); n > 0 && out[n-1].Equal(d) {
			return true
		}
		out = append(out, d)
		return true
	})

	return out, nil
}

// FirstOccurrence returns the earliest occurrence instant, if any.
func (r Rule) FirstOccurrence() (time.Time, bool) {
	var first time.Time
	found := false
	r.iterate(func(t time.Time) bool {
		first = t
		found = true
		return false
	})
	return first, found
}

// LastOccurrence returns the latest occurrence instant of a bounded rule.
// The second result is false for unbounded rules or bounds that produce
// nothing.
func (r Rule) LastOccurrence() (time.Time, bool) {
	if r.Unbounded() {
		return time.Time{}, false
	}
	var last time.Time
	found := false
	r.iterate(func(t time.Time) bool {
		last = t
		found = true
		return true
	})
	return last, found
}

// iterate visits occurrence instants in ascending order, honoring COUNT and
// UNTIL. All calendar arithmetic happens on the rule's local calendar so a
// start clock near midnight stays on its requested weekday and day of month.
// The visit callback returns false to stop; callers of unbounded rules are
// responsible for stopping.
func (r Rule) iterate(visit func(time.Time) bool) {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	start := r.Start.In(r.location())

	produced := 0
	emit := func(t time.Time) bool {
		if t.Before(start) {
			return true
		}
		if r.Until != nil && t.After(*r.Until) {
			return false
		}
		produced++
		if r.Count > 0 && produced > r.Count {
			return false
		}
		return visit(t)
	}

	switch r.Frequency {
	case FrequencyDaily:
		for t := start; ; t = addDays(t, interval) {
			if !emit(t) {
				return
			}
		}

	case FrequencyWeekly:
		days := r.Weekdays
		if len(days) == 0 {
			days = []time.Weekday{start.Weekday()}
		}
		offsets := weekOffsets(days)
		for ws := startOfWeek(start); ; ws = addDays(ws, 7*interval) {
			for _, off := range offsets {
				if !emit(addDays(ws, off)) {
					return
				}
			}
		}

	case FrequencyMonthlyByDay:
		for k := 0; ; k += interval {
			month := monthAnchor(start, k)
			var candidates []time.Time
			for _, wo := range r.WeekdayOrdinals {
				if t, ok := nthWeekdayOfMonth(month, wo); ok {
					candidates = append(candidates, t)
				}
			}
			sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
			for _, t := range candidates {
				if !emit(t) {
					return
				}
			}
		}

	case FrequencyMonthlyByDate:
		days := append([]int(nil), r.MonthDays...)
		if len(days) == 0 {
			days = []int{start.Day()}
		}
		sort.Ints(days)
		for k := 0; ; k += interval {
			month := monthAnchor(start, k)
			limit := daysInMonth(month)
			for _, d := range days {
				if d > limit {
					continue
				}
				if !emit(month.AddDate(0, 0, d-1)) {
					return
				}
			}
		}
	}
}

// dateOf truncates an instant to its calendar date in loc, encoded as
// midnight UTC.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// startOfWeek returns the Monday of t's week, keeping t's time of day (WKST=MO).
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return addDays(t, -offset)
}

// weekOffsets maps weekdays to sorted Monday-based day offsets within a week.
func weekOffsets(days []time.Weekday) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		off := (int(d) + 6) % 7
		if seen[off] {
			continue
		}
		seen[off] = true
		out = append(out, off)
	}
	sort.Ints(out)
	return out
}

// monthAnchor returns the first day of start's month shifted k months forward,
// keeping start's time of day.
func monthAnchor(start time.Time, k int) time.Time {
	y, m, _ := start.Date()
	return time.Date(y, m+time.Month(k), 1,
		start.Hour(), start.Minute(), start.Second(), 0, start.Location())
}

func daysInMonth(anchor time.Time) int {
	y, m, _ := anchor.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, anchor.Location()).Day()
}

// nthWeekdayOfMonth resolves a (weekday, ordinal) pair within the month of
// anchor. A month lacking the requested ordinal yields no date.
func nthWeekdayOfMonth(anchor time.Time, wo WeekdayOrdinal) (time.Time, bool) {
	limit := daysInMonth(anchor)

	if wo.Ordinal > 0 {
		first := anchor.Weekday()
		day := 1 + (int(wo.Weekday)-int(first)+7)%7 + (wo.Ordinal-1)*7
		if day > limit {
			return time.Time{}, false
		}
		return anchor.AddDate(0, 0, day-1), true
	}

	lastDay := anchor.AddDate(0, 0, limit-1)
	day := limit - (int(lastDay.Weekday())-int(wo.Weekday)+7)%7 + (wo.Ordinal+1)*7
	if day < 1 {
		return time.Time{}, false
	}
	return anchor.AddDate(0, 0, day-1), true
}
