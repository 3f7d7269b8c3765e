package booking

import (
	"time"

	"roombook/internal/domain"
	"roombook/internal/pkg/timeutil"
	"roombook/internal/recurrence"
)

type CreateBookingRequest struct {
	Title          string    `json:"title" binding:"required"`
	RoomID         int64     `json:"room_id" binding:"required"`
	OrganizationID int64     `json:"organization_id" binding:"required"`
	UserID         int64     `json:"user_id" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	Timezone       string    `json:"timezone"`
}

// PatternRequest is the wire form of a repeat pattern. Weekday tokens use the
// two-letter iCalendar codes (MO..SU).
type PatternRequest struct {
	Frequency string `json:"frequency" binding:"required,oneof=daily weekly monthly_by_day monthly_by_date"`
	Interval  int    `json:"interval"`

	StartDate  string `json:"start_date" binding:"required"`
	StartClock string `json:"start_clock" binding:"required"`
	EndClock   string `json:"end_clock" binding:"required"`
	Timezone   string `json:"timezone"`

	End     string `json:"end" binding:"omitempty,oneof=never after_count at_date"`
	Count   int    `json:"count"`
	EndDate string `json:"end_date"`

	Weekdays        []string             `json:"weekdays"`
	MonthDays       []int                `json:"month_days"`
	WeekdayOrdinals []OrdinalPairRequest `json:"weekday_ordinals"`
}

type OrdinalPairRequest struct {
	Weekday string `json:"weekday"`
	Ordinal int    `json:"ordinal"`
}

type CreateRecurringRequest struct {
	Title          string         `json:"title" binding:"required"`
	RoomID         int64          `json:"room_id" binding:"required"`
	OrganizationID int64          `json:"organization_id" binding:"required"`
	UserID         int64          `json:"user_id" binding:"required"`
	CompensationID *int64         `json:"compensation_id"`
	Pattern        PatternRequest `json:"pattern" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// OccurrencePreview is one materialized-but-unsaved draft.
type OccurrencePreview struct {
	Date      string    `json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
	Amount    *float64  `json:"amount,omitempty"`
}

type RecurringPreview struct {
	RuleString  string              `json:"rule_string"`
	FirstDate   string              `json:"first_date"`
	LastDate    *string             `json:"last_date,omitempty"`
	Bookable    bool                `json:"bookable"`
	Occurrences []OccurrencePreview `json:"occurrences"`
}

// toPattern translates the wire form into a recurrence pattern; all
// local-to-UTC conversion goes through timeutil.
func (pr PatternRequest) toPattern() (recurrence.Pattern, *time.Location, error) {
	loc, err := timeutil.Location(pr.Timezone)
	if err != nil {
		return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "timezone", Reason: err.Error()}
	}

	startDay, err := timeutil.ParseDate(pr.StartDate)
	if err != nil {
		return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "start_date", Reason: err.Error()}
	}
	start, err := timeutil.CombineUTC(startDay, pr.StartClock, loc)
	if err != nil {
		return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "start_clock", Reason: err.Error()}
	}
	if _, err := timeutil.CombineUTC(startDay, pr.EndClock, loc); err != nil {
		return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "end_clock", Reason: err.Error()}
	}
	if pr.EndClock <= pr.StartClock {
		return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "end_clock", Reason: "must be after start_clock"}
	}

	interval := pr.Interval
	if interval == 0 {
		interval = 1
	}

	p := recurrence.Pattern{
		Interval: interval,
		Start:    start,
	}

	switch pr.Frequency {
	case "daily":
		p.Frequency = recurrence.FrequencyDaily
	case "weekly":
		p.Frequency = recurrence.FrequencyWeekly
	case "monthly_by_day":
		p.Frequency = recurrence.FrequencyMonthlyByDay
	case "monthly_by_date":
		p.Frequency = recurrence.FrequencyMonthlyByDate
	}

	for _, tok := range pr.Weekdays {
		wd, ok := recurrence.WeekdayFromToken(tok)
		if !ok {
			return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "weekdays", Reason: "unknown weekday token " + tok}
		}
		p.Weekdays = append(p.Weekdays, wd)
	}
	for _, pair := range pr.WeekdayOrdinals {
		wd, ok := recurrence.WeekdayFromToken(pair.Weekday)
		if !ok {
			return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "weekday_ordinals", Reason: "unknown weekday token " + pair.Weekday}
		}
		p.WeekdayOrdinals = append(p.WeekdayOrdinals, recurrence.WeekdayOrdinal{Weekday: wd, Ordinal: pair.Ordinal})
	}
	p.MonthDays = pr.MonthDays

	switch pr.End {
	case "", "never":
		p.End = recurrence.EndNever
	case "after_count":
		p.End = recurrence.EndAfterCount
		p.Count = pr.Count
	case "at_date":
		p.End = recurrence.EndAtDate
		endDay, err := timeutil.ParseDate(pr.EndDate)
		if err != nil {
			return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "end_date", Reason: err.Error()}
		}
		// The pattern ends after the last possible occurrence of that day.
		endInstant, err := timeutil.CombineUTC(endDay, pr.EndClock, loc)
		if err != nil {
			return recurrence.Pattern{}, nil, &recurrence.ValidationError{Field: "end_date", Reason: err.Error()}
		}
		p.EndDate = endInstant
	}

	return p, loc, nil
}

type BookingDetails struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	StartDate string    `json:"start_date"`
	Amount    *float64  `json:"amount,omitempty"`
	Recurring bool      `json:"recurring"`
	RoomID    int64     `json:"room_id"`
}

func toDetails(b domain.Booking) BookingDetails {
	return BookingDetails{
		ID:        b.ID,
		Title:     b.Title,
		Status:    string(b.Status),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		StartDate: b.StartDate,
		Amount:    b.Amount,
		Recurring: b.IsRecurring(),
		RoomID:    b.RoomID,
	}
}
