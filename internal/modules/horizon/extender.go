package horizon

import (
	"context"
	"fmt"
	"log"
	"time"

	"roombook/internal/domain"
	"roombook/internal/pkg/timeutil"
	"roombook/internal/recurrence"
)

// RuleStore is the slice of the rule repository the extender needs.
type RuleStore interface {
	ListActive(ctx context.Context) ([]domain.RecurrenceRule, error)
	AppendExceptedDate(ctx context.Context, id int64, date string) error
	SetHorizonDate(ctx context.Context, id int64, date string) error
}

// BookingStore is the slice of the booking repository the extender needs.
type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	IsBooked(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
	ExistsForRuleSlot(ctx context.Context, ruleID, roomID int64, start, end time.Time) (bool, error)
	MaxStartDateForRule(ctx context.Context, ruleID int64) (string, error)
}

// Report summarizes one extender run.
type Report struct {
	RulesChecked    int `json:"rules_checked"`
	RulesExtended   int `json:"rules_extended"`
	BookingsCreated int `json:"bookings_created"`
	DatesExcepted   int `json:"dates_excepted"`
	RulesFailed     int `json:"rules_failed"`
}

// Extender pushes the materialized horizon of active recurrence rules
// forward. Each rule is processed independently; one bad rule never stops
// the run. Re-running over an already extended window is a no-op because
// every slot is existence-checked before a booking is created.
type Extender struct {
	rules    RuleStore
	bookings BookingStore
	now      func() time.Time

	// bufferDays is how far ahead a rule must stay materialized before it is
	// left alone; extendDays is how much one run adds.
	bufferDays int
	extendDays int
}

func NewExtender(rules RuleStore, bookings BookingStore, now func() time.Time, bufferDays, extendDays int) *Extender {
	if now == nil {
		now = time.Now
	}
	if bufferDays < 1 {
		bufferDays = 730
	}
	if extendDays < 1 {
		extendDays = 365
	}
	return &Extender{
		rules:      rules,
		bookings:   bookings,
		now:        now,
		bufferDays: bufferDays,
		extendDays: extendDays,
	}
}

// Run extends every active rule that has fallen below the buffer.
func (e *Extender) Run(ctx context.Context) (Report, error) {
	rules, err := e.rules.ListActive(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("horizon: list active rules: %w", err)
	}

	var rep Report
	for i := range rules {
		rep.RulesChecked++
		created, excepted, extended, err := e.extendRule(ctx, &rules[i])
		if err != nil {
			rep.RulesFailed++
			log.Printf("horizon: rule extension failed rule_id=%d error=%v", rules[i].ID, err)
			continue
		}
		rep.BookingsCreated += created
		rep.DatesExcepted += excepted
		if extended {
			rep.RulesExtended++
		}
	}

	log.Printf("horizon: run complete checked=%d extended=%d created=%d excepted=%d failed=%d",
		rep.RulesChecked, rep.RulesExtended, rep.BookingsCreated, rep.DatesExcepted, rep.RulesFailed)
	return rep, nil
}

func (e *Extender) extendRule(ctx context.Context, rule *domain.RecurrenceRule) (created, excepted int, extended bool, err error) {
	loc, err := timeutil.Location(rule.Timezone)
	if err != nil {
		return 0, 0, false, err
	}

	horizon, err := e.currentHorizon(ctx, rule)
	if err != nil {
		return 0, 0, false, err
	}

	// Bounded rule already materialized to its end.
	if rule.LastDate != nil && horizon >= *rule.LastDate {
		return 0, 0, false, nil
	}

	today := timeutil.LocalDate(e.now(), loc)
	target, err := addDays(today, e.bufferDays)
	if err != nil {
		return 0, 0, false, err
	}
	if horizon >= target {
		return 0, 0, false, nil
	}

	windowStart, err := addDays(horizon, 1)
	if err != nil {
		return 0, 0, false, err
	}
	windowEnd, err := addDays(horizon, e.extendDays)
	if err != nil {
		return 0, 0, false, err
	}
	if rule.LastDate != nil && *rule.LastDate < windowEnd {
		windowEnd = *rule.LastDate
	}

	r, err := recurrence.Parse(rule.RuleString)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse rule string: %w", err)
	}
	r.Location = loc

	ws, err := timeutil.ParseDate(windowStart)
	if err != nil {
		return 0, 0, false, err
	}
	we, err := timeutil.ParseDate(windowEnd)
	if err != nil {
		return 0, 0, false, err
	}

	dates, err := r.Occurrences(ws, we)
	if err != nil {
		return 0, 0, false, err
	}

	for _, date := range dates {
		dateStr := date.Format(timeutil.DateLayout)
		if rule.IsExcepted(dateStr) {
			continue
		}

		start, err := timeutil.CombineUTC(date, rule.StartClock, loc)
		if err != nil {
			return created, excepted, false, err
		}
		end, err := timeutil.CombineUTC(date, rule.EndClock, loc)
		if err != nil {
			return created, excepted, false, err
		}

		exists, err := e.bookings.ExistsForRuleSlot(ctx, rule.ID, rule.RoomID, start, end)
		if err != nil {
			return created, excepted, false, err
		}
		if exists {
			continue
		}

		booked, err := e.bookings.IsBooked(ctx, rule.RoomID, start, end)
		if err != nil {
			return created, excepted, false, err
		}
		if booked {
			// Someone else got the slot; remember the skip so later runs do
			// not retry it forever.
			if err := e.rules.AppendExceptedDate(ctx, rule.ID, dateStr); err != nil {
				return created, excepted, false, err
			}
			excepted++
			continue
		}

		b := &domain.Booking{
			Title:            rule.Title,
			RoomID:           rule.RoomID,
			OrganizationID:   rule.OrganizationID,
			UserID:           rule.UserID,
			StartTime:        start,
			EndTime:          end,
			Status:           statusForRule(rule.Status),
			RecurrenceRuleID: &rule.ID,
			Amount:           rule.AmountPerOccurrence,
			StartDate:        dateStr,
			StartClock:       rule.StartClock,
			EndClock:         rule.EndClock,
		}
		if err := e.bookings.Create(ctx, b); err != nil {
			return created, excepted, false, err
		}
		created++
	}

	if err := e.rules.SetHorizonDate(ctx, rule.ID, windowEnd); err != nil {
		return created, excepted, false, err
	}
	return created, excepted, true, nil
}

// currentHorizon resolves how far the rule is already materialized: the
// recorded horizon date, else the latest existing booking, else the rule's
// first date minus one day so the first occurrence itself gets created.
func (e *Extender) currentHorizon(ctx context.Context, rule *domain.RecurrenceRule) (string, error) {
	if rule.HorizonDate != nil && *rule.HorizonDate != "" {
		return *rule.HorizonDate, nil
	}
	maxDate, err := e.bookings.MaxStartDateForRule(ctx, rule.ID)
	if err != nil {
		return "", err
	}
	if maxDate != "" {
		return maxDate, nil
	}
	return addDays(rule.FirstDate, -1)
}

func addDays(date string, n int) (string, error) {
	t, err := timeutil.ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(timeutil.DateLayout), nil
}

func statusForRule(s domain.RuleStatus) domain.BookingStatus {
	if s == domain.RuleConfirmed {
		return domain.BookingConfirmed
	}
	return domain.BookingPending
}
