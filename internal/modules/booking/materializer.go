package booking

import (
	"context"
	"math"
	"time"

	"roombook/internal/domain"
	"roombook/internal/pkg/timeutil"

	"golang.org/x/sync/errgroup"
)

// Materializer turns occurrence dates into booking drafts. Conflict checks
// for the dates are independent reads, so they fan out across a bounded
// worker pool; drafts land in an index-addressed slice and the output order
// always matches the input date order.
type Materializer struct {
	conflicts ConflictChecker
	workers   int
}

func NewMaterializer(conflicts ConflictChecker, workers int) *Materializer {
	if workers < 1 {
		workers = 1
	}
	return &Materializer{conflicts: conflicts, workers: workers}
}

// Materialize builds one draft per date. Dates whose timespan overlaps a
// confirmed booking get status unavailable; the rest inherit the rule's
// status. Drafts are not persisted here.
func (m *Materializer) Materialize(ctx context.Context, rule *domain.RecurrenceRule, hourlyRate *float64, dates []time.Time) ([]domain.Booking, error) {
	loc, err := timeutil.Location(rule.Timezone)
	if err != nil {
		return nil, err
	}

	drafts := make([]domain.Booking, len(dates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, date := range dates {
		g.Go(func() error {
			start, err := timeutil.CombineUTC(date, rule.StartClock, loc)
			if err != nil {
				return err
			}
			end, err := timeutil.CombineUTC(date, rule.EndClock, loc)
			if err != nil {
				return err
			}

			booked, err := m.conflicts.IsBooked(ctx, rule.RoomID, start, end)
			if err != nil {
				return err
			}

			status := inheritedStatus(rule.Status)
			if booked {
				status = domain.BookingUnavailable
			}

			drafts[i] = domain.Booking{
				Title:          rule.Title,
				RoomID:         rule.RoomID,
				OrganizationID: rule.OrganizationID,
				UserID:         rule.UserID,
				StartTime:      start,
				EndTime:        end,
				Status:         status,
				Amount:         occurrenceAmount(start, end, hourlyRate),
				StartDate:      timeutil.LocalDate(start, loc),
				StartClock:     rule.StartClock,
				EndClock:       rule.EndClock,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return drafts, nil
}

// Bookable reports whether at least one draft is available.
func Bookable(drafts []domain.Booking) bool {
	for _, d := range drafts {
		if d.Status != domain.BookingUnavailable {
			return true
		}
	}
	return false
}

func inheritedStatus(s domain.RuleStatus) domain.BookingStatus {
	if s == domain.RuleConfirmed {
		return domain.BookingConfirmed
	}
	return domain.BookingPending
}

func occurrenceAmount(start, end time.Time, hourlyRate *float64) *float64 {
	if hourlyRate == nil {
		return nil
	}
	v := end.Sub(start).Hours() * *hourlyRate
	v = math.Round(v*100) / 100
	return &v
}
