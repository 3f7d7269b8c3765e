package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDBSeq int

// newTestDB opens a per-test in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:bookingrepo%d?mode=memory&cache=shared", testDBSeq)
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func confirmedBooking(roomID int64, start, end time.Time) *domain.Booking {
	return &domain.Booking{
		Title:          "Rehearsal",
		RoomID:         roomID,
		OrganizationID: 1,
		UserID:         1,
		StartTime:      start,
		EndTime:        end,
		Status:         domain.BookingConfirmed,
		StartDate:      start.Format("2006-01-02"),
		StartClock:     start.Format("15:04"),
		EndClock:       end.Format("15:04"),
	}
}

func TestConfirmedSlotIndexRejectsExactDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, confirmedBooking(1, start, end)))

	// Same room and start, both confirmed: the partial unique index blocks it.
	err := repo.Create(ctx, confirmedBooking(1, start, end))
	assert.Error(t, err)

	// A pending booking for the slot and a confirmed one in another room pass.
	pending := confirmedBooking(1, start, end)
	pending.Status = domain.BookingPending
	assert.NoError(t, repo.Create(ctx, pending))
	assert.NoError(t, repo.Create(ctx, confirmedBooking(2, start, end)))
}

func TestIsBookedHalfOpenOverlap(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, confirmedBooking(1, start, end)))

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical interval", start, end, true},
		{"contained", start.Add(30 * time.Minute), end.Add(-30 * time.Minute), true},
		{"overlaps tail", end.Add(-time.Hour), end.Add(time.Hour), true},
		{"overlaps head", start.Add(-time.Hour), start.Add(time.Hour), true},
		{"starts at end", end, end.Add(time.Hour), false},
		{"ends at start", start.Add(-time.Hour), start, false},
		{"well before", start.Add(-3 * time.Hour), start.Add(-2 * time.Hour), false},
		{"well after", end.Add(2 * time.Hour), end.Add(3 * time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.IsBooked(ctx, 1, tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsBookedIgnoresOtherRoomsAndStatuses(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	pending := confirmedBooking(1, start, end)
	pending.Status = domain.BookingPending
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, confirmedBooking(2, start, end)))

	got, err := repo.IsBooked(ctx, 1, start, end)
	require.NoError(t, err)
	assert.False(t, got, "pending bookings and other rooms must not block")
}

func TestRuleScopedQueries(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)
	ctx := context.Background()

	ruleID := int64(5)
	amount := 60.0
	var batch []*domain.Booking
	for i := 0; i < 3; i++ {
		start := time.Date(2024, 6, 3+7*i, 19, 0, 0, 0, time.UTC)
		b := confirmedBooking(1, start, start.Add(2*time.Hour))
		b.RecurrenceRuleID = &ruleID
		b.Amount = &amount
		batch = append(batch, b)
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	exists, err := repo.ExistsForRuleSlot(ctx, ruleID, 1, batch[0].StartTime, batch[0].EndTime)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForRuleSlot(ctx, ruleID, 1, batch[0].StartTime.AddDate(0, 0, 1), batch[0].EndTime.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, exists)

	maxDate, err := repo.MaxStartDateForRule(ctx, ruleID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-17", maxDate)

	total, err := repo.SumAmountByRule(ctx, ruleID)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, total, 0.001)

	// Cancelling one occurrence drops it from the derived total.
	require.NoError(t, repo.CancelWithReason(ctx, batch[1].ID, "sick"))
	total, err = repo.SumAmountByRule(ctx, ruleID)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, total, 0.001)
}

func TestUpdateStatusByRuleAndDecouple(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)
	ctx := context.Background()

	ruleID := int64(9)
	var batch []*domain.Booking
	for i := 0; i < 4; i++ {
		start := time.Date(2024, 7, 1+i, 9, 0, 0, 0, time.UTC)
		b := confirmedBooking(2, start, start.Add(time.Hour))
		b.Status = domain.BookingPending
		b.RecurrenceRuleID = &ruleID
		batch = append(batch, b)
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	moved, err := repo.UpdateStatusByRule(ctx, ruleID, domain.BookingPending, domain.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(4), moved)

	detached, err := repo.DecoupleFromRule(ctx, ruleID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), detached)

	b, err := repo.GetByID(ctx, batch[0].ID)
	require.NoError(t, err)
	assert.Nil(t, b.RecurrenceRuleID)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
}

func TestListWithFilters(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)
	ctx := context.Background()

	ruleID := int64(3)
	recurring := confirmedBooking(1, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC))
	recurring.RecurrenceRuleID = &ruleID
	oneOff := confirmedBooking(1, time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC), time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC))
	oneOff.OrganizationID = 2
	require.NoError(t, repo.Create(ctx, recurring))
	require.NoError(t, repo.Create(ctx, oneOff))

	orgID := int64(1)
	rows, err := repo.List(ctx, repository.BookingFilter{OrganizationID: &orgID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, recurring.ID, rows[0].ID)

	isRecurring := false
	rows, err = repo.List(ctx, repository.BookingFilter{Recurring: &isRecurring})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oneOff.ID, rows[0].ID)

	from := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	rows, err = repo.List(ctx, repository.BookingFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oneOff.ID, rows[0].ID)
}
