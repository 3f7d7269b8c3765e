package horizon

import (
	"context"
	"testing"
	"time"

	"roombook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRuleStore struct {
	mock.Mock
}

func (m *mockRuleStore) ListActive(ctx context.Context) ([]domain.RecurrenceRule, error) {
	args := m.Called(ctx)
	if rs, ok := args.Get(0).([]domain.RecurrenceRule); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRuleStore) AppendExceptedDate(ctx context.Context, id int64, date string) error {
	args := m.Called(ctx, id, date)
	return args.Error(0)
}

func (m *mockRuleStore) SetHorizonDate(ctx context.Context, id int64, date string) error {
	args := m.Called(ctx, id, date)
	return args.Error(0)
}

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookingStore) IsBooked(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, roomID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingStore) ExistsForRuleSlot(ctx context.Context, ruleID, roomID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, ruleID, roomID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingStore) MaxStartDateForRule(ctx context.Context, ruleID int64) (string, error) {
	args := m.Called(ctx, ruleID)
	return args.String(0), args.Error(1)
}

func unboundedDaily() domain.RecurrenceRule {
	return domain.RecurrenceRule{
		ID:             42,
		Title:          "Standup",
		RuleString:     "DTSTART:20240603T090000Z\nRRULE:FREQ=DAILY",
		Timezone:       "UTC",
		Status:         domain.RuleConfirmed,
		RoomID:         7,
		OrganizationID: 3,
		UserID:         11,
		FirstDate:      "2024-06-03",
		StartClock:     "09:00",
		EndClock:       "10:00",
	}
}

func testNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestRunCreatesBookingsUpToWindowEnd(t *testing.T) {
	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)

	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{unboundedDaily()}, nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(42)).Return("", nil)
	bookings.On("ExistsForRuleSlot", mock.Anything, int64(42), int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)
	rules.On("SetHorizonDate", mock.Anything, int64(42), "2024-06-09").Return(nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	// First date 2024-06-03, seven daily occurrences through 2024-06-09.
	assert.Equal(t, 1, rep.RulesChecked)
	assert.Equal(t, 1, rep.RulesExtended)
	assert.Equal(t, 7, rep.BookingsCreated)
	assert.Equal(t, 0, rep.DatesExcepted)
	assert.Equal(t, 0, rep.RulesFailed)
	rules.AssertExpectations(t)
}

func TestRunCreatedBookingsInheritRuleStatusAndAmount(t *testing.T) {
	rule := unboundedDaily()
	amount := 60.0
	rule.AmountPerOccurrence = &amount

	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)

	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{rule}, nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(42)).Return("", nil)
	bookings.On("ExistsForRuleSlot", mock.Anything, int64(42), int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)

	var created []*domain.Booking
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).
		Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*domain.Booking))
		}).Return(nil)
	rules.On("SetHorizonDate", mock.Anything, int64(42), mock.Anything).Return(nil)

	_, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, created)

	first := created[0]
	assert.Equal(t, domain.BookingConfirmed, first.Status)
	require.NotNil(t, first.RecurrenceRuleID)
	assert.Equal(t, int64(42), *first.RecurrenceRuleID)
	require.NotNil(t, first.Amount)
	assert.InDelta(t, 60.0, *first.Amount, 0.001)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), first.StartTime)
	assert.Equal(t, "2024-06-03", first.StartDate)
}

func TestRunKeepsMidnightCrossingClockOnLocalDays(t *testing.T) {
	rule := unboundedDaily()
	// 00:30 Berlin daily; the compiled start instant is 22:30Z the previous
	// day, but created bookings must land on the local calendar days.
	rule.RuleString = "DTSTART:20240609T223000Z\nRRULE:FREQ=DAILY"
	rule.Timezone = "Europe/Berlin"
	rule.FirstDate = "2024-06-10"
	rule.StartClock = "00:30"
	rule.EndClock = "02:00"

	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)

	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{rule}, nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(42)).Return("", nil)
	bookings.On("ExistsForRuleSlot", mock.Anything, int64(42), int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)

	var created []*domain.Booking
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).
		Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*domain.Booking))
		}).Return(nil)
	rules.On("SetHorizonDate", mock.Anything, int64(42), "2024-06-16").Return(nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, rep.BookingsCreated)
	require.Len(t, created, 7)
	assert.Equal(t, "2024-06-10", created[0].StartDate)
	assert.Equal(t, time.Date(2024, 6, 9, 22, 30, 0, 0, time.UTC), created[0].StartTime)
	assert.Equal(t, "2024-06-11", created[1].StartDate)
	rules.AssertExpectations(t)
}

func TestRunIsIdempotentOverExistingSlots(t *testing.T) {
	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)

	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{unboundedDaily()}, nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(42)).Return("", nil)
	// Every slot already has a booking from a previous run.
	bookings.On("ExistsForRuleSlot", mock.Anything, int64(42), int64(7), mock.Anything, mock.Anything).Return(true, nil)
	rules.On("SetHorizonDate", mock.Anything, int64(42), mock.Anything).Return(nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rep.BookingsCreated)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunExceptsConflictedDates(t *testing.T) {
	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)

	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{unboundedDaily()}, nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(42)).Return("", nil)
	bookings.On("ExistsForRuleSlot", mock.Anything, int64(42), int64(7), mock.Anything, mock.Anything).Return(false, nil)

	taken := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	bookings.On("IsBooked", mock.Anything, int64(7), taken, taken.Add(time.Hour)).Return(true, nil)
	bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)
	rules.On("AppendExceptedDate", mock.Anything, int64(42), "2024-06-05").Return(nil)

	bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	rules.On("SetHorizonDate", mock.Anything, int64(42), mock.Anything).Return(nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, rep.BookingsCreated)
	assert.Equal(t, 1, rep.DatesExcepted)
	rules.AssertCalled(t, "AppendExceptedDate", mock.Anything, int64(42), "2024-06-05")
}

func TestRunSkipsAlreadyExceptedDates(t *testing.T) {
	rule := unboundedDaily()
	rule.ExceptedDates = []string{"2024-06-04"}

	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)

	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{rule}, nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(42)).Return("", nil)
	bookings.On("ExistsForRuleSlot", mock.Anything, int64(42), int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	rules.On("SetHorizonDate", mock.Anything, int64(42), mock.Anything).Return(nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, rep.BookingsCreated)
	assert.Equal(t, 0, rep.DatesExcepted, "previously excepted dates must not be re-excepted")
}

func TestRunSkipsFullyMaterializedBoundedRule(t *testing.T) {
	rule := unboundedDaily()
	last := "2024-06-10"
	horizon := "2024-06-10"
	rule.RuleString = "DTSTART:20240603T090000Z\nRRULE:FREQ=DAILY;UNTIL=20240610T090000Z"
	rule.LastDate = &last
	rule.HorizonDate = &horizon

	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)
	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{rule}, nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rep.RulesExtended)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	rules.AssertNotCalled(t, "SetHorizonDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSkipsRuleAheadOfBuffer(t *testing.T) {
	rule := unboundedDaily()
	horizon := "2024-12-31" // well past now + 30 day buffer
	rule.HorizonDate = &horizon

	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)
	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{rule}, nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rep.RulesExtended)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunIsolatesFailingRules(t *testing.T) {
	bad := unboundedDaily()
	bad.ID = 1
	bad.RuleString = "garbage"
	good := unboundedDaily()
	good.ID = 2

	rules := new(mockRuleStore)
	bookings := new(mockBookingStore)

	rules.On("ListActive", mock.Anything).Return([]domain.RecurrenceRule{bad, good}, nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(1)).Return("", nil)
	bookings.On("MaxStartDateForRule", mock.Anything, int64(2)).Return("", nil)
	bookings.On("ExistsForRuleSlot", mock.Anything, int64(2), int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	rules.On("SetHorizonDate", mock.Anything, int64(2), mock.Anything).Return(nil)

	rep, err := NewExtender(rules, bookings, testNow, 30, 7).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.RulesChecked)
	assert.Equal(t, 1, rep.RulesFailed)
	assert.Equal(t, 1, rep.RulesExtended)
	assert.Equal(t, 7, rep.BookingsCreated)
}
