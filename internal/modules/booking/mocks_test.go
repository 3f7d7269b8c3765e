package booking

import (
	"context"
	"time"

	"roombook/internal/domain"
	"roombook/internal/repository"

	"github.com/stretchr/testify/mock"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookingRepo) CreateBatch(ctx context.Context, bs []*domain.Booking) error {
	args := m.Called(ctx, bs)
	return args.Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) IsBooked(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, roomID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) BusySlots(ctx context.Context, roomID int64, from, to time.Time) ([]repository.BusySlot, error) {
	args := m.Called(ctx, roomID, from, to)
	if s, ok := args.Get(0).([]repository.BusySlot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockBookingRepo) CancelWithReason(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockBookingRepo) UpdateStatusByRule(ctx context.Context, ruleID int64, from, to domain.BookingStatus) (int64, error) {
	args := m.Called(ctx, ruleID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBookingRepo) DecoupleFromRule(ctx context.Context, ruleID int64) (int64, error) {
	args := m.Called(ctx, ruleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBookingRepo) SumAmountByRule(ctx context.Context, ruleID int64) (float64, error) {
	args := m.Called(ctx, ruleID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockBookingRepo) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, f)
	if bs, ok := args.Get(0).([]domain.Booking); ok {
		return bs, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRuleRepo struct {
	mock.Mock
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *domain.RecurrenceRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *mockRuleRepo) GetByID(ctx context.Context, id int64) (*domain.RecurrenceRule, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*domain.RecurrenceRule); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRuleRepo) UpdateStatus(ctx context.Context, id int64, status domain.RuleStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockRuleRepo) CancelWithReason(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockRuleRepo) SetHorizonDate(ctx context.Context, id int64, date string) error {
	args := m.Called(ctx, id, date)
	return args.Error(0)
}

func (m *mockRuleRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRoomRepo struct {
	mock.Mock
}

func (m *mockRoomRepo) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*domain.Room); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOrgRepo struct {
	mock.Mock
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*domain.Organization); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrgRepo) GetCompensationByID(ctx context.Context, id int64) (*domain.Compensation, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.Compensation); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPermissionChecker struct {
	mock.Mock
}

func (m *mockPermissionChecker) CanBook(ctx context.Context, userID, roomID int64) (bool, error) {
	args := m.Called(ctx, userID, roomID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPermissionChecker) CanManage(ctx context.Context, userID, organizationID int64) (bool, error) {
	args := m.Called(ctx, userID, organizationID)
	return args.Bool(0), args.Error(1)
}

// noopNotifier satisfies NotificationSender for tests that do not assert on
// notification traffic.
type noopNotifier struct{}

func (noopNotifier) NotifyBookingCreated(context.Context, *domain.Booking) error   { return nil }
func (noopNotifier) NotifyBookingConfirmed(context.Context, *domain.Booking) error { return nil }
func (noopNotifier) NotifyBookingCancelled(context.Context, *domain.Booking, string) error {
	return nil
}
func (noopNotifier) NotifyRecurringRequested(context.Context, *domain.RecurrenceRule) error {
	return nil
}
func (noopNotifier) NotifyRecurringConfirmed(context.Context, *domain.RecurrenceRule) error {
	return nil
}
func (noopNotifier) NotifyRecurringCancelled(context.Context, *domain.RecurrenceRule, string) error {
	return nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, string, int64, string, string) {}

// fixedClock pins "now" so horizon math is deterministic.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
