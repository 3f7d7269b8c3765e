package booking

import (
	"context"
	"time"

	"roombook/internal/domain"
	"roombook/internal/repository"
)

// BookingRepository is the persistence port for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	CreateBatch(ctx context.Context, bs []*domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	IsBooked(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
	BusySlots(ctx context.Context, roomID int64, from, to time.Time) ([]repository.BusySlot, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	CancelWithReason(ctx context.Context, id int64, reason string) error
	UpdateStatusByRule(ctx context.Context, ruleID int64, from, to domain.BookingStatus) (int64, error)
	DecoupleFromRule(ctx context.Context, ruleID int64) (int64, error)
	SumAmountByRule(ctx context.Context, ruleID int64) (float64, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
}

// RuleRepository is the persistence port for recurrence rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.RecurrenceRule) error
	GetByID(ctx context.Context, id int64) (*domain.RecurrenceRule, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RuleStatus) error
	CancelWithReason(ctx context.Context, id int64, reason string) error
	SetHorizonDate(ctx context.Context, id int64, date string) error
	Delete(ctx context.Context, id int64) error
}

// RoomRepository resolves rooms referenced by requests.
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// OrganizationRepository resolves organizations and compensations.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
	GetCompensationByID(ctx context.Context, id int64) (*domain.Compensation, error)
}

// ConflictChecker is the slice of the booking repository the materializer
// needs; conflict checks are pure reads.
type ConflictChecker interface {
	IsBooked(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
}

// PermissionChecker is the external permission oracle.
type PermissionChecker interface {
	CanBook(ctx context.Context, userID, roomID int64) (bool, error)
	CanManage(ctx context.Context, userID, organizationID int64) (bool, error)
}

// NotificationSender dispatches fire-and-forget notifications; failures are
// the sender's problem and never roll back a state transition.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, b *domain.Booking) error
	NotifyBookingConfirmed(ctx context.Context, b *domain.Booking) error
	NotifyBookingCancelled(ctx context.Context, b *domain.Booking, reason string) error
	NotifyRecurringRequested(ctx context.Context, rule *domain.RecurrenceRule) error
	NotifyRecurringConfirmed(ctx context.Context, rule *domain.RecurrenceRule) error
	NotifyRecurringCancelled(ctx context.Context, rule *domain.RecurrenceRule, reason string) error
}

// AuditRecorder is the explicit change-event hook invoked by mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entity string, entityID int64, action, detail string)
}

// Clock abstracts time.Now for testability.
type Clock func() time.Time
