package domain

import "time"

type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingUnavailable BookingStatus = "unavailable"
)

// Booking is one concrete occurrence of room usage. StartTime/EndTime form a
// half-open interval [StartTime, EndTime) in UTC. StartDate, StartClock and
// EndClock are kept redundant in the requester's local calendar so displays
// never re-derive them across timezones.
type Booking struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title" validate:"required"`
	RoomID           int64         `json:"room_id" validate:"required"`
	OrganizationID   int64         `json:"organization_id" validate:"required"`
	UserID           int64         `json:"user_id" validate:"required"`
	StartTime        time.Time     `json:"start_time" validate:"required"`
	EndTime          time.Time     `json:"end_time" validate:"required"`
	Status           BookingStatus `json:"status"`
	RecurrenceRuleID *int64        `json:"recurrence_rule_id,omitempty"`
	Amount           *float64      `json:"amount,omitempty"`

	StartDate  string `json:"start_date"`
	StartClock string `json:"start_clock"`
	EndClock   string `json:"end_clock"`

	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// IsRecurring reports whether the booking was materialized from a rule.
func (b *Booking) IsRecurring() bool { return b.RecurrenceRuleID != nil }
