package domain

import (
	"time"

	"gorm.io/datatypes"
)

type RuleStatus string

const (
	RulePending   RuleStatus = "pending"
	RuleConfirmed RuleStatus = "confirmed"
	RuleCancelled RuleStatus = "cancelled"
)

// RecurrenceRule is a persisted recurring booking request. RuleString holds
// the canonical DTSTART/RRULE form and is never mutated after creation; the
// horizon job only appends to ExceptedDates and advances HorizonDate as it
// materializes further out. LastDate stays the pattern's own bound.
type RecurrenceRule struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title" validate:"required"`
	RuleString string     `json:"rule_string" gorm:"type:text"`
	Timezone   string     `json:"timezone"`
	Status     RuleStatus `json:"status"`

	RoomID         int64 `json:"room_id" validate:"required"`
	OrganizationID int64 `json:"organization_id" validate:"required"`
	UserID         int64 `json:"user_id" validate:"required"`

	// FirstDate/LastDate are local calendar dates ("2006-01-02").
	// LastDate nil means the rule is unbounded. HorizonDate is the furthest
	// date for which bookings are already materialized; the horizon job
	// advances it.
	FirstDate     string                      `json:"first_date"`
	LastDate      *string                     `json:"last_date,omitempty"`
	HorizonDate   *string                     `json:"horizon_date,omitempty"`
	ExceptedDates datatypes.JSONSlice[string] `json:"excepted_dates"`

	StartClock string `json:"start_clock"`
	EndClock   string `json:"end_clock"`

	CompensationID      *int64   `json:"compensation_id,omitempty"`
	AmountPerOccurrence *float64 `json:"amount_per_occurrence,omitempty"`

	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// IsExcepted reports whether the given local date was skipped for this rule.
func (r *RecurrenceRule) IsExcepted(date string) bool {
	for _, d := range r.ExceptedDates {
		if d == date {
			return true
		}
	}
	return false
}
