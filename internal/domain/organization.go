package domain

import "time"

type Organization struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name" validate:"required"`
	ContactEmail string     `json:"contact_email,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`

	Users []User `json:"users,omitempty"`
}

// Compensation is an hourly rate an organization pays for room usage.
// Recurring bookings reference one to derive a per-occurrence amount.
type Compensation struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name" validate:"required"`
	HourlyRate     float64   `json:"hourly_rate" validate:"gte=0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
