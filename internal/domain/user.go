package domain

import "time"

type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
)

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email" validate:"required,email"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	OrganizationID int64     `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
