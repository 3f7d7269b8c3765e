// Package permission decides who may book and who may manage. Rules are
// deliberately coarse: booking needs an active member against an active
// room, management needs a staff user of the organization.
package permission

import (
	"context"
	"errors"

	"roombook/internal/domain"

	"gorm.io/gorm"
)

type UserSource interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type RoomSource interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

type OrganizationSource interface {
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
}

type Checker struct {
	users UserSource
	rooms RoomSource
	orgs  OrganizationSource
}

func NewChecker(users UserSource, rooms RoomSource, orgs OrganizationSource) *Checker {
	return &Checker{users: users, rooms: rooms, orgs: orgs}
}

func (c *Checker) CanBook(ctx context.Context, userID, roomID int64) (bool, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return false, ignoreNotFound(err)
	}

	room, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	if !room.IsActive {
		return false, nil
	}

	org, err := c.orgs.GetByID(ctx, user.OrganizationID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return org.IsActive, nil
}

func (c *Checker) CanManage(ctx context.Context, userID, organizationID int64) (bool, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	if user.Role != domain.RoleStaff {
		return false, nil
	}
	return user.OrganizationID == organizationID, nil
}

// ignoreNotFound turns a missing row into a plain denial instead of an error.
func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
