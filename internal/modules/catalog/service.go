package catalog

import (
	"context"
	"errors"

	"roombook/internal/domain"
	"roombook/internal/pkg/validator"
)

var (
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	ListActive(ctx context.Context) ([]domain.Room, error)
}

type OrganizationStore interface {
	Create(ctx context.Context, o *domain.Organization) error
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
	ListCompensations(ctx context.Context, organizationID int64) ([]domain.Compensation, error)
	CreateCompensation(ctx context.Context, c *domain.Compensation) error
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service exposes the room and organization catalog. Reads are public;
// mutations require a staff user.
type Service struct {
	rooms RoomStore
	orgs  OrganizationStore
	users UserStore
}

func NewService(rooms RoomStore, orgs OrganizationStore, users UserStore) *Service {
	return &Service{rooms: rooms, orgs: orgs, users: users}
}

func (s *Service) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.ListActive(ctx)
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *Service) CreateRoom(ctx context.Context, actorID int64, req CreateRoomRequest) (*domain.Room, error) {
	if err := s.requireStaff(ctx, actorID); err != nil {
		return nil, err
	}

	room := &domain.Room{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
		IsActive:    true,
	}
	if errs := validator.Validate(room); errs != nil {
		return nil, errs
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) GetOrganization(ctx context.Context, id int64) (*domain.Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

func (s *Service) CreateOrganization(ctx context.Context, actorID int64, req CreateOrganizationRequest) (*domain.Organization, error) {
	if err := s.requireStaff(ctx, actorID); err != nil {
		return nil, err
	}

	org := &domain.Organization{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
	}
	if errs := validator.Validate(org); errs != nil {
		return nil, errs
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) ListCompensations(ctx context.Context, organizationID int64) ([]domain.Compensation, error) {
	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.orgs.ListCompensations(ctx, organizationID)
}

func (s *Service) CreateCompensation(ctx context.Context, actorID, organizationID int64, req CreateCompensationRequest) (*domain.Compensation, error) {
	if err := s.requireStaff(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		return nil, err
	}

	comp := &domain.Compensation{
		OrganizationID: organizationID,
		Name:           req.Name,
		HourlyRate:     req.HourlyRate,
	}
	if errs := validator.Validate(comp); errs != nil {
		return nil, errs
	}
	if err := s.orgs.CreateCompensation(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

func (s *Service) requireStaff(ctx context.Context, actorID int64) error {
	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return ErrForbidden
	}
	if user.Role != domain.RoleStaff {
		return ErrForbidden
	}
	return nil
}
