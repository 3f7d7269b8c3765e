package repository

import (
	"context"
	"time"

	"roombook/internal/domain"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	Location    *string   `gorm:"column:location"`
	Capacity    int       `gorm:"column:capacity"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func toDomainRoom(m roomModel) *domain.Room {
	var desc, loc string
	if m.Description != nil {
		desc = *m.Description
	}
	if m.Location != nil {
		loc = *m.Location
	}
	return &domain.Room{
		ID:          m.ID,
		Name:        m.Name,
		Description: desc,
		Location:    loc,
		Capacity:    m.Capacity,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toRoomModel(r *domain.Room) roomModel {
	m := roomModel{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Description != "" {
		v := r.Description
		m.Description = &v
	}
	if r.Location != "" {
		v := r.Location
		m.Location = &v
	}
	return m
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) ListActive(ctx context.Context) ([]domain.Room, error) {
	var ms []roomModel
	if tx := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&ms); tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Room, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainRoom(m))
	}
	return out, nil
}
