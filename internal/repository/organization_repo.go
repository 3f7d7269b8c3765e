package repository

import (
	"context"
	"time"

	"roombook/internal/domain"

	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

type organizationModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	Name         string     `gorm:"column:name"`
	ContactEmail *string    `gorm:"column:contact_email"`
	IsActive     bool       `gorm:"column:is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
}

func (organizationModel) TableName() string { return "organizations" }

func toDomainOrganization(m organizationModel) *domain.Organization {
	var email string
	if m.ContactEmail != nil {
		email = *m.ContactEmail
	}
	return &domain.Organization{
		ID:           m.ID,
		Name:         m.Name,
		ContactEmail: email,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		DeletedAt:    m.DeletedAt,
	}
}

func (r *OrganizationRepository) Create(ctx context.Context, o *domain.Organization) error {
	m := organizationModel{
		Name:      o.Name,
		IsActive:  o.IsActive,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.ContactEmail != "" {
		v := o.ContactEmail
		m.ContactEmail = &v
	}
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	*o = *toDomainOrganization(m)
	return nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	var m organizationModel
	if tx := r.db.WithContext(ctx).Where("deleted_at IS NULL").First(&m, id); tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainOrganization(m), nil
}

type compensationModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	OrganizationID int64     `gorm:"column:organization_id;index"`
	Name           string    `gorm:"column:name"`
	HourlyRate     float64   `gorm:"column:hourly_rate"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (compensationModel) TableName() string { return "compensations" }

func (r *OrganizationRepository) GetCompensationByID(ctx context.Context, id int64) (*domain.Compensation, error) {
	var m compensationModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		return nil, tx.Error
	}
	return &domain.Compensation{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		HourlyRate:     m.HourlyRate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

func (r *OrganizationRepository) ListCompensations(ctx context.Context, organizationID int64) ([]domain.Compensation, error) {
	var models []compensationModel
	tx := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("id").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Compensation, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Compensation{
			ID:             m.ID,
			OrganizationID: m.OrganizationID,
			Name:           m.Name,
			HourlyRate:     m.HourlyRate,
			CreatedAt:      m.CreatedAt,
			UpdatedAt:      m.UpdatedAt,
		})
	}
	return out, nil
}

func (r *OrganizationRepository) CreateCompensation(ctx context.Context, c *domain.Compensation) error {
	m := compensationModel{
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		HourlyRate:     c.HourlyRate,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	c.ID = m.ID
	return nil
}
