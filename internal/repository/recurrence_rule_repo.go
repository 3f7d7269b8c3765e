package repository

import (
	"context"
	"time"

	"roombook/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RecurrenceRuleRepository struct {
	db *gorm.DB
}

func NewRecurrenceRuleRepository(db *gorm.DB) *RecurrenceRuleRepository {
	return &RecurrenceRuleRepository{db: db}
}

type recurrenceRuleModel struct {
	ID                  int64                       `gorm:"column:id;primaryKey"`
	Title               string                      `gorm:"column:title"`
	RuleString          string                      `gorm:"column:rule_string;type:text"`
	Timezone            string                      `gorm:"column:timezone"`
	Status              string                      `gorm:"column:status;index"`
	RoomID              int64                       `gorm:"column:room_id;index"`
	OrganizationID      int64                       `gorm:"column:organization_id;index"`
	UserID              int64                       `gorm:"column:user_id"`
	FirstDate           string                      `gorm:"column:first_date"`
	LastDate            *string                     `gorm:"column:last_date"`
	HorizonDate         *string                     `gorm:"column:horizon_date"`
	ExceptedDates       datatypes.JSONSlice[string] `gorm:"column:excepted_dates"`
	StartClock          string                      `gorm:"column:start_clock"`
	EndClock            string                      `gorm:"column:end_clock"`
	CompensationID      *int64                      `gorm:"column:compensation_id"`
	AmountPerOccurrence *float64                    `gorm:"column:amount_per_occurrence"`
	CreatedAt           time.Time                   `gorm:"column:created_at"`
	UpdatedAt           time.Time                   `gorm:"column:updated_at"`
	CancelledAt         *time.Time                  `gorm:"column:cancelled_at"`
	CancellationReason  *string                     `gorm:"column:cancellation_reason"`
}

func (recurrenceRuleModel) TableName() string { return "recurrence_rules" }

func toDomainRule(m recurrenceRuleModel) *domain.RecurrenceRule {
	var reason string
	if m.CancellationReason != nil {
		reason = *m.CancellationReason
	}

	return &domain.RecurrenceRule{
		ID:                  m.ID,
		Title:               m.Title,
		RuleString:          m.RuleString,
		Timezone:            m.Timezone,
		Status:              domain.RuleStatus(m.Status),
		RoomID:              m.RoomID,
		OrganizationID:      m.OrganizationID,
		UserID:              m.UserID,
		FirstDate:           m.FirstDate,
		LastDate:            m.LastDate,
		HorizonDate:         m.HorizonDate,
		ExceptedDates:       m.ExceptedDates,
		StartClock:          m.StartClock,
		EndClock:            m.EndClock,
		CompensationID:      m.CompensationID,
		AmountPerOccurrence: m.AmountPerOccurrence,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		CancelledAt:         m.CancelledAt,
		CancellationReason:  reason,
	}
}

func toRuleModel(r *domain.RecurrenceRule) recurrenceRuleModel {
	var reason *string
	if r.CancellationReason != "" {
		v := r.CancellationReason
		reason = &v
	}

	return recurrenceRuleModel{
		ID:                  r.ID,
		Title:               r.Title,
		RuleString:          r.RuleString,
		Timezone:            r.Timezone,
		Status:              string(r.Status),
		RoomID:              r.RoomID,
		OrganizationID:      r.OrganizationID,
		UserID:              r.UserID,
		FirstDate:           r.FirstDate,
		LastDate:            r.LastDate,
		HorizonDate:         r.HorizonDate,
		ExceptedDates:       r.ExceptedDates,
		StartClock:          r.StartClock,
		EndClock:            r.EndClock,
		CompensationID:      r.CompensationID,
		AmountPerOccurrence: r.AmountPerOccurrence,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
		CancelledAt:         r.CancelledAt,
		CancellationReason:  reason,
	}
}

func (r *RecurrenceRuleRepository) Create(ctx context.Context, rule *domain.RecurrenceRule) error {
	m := toRuleModel(rule)
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	*rule = *toDomainRule(m)
	return nil
}

func (r *RecurrenceRuleRepository) GetByID(ctx context.Context, id int64) (*domain.RecurrenceRule, error) {
	var m recurrenceRuleModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainRule(m), nil
}

// ListActive returns every rule that is not cancelled; the horizon job walks
// this set.
func (r *RecurrenceRuleRepository) ListActive(ctx context.Context) ([]domain.RecurrenceRule, error) {
	var ms []recurrenceRuleModel
	tx := r.db.WithContext(ctx).
		Where("status <> ?", string(domain.RuleCancelled)).
		Order("id").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.RecurrenceRule, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainRule(m))
	}
	return out, nil
}

func (r *RecurrenceRuleRepository) UpdateStatus(ctx context.Context, id int64, status domain.RuleStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&recurrenceRuleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RecurrenceRuleRepository) CancelWithReason(ctx context.Context, id int64, reason string) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&recurrenceRuleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":              string(domain.RuleCancelled),
			"cancellation_reason": reason,
			"cancelled_at":        now,
			"updated_at":          now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendExceptedDate records a skipped occurrence date on the rule. The read
// and write run in one transaction so two horizon runs cannot drop each
// other's append.
func (r *RecurrenceRuleRepository) AppendExceptedDate(ctx context.Context, id int64, date string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m recurrenceRuleModel
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		for _, d := range m.ExceptedDates {
			if d == date {
				return nil
			}
		}
		m.ExceptedDates = append(m.ExceptedDates, date)
		return tx.Model(&recurrenceRuleModel{}).
			Where("id = ?", id).
			Updates(map[string]any{"excepted_dates": m.ExceptedDates, "updated_at": time.Now().UTC()}).Error
	})
}

// SetHorizonDate advances the materialized horizon of a rule. The update is
// monotonic so an overlapping run cannot pull the horizon backwards.
func (r *RecurrenceRuleRepository) SetHorizonDate(ctx context.Context, id int64, date string) error {
	return r.db.WithContext(ctx).
		Model(&recurrenceRuleModel{}).
		Where("id = ? AND (horizon_date IS NULL OR horizon_date < ?)", id, date).
		Updates(map[string]any{"horizon_date": date, "updated_at": time.Now().UTC()}).Error
}

func (r *RecurrenceRuleRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&recurrenceRuleModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
