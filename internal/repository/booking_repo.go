package repository

import (
	"context"
	"errors"
	"time"

	"roombook/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	Title              string     `gorm:"column:title"`
	RoomID             int64      `gorm:"column:room_id;index"`
	OrganizationID     int64      `gorm:"column:organization_id;index"`
	UserID             int64      `gorm:"column:user_id"`
	StartTime          time.Time  `gorm:"column:start_time;index"`
	EndTime            time.Time  `gorm:"column:end_time"`
	Status             string     `gorm:"column:status;index"`
	RecurrenceRuleID   *int64     `gorm:"column:recurrence_rule_id;index"`
	Amount             *float64   `gorm:"column:amount"`
	StartDate          string     `gorm:"column:start_date"`
	StartClock         string     `gorm:"column:start_clock"`
	EndClock           string     `gorm:"column:end_clock"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var reason string
	if m.CancellationReason != nil {
		reason = *m.CancellationReason
	}

	return &domain.Booking{
		ID:                 m.ID,
		Title:              m.Title,
		RoomID:             m.RoomID,
		OrganizationID:     m.OrganizationID,
		UserID:             m.UserID,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		Status:             domain.BookingStatus(m.Status),
		RecurrenceRuleID:   m.RecurrenceRuleID,
		Amount:             m.Amount,
		StartDate:          m.StartDate,
		StartClock:         m.StartClock,
		EndClock:           m.EndClock,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		CancelledAt:        m.CancelledAt,
		CancellationReason: reason,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var reason *string
	if b.CancellationReason != "" {
		v := b.CancellationReason
		reason = &v
	}

	return bookingModel{
		ID:                 b.ID,
		Title:              b.Title,
		RoomID:             b.RoomID,
		OrganizationID:     b.OrganizationID,
		UserID:             b.UserID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		RecurrenceRuleID:   b.RecurrenceRuleID,
		Amount:             b.Amount,
		StartDate:          b.StartDate,
		StartClock:         b.StartClock,
		EndClock:           b.EndClock,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		CancelledAt:        b.CancelledAt,
		CancellationReason: reason,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if tx := r.db.WithContext(ctx).Create(&m); tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

// CreateBatch inserts all bookings in one transaction; either all of them
// land or none do.
func (r *BookingRepository) CreateBatch(ctx context.Context, bs []*domain.Booking) error {
	if len(bs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range bs {
			m := toBookingModel(b)
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			*b = *toDomainBooking(m)
		}
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, tx.Error
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// IsBooked reports whether a confirmed booking for the room overlaps the
// half-open interval [start, end). Touching endpoints do not overlap.
func (r *BookingRepository) IsBooked(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM bookings
WHERE room_id = ?
  AND status = 'confirmed'
  AND start_time < ?
  AND end_time > ?
`
	if tx := r.db.WithContext(ctx).Raw(q, roomID, end, start).Scan(&cnt); tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// ExistsForRuleSlot reports whether any booking (whatever its status) already
// occupies the exact timespan for this rule and room. The horizon job uses it
// to stay idempotent across overlapping runs.
func (r *BookingRepository) ExistsForRuleSlot(ctx context.Context, ruleID, roomID int64, start, end time.Time) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("recurrence_rule_id = ? AND room_id = ? AND start_time = ? AND end_time = ?",
			ruleID, roomID, start, end).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

type BusySlot struct {
	Start time.Time `json:"start" gorm:"column:start_time"`
	End   time.Time `json:"end" gorm:"column:end_time"`
}

func (r *BookingRepository) BusySlots(ctx context.Context, roomID int64, from, to time.Time) ([]BusySlot, error) {
	var out []BusySlot
	q := `
SELECT start_time, end_time
FROM bookings
WHERE room_id = ?
  AND status = 'confirmed'
  AND start_time < ?
  AND end_time > ?
ORDER BY start_time
`
	if tx := r.db.WithContext(ctx).Raw(q, roomID, to, from).Scan(&out); tx.Error != nil {
		return nil, tx.Error
	}
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
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

func (r *BookingRepository) CancelWithReason(ctx context.Context, id int64, reason string) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":              string(domain.BookingCancelled),
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

// UpdateStatusByRule moves every booking of a rule from one status to
// another; used by confirm/cancel cascades. Returns the number of rows moved.
func (r *BookingRepository) UpdateStatusByRule(ctx context.Context, ruleID int64, from, to domain.BookingStatus) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("recurrence_rule_id = ? AND status = ?", ruleID, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now().UTC()})
	return tx.RowsAffected, tx.Error
}

// DecoupleFromRule detaches all bookings of a rule, turning them into
// standalone bookings. Only ever called explicitly before a rule delete.
func (r *BookingRepository) DecoupleFromRule(ctx context.Context, ruleID int64) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("recurrence_rule_id = ?", ruleID).
		Updates(map[string]any{"recurrence_rule_id": nil, "updated_at": time.Now().UTC()})
	return tx.RowsAffected, tx.Error
}

// MaxStartDateForRule returns the furthest materialized local date for a
// rule (the rule's horizon), or "" when nothing is materialized yet.
func (r *BookingRepository) MaxStartDateForRule(ctx context.Context, ruleID int64) (string, error) {
	var out *string
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Select("MAX(start_date)").
		Where("recurrence_rule_id = ?", ruleID).
		Scan(&out)
	if tx.Error != nil {
		return "", tx.Error
	}
	if out == nil {
		return "", nil
	}
	return *out, nil
}

// SumAmountByRule derives a rule's total amount from its bookings; the total
// is never stored.
func (r *BookingRepository) SumAmountByRule(ctx context.Context, ruleID int64) (float64, error) {
	var out *float64
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Select("SUM(amount)").
		Where("recurrence_rule_id = ? AND status <> ?", ruleID, string(domain.BookingCancelled)).
		Scan(&out)
	if tx.Error != nil {
		return 0, tx.Error
	}
	if out == nil {
		return 0, nil
	}
	return *out, nil
}

// List applies the caller-composed filter scopes.
func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).Scopes(f.Scopes()...).Order("start_time").Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
