// Package audit persists change events for bookings and rules. Recording is
// best-effort: a failed insert is logged and never surfaces to the caller.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Entity    string    `gorm:"column:entity;index" json:"entity"`
	EntityID  int64     `gorm:"column:entity_id;index" json:"entity_id"`
	Action    string    `gorm:"column:action" json:"action"`
	Detail    string    `gorm:"column:detail;type:text" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Event) TableName() string { return "audit_events" }

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(ctx context.Context, entity string, entityID int64, action, detail string) {
	ev := Event{
		ID:        uuid.NewString(),
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if tx := r.db.WithContext(ctx).Create(&ev); tx.Error != nil {
		log.Printf("audit: record failed entity=%s id=%d action=%s error=%v", entity, entityID, action, tx.Error)
	}
}

// List returns the latest events for one entity, newest first.
func (r *Recorder) List(ctx context.Context, entity string, entityID int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var events []Event
	tx := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events)
	return events, tx.Error
}
