package repository

import (
	"time"

	"roombook/internal/domain"

	"gorm.io/gorm"
)

// BookingFilter holds the explicit filter dimensions callers may compose.
// Each dimension is a typed scope; there is no dynamic filtering.
type BookingFilter struct {
	OrganizationID *int64
	RuleID         *int64
	Status         *domain.BookingStatus
	From           *time.Time
	To             *time.Time
	Recurring      *bool
}

func (f BookingFilter) Scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.OrganizationID != nil {
		scopes = append(scopes, ByOrganization(*f.OrganizationID))
	}
	if f.RuleID != nil {
		scopes = append(scopes, ByRule(*f.RuleID))
	}
	if f.Status != nil {
		scopes = append(scopes, ByStatus(*f.Status))
	}
	if f.From != nil || f.To != nil {
		scopes = append(scopes, ByDateRange(f.From, f.To))
	}
	if f.Recurring != nil {
		if *f.Recurring {
			scopes = append(scopes, RecurringOnly())
		} else {
			scopes = append(scopes, OneOffOnly())
		}
	}
	return scopes
}

func ByOrganization(orgID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", orgID)
	}
}

func ByRule(ruleID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("recurrence_rule_id = ?", ruleID)
	}
}

func ByStatus(status domain.BookingStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", string(status))
	}
}

// ByDateRange keeps bookings whose half-open timespan intersects [from, to).
func ByDateRange(from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("end_time > ?", *from)
		}
		if to != nil {
			db = db.Where("start_time < ?", *to)
		}
		return db
	}
}

func RecurringOnly() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("recurrence_rule_id IS NOT NULL")
	}
}

func OneOffOnly() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("recurrence_rule_id IS NULL")
	}
}
