package database

import (
	"log"
	"strings"

	"roombook/internal/audit"
	"roombook/internal/repository"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// registers the pure-Go "sqlite" driver used for local development
	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates the schema. On PostgreSQL it additionally installs the
// exclusion constraint that makes overlapping confirmed bookings for one room
// impossible at the storage layer; application-level conflict checks are
// advisory only.
func Migrate(db *gorm.DB) error {
	models := append(repository.Models(), &audit.Event{})
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		// sqlite has no range types; a partial unique index on the slot start
		// catches exact double-bookings, the application-level overlap check
		// covers the rest.
		return db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_confirmed_slot
  ON bookings (room_id, start_time) WHERE status = 'confirmed'
`).Error
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}

	return db.Exec(`
DO $$ BEGIN
  ALTER TABLE bookings
    ADD CONSTRAINT bookings_no_overlap
    EXCLUDE USING gist (
      room_id WITH =,
      tstzrange(start_time, end_time, '[)') WITH &&
    ) WHERE (status = 'confirmed');
EXCEPTION WHEN duplicate_object OR duplicate_table THEN NULL;
END $$
`).Error
}
