package database

import (
	"github.com/chachabrian/tripguard-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.TripCompanion{},
		&models.Feedback{},
	)
	if err != nil {
		return err
	}

	var statements []string
	if db.Dialector.Name() == "postgres" {
		// Allowed trip statuses
		statements = append(statements,
			`ALTER TABLE trips DROP CONSTRAINT IF EXISTS trips_status_check`,
			`ALTER TABLE trips ADD CONSTRAINT trips_status_check CHECK (status IN ('ongoing', 'completed'))`,
		)
	}
	statements = append(statements,
		// At most one ongoing trip per user
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_trips_one_ongoing_per_user ON trips (username) WHERE status = 'ongoing' AND deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_trip_companions_trip_user ON trip_companions (trip_id, username)`,
		`CREATE INDEX IF NOT EXISTS idx_trip_companions_active ON trip_companions (username) WHERE active`,
	)
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
