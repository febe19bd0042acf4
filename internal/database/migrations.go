package database

import (
	"github.com/chachabrian/busbooking-backend/internal/models"
	"gorm.io/gorm"
)

// constraints are applied after AutoMigrate; each pair drops then re-adds so
// reruns stay idempotent.
var constraints = []string{
	`ALTER TABLE routes DROP CONSTRAINT IF EXISTS routes_arrival_after_departure`,
	`ALTER TABLE routes ADD CONSTRAINT routes_arrival_after_departure CHECK (arrival_time > departure_time)`,
	`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`,
	`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('CONFIRMED', 'CANCELLED'))`,
	`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`,
	`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'admin'))`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_seat_numbers ON bookings USING GIN (seat_numbers)`,
}

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Route{},
		&models.Booking{},
		&models.SeatReservation{},
	)
	if err != nil {
		return err
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
