package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists routes, bookings, seat reservations and users in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	if db == nil {
		panic("db is nil")
	}
	return &GormStore{db: db}
}

func (s *GormStore) FindRoute(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	if err := s.db.WithContext(ctx).First(&route, id).Error; err != nil {
		return nil, translate(err)
	}
	return &route, nil
}

func (s *GormStore) ListRoutes(ctx context.Context, f RouteFilter) ([]models.Route, error) {
	q := s.db.WithContext(ctx).Model(&models.Route{})
	if f.Source != "" {
		q = q.Where(`source ILIKE ? ESCAPE '\'`, containsPattern(f.Source))
	}
	if f.Destination != "" {
		q = q.Where(`destination ILIKE ? ESCAPE '\'`, containsPattern(f.Destination))
	}
	if f.DepartureFrom != nil {
		q = q.Where("departure_time >= ?", *f.DepartureFrom)
	}
	if f.DepartureTo != nil {
		q = q.Where("departure_time <= ?", *f.DepartureTo)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var routes []models.Route
	if err := q.Order("departure_time ASC").Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

func (s *GormStore) CreateRoute(ctx context.Context, route *models.Route) error {
	if err := s.db.WithContext(ctx).Create(route).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) SaveRoute(ctx context.Context, route *models.Route) error {
	if err := s.db.WithContext(ctx).Save(route).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) DeleteRoute(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Route{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete route: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ConfirmedBookings(ctx context.Context, routeIDs []uint, from, to time.Time) ([]models.Booking, error) {
	if len(routeIDs) == 0 {
		return nil, nil
	}
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("route_id IN ? AND travel_date BETWEEN ? AND ? AND status = ?",
			routeIDs, from, to, models.BookingStatusConfirmed).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("confirmed bookings: %w", err)
	}
	return bookings, nil
}

// ConflictingBookings returns confirmed bookings of the route inside the
// window whose seat lists overlap seats.
func (s *GormStore) ConflictingBookings(ctx context.Context, routeID uint, from, to time.Time, seats []int64) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("route_id = ? AND travel_date BETWEEN ? AND ? AND status = ? AND seat_numbers && ?::integer[]",
			routeID, from, to, models.BookingStatusConfirmed, pq.Int64Array(seats)).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("conflicting bookings: %w", err)
	}
	return bookings, nil
}

// CreateConfirmed inserts the booking and one reservation per seat in a
// single transaction. A unique violation on the reservations yields ErrSeatTaken.
func (s *GormStore) CreateConfirmed(ctx context.Context, booking *models.Booking) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(booking).Error; err != nil {
			return err
		}
		reservations := make([]models.SeatReservation, 0, len(booking.SeatNumbers))
		for _, seat := range booking.SeatNumbers {
			reservations = append(reservations, models.SeatReservation{
				BookingID:  booking.ID,
				RouteID:    booking.RouteID,
				TravelDate: booking.TravelDate,
				SeatNumber: seat,
			})
		}
		return tx.Create(&reservations).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSeatTaken
	}
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (s *GormStore) FindBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Route", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		First(&booking, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (s *GormStore) ListUserBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Route", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Order("booking_date DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Cancel flips a confirmed booking to CANCELLED and releases its seats.
// The status guard in the UPDATE makes concurrent cancellations safe.
func (s *GormStore) Cancel(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingStatusConfirmed).
			Updates(map[string]interface{}{"status": models.BookingStatusCancelled, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCancelled
		}
		return tx.Where("booking_id = ?", booking.ID).Delete(&models.SeatReservation{}).Error
	})
	if errors.Is(err, ErrAlreadyCancelled) {
		return err
	}
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	booking.Status = models.BookingStatusCancelled
	booking.UpdatedAt = now
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
