package services

import (
	"context"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/chachabrian/busbooking-backend/internal/services")

type RouteStore interface {
	FindRoute(ctx context.Context, id uint) (*models.Route, error)
	ListRoutes(ctx context.Context, f repository.RouteFilter) ([]models.Route, error)
	CreateRoute(ctx context.Context, route *models.Route) error
	SaveRoute(ctx context.Context, route *models.Route) error
	DeleteRoute(ctx context.Context, id uint) error
}

type BookingStore interface {
	ConfirmedBookings(ctx context.Context, routeIDs []uint, from, to time.Time) ([]models.Booking, error)
	ConflictingBookings(ctx context.Context, routeID uint, from, to time.Time, seats []int64) ([]models.Booking, error)
	CreateConfirmed(ctx context.Context, booking *models.Booking) error
	FindBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID uint) ([]models.Booking, error)
	Cancel(ctx context.Context, booking *models.Booking) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

// SeatPublisher fans seat changes out to live seat-map subscribers.
type SeatPublisher interface {
	PublishSeatUpdate(ctx context.Context, update SeatUpdate) error
}

// BookingNotifier is told about admitted and cancelled bookings.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, booking models.Booking)
	BookingCancelled(ctx context.Context, booking models.Booking)
}
