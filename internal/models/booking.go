package models

import (
	"time"

	"github.com/lib/pq"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	UserID      uint          `json:"userId" gorm:"not null;index:idx_bookings_user_date,priority:1"`
	RouteID     uint          `json:"routeId" gorm:"not null;index:idx_bookings_route_day,priority:1"`
	Route       *Route        `json:"-" gorm:"foreignKey:RouteID"`
	SeatNumbers pq.Int64Array `json:"seatNumbers" gorm:"type:integer[];not null"`
	BookingDate time.Time     `json:"bookingDate" gorm:"not null;index:idx_bookings_user_date,priority:2,sort:desc"`
	TravelDate  time.Time     `json:"travelDate" gorm:"not null;index:idx_bookings_route_day,priority:2"`
	TotalAmount float64       `json:"totalAmount" gorm:"not null;check:total_amount >= 0"`
	Status      BookingStatus `json:"status" gorm:"not null;default:'CONFIRMED'"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

func (b Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingView is a booking joined with its route projection.
type BookingView struct {
	Booking
	Route *RouteSummary `json:"route,omitempty"`
}

func (b Booking) View() BookingView {
	v := BookingView{Booking: b}
	if b.Route != nil {
		s := b.Route.Summary()
		v.Route = &s
	}
	return v
}

// SeatReservation holds one seat of a confirmed booking. The unique index
// over (route, day, seat) rejects a second confirmed claim on the same seat.
type SeatReservation struct {
	ID         uint      `gorm:"primaryKey"`
	BookingID  uint      `gorm:"not null;index"`
	RouteID    uint      `gorm:"not null;uniqueIndex:idx_seat_reservations_route_day_seat,priority:1"`
	TravelDate time.Time `gorm:"not null;uniqueIndex:idx_seat_reservations_route_day_seat,priority:2"`
	SeatNumber int64     `gorm:"not null;uniqueIndex:idx_seat_reservations_route_day_seat,priority:3"`
	CreatedAt  time.Time
}

// TableName specifies the table name
func (SeatReservation) TableName() string {
	return "seat_reservations"
}
