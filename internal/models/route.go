package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Route struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	RouteNumber   string         `json:"routeNumber" gorm:"not null;uniqueIndex"`
	Source        string         `json:"source" gorm:"not null;index:idx_routes_search,priority:1"`
	Destination   string         `json:"destination" gorm:"not null;index:idx_routes_search,priority:2"`
	DepartureTime time.Time      `json:"departureTime" gorm:"not null;index:idx_routes_search,priority:3"`
	ArrivalTime   time.Time      `json:"arrivalTime" gorm:"not null"`
	Price         float64        `json:"price" gorm:"not null;check:price >= 0"`
	TotalSeats    int            `json:"totalSeats" gorm:"not null;default:40;check:total_seats >= 1"`
	Amenities     pq.StringArray `json:"amenities" gorm:"type:text[];not null;default:'{}'"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Route) TableName() string {
	return "routes"
}

// Summary is the read-only projection embedded in booking responses.
func (r Route) Summary() RouteSummary {
	return RouteSummary{
		ID:            r.ID,
		RouteNumber:   r.RouteNumber,
		Source:        r.Source,
		Destination:   r.Destination,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Price:         r.Price,
	}
}

type RouteSummary struct {
	ID            uint      `json:"id"`
	RouteNumber   string    `json:"routeNumber"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	Price         float64   `json:"price"`
}

// RouteAvailability is a route decorated with seat counts for a travel day.
// The counts are nil when no travel date was requested.
type RouteAvailability struct {
	Route
	AvailableSeats   *int `json:"availableSeats,omitempty"`
	BookedSeatsCount *int `json:"bookedSeatsCount,omitempty"`
}
