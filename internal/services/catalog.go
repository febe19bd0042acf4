package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/lib/pq"
)

const (
	DefaultUpcomingLimit = 20
	MaxUpcomingLimit     = 100
	DefaultTotalSeats    = 40
)

// RouteInput is the admin payload for creating or patching a route. Nil
// fields are left untouched on update.
type RouteInput struct {
	RouteNumber   *string    `json:"routeNumber"`
	Source        *string    `json:"source"`
	Destination   *string    `json:"destination"`
	DepartureTime *time.Time `json:"departureTime"`
	ArrivalTime   *time.Time `json:"arrivalTime"`
	Price         *float64   `json:"price"`
	TotalSeats    *int       `json:"totalSeats"`
	Amenities     []string   `json:"amenities"`
}

// NewRouteInput is the admin payload for creating a route. Everything but
// totalSeats and amenities must be present.
type NewRouteInput struct {
	RouteNumber   string    `json:"routeNumber" binding:"required"`
	Source        string    `json:"source" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureTime time.Time `json:"departureTime" binding:"required"`
	ArrivalTime   time.Time `json:"arrivalTime" binding:"required"`
	Price         *float64  `json:"price" binding:"required"`
	TotalSeats    *int      `json:"totalSeats"`
	Amenities     []string  `json:"amenities"`
}

func (in NewRouteInput) RouteInput() RouteInput {
	return RouteInput{
		RouteNumber:   &in.RouteNumber,
		Source:        &in.Source,
		Destination:   &in.Destination,
		DepartureTime: &in.DepartureTime,
		ArrivalTime:   &in.ArrivalTime,
		Price:         in.Price,
		TotalSeats:    in.TotalSeats,
		Amenities:     in.Amenities,
	}
}

type RouteCatalog struct {
	routes       RouteStore
	availability *AvailabilityCalculator
	loc          *time.Location
	now          func() time.Time
}

func NewRouteCatalog(routes RouteStore, availability *AvailabilityCalculator, loc *time.Location) *RouteCatalog {
	if loc == nil {
		loc = time.UTC
	}
	return &RouteCatalog{routes: routes, availability: availability, loc: loc, now: time.Now}
}

// Search matches source and destination as case-insensitive substrings. An
// empty date lists every departure and skips availability.
func (c *RouteCatalog) Search(ctx context.Context, source, destination, date string) ([]models.RouteAvailability, error) {
	filter := repository.RouteFilter{
		Source:      strings.TrimSpace(source),
		Destination: strings.TrimSpace(destination),
	}

	var day *time.Time
	if strings.TrimSpace(date) != "" {
		parsed, err := utils.ParseDate(date, c.loc)
		if err != nil {
			return nil, apperrors.ValidationError{Field: "date", Msg: "Invalid date, expected YYYY-MM-DD", Err: err}
		}
		from, to := utils.DayWindow(parsed, c.loc)
		filter.DepartureFrom, filter.DepartureTo = &from, &to
		day = &parsed
	}

	routes, err := c.routes.ListRoutes(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to search routes", err)
	}
	return c.availability.Decorate(ctx, routes, day)
}

// Upcoming lists departures from now on, soonest first. A zero limit means
// DefaultUpcomingLimit. Availability is computed for today's window, not
// each route's departure day.
func (c *RouteCatalog) Upcoming(ctx context.Context, limit int) ([]models.RouteAvailability, error) {
	if limit == 0 {
		limit = DefaultUpcomingLimit
	}
	if limit < 1 || limit > MaxUpcomingLimit {
		return nil, apperrors.ValidationError{Field: "limit", Msg: fmt.Sprintf("limit must be between 1 and %d", MaxUpcomingLimit)}
	}

	now := c.now()
	routes, err := c.routes.ListRoutes(ctx, repository.RouteFilter{DepartureFrom: &now, Limit: limit})
	if err != nil {
		return nil, apperrors.Internal("failed to list upcoming routes", err)
	}
	return c.availability.Decorate(ctx, routes, &now)
}

func (c *RouteCatalog) Get(ctx context.Context, id uint) (*models.Route, error) {
	route, err := c.routes.FindRoute(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Route")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load route", err)
	}
	return route, nil
}

// BookedSeats validates the date before touching the store.
func (c *RouteCatalog) BookedSeats(ctx context.Context, routeID uint, date string) ([]int64, error) {
	if strings.TrimSpace(date) == "" {
		return nil, apperrors.ValidationError{Field: "date", Msg: "Please provide a travel date"}
	}
	day, err := utils.ParseDate(date, c.loc)
	if err != nil {
		return nil, apperrors.ValidationError{Field: "date", Msg: "Invalid date, expected YYYY-MM-DD", Err: err}
	}
	return c.availability.BookedSeats(ctx, routeID, day)
}

func (c *RouteCatalog) Create(ctx context.Context, in RouteInput) (*models.Route, error) {
	route := &models.Route{TotalSeats: DefaultTotalSeats, Amenities: pq.StringArray{}}
	in.apply(route)
	if err := validateRoute(route); err != nil {
		return nil, err
	}

	err := c.routes.CreateRoute(ctx, route)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.ConflictError{Msg: "Route number already exists", Err: err}
	}
	if err != nil {
		return nil, apperrors.Internal("failed to create route", err)
	}
	logging.FromContext(ctx).WithField("route_id", route.ID).Info("route created")
	return route, nil
}

// Update merges in over the stored route and re-validates the result.
func (c *RouteCatalog) Update(ctx context.Context, id uint, in RouteInput) (*models.Route, error) {
	route, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(route)
	if err := validateRoute(route); err != nil {
		return nil, err
	}

	err = c.routes.SaveRoute(ctx, route)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperrors.ConflictError{Msg: "Route number already exists", Err: err}
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("Route")
	case err != nil:
		return nil, apperrors.Internal("failed to update route", err)
	}
	return route, nil
}

func (c *RouteCatalog) Delete(ctx context.Context, id uint) error {
	err := c.routes.DeleteRoute(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Route")
	}
	if err != nil {
		return apperrors.Internal("failed to delete route", err)
	}
	logging.FromContext(ctx).WithField("route_id", id).Info("route deleted")
	return nil
}

func (in RouteInput) apply(r *models.Route) {
	if in.RouteNumber != nil {
		r.RouteNumber = strings.TrimSpace(*in.RouteNumber)
	}
	if in.Source != nil {
		r.Source = strings.TrimSpace(*in.Source)
	}
	if in.Destination != nil {
		r.Destination = strings.TrimSpace(*in.Destination)
	}
	if in.DepartureTime != nil {
		r.DepartureTime = *in.DepartureTime
	}
	if in.ArrivalTime != nil {
		r.ArrivalTime = *in.ArrivalTime
	}
	if in.Price != nil {
		r.Price = *in.Price
	}
	if in.TotalSeats != nil {
		r.TotalSeats = *in.TotalSeats
	}
	if in.Amenities != nil {
		r.Amenities = pq.StringArray(in.Amenities)
	}
}

func validateRoute(r *models.Route) error {
	switch {
	case r.RouteNumber == "" || r.Source == "" || r.Destination == "":
		return apperrors.Validation("Please provide routeNumber, source, destination, departureTime, arrivalTime and price")
	case r.DepartureTime.IsZero() || r.ArrivalTime.IsZero():
		return apperrors.Validation("Please provide routeNumber, source, destination, departureTime, arrivalTime and price")
	case !r.ArrivalTime.After(r.DepartureTime):
		return apperrors.ValidationError{Field: "arrivalTime", Msg: "Arrival time must be after departure time"}
	case r.Price < 0:
		return apperrors.ValidationError{Field: "price", Msg: "Price cannot be negative"}
	case r.TotalSeats < 1:
		return apperrors.ValidationError{Field: "totalSeats", Msg: "Total seats must be at least 1"}
	}
	return nil
}

// DayKey normalizes date to the YYYY-MM-DD of its day window, the form used
// in seat-map topics.
func (c *RouteCatalog) DayKey(date string) (string, error) {
	day, err := utils.ParseDate(date, c.loc)
	if err != nil {
		return "", apperrors.ValidationError{Field: "date", Msg: "Invalid date, expected YYYY-MM-DD", Err: err}
	}
	start, _ := utils.DayWindow(day, c.loc)
	return start.Format(time.DateOnly), nil
}
