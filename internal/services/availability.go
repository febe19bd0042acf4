package services

import (
	"context"
	"sort"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AvailabilityCalculator derives seat counts from live booking state. It
// never writes, so cancelled bookings stop counting as soon as they flip.
type AvailabilityCalculator struct {
	bookings BookingStore
	loc      *time.Location
}

func NewAvailabilityCalculator(bookings BookingStore, loc *time.Location) *AvailabilityCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityCalculator{bookings: bookings, loc: loc}
}

// Decorate attaches availableSeats and bookedSeatsCount for the day of date.
// With a nil date the routes come back without availability fields.
func (a *AvailabilityCalculator) Decorate(ctx context.Context, routes []models.Route, date *time.Time) ([]models.RouteAvailability, error) {
	out := make([]models.RouteAvailability, len(routes))
	for i, r := range routes {
		out[i] = models.RouteAvailability{Route: r}
	}
	if date == nil || len(routes) == 0 {
		return out, nil
	}

	ctx, span := tracer.Start(ctx, "availability.decorate")
	defer span.End()
	span.SetAttributes(attribute.Int("routes.count", len(routes)))

	from, to := utils.DayWindow(*date, a.loc)
	ids := make([]uint, len(routes))
	for i, r := range routes {
		ids[i] = r.ID
	}

	bookings, err := a.bookings.ConfirmedBookings(ctx, ids, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirmed bookings query failed")
		return nil, apperrors.Internal("failed to load bookings", err)
	}

	booked := make(map[uint]int, len(routes))
	for _, b := range bookings {
		booked[b.RouteID] += len(b.SeatNumbers)
	}

	for i := range out {
		count := booked[out[i].ID]
		available := max(0, out[i].TotalSeats-count)
		out[i].BookedSeatsCount = &count
		out[i].AvailableSeats = &available
	}
	return out, nil
}

// BookedSeats returns the distinct seats held by confirmed bookings on the
// route for the day of date, ascending.
func (a *AvailabilityCalculator) BookedSeats(ctx context.Context, routeID uint, date time.Time) ([]int64, error) {
	from, to := utils.DayWindow(date, a.loc)
	bookings, err := a.bookings.ConfirmedBookings(ctx, []uint{routeID}, from, to)
	if err != nil {
		return nil, apperrors.Internal("failed to load bookings", err)
	}

	seen := make(map[int64]struct{})
	seats := make([]int64, 0)
	for _, b := range bookings {
		for _, seat := range b.SeatNumbers {
			if _, dup := seen[seat]; dup {
				continue
			}
			seen[seat] = struct{}{}
			seats = append(seats, seat)
		}
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i] < seats[j] })
	return seats, nil
}
