package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type BookingRequest struct {
	RouteID     uint    `json:"routeId"`
	SeatNumbers []int64 `json:"seatNumbers"`
	TravelDate  string  `json:"travelDate"`
}

// BookingAdmission validates and reserves seats, and owns the booking
// lifecycle (lookup, listing, cancellation) for the requesting user.
type BookingAdmission struct {
	routes   RouteStore
	bookings BookingStore
	loc      *time.Location
	now      func() time.Time
	seats    SeatPublisher
	notifier BookingNotifier
}

type AdmissionOption func(*BookingAdmission)

func WithSeatPublisher(p SeatPublisher) AdmissionOption {
	return func(a *BookingAdmission) { a.seats = p }
}

func WithNotifier(n BookingNotifier) AdmissionOption {
	return func(a *BookingAdmission) { a.notifier = n }
}

func WithClock(now func() time.Time) AdmissionOption {
	return func(a *BookingAdmission) { a.now = now }
}

func NewBookingAdmission(routes RouteStore, bookings BookingStore, loc *time.Location, opts ...AdmissionOption) *BookingAdmission {
	if loc == nil {
		loc = time.UTC
	}
	a := &BookingAdmission{routes: routes, bookings: bookings, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Admit runs the validation sequence, first violation wins, and on success
// writes the booking together with its seat reservations.
func (a *BookingAdmission) Admit(ctx context.Context, userID uint, req BookingRequest) (*models.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.admit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("route.id", int64(req.RouteID)),
		attribute.Int("seats.count", len(req.SeatNumbers)),
	)

	booking, err := a.admit(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return booking, nil
}

func (a *BookingAdmission) admit(ctx context.Context, userID uint, req BookingRequest) (*models.Booking, error) {
	if req.RouteID == 0 || len(req.SeatNumbers) == 0 || strings.TrimSpace(req.TravelDate) == "" {
		return nil, apperrors.Validation("Please provide routeId, seatNumbers array, and travelDate")
	}
	travelDate, err := utils.ParseDate(req.TravelDate, a.loc)
	if err != nil {
		return nil, apperrors.ValidationError{Field: "travelDate", Msg: "Invalid travelDate, expected YYYY-MM-DD or RFC3339", Err: err}
	}

	route, err := a.routes.FindRoute(ctx, req.RouteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Route")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load route", err)
	}

	for _, seat := range req.SeatNumbers {
		if seat < 1 || seat > int64(route.TotalSeats) {
			return nil, apperrors.Conflict(fmt.Sprintf("Seat numbers must be between 1 and %d", route.TotalSeats))
		}
	}
	if hasDuplicates(req.SeatNumbers) {
		return nil, apperrors.Conflict("Duplicate seat numbers selected")
	}

	from, to := utils.DayWindow(travelDate, a.loc)
	if err := a.checkConflicts(ctx, route.ID, from, to, req.SeatNumbers); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:      userID,
		RouteID:     route.ID,
		SeatNumbers: pq.Int64Array(append([]int64(nil), req.SeatNumbers...)),
		BookingDate: a.now(),
		TravelDate:  from,
		TotalAmount: route.Price * float64(len(req.SeatNumbers)),
		Status:      models.BookingStatusConfirmed,
	}
	err = a.bookings.CreateConfirmed(ctx, booking)
	if errors.Is(err, repository.ErrSeatTaken) {
		// Lost a race after the pre-check; name whoever won.
		if cerr := a.checkConflicts(ctx, route.ID, from, to, req.SeatNumbers); cerr != nil {
			return nil, cerr
		}
		return nil, apperrors.ConflictError{Msg: "Selected seats are no longer available", Err: err}
	}
	if err != nil {
		return nil, apperrors.Internal("failed to create booking", err)
	}
	booking.Route = route

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"booking_id": booking.ID,
		"route_id":   route.ID,
		"seats":      len(booking.SeatNumbers),
	}).Info("booking confirmed")

	a.publish(ctx, *booking, SeatStatusBooked)
	if a.notifier != nil {
		go a.notifier.BookingConfirmed(context.WithoutCancel(ctx), *booking)
	}
	return booking, nil
}

// checkConflicts returns a ConflictError naming the requested seats already
// held by confirmed bookings in the window, in request order.
func (a *BookingAdmission) checkConflicts(ctx context.Context, routeID uint, from, to time.Time, seats []int64) error {
	existing, err := a.bookings.ConflictingBookings(ctx, routeID, from, to, seats)
	if err != nil {
		return apperrors.Internal("failed to check seat availability", err)
	}
	if len(existing) == 0 {
		return nil
	}

	taken := make(map[int64]struct{})
	for _, b := range existing {
		for _, seat := range b.SeatNumbers {
			taken[seat] = struct{}{}
		}
	}
	var conflicting []int64
	for _, seat := range seats {
		if _, ok := taken[seat]; ok {
			conflicting = append(conflicting, seat)
		}
	}
	return apperrors.ConflictError{
		Msg:   fmt.Sprintf("Seats %s are already booked", joinSeats(conflicting)),
		Seats: conflicting,
	}
}

func (a *BookingAdmission) Get(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	booking, err := a.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, apperrors.Forbidden("Not authorized to access this booking")
	}
	return booking, nil
}

// ListForUser returns the caller's bookings, newest first.
func (a *BookingAdmission) ListForUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	bookings, err := a.bookings.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

// Cancel moves a confirmed booking owned by userID to CANCELLED. Availability
// needs no adjustment: it is recomputed from bookings on every read.
func (a *BookingAdmission) Cancel(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	booking, err := a.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, apperrors.Forbidden("Not authorized to cancel this booking")
	}
	if booking.IsCancelled() {
		return nil, apperrors.Conflict("Booking is already cancelled")
	}

	err = a.bookings.Cancel(ctx, booking)
	if errors.Is(err, repository.ErrAlreadyCancelled) {
		return nil, apperrors.Conflict("Booking is already cancelled")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to cancel booking", err)
	}

	logging.FromContext(ctx).WithField("booking_id", booking.ID).Info("booking cancelled")
	a.publish(ctx, *booking, SeatStatusReleased)
	if a.notifier != nil {
		go a.notifier.BookingCancelled(context.WithoutCancel(ctx), *booking)
	}
	return booking, nil
}

func (a *BookingAdmission) find(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := a.bookings.FindBooking(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Booking")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load booking", err)
	}
	return booking, nil
}

func (a *BookingAdmission) publish(ctx context.Context, b models.Booking, status string) {
	if a.seats == nil {
		return
	}
	update := SeatUpdate{
		RouteID:    b.RouteID,
		TravelDate: b.TravelDate.In(a.loc).Format("2006-01-02"),
		Seats:      append([]int64(nil), b.SeatNumbers...),
		Status:     status,
		Timestamp:  a.now().Unix(),
	}
	if err := a.seats.PublishSeatUpdate(ctx, update); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("failed to publish seat update")
	}
}

func hasDuplicates(seats []int64) bool {
	seen := make(map[int64]struct{}, len(seats))
	for _, seat := range seats {
		if _, ok := seen[seat]; ok {
			return true
		}
		seen[seat] = struct{}{}
	}
	return false
}

func joinSeats(seats []int64) string {
	parts := make([]string, len(seats))
	for i, seat := range seats {
		parts[i] = strconv.FormatInt(seat, 10)
	}
	return strings.Join(parts, ", ")
}
