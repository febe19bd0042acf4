package services

import (
	"context"
	"errors"

	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
)

// UserNotifier emails and texts the booking owner. Failures are logged only.
type UserNotifier struct {
	users  UserStore
	routes RouteStore
	mailer utils.Mailer
	sms    utils.SMSSender
}

func NewUserNotifier(users UserStore, routes RouteStore, mailer utils.Mailer, sms utils.SMSSender) *UserNotifier {
	return &UserNotifier{users: users, routes: routes, mailer: mailer, sms: sms}
}

func (n *UserNotifier) BookingConfirmed(ctx context.Context, booking models.Booking) {
	n.notify(ctx, booking, n.mailer.SendBookingConfirmedEmail, n.sms.SendBookingConfirmedSMS)
}

func (n *UserNotifier) BookingCancelled(ctx context.Context, booking models.Booking) {
	n.notify(ctx, booking, n.mailer.SendBookingCancelledEmail, n.sms.SendBookingCancelledSMS)
}

func (n *UserNotifier) notify(ctx context.Context, booking models.Booking, email, sms func(string, utils.TripNotice) error) {
	log := logging.FromContext(ctx).WithField("booking_id", booking.ID)
	if !n.mailer.Configured() && !n.sms.Configured() {
		return
	}

	user, err := n.users.FindUser(ctx, booking.UserID)
	if err != nil {
		log.WithError(err).Warn("notification skipped: user lookup failed")
		return
	}
	route := booking.Route
	if route == nil {
		if route, err = n.routes.FindRoute(ctx, booking.RouteID); err != nil {
			log.WithError(err).Warn("notification skipped: route lookup failed")
			return
		}
	}

	notice := TripNoticeFor(booking, *route, user.Name)
	var errs []error
	if n.mailer.Configured() && user.Email != "" {
		errs = append(errs, email(user.Email, notice))
	}
	if n.sms.Configured() && user.Phone != "" {
		errs = append(errs, sms(user.Phone, notice))
	}
	if err := errors.Join(errs...); err != nil {
		log.WithError(err).Warn("booking notification failed")
	}
}

// TripNoticeFor renders the passenger-facing fields of a booking.
func TripNoticeFor(booking models.Booking, route models.Route, name string) utils.TripNotice {
	return utils.TripNotice{
		Name:        name,
		BookingID:   booking.ID,
		RouteNumber: route.RouteNumber,
		Source:      route.Source,
		Destination: route.Destination,
		Departure:   route.DepartureTime.Format("Mon, 02 Jan 2006 15:04"),
		TravelDate:  booking.TravelDate.Format("2006-01-02"),
		Seats:       joinSeats(booking.SeatNumbers),
		TotalAmount: booking.TotalAmount,
	}
}
