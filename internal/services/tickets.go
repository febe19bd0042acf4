package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

// Ticket is a rendered e-ticket. Location is where the archived copy was
// written; it is never served without the owner's token.
type Ticket struct {
	BookingID uint
	Location  string
	PDF       []byte
}

// TicketService renders e-tickets for confirmed bookings and archives them.
type TicketService struct {
	bookings *BookingAdmission
	routes   RouteStore
	users    UserStore
	storage  Storage
	company  string
	now      func() time.Time
}

func NewTicketService(bookings *BookingAdmission, routes RouteStore, users UserStore, storage Storage, company string) *TicketService {
	return &TicketService{bookings: bookings, routes: routes, users: users, storage: storage, company: company, now: time.Now}
}

func (s *TicketService) Issue(ctx context.Context, userID, bookingID uint) (*Ticket, error) {
	ctx, span := tracer.Start(ctx, "ticket.issue")
	defer span.End()

	booking, err := s.bookings.Get(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, apperrors.Conflict("Cannot issue a ticket for a cancelled booking")
	}

	route := booking.Route
	if route == nil {
		if route, err = s.routes.FindRoute(ctx, booking.RouteID); err != nil {
			return nil, apperrors.Internal("failed to load route", err)
		}
	}
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}

	pdf, err := RenderTicketPDF(s.company, TripNoticeFor(*booking, *route, user.Name), s.now())
	if err != nil {
		return nil, apperrors.Internal("failed to render ticket", err)
	}

	key := fmt.Sprintf("tickets/%s.pdf", uuid.NewString())
	location, err := s.storage.Save(ctx, key, pdf, "application/pdf")
	if err != nil {
		return nil, apperrors.Internal("failed to store ticket", err)
	}

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"booking_id": booking.ID,
		"location":   location,
	}).Info("ticket issued")
	return &Ticket{BookingID: booking.ID, Location: location, PDF: pdf}, nil
}

// RenderTicketPDF lays out a one-page A4 e-ticket.
func RenderTicketPDF(company string, n utils.TripNotice, issuedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, company+" E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID   : %d", n.BookingID),
		"Passenger    : " + n.Name,
		"Route        : " + n.RouteNumber,
		fmt.Sprintf("From / To    : %s - %s", n.Source, n.Destination),
		"Departure    : " + n.Departure,
		"Travel date  : " + n.TravelDate,
		"Seats        : " + n.Seats,
		fmt.Sprintf("Total amount : %.2f", n.TotalAmount),
		"Issued       : " + issuedAt.Format("2006-01-02 15:04"),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please show this ticket when boarding. Valid only for the seats and date above.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
