package handlers

import (
	"fmt"
	"net/http"

	"github.com/chachabrian/busbooking-backend/internal/middleware"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CreateBooking handles POST /api/bookings
func CreateBooking(admission *services.BookingAdmission) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.BookingRequest
		if !bindJSON(c, &req, "Please provide routeId, seatNumbers array, and travelDate") {
			return
		}

		booking, err := admission.Admit(c.Request.Context(), c.GetUint(middleware.UserIDKey), req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, booking.View())
	}
}

// GetMyBookings handles GET /api/bookings/my, newest first
func GetMyBookings(admission *services.BookingAdmission) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := admission.ListForUser(c.Request.Context(), c.GetUint(middleware.UserIDKey))
		if err != nil {
			respondError(c, err)
			return
		}
		views := make([]models.BookingView, len(bookings))
		for i, b := range bookings {
			views[i] = b.View()
		}
		respondList(c, views, len(views))
	}
}

func GetBooking(admission *services.BookingAdmission) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		booking, err := admission.Get(c.Request.Context(), c.GetUint(middleware.UserIDKey), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, booking.View())
	}
}

// CancelBooking handles DELETE /api/bookings/:id
func CancelBooking(admission *services.BookingAdmission) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		booking, err := admission.Cancel(c.Request.Context(), c.GetUint(middleware.UserIDKey), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope{Success: true, Message: "Booking cancelled successfully", Data: booking.View()})
	}
}

// GetBookingTicket handles GET /api/bookings/:id/ticket and streams the PDF
// to the booking owner.
func GetBookingTicket(tickets *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		ticket, err := tickets.Issue(c.Request.Context(), c.GetUint(middleware.UserIDKey), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ticket-%d.pdf"`, ticket.BookingID))
		c.Header("Cache-Control", "private, no-store")
		c.Data(http.StatusOK, "application/pdf", ticket.PDF)
	}
}
