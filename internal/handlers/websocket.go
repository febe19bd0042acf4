package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SeatMapSocket handles GET /api/ws/seats?routeId&date. The first frame is
// the current seat map; seat_update frames follow as bookings change.
func SeatMapSocket(hub *services.Hub, catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		routeID, err := strconv.ParseUint(c.Query("routeId"), 10, 64)
		date := c.Query("date")
		if err != nil || routeID == 0 || strings.TrimSpace(date) == "" {
			respondMessage(c, http.StatusBadRequest, "Please provide routeId and date")
			return
		}

		route, err := catalog.Get(c.Request.Context(), uint(routeID))
		if err != nil {
			respondError(c, err)
			return
		}
		day, err := catalog.DayKey(date)
		if err != nil {
			respondError(c, err)
			return
		}

		snapshot := func(ctx context.Context) (services.SeatSnapshot, error) {
			seats, err := catalog.BookedSeats(ctx, route.ID, day)
			if err != nil {
				return services.SeatSnapshot{}, err
			}
			return services.SeatSnapshot{
				RouteID:     route.ID,
				TravelDate:  day,
				TotalSeats:  route.TotalSeats,
				BookedSeats: seats,
			}, nil
		}
		services.HandleWebSocket(hub, c.Writer, c.Request, services.SeatTopic(route.ID, day), snapshot)
	}
}
