package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SearchRoutes handles GET /api/routes/search?source&destination&date
func SearchRoutes(catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes, err := catalog.Search(c.Request.Context(), c.Query("source"), c.Query("destination"), c.Query("date"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, routes, len(routes))
	}
}

// GetUpcomingRoutes handles GET /api/routes/upcoming?limit
func GetUpcomingRoutes(catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				respondMessage(c, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", services.MaxUpcomingLimit))
				return
			}
			limit = n
		}

		routes, err := catalog.Upcoming(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, routes, len(routes))
	}
}

func GetRoute(catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		route, err := catalog.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, route)
	}
}

// GetBookedSeats handles GET /api/routes/:id/booked-seats?date
func GetBookedSeats(catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		seats, err := catalog.BookedSeats(c.Request.Context(), id, c.Query("date"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"bookedSeats": seats})
	}
}

func CreateRoute(catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.NewRouteInput
		if !bindJSON(c, &input, "Please provide routeNumber, source, destination, departureTime, arrivalTime and price") {
			return
		}
		route, err := catalog.Create(c.Request.Context(), input.RouteInput())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, route)
	}
}

func UpdateRoute(catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input services.RouteInput
		if !bindJSON(c, &input, "Invalid route payload") {
			return
		}
		route, err := catalog.Update(c.Request.Context(), id, input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, route)
	}
}

func DeleteRoute(catalog *services.RouteCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := catalog.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Route deleted successfully")
	}
}
