package handlers

import (
	"github.com/chachabrian/busbooking-backend/internal/middleware"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Catalog     *services.RouteCatalog
	Admission   *services.BookingAdmission
	Accounts    *services.Accounts
	Tickets     *services.TicketService
	Hub         *services.Hub
	Tokens      *utils.JWTManager
	CORSOrigins []string
	Health      map[string]Pinger
}

func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	config := cors.DefaultConfig()
	config.AllowOrigins = d.CORSOrigins
	if len(config.AllowOrigins) == 0 || (len(config.AllowOrigins) == 1 && config.AllowOrigins[0] == "*") {
		config.AllowOrigins = nil
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(config))

	r.GET("/healthz", Health(d.Health))

	auth := middleware.AuthMiddleware(d.Tokens)
	admin := middleware.RequireRoles(string(models.UserRoleAdmin))

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", Register(d.Accounts))
			authRoutes.POST("/login", Login(d.Accounts))
			authRoutes.GET("/me", auth, GetProfile(d.Accounts))
			authRoutes.PUT("/me", auth, UpdateProfile(d.Accounts))
		}

		routes := api.Group("/routes")
		{
			routes.GET("/search", SearchRoutes(d.Catalog))
			routes.GET("/upcoming", GetUpcomingRoutes(d.Catalog))
			routes.GET("/:id", GetRoute(d.Catalog))
			routes.GET("/:id/booked-seats", GetBookedSeats(d.Catalog))
			routes.POST("", auth, admin, CreateRoute(d.Catalog))
			routes.PUT("/:id", auth, admin, UpdateRoute(d.Catalog))
			routes.DELETE("/:id", auth, admin, DeleteRoute(d.Catalog))
		}

		bookings := api.Group("/bookings", auth)
		{
			bookings.POST("", CreateBooking(d.Admission))
			bookings.GET("/my", GetMyBookings(d.Admission))
			bookings.GET("/:id", GetBooking(d.Admission))
			bookings.DELETE("/:id", CancelBooking(d.Admission))
			if d.Tickets != nil {
				bookings.GET("/:id/ticket", GetBookingTicket(d.Tickets))
			}
		}

		if d.Hub != nil {
			api.GET("/ws/seats", SeatMapSocket(d.Hub, d.Catalog))
		}
	}
	return r
}
