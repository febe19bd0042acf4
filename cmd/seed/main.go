package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/config"
	"github.com/chachabrian/busbooking-backend/internal/database"
	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type seedConfig struct {
	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// sampleRoute departs daysAhead days from tomorrow at the given UTC clock time.
type sampleRoute struct {
	number      string
	source      string
	destination string
	daysAhead   int
	hour, min   int
	duration    time.Duration
	price       float64
	seats       int
	amenities   []string
}

var sampleRoutes = []sampleRoute{
	{"BUS201", "Mumbai", "Pune", 0, 8, 0, 4 * time.Hour, 520, 40, []string{"WiFi", "AC", "USB Charging", "Reading Light"}},
	{"BUS202", "Mumbai", "Delhi", 2, 10, 30, 19*time.Hour + 15*time.Minute, 1550, 40, []string{"WiFi", "AC", "Reclining Seats", "Snacks"}},
	{"BUS203", "Bangalore", "Chennai", 4, 7, 15, 4*time.Hour + 15*time.Minute, 650, 36, []string{"WiFi", "AC", "Water Bottle", "Blanket"}},
	{"BUS204", "Delhi", "Jaipur", 1, 6, 45, 3*time.Hour + 20*time.Minute, 480, 32, []string{"AC", "Reading Light", "Live Tracking"}},
	{"BUS205", "Hyderabad", "Vizag", 7, 9, 0, 5*time.Hour + 20*time.Minute, 720, 44, []string{"WiFi", "AC", "USB Charging", "Snacks", "Pillow"}},
	{"BUS206", "Pune", "Goa", 6, 22, 30, 7*time.Hour + 40*time.Minute, 890, 38, []string{"WiFi", "AC", "Blanket", "Water Bottle"}},
	{"BUS207", "Chennai", "Coimbatore", 5, 5, 45, 4*time.Hour + 20*time.Minute, 540, 34, []string{"AC", "USB Charging", "Reading Light"}},
	{"BUS208", "Delhi", "Chandigarh", 3, 7, 30, 4*time.Hour + 45*time.Minute, 620, 40, []string{"WiFi", "AC", "Snacks"}},
	{"BUS209", "Ahmedabad", "Udaipur", 8, 6, 10, 5*time.Hour + 15*time.Minute, 560, 30, []string{"AC", "Reading Light", "Water Bottle"}},
	{"BUS210", "Kolkata", "Durgapur", 1, 14, 0, 4 * time.Hour, 420, 28, []string{"AC", "USB Charging"}},
}

func (s sampleRoute) input(base time.Time) services.RouteInput {
	day := base.AddDate(0, 0, 1+s.daysAhead)
	dep := time.Date(day.Year(), day.Month(), day.Day(), s.hour, s.min, 0, 0, time.UTC)
	arr := dep.Add(s.duration)
	return services.RouteInput{
		RouteNumber:   &s.number,
		Source:        &s.source,
		Destination:   &s.destination,
		DepartureTime: &dep,
		ArrivalTime:   &arr,
		Price:         &s.price,
		TotalSeats:    &s.seats,
		Amenities:     s.amenities,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	var sc seedConfig
	if err := envconfig.Process("", &sc); err != nil {
		log.Fatalf("Failed to load seed configuration: %v", err)
	}
	sc.AdminEmail = strings.ToLower(strings.TrimSpace(sc.AdminEmail))
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	loc, _ := cfg.Location()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := repository.NewGormStore(db)
	catalog := services.NewRouteCatalog(store, services.NewAvailabilityCalculator(store, loc), loc)

	ctx := context.Background()
	created := 0
	for _, r := range sampleRoutes {
		_, err := catalog.Create(ctx, r.input(time.Now().UTC()))
		switch {
		case apperrors.IsConflict(err):
			log.WithField("route", r.number).Info("route already present, skipping")
		case err != nil:
			log.Fatalf("Failed to seed route %s: %v", r.number, err)
		default:
			created++
		}
	}
	log.WithField("created", created).Info("routes seeded")

	if sc.AdminEmail != "" && sc.AdminPassword != "" {
		if err := seedAdmin(ctx, store, sc); err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
	}
}

func seedAdmin(ctx context.Context, store *repository.GormStore, sc seedConfig) error {
	existing, err := store.FindUserByEmail(ctx, sc.AdminEmail)
	switch {
	case err == nil:
		existing.Role = models.UserRoleAdmin
		log.WithField("email", sc.AdminEmail).Info("promoting existing user to admin")
		return store.SaveUser(ctx, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	admin := &models.User{
		Name:     sc.AdminName,
		Email:    sc.AdminEmail,
		Password: sc.AdminPassword,
		Role:     models.UserRoleAdmin,
	}
	if err := admin.HashPassword(); err != nil {
		return err
	}
	log.WithField("email", sc.AdminEmail).Info("admin user created")
	return store.CreateUser(ctx, admin)
}
