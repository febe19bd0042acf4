package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/config"
	"github.com/chachabrian/busbooking-backend/internal/database"
	"github.com/chachabrian/busbooking-backend/internal/handlers"
	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/chachabrian/busbooking-backend/pkg/obs"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type store interface {
	services.RouteStore
	services.BookingStore
	services.UserStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "busbooking-api", cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	health := map[string]handlers.Pinger{}
	var st store
	if cfg.Store == "memory" {
		log.Warn("STORE=memory: bookings are kept in process and lost on restart")
		st = repository.NewMemoryStore()
	} else {
		db, err := database.InitDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("Failed to get database instance: %v", err)
		}
		health["database"] = sqlDB.PingContext
		st = repository.NewGormStore(db)
	}

	hub := services.NewHub()
	go hub.Run(ctx)

	var seats services.SeatPublisher = hub
	if cfg.RedisURL != "" {
		rdb, err := services.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer rdb.Close()
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		seats = services.NewRedisSeatPublisher(rdb)
		go func() {
			if err := services.RelaySeatUpdates(ctx, rdb, hub); err != nil {
				log.WithError(err).Error("seat update relay stopped")
			}
		}()
	} else {
		log.Info("REDIS_URL not set, seat updates stay on this instance")
	}

	storage, err := services.InitStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	mailer := utils.Mailer{
		From:        cfg.EmailFrom,
		Password:    cfg.EmailPassword,
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		CompanyName: cfg.CompanyName,
		BaseURL:     cfg.BaseURL,
	}
	sms := utils.SMSSender{Username: cfg.ATUsername, APIKey: cfg.ATAPIKey}
	tokens := utils.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour)

	availability := services.NewAvailabilityCalculator(st, loc)
	admission := services.NewBookingAdmission(st, st, loc,
		services.WithSeatPublisher(seats),
		services.WithNotifier(services.NewUserNotifier(st, st, mailer, sms)),
	)

	router := handlers.NewRouter(handlers.Dependencies{
		Catalog:     services.NewRouteCatalog(st, availability, loc),
		Admission:   admission,
		Accounts:    services.NewAccounts(st, tokens),
		Tickets:     services.NewTicketService(admission, st, st, storage, cfg.CompanyName),
		Hub:         hub,
		Tokens:      tokens,
		CORSOrigins: cfg.CORSOrigins,
		Health:      health,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.WithError(err).Warn("tracer shutdown failed")
	}
}
