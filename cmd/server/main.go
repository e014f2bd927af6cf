package main // Entry point package

import (
	"context" // context for the background sweeper
	"log"     // Logging library
	"time"    // duration conversions for engine timings

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/absolute-cinema/ticketing-engine/internal/config"     // Internal config loader
	"github.com/absolute-cinema/ticketing-engine/internal/database"   // MySQL connection
	"github.com/absolute-cinema/ticketing-engine/internal/engine"     // reservation/lifecycle/validation core
	"github.com/absolute-cinema/ticketing-engine/internal/handler"    // HTTP handlers
	"github.com/absolute-cinema/ticketing-engine/internal/middleware" // rate limiting and caching
	"github.com/absolute-cinema/ticketing-engine/internal/queue"      // broker consumer
	"github.com/absolute-cinema/ticketing-engine/internal/repository" // data access layer
	"github.com/absolute-cinema/ticketing-engine/internal/router"     // route registration
)

func main() {
	// .env is optional; production injects real environment variables.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting, response
	// caching and reservation idempotency, nothing else.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting, caching and idempotency disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	rooms := repository.NewRoomRepo(db)
	sessions := repository.NewSessionRepo(db)
	tickets := repository.NewTicketRepo(db)
	idem := repository.NewIdempotencyStore(rdb, time.Duration(cfg.IdempotencyTTLMin)*time.Minute)

	// Engine
	holdTTL := time.Duration(cfg.HoldTTLMin) * time.Minute
	grace := time.Duration(cfg.AdmissionGraceMin) * time.Minute
	ledger := engine.NewLedger(db, tickets, sessions, rooms, idem, holdTTL)
	lifecycle := engine.NewLifecycle(tickets, sessions, holdTTL, grace)
	gateway := engine.NewGateway(tickets, sessions, grace)

	// Background workers: time-driven lifecycle sweeps and the broker
	// consumer that turns domain events into the ticketing log.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lifecycle.StartSweeper(ctx, time.Duration(cfg.SweepIntervalSec)*time.Second)
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.Validator = handler.NewRequestValidator()

	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(movies, sessions, rooms, ledger))
	router.RegisterTickets(e, handler.NewTicketHandler(ledger, lifecycle, tickets), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(movies, rooms, sessions, tickets, users), handler.NewValidationHandler(gateway), cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
