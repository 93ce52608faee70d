// Entry point for the Pickleball Club Management API server.
// The cmd/server directory follows the usual Go convention: cmd/ holds
// executable binaries, internal/ holds packages private to this module.
package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/HuyNG25/pcm-backend/internal/cache"
	"github.com/HuyNG25/pcm-backend/internal/config"
	"github.com/HuyNG25/pcm-backend/internal/database"
	"github.com/HuyNG25/pcm-backend/internal/handlers"
	"github.com/HuyNG25/pcm-backend/internal/logger"
	"github.com/HuyNG25/pcm-backend/internal/middleware"
	"github.com/HuyNG25/pcm-backend/internal/notify"
	"github.com/HuyNG25/pcm-backend/internal/services"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Migrations run on startup so the schema is always in sync with the
	// binary that is about to serve it.
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional: with no REDIS_ADDR configured, cch is nil and the
	// court list is served straight from Postgres.
	cch, err := cache.Connect(context.Background(), cfg.RedisAddr)
	if err != nil {
		logger.Warnf("Redis unavailable, caching disabled: %v", err)
		cch = nil
	}

	// The hub fans notifications out to connected clients; the notifier
	// writes them to the database inside the same transaction as the
	// operation that caused them.
	hub := notify.NewHub()
	go hub.Run()
	notifier := notify.NewNotifier(hub)

	wallet := services.NewWalletService(db, notifier)
	booking := services.NewBookingService(db, wallet, notifier)
	tournament := services.NewTournamentService(db, notifier)

	// Background sweep releasing held slots whose hold window lapsed.
	go booking.RunHoldReaper(context.Background(), time.Minute)

	app := fiber.New(fiber.Config{
		AppName: "Pickleball Club Management API",
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New())

	// --- Public routes ---
	app.Get("/health", handlers.HealthCheck)

	public := app.Group("/api/v1")
	public.Post("/auth/register", handlers.Register(cfg, db))
	public.Post("/auth/login", handlers.Login(cfg, db))
	public.Get("/courts", handlers.GetCourts(db, cch))
	public.Get("/courts/:id/availability", handlers.CheckAvailability(booking))
	public.Get("/calendar", handlers.GetCalendar(booking))
	public.Get("/tournaments", handlers.GetTournaments(db))
	public.Get("/tournaments/:id", handlers.GetTournament(db))
	public.Get("/tournaments/:id/participants", handlers.GetParticipants(db))
	public.Get("/tournaments/:id/matches", handlers.GetMatches(db))
	public.Get("/news", handlers.GetNews(db))
	public.Get("/news/:id", handlers.GetNewsItem(db))

	// --- Authenticated routes ---
	api := app.Group("/api/v1", middleware.Auth(cfg))

	api.Get("/auth/me", handlers.Me(db))

	api.Get("/members", handlers.GetMembers(db))
	api.Get("/members/dashboard", handlers.GetDashboard(db))
	api.Get("/members/:id/profile", handlers.GetProfile(db))
	api.Put("/members/profile", handlers.UpdateProfile(db))

	api.Get("/wallet/balance", handlers.GetBalance(db))
	api.Post("/wallet/deposit", handlers.RequestDeposit(wallet))
	api.Get("/wallet/transactions", handlers.GetTransactions(db))

	api.Post("/bookings", handlers.CreateBooking(db, booking))
	api.Post("/bookings/hold", handlers.HoldSlot(booking))
	api.Post("/bookings/:id/confirm", handlers.ConfirmHold(booking))
	api.Get("/bookings/my", handlers.GetMyBookings(db))
	api.Delete("/bookings/:id", handlers.CancelBooking(booking))

	api.Post("/tournaments/:id/join", handlers.JoinTournament(tournament))

	api.Get("/notifications", handlers.GetNotifications(db))
	api.Get("/notifications/unread-count", handlers.GetUnreadCount(db))
	api.Put("/notifications/read-all", handlers.MarkAllRead(db))
	api.Put("/notifications/:id/read", handlers.MarkRead(db))

	// --- Admin routes ---
	// Deposit review is open to treasurers as well; everything else is
	// admin only.
	finance := app.Group("/api/v1/admin", middleware.Auth(cfg), middleware.RequireRole("admin", "treasurer"))
	finance.Get("/wallet/pending", handlers.GetPendingDeposits(db))
	finance.Put("/wallet/:id/approve", handlers.ApproveDeposit(wallet))
	finance.Put("/wallet/:id/reject", handlers.RejectDeposit(wallet))

	admin := app.Group("/api/v1/admin", middleware.Auth(cfg), middleware.RequireRole("admin"))
	admin.Post("/courts", handlers.CreateCourt(db, cch))
	admin.Put("/courts/:id", handlers.UpdateCourt(db, cch))
	admin.Post("/tournaments", handlers.CreateTournament(tournament))
	admin.Put("/matches/:id/result", handlers.RecordMatchResult(tournament))
	admin.Post("/news", handlers.CreateNews(db))
	admin.Put("/news/:id/pin", handlers.PinNews(db))
	admin.Delete("/news/:id", handlers.DeleteNews(db))

	logger.Infof("Starting server on port %s", cfg.Port)
	logger.Fatal(app.Listen(":" + cfg.Port))
}
