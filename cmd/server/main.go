package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	"github.com/crowdqueue/crowdqueue/internal/config"
	"github.com/crowdqueue/crowdqueue/internal/database"
	"github.com/crowdqueue/crowdqueue/internal/handlers"
	"github.com/crowdqueue/crowdqueue/internal/metadata"
	"github.com/crowdqueue/crowdqueue/internal/middleware"
	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/types"

	_ "github.com/crowdqueue/crowdqueue/docs/api" // Swagger docs
)

// @title CrowdQueue API
// @version 1.0.0
// @description Song request and voting backend for live DJ events

// @host localhost:3001
// @BasePath /api
// @schemes http https

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	meta := metadata.TagReader{}
	downloader := services.NewDownloader(db, meta, log, cfg.DownloaderBin)
	scanner := &services.Scanner{DB: db, Meta: meta, Log: log}
	youtube := services.NewYouTubeClient(cfg.YouTubeAPIKey, log)
	searchLimiter := middleware.NewRateLimiter(cfg.SearchRateLimit)
	defer searchLimiter.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("crowdqueue")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Create handlers
	djHandler := &handlers.DJHandler{DB: db}
	eventsHandler := &handlers.EventsHandler{DB: db}
	guestsHandler := &handlers.GuestsHandler{DB: db}
	requestsHandler := &handlers.RequestsHandler{DB: db}
	libraryHandler := &handlers.LibraryHandler{DB: db, Scanner: scanner}
	searchHandler := &handlers.SearchHandler{YouTube: youtube}
	downloadsHandler := &handlers.DownloadsHandler{DB: db, Downloader: downloader}
	contactsHandler := &handlers.ContactsHandler{DB: db}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db, Log: log}

	// DJ routes
	dj := api.Group("/dj")
	dj.Post("/create", djHandler.CreateDJ)
	dj.Post("/login", djHandler.Login)
	dj.Get("/:id", djHandler.GetDJ)
	dj.Put("/:id", djHandler.UpdateDJ)

	// Event routes
	events := api.Group("/events")
	events.Post("/", eventsHandler.CreateEvent)
	events.Get("/dj/:djId", eventsHandler.ListDJEvents)
	events.Get("/:id", eventsHandler.GetEvent)
	events.Put("/:id/close", eventsHandler.CloseEvent)
	events.Put("/:id", eventsHandler.UpdateEvent)
	events.Delete("/:id", eventsHandler.DeleteEvent)

	// Guest routes
	guests := api.Group("/guests")
	guests.Post("/", guestsHandler.CreateGuest)
	guests.Get("/:id", guestsHandler.GetGuest)
	guests.Put("/:id/name", guestsHandler.RenameGuest)

	// Request and vote routes
	requests := api.Group("/requests")
	requests.Post("/", requestsHandler.SubmitRequest)
	requests.Get("/event/:eventId", requestsHandler.ListEventRequests)
	requests.Post("/votes", requestsHandler.AddVote)
	requests.Delete("/votes/:requestId/:guestId", requestsHandler.RetractVote)
	requests.Delete("/:id/guest/:guestId", requestsHandler.GuestDeleteRequest)
	requests.Delete("/:id", requestsHandler.DeleteRequest)

	// Library routes
	library := api.Group("/library")
	library.Post("/scan", libraryHandler.ScanFolder)
	library.Get("/browse", libraryHandler.BrowseDirectory)
	library.Get("/dj/:djId", libraryHandler.ListLibrary)
	library.Delete("/dj/:djId", libraryHandler.ClearLibrary)
	library.Get("/match/:requestId", libraryHandler.MatchRequest)

	// Search routes (rate limited per client)
	search := api.Group("/search")
	search.Get("/youtube", searchLimiter.Handler(), searchHandler.SearchYouTube)

	// Download routes
	downloads := api.Group("/downloads")
	downloads.Post("/start/:requestId", downloadsHandler.StartDownload)
	downloads.Get("/progress/:requestId", downloadsHandler.GetProgress)
	downloads.Post("/cancel/:requestId", downloadsHandler.CancelDownload)
	downloads.Post("/batch", downloadsHandler.BatchDownload)

	// Contact routes
	contacts := api.Group("/contacts")
	contacts.Post("/", contactsHandler.CreateContact)
	contacts.Get("/event/:eventId", contactsHandler.ListEventContacts)

	// Health
	api.Get("/health", healthHandler.GetHealth)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.WithField("port", cfg.Port).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}

	log.Info("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
