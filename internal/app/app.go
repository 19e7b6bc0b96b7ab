package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"meetmatch/internal/config"
	"meetmatch/internal/handlers"
	"meetmatch/internal/metrics"
	"meetmatch/internal/middleware"
	"meetmatch/internal/repositories"
	"meetmatch/internal/services"
)

// Options tweaks the app for tests.
type Options struct {
	// DisableAccessLog turns off the per-request logger middleware.
	DisableAccessLog bool
}

// New builds the HTTP application over store. publisher may be nil.
func New(cfg *config.Config, store *repositories.Store, publisher services.ActivityPublisher, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "meetmatch",
		ErrorHandler: handlers.ErrorHandler(cfg.ExposeErrors),
	})

	if !opts.DisableAccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(middleware.Metrics())
	app.Use(middleware.Preflight())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	// --- Health & metrics ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if err := store.Ping(c.UserContext()); err != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// --- Services ---
	authService := services.NewAuthService(store.Users)
	eventService := services.NewEventService(store, services.EventRules{
		MinLead:     cfg.EventMinLead,
		LatestStart: cfg.EventLatestStart,
	}, publisher)
	matchService := services.NewMatchService(store, publisher)
	chatService := services.NewChatService(store)
	messageService := services.NewMessageService(store, chatService, services.PageLimits{
		Default: cfg.MessagePageSize,
		Max:     cfg.MessagePageLimit,
	}, publisher)
	feedService := services.NewFeedService(store.Users, store.Events, cfg.FeedLimit)

	// --- API routes ---
	api := app.Group("", middleware.RequestTimeout(cfg.RequestTimeout))
	handlers.NewUserHandler(authService).RegisterRoutes(api)
	handlers.NewEventHandler(eventService).RegisterRoutes(api)
	handlers.NewSwipeHandler(matchService, feedService).RegisterRoutes(api)
	handlers.NewChatHandler(chatService, messageService).RegisterRoutes(api)

	return app
}
