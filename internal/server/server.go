package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	"github.com/sirupsen/logrus"

	"callinsights/internal/config"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config
	Log *logrus.Entry
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, log *logrus.Entry) *Server {
	app := fiber.New(fiber.Config{
		AppName: "callinsights",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"status": "error",
				"error":  message,
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	// CORS middleware
	corsOrigins := cfg.BaseURL
	if cfg.CORSOrigins != "" {
		corsOrigins = cfg.CORSOrigins
	}
	if corsOrigins == "" {
		corsOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Split(corsOrigins, ","),
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       86400,
	}))

	// Rate limiting middleware - 100 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "Rate limit exceeded. Please try again later.",
			})
		},
	}))

	// Response cache over the read-only API. Redis-backed when REDIS_URL is
	// set so replicas share one cache, in-memory otherwise.
	if cfg.CacheTTL > 0 {
		cacheCfg := cache.Config{
			Expiration:          cfg.CacheTTL,
			DisableCacheControl: false,
			KeyGenerator: func(c fiber.Ctx) string {
				return strings.Clone(c.OriginalURL())
			},
			Next: func(c fiber.Ctx) bool {
				// Health and exports stay uncached.
				return c.Path() == "/api/health" ||
					strings.HasPrefix(c.Path(), "/api/export/")
			},
		}
		if cfg.RedisURL != "" {
			cacheCfg.Storage = redis.New(redis.Config{URL: cfg.RedisURL})
			log.WithField("ttl", cfg.CacheTTL).Info("using redis response cache")
		}
		app.Use("/api", cache.New(cacheCfg))
	}

	return &Server{
		App: app,
		Cfg: cfg,
		Log: log,
	}
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	s.Log.WithField("addr", s.Cfg.ServerAddr).Info("starting server")
	return s.App.Listen(s.Cfg.ServerAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
