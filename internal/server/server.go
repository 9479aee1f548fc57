// Package server contains HTTP and WebSocket handlers for the API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	_ "linkshelf/docs" // swagger docs
	"linkshelf/internal/auth"
	"linkshelf/internal/bootstrap"
	"linkshelf/internal/config"
	"linkshelf/internal/database"
	"linkshelf/internal/featureflags"
	"linkshelf/internal/middleware"
	"linkshelf/internal/models"
	"linkshelf/internal/notifications"
	"linkshelf/internal/repository"
	"linkshelf/internal/service"
	"linkshelf/internal/storage"
	"linkshelf/internal/youtube"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// Deps are the collaborators a Server is assembled from.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Store   storage.Store
	Fetcher service.MetadataFetcher
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens       *auth.TokenManager
	store        storage.Store
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	userService     *service.UserService
	linkService     *service.LinkService
	playlistService *service.PlaylistService
}

// NewServer connects to the database, Redis and the configured blob store
// and builds a Server from them. Seeding runs only when opts asks for it.
func NewServer(ctx context.Context, cfg *config.Config, opts bootstrap.Options) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage setup failed: %w", err)
	}

	fetcher := youtube.NewClient(youtube.Config{
		APIKey:        cfg.YouTubeAPIKey,
		BaseURL:       cfg.YouTubeAPIURL,
		Timeout:       time.Duration(cfg.MetadataTimeoutSeconds) * time.Second,
		RatePerSecond: cfg.MetadataRatePerSecond,
	})

	return NewServerWithDeps(cfg, Deps{
		DB:      db,
		Redis:   rdb,
		Store:   store,
		Fetcher: fetcher,
	})
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with sqlite and in-memory doubles.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil || deps.DB == nil {
		return nil, errors.New("config and database are required")
	}
	if deps.Store == nil {
		return nil, errors.New("a blob store is required")
	}

	userRepo := repository.NewUserRepository(deps.DB)
	linkRepo := repository.NewLinkRepository(deps.DB)
	playlistRepo := repository.NewPlaylistRepository(deps.DB)

	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		promMiddleware: middleware.InitMetrics("linkshelf-api"),
		tokens:         auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryMinutes)*time.Minute),
		store:          deps.Store,
		notifier:       notifications.NewNotifier(deps.Redis),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.userService = service.NewUserService(userRepo, linkRepo, deps.Store, s.notifier, cfg)
	s.linkService = service.NewLinkService(linkRepo, deps.Fetcher, s.featureFlags, s.notifier, cfg)
	s.playlistService = service.NewPlaylistService(playlistRepo, linkRepo, s.notifier)

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "linkshelf API",
		BodyLimit:    (s.config.UploadMaxFileSizeMB*8 + 1) * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// ErrorHandler converts errors that escape handlers into the error envelope.
// Fiber's own client errors (unknown route, bad method) keep their status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			Version: models.APIVersion,
			Status:  fe.Code,
			Error:   fe.Message,
		})
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Version: models.APIVersion,
				Status:  fiber.StatusTooManyRequests,
				Error:   "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Get("/storage/files/:id/view", s.serveLocalFile(local))
	}

	api := app.Group(APIPrefix)
	api.Get("/info", s.Info)
	api.Get("/swagger/*", swagger.HandlerDefault)
	// The monitor page polls its own URL, so a ?token= query is accepted.
	if s.config == nil || !s.config.IsProduction() {
		api.Get("/metrics/dashboard", s.AuthRequired(true), monitor.New(monitor.Config{
			Title: "linkshelf Metrics Dashboard",
		}))
	}

	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public playlist browsing
	api.Get("/playlists/public", s.GetPublicPlaylists)

	api.Get("/ws", s.AuthRequired(true), s.requireUpgrade, s.WebsocketHandler())

	protected := api.Group("", s.AuthRequired(false))
	protected.Get("/features", s.GetFeatureFlags)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Post("/me/profile-image", middleware.RateLimit(s.redis, 10, 10*time.Minute, "profile_image"), s.UploadProfileImage)
	users.Delete("/me/profile-image", s.DeleteProfileImage)

	links := protected.Group("/links")
	links.Post("/", s.CreateLinks)
	links.Post("/upload", middleware.RateLimit(s.redis, 20, 10*time.Minute, "link_upload"), s.UploadLinkFiles)
	links.Get("/", s.GetLinks)
	// Specific /:id/:resource routes before generic /:id
	links.Patch("/:id/progress", s.UpdateLinkProgress)
	links.Delete("/:id", s.DeleteLink)

	playlists := protected.Group("/playlists")
	playlists.Post("/", s.CreatePlaylist)
	playlists.Get("/", s.GetMyPlaylists)
	playlists.Patch("/:id/visibility", s.UpdatePlaylistVisibility)
	playlists.Post("/:id/links", s.AddLinkToPlaylist)
	playlists.Patch("/:id", s.UpdatePlaylist)
}

// AuthRequired validates the bearer token. allowQuery accepts ?token= for
// clients that cannot set headers.
func (s *Server) AuthRequired(allowQuery bool) fiber.Handler {
	return middleware.JWTAuth(middleware.AuthConfig{Tokens: s.tokens, AllowQueryToken: allowQuery})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "up", fiber.Map{"time": time.Now()})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only a failing database makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "degraded"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return models.Respond(c, status, overall, fiber.Map{
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.redis != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start notification wiring: %v", err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		log.Printf("error shutting down notification hub: %v", err)
	}

	for _, db := range []*gorm.DB{s.db, database.GetReadDB()} {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Printf("error closing sql DB: %v", cerr)
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
