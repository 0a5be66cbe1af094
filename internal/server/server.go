package server

import (
	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/auth"
	"github.com/jacinta25/social-media-API/internal/config"
	"github.com/jacinta25/social-media-API/internal/content"
	"github.com/jacinta25/social-media-API/internal/db"
	"github.com/jacinta25/social-media-API/internal/identity"
	"github.com/jacinta25/social-media-API/internal/interaction"
	"github.com/jacinta25/social-media-API/internal/metrics"
	"github.com/jacinta25/social-media-API/internal/notification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      db.Querier
	Redis   *redis.Client
	Metrics *metrics.Metrics
}

func NewServer(cfg config.Config, q db.Querier, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "social-media-api",
		ErrorHandler: apperror.ErrorHandler,
	})
	m := metrics.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(m.Middleware())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      q,
		Redis:   redisClient,
		Metrics: m,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", s.Metrics.Handler())

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	authService := auth.NewService(s.Cfg.JWTSecret, s.DB,
		auth.WithTokenTTL(s.Cfg.AccessTokenTTL, s.Cfg.RefreshTokenTTL),
		auth.WithThrottle(auth.NewThrottle(s.Redis, s.Cfg.LoginMaxAttempt, s.Cfg.LoginWindow)),
	)
	auth.RegisterRoutes(s.App, authService)
	identity.RegisterRoutes(s.App, identity.NewStore(s.DB), jwtMiddleware)

	// interaction owns /posts/feed, which has to precede /posts/:id.
	interaction.RegisterRoutes(s.App, interaction.NewService(s.DB, s.Metrics), jwtMiddleware)
	content.RegisterRoutes(s.App, content.NewStore(s.DB), jwtMiddleware)
	notification.RegisterRoutes(s.App, notification.NewLedger(s.DB), jwtMiddleware)
}
