package server

import (
	"github.com/j00les/workout-map/internal/config"
	"github.com/j00les/workout-map/internal/session"
	"github.com/j00les/workout-map/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	Sessions *session.Registry
	Stream   *stream.Hub
}

func NewServer(cfg config.Config, sessions *session.Registry, hub *stream.Hub) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:      app,
		Cfg:      cfg,
		Sessions: sessions,
		Stream:   hub,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	session.RegisterRoutes(s.App.Group("/sessions"), s.Sessions)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
