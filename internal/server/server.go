package server

import (
	"context"
	"log"

	"temple-sessions-be/internal/bootstrap"
	"temple-sessions-be/internal/config"
	"temple-sessions-be/internal/pkg/serverutils"
	ws "temple-sessions-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB; session payloads are small
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.SessionController.RegisterRoutes(api)
	c.PostController.RegisterRoutes(api)
	c.UserStateController.RegisterRoutes(api)

	registerLiveRoutes(app, c)
}

// registerLiveRoutes wires the websocket channel devices hold during a
// session. Clients announce whether they join in the intro portal via the
// in_portal query param.
func registerLiveRoutes(app *fiber.App, c *bootstrap.Container) {
	live := app.Group("/live", serverutils.JwtMiddleware)

	live.Use(func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	live.Get("/session/:id", websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		sessionID, err := uuid.Parse(conn.Params("id"))
		if err != nil {
			conn.Close()
			return
		}

		initial, err := c.SessionService.LiveSeed(context.Background(), sessionID)
		if err != nil {
			conn.Close()
			return
		}

		inPortal := conn.Query("in_portal", "true") == "true"
		ws.ServeWs(c.WebSocketHub, conn, userID, initial, inPortal)
	}))
}
