package handlers

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/arzan03/PalavraDoDia/internal/metrics"
	"github.com/arzan03/PalavraDoDia/internal/middleware"
	"github.com/arzan03/PalavraDoDia/internal/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Auth    *services.AuthService
	Entries *services.EntryService
	Metrics *metrics.Metrics
	Log     *slog.Logger

	// AccessLog receives one line per request; nil disables the access log.
	AccessLog     io.Writer
	PublicDir     string
	BodyLimit     int
	SecureCookies bool
}

// NewApp builds the Fiber application with middleware and routes.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "palavra-do-dia",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler(d.Log),
		BodyLimit:    d.BodyLimit,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	if d.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: d.AccessLog,
		}))
	}
	app.Use(cors.New())
	app.Use(d.Metrics.Middleware())

	SetupRoutes(app, d)
	return app
}

func SetupRoutes(app *fiber.App, d Deps) {
	authHandler := NewAuthHandler(d.Auth, d.Metrics, d.SecureCookies)
	wordHandler := NewWordHandler(d.Entries, d.Metrics)
	protect := middleware.Protect(d.Auth)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(Envelope{Success: true, Message: "ok"})
	})
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	// Auth Routes
	auth := app.Group("/api/auth")
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", protect, authHandler.Me)

	// Word Routes
	words := app.Group("/api/words", protect)
	words.Post("/", wordHandler.Create)
	words.Get("/", wordHandler.List)
	words.Get("/:id", wordHandler.Get)
	words.Put("/:id", wordHandler.Update)
	words.Delete("/:id", wordHandler.Delete)
	words.Post("/:id/images/:kind", wordHandler.UploadImage)

	// Front-end
	if d.PublicDir != "" {
		app.Static("/", d.PublicDir)
		index := filepath.Join(d.PublicDir, "index.html")
		app.Get("*", func(c *fiber.Ctx) error {
			return c.SendFile(index)
		})
	}
}
