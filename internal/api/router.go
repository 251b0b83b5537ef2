package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/daily-journal/blog/docs"
	"github.com/daily-journal/blog/internal/api/handler"
	"github.com/daily-journal/blog/internal/core/ports"
)

// Dependencies is everything the router needs to build its handlers.
type Dependencies struct {
	PostService    ports.PostService
	AccountService ports.AccountService
	Renderer       echo.Renderer
	HealthChecks   map[string]handler.PingFunc
	StaticDir      string
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = deps.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// Each router gets its own registry so the HTTP collectors can be built
	// more than once per process. Domain counters stay on the default one.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "blog",
		Registerer: reg,
	}))

	// --- Dependencies ---
	postHandler := handler.NewPostHandler(deps.PostService, deps.Log)
	accountHandler := handler.NewAccountHandler(deps.AccountService)
	pageHandler := handler.NewPageHandler()
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	// --- Post catalog ---
	e.GET("/", postHandler.List)
	e.GET("/compose", postHandler.ComposeForm)
	e.POST("/compose", postHandler.Compose)
	e.GET("/post/:id", postHandler.View)
	e.GET("/post/delete/:id", postHandler.Delete)
	e.POST("/post/delete/:id", postHandler.Delete)

	// --- Accounts ---
	e.GET("/signup", accountHandler.SignupForm)
	e.POST("/signup", accountHandler.Signup)
	e.GET("/login", accountHandler.LoginForm)
	e.POST("/login", accountHandler.Login)

	// --- Static pages ---
	e.GET("/about", pageHandler.About)
	e.GET("/contact", pageHandler.Contact)

	// --- Health probes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if deps.StaticDir != "" {
		e.Static("/", deps.StaticDir)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
