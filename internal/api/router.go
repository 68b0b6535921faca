package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	_ "github.com/sessionauth/gatekeeper/docs"
	"github.com/sessionauth/gatekeeper/internal/api/handler"
	"github.com/sessionauth/gatekeeper/internal/api/middleware"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
	"github.com/sessionauth/gatekeeper/internal/web"
)

// Dependencies is everything NewRouter wires into the handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Sessions ports.SessionManager
	Cookie   middleware.CookieConfig
	// SlidingSessions re-issues the cookie on every authenticated request.
	SlidingSessions bool

	// RateLimit is the per-IP request rate allowed on the credential
	// endpoints, in requests per second. Zero disables the limiter.
	RateLimit float64
	RateBurst int

	// Readiness checks; nil clients are skipped.
	Mongo *mongo.Client
	Redis *redis.Client

	// Registry receives the HTTP metrics and is served on /metrics.
	// A fresh registry is used when nil.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	promMiddleware, err := echoprometheus.MiddlewareConfig{
		Namespace:  "gatekeeper",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}.ToMiddleware()
	if err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(promMiddleware)

	// --- Dependencies ---
	cookies := middleware.NewCookieCodec(deps.Cookie)
	gate := middleware.NewGate(deps.Sessions, cookies, deps.SlidingSessions)
	authHandler := handler.NewAuthHandler(deps.Auth, cookies)
	pageHandler := handler.NewPageHandler(deps.Auth)

	// --- Public pages and assets ---
	e.StaticFS("/static", web.Static())
	e.GET("/login", pageHandler.Login)
	e.GET("/register", pageHandler.Register)

	// --- Credential endpoints ---
	var throttle []echo.MiddlewareFunc
	if deps.RateLimit > 0 {
		throttle = append(throttle, authRateLimiter(deps.RateLimit, deps.RateBurst))
	}
	e.POST("/register-user", authHandler.Register, throttle...)
	e.POST("/login-user", authHandler.Login, throttle...)
	e.POST("/logout", authHandler.Logout, gate.Optional())

	// --- Gated pages ---
	e.GET("/", pageHandler.Index, gate.Require("/login"))
	e.GET("/dashboard", pageHandler.Dashboard, gate.Require("/login"))
	e.GET("/profile", pageHandler.Profile, gate.Require("/login"))
	e.GET("/forum", pageHandler.Forum, gate.Require("/"))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Mongo, deps.Redis).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// authRateLimiter throttles credential guessing per client IP.
func authRateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Forbidden").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, _ string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later").SetInternal(err)
		},
	})
}
