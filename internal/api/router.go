package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/customs-tracking/docs"
	"github.com/99minutos/customs-tracking/internal/api/handler"
	"github.com/99minutos/customs-tracking/internal/api/middleware"
	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Checks feed the readiness
// probe and TestRoutes mounts the sample webhook injector. HTTP metrics go to
// Registry, or to the default Prometheus registry when it is nil.
type Deps struct {
	Auth       ports.AuthService
	Tracking   ports.TrackingService
	Queue      handler.DeliveryQueue
	WebhookKey string
	JWTSecret  string
	Checks     map[string]handler.Check
	TestRoutes bool
	Registry   *prometheus.Registry
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	metricsHandler := echoprometheus.NewHandler()
	if d.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "customs_http",
			Registerer: d.Registry,
		}))
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry})
	} else {
		e.Use(echoprometheus.NewMiddleware("customs_http"))
	}

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Provider webhook (signature-authenticated) ---
	webhookHandler := handler.NewWebhookHandler(d.WebhookKey, d.Queue, d.Log)
	e.POST("/webhooks/17track", webhookHandler.Receive)

	// --- Operator API ---
	trackingHandler := handler.NewTrackingHandler(d.Tracking)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleOperator)
	canRead := middleware.RequirePermission(domain.PermTrackingsRead)
	callsProvider := middleware.RequirePermission(domain.PermProviderCall)
	managesOperators := middleware.RequirePermission(domain.PermOperatorsManage)

	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret), anyRole)
	v1.GET("/trackings", trackingHandler.List, canRead)
	v1.POST("/trackings", trackingHandler.Register, callsProvider)
	v1.POST("/trackings/push", trackingHandler.Push, callsProvider)
	v1.GET("/trackings/:number/customs", trackingHandler.Customs, canRead)
	v1.GET("/trackings/:number/provider", trackingHandler.Inspect, canRead)
	v1.POST("/trackings/:number/refresh", trackingHandler.Refresh, callsProvider)
	v1.POST("/normalize", trackingHandler.Normalize, canRead)
	v1.POST("/operators", authHandler.Register, managesOperators)

	if d.TestRoutes {
		v1.POST("/test/webhook", webhookHandler.Sample, callsProvider)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
