package router

import (
	"github.com/erp/pdfengine/internal/infrastructure/auth"
	"github.com/erp/pdfengine/internal/infrastructure/config"
	"github.com/erp/pdfengine/internal/infrastructure/logger"
	"github.com/erp/pdfengine/internal/interfaces/http/handler"
	"github.com/erp/pdfengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// HealthPath is served outside the versioned API and without an access log line
const HealthPath = "/health"

// EngineConfig configures the gin engine of the service
type EngineConfig struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	TracingOptions []otelgin.Option
	Logger         *zap.Logger
}

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Print       *handler.PrintHandler
	Integration *handler.IntegrationHandler
	System      *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware stack:
// request id, recovery, tracing, request logging, CORS, body limit.
// Integration writes require a JWT carrying the integrations:write scope.
func NewEngine(cfg EngineConfig, h Handlers, tokens middleware.TokenValidator) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.RegisterFieldNames()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled, cfg.TracingOptions...)...)
	engine.Use(logger.GinMiddleware(log, HealthPath))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if h.System != nil {
		engine.GET(HealthPath, h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	if h.Print != nil {
		r.Register(h.Print)
	}
	if h.Integration != nil {
		admin := NewGroup("", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			Validator:      tokens,
			RequiredScopes: []string{auth.ScopeIntegrationsWrite},
			Logger:         log,
		}))
		r.Register(admin.Register(h.Integration))
	}
	r.Setup()

	return engine
}
