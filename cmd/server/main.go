package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	integrationapp "github.com/erp/pdfengine/internal/application/integration"
	printingapp "github.com/erp/pdfengine/internal/application/printing"
	"github.com/erp/pdfengine/internal/domain/integration"
	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/infrastructure/auth"
	"github.com/erp/pdfengine/internal/infrastructure/config"
	"github.com/erp/pdfengine/internal/infrastructure/hook"
	"github.com/erp/pdfengine/internal/infrastructure/logger"
	"github.com/erp/pdfengine/internal/infrastructure/metadata"
	"github.com/erp/pdfengine/internal/infrastructure/persistence"
	infraprinting "github.com/erp/pdfengine/internal/infrastructure/printing"
	"github.com/erp/pdfengine/internal/infrastructure/printing/barcode"
	"github.com/erp/pdfengine/internal/infrastructure/storage"
	"github.com/erp/pdfengine/internal/infrastructure/telemetry"
	"github.com/erp/pdfengine/internal/interfaces/http/handler"
	"github.com/erp/pdfengine/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			PDF Engine API
//	@version		1.0
//	@description	Renders CRM print templates to PDF through Gotenberg
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(logger.FromConfig(cfg.Log, cfg.App.Env))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	collector := telemetry.Collector{
		Endpoint:    cfg.Telemetry.CollectorEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracesConfig{
		Collector:     collector,
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.Telemetry.MetricsEnabled,
		ExportInterval: cfg.Telemetry.MetricsExportInterval,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Collector: collector,
		Enabled:   cfg.Telemetry.LogsEnabled,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileTypes:      cfg.Profiling.ProfileTypes,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.Enabled && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log := telemetry.Bridge(baseLog, telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: loggerProvider,
		Level:          zapcore.InfoLevel,
	})
	zap.ReplaceGlobals(log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting PDF engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize database connection with the zap backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		err := db.DB.Use(telemetry.NewQueryTracing(telemetry.QueryTracingConfig{
			IncludeVars:   cfg.Telemetry.DBLogFullSQL,
			SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:      cfg.Database.Driver,
		}, log))
		if err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Initialize repositories
	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	entityRepo := persistence.NewGormEntityRepository(db.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(db.DB)
	integrationRepo := persistence.NewGormIntegrationRepository(db.DB)
	settings := persistence.NewSettingsStore(db.DB, log)

	// Attachment storage backs inline images
	objects, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Document composition
	meta := metadata.New(cfg.Viper())
	lang, err := language.Parse(cfg.PDF.Language)
	if err != nil {
		log.Warn("Unknown template language, using English",
			zap.String("language", cfg.PDF.Language), zap.Error(err))
		lang = language.English
	}
	templates := infraprinting.NewTemplateEngine(
		infraprinting.WithLanguage(lang),
		infraprinting.WithFieldACL(infraprinting.StaticFieldACL(cfg.ACL.ForbiddenFields)),
	)
	tags := infraprinting.NewTagProcessor(
		barcode.NewRenderer(barcode.DefaultTable()),
		infraprinting.NewAttachmentImageSource(attachmentRepo, objects, log),
	)
	composer := infraprinting.NewHTMLComposer(infraprinting.HTMLComposerConfig{
		Templates:       templates,
		Settings:        settings,
		Metadata:        meta,
		Tags:            tags,
		DefaultFontFace: cfg.PDF.DefaultFontFace,
		DefaultFontSize: cfg.PDF.DefaultFontSize,
		Logger:          log,
	})

	// PDF engines
	gotenberg := infraprinting.NewGotenbergRenderer(infraprinting.GotenbergRendererConfig{
		Client: infraprinting.NewGotenbergClient(infraprinting.GotenbergClientConfig{
			Timeout:  cfg.Gotenberg.Timeout,
			Username: cfg.Gotenberg.Username,
			Password: cfg.Gotenberg.Password,
			Logger:   log,
		}),
		Composer:          composer,
		Settings:          settings,
		Metadata:          meta,
		UsePaperSizeTable: cfg.Gotenberg.UsePaperSizeTable,
		Logger:            log,
	})
	registry := infraprinting.NewEngineRegistry()
	registry.Register(printing.EngineGotenberg, infraprinting.NewEntityPrinter(gotenberg))
	if cfg.Chromium.Enabled {
		chromium := infraprinting.NewChromedpRenderer(&infraprinting.ChromedpConfig{
			DefaultTimeout: cfg.Chromium.Timeout,
			RemoteURL:      cfg.Chromium.RemoteURL,
			NoSandbox:      cfg.Chromium.NoSandbox,
			Composer:       composer,
			Metadata:       meta,
			Logger:         log,
		})
		defer func() {
			if err := chromium.Close(); err != nil {
				log.Error("Error closing Chromium", zap.Error(err))
			}
		}()
		registry.Register(printing.EngineChromium, chromium)
	}
	printer := infraprinting.NewEnginePrinter(infraprinting.EnginePrinterConfig{
		Registry:      registry,
		Settings:      settings,
		DefaultEngine: cfg.PDF.DefaultEngine,
		Logger:        log,
	})

	// Integration hooks switch the engine when Gotenberg is enabled or disabled
	hooks := hook.NewDispatcher(log)
	hooks.Register(integration.EntityType,
		hook.Typed(integrationapp.NewGotenbergHook(settings, cfg.PDF.FallbackEngine, log).AfterSave))

	// Application services
	printService := printingapp.NewPrintService(templateRepo, entityRepo, printer, composer, settings, log)
	renderMetrics, err := telemetry.NewRenderMetrics(telemetry.RenderMetricsConfig{
		Meter:  meterProvider.Meter(telemetry.TracerName),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to initialize render metrics", zap.Error(err))
	}
	printService.SetRenderMetrics(renderMetrics)
	integrationService := integrationapp.NewIntegrationService(integrationRepo, hooks, log)

	// Admin tokens
	var revocations auth.RevocationList = auth.NewMemoryRevocationList()
	if cfg.Redis.Enabled {
		redisRevocations, err := auth.NewRedisRevocationList(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisRevocations.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		revocations = redisRevocations
		log.Info("Token revocations backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	}
	jwtService := auth.NewJWTService(cfg.JWT, revocations)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewEngine(router.EngineConfig{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		Logger:         log,
	}, router.Handlers{
		Print:       handler.NewPrintHandler(printService),
		Integration: handler.NewIntegrationHandler(integrationService),
		System: handler.NewSystemHandler(cfg.App.Name, version,
			handler.HealthCheck{Name: "database", Pinger: db},
			handler.HealthCheck{Name: "storage", Pinger: objects},
		),
	}, jwtService)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down logger provider", zap.Error(err))
	}

	baseLog.Info("Server exited gracefully")
}
