package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/erp/pdfengine/internal/infrastructure/auth"
	"github.com/erp/pdfengine/internal/infrastructure/config"
	"github.com/erp/pdfengine/internal/infrastructure/logger"
	"github.com/erp/pdfengine/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	// Parse flags
	var (
		logLevel string
		scopes   string
		ttl      time.Duration
	)

	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&scopes, "scopes", auth.ScopeIntegrationsWrite, "Comma separated token scopes")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	flag.Parse()

	// Get command and arguments
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	switch command {
	case "migrate":
		db, err := persistence.NewDatabase(&cfg.Database,
			persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))))
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Database schema is up to date", zap.String("driver", cfg.Database.Driver))

	case "token":
		if len(args) < 2 {
			log.Fatal("Subject required. Usage: admin token <subject>")
		}
		jwtCfg := cfg.JWT
		if ttl > 0 {
			jwtCfg.AccessTokenExpiration = ttl
		}
		token, err := auth.NewJWTService(jwtCfg, nil).GenerateToken(args[1], splitScopes(scopes))
		if err != nil {
			log.Fatal("Failed to issue token", zap.Error(err))
		}
		log.Info("Token issued",
			zap.String("subject", args[1]),
			zap.Time("expires_at", token.ExpiresAt))
		fmt.Println(token.AccessToken)

	case "revoke":
		if len(args) < 2 {
			log.Fatal("Token required. Usage: admin revoke <token>")
		}
		if !cfg.Redis.Enabled {
			log.Fatal("Revocation needs the shared Redis list, set redis.enabled")
		}
		ctx := context.Background()
		revocations, err := auth.NewRedisRevocationList(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer revocations.Close()

		jwtService := auth.NewJWTService(cfg.JWT, revocations)
		claims, err := jwtService.ValidateToken(ctx, args[1])
		if err != nil {
			log.Fatal("Token is not valid, nothing to revoke", zap.Error(err))
		}
		if err := jwtService.Revoke(ctx, claims); err != nil {
			log.Fatal("Failed to revoke token", zap.Error(err))
		}
		log.Info("Token revoked",
			zap.String("subject", claims.Subject),
			zap.String("jti", claims.ID),
			zap.Time("expires_at", claims.GetExpiresAtTime()))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func splitScopes(s string) []string {
	var out []string
	for _, scope := range strings.Split(s, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			out = append(out, scope)
		}
	}
	return out
}

func printUsage() {
	fmt.Println(`PDF engine administration

Usage:
  admin [flags] <command> [arguments]

Commands:
  migrate           Create or update the database schema
  token <subject>   Issue an admin token for the integration endpoints
  revoke <token>    Revoke a token until it expires (requires Redis)

Flags:
  -log-level string  Log level (debug, info, warn, error) (default "info")
  -scopes string     Comma separated token scopes (default "integrations:write")
  -ttl duration      Token lifetime (default: jwt.access_token_expiration)

Environment variables (PDFENGINE_ prefix):
  PDFENGINE_DATABASE_DRIVER     Database driver (postgres, sqlite)
  PDFENGINE_DATABASE_HOST       Database host
  PDFENGINE_DATABASE_PASSWORD   Database password
  PDFENGINE_JWT_SECRET          Token signing secret
  PDFENGINE_REDIS_ENABLED       Share revocations through Redis

Examples:
  admin migrate
  admin -scopes integrations:write,print token crm-admin`)
}
