package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PDFENGINE_DATABASE_PASSWORD
const EnvPrefix = "PDFENGINE"

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Storage backends
const (
	StorageS3         = "s3"
	StorageFilesystem = "filesystem"
)

// Config is the service configuration. Sections map to TOML tables.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Gotenberg GotenbergConfig `mapstructure:"gotenberg"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	Chromium  ChromiumConfig  `mapstructure:"chromium"`
	ACL       ACLConfig       `mapstructure:"acl"`

	v *viper.Viper
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	// Path is the sqlite file, ":memory:" for a private in-memory database
	Path            string `mapstructure:"path"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// RedisConfig locates the token revocation list
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig signs and checks the admin tokens
type JWTConfig struct {
	Secret                string        `mapstructure:"secret"`
	AccessTokenExpiration time.Duration `mapstructure:"access_token_expiration"`
	Issuer                string        `mapstructure:"issuer"`
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// TelemetryConfig configures OTLP export. Traces, metrics and logs share
// the collector endpoint.
type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SamplingRatio     float64 `mapstructure:"sampling_ratio"`
	ServiceName       string  `mapstructure:"service_name"`
	Insecure          bool    `mapstructure:"insecure"`

	DBTraceEnabled bool `mapstructure:"db_trace_enabled"`
	// DBLogFullSQL records statement variables on spans; refused in production
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	MetricsExportInterval time.Duration `mapstructure:"metrics_export_interval"`
	LogsEnabled           bool          `mapstructure:"logs_enabled"`
}

// ProfilingConfig configures the Pyroscope agent
type ProfilingConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	ServerAddress     string   `mapstructure:"server_address"`
	ApplicationName   string   `mapstructure:"application_name"`
	BasicAuthUser     string   `mapstructure:"basic_auth_user"`
	BasicAuthPassword string   `mapstructure:"basic_auth_password"`
	ProfileTypes      []string `mapstructure:"profile_types"`
	// SpanProfiles links CPU samples to trace spans
	SpanProfiles bool `mapstructure:"span_profiles"`
}

// StorageConfig selects where attachment files are read from
type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	UsePathStyle  bool   `mapstructure:"use_path_style"`
	BasePath      string `mapstructure:"base_path"`
	MaxObjectSize int64  `mapstructure:"max_object_size"`
}

// GotenbergConfig configures the Gotenberg client. The API URL is an
// application setting written by the integration hook, not configuration.
type GotenbergConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	// UsePaperSizeTable sends the paper size table dimensions instead of the
	// template width and height
	UsePaperSizeTable bool `mapstructure:"use_paper_size_table"`
}

type PDFConfig struct {
	DefaultEngine string `mapstructure:"default_engine"`
	// FallbackEngine is restored when the Gotenberg integration is disabled
	FallbackEngine  string  `mapstructure:"fallback_engine"`
	DefaultFontFace string  `mapstructure:"default_font_face"`
	DefaultFontSize float64 `mapstructure:"default_font_size"`
	Language        string  `mapstructure:"language"`
}

// ChromiumConfig configures the local headless Chrome engine
type ChromiumConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	RemoteURL string        `mapstructure:"remote_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	NoSandbox bool          `mapstructure:"no_sandbox"`
}

// ACLConfig lists, per entity type, the attributes hidden from templates
// printed with ACL applied. Entity types are lowercased.
type ACLConfig struct {
	ForbiddenFields map[string][]string `mapstructure:"forbidden_fields"`
}

// defaults lists every scalar key. A key must be known to viper for its
// environment override to reach Unmarshal. acl.forbidden_fields is file only.
var defaults = map[string]any{
	"app.name": "pdf-engine",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             DriverPostgres,
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "pdfengine",
	"database.sslmode":            "disable",
	"database.path":               "pdfengine.db",
	"database.auto_migrate":       false,
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                  "",
	"jwt.access_token_expiration": time.Hour,
	"jwt.issuer":                  "pdf-engine",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout": 15 * time.Second,
	// rendering waits for Gotenberg
	"http.write_timeout":      90 * time.Second,
	"http.idle_timeout":       60 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      int64(10 << 20),
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "pdf-engine",
	"telemetry.insecure":                false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_export_interval": time.Minute,
	"telemetry.logs_enabled":            false,

	"profiling.enabled":             false,
	"profiling.server_address":      "",
	"profiling.application_name":    "",
	"profiling.basic_auth_user":     "",
	"profiling.basic_auth_password": "",
	"profiling.profile_types":       []string{"cpu", "alloc_space", "inuse_space"},
	"profiling.span_profiles":       false,

	"storage.backend":         StorageFilesystem,
	"storage.endpoint":        "",
	"storage.region":          "",
	"storage.bucket":          "",
	"storage.access_key":      "",
	"storage.secret_key":      "",
	"storage.use_ssl":         false,
	"storage.use_path_style":  false,
	"storage.base_path":       "data/attachments",
	"storage.max_object_size": int64(20 << 20),

	"gotenberg.timeout":              60 * time.Second,
	"gotenberg.username":             "",
	"gotenberg.password":             "",
	"gotenberg.use_paper_size_table": false,

	"pdf.default_engine":    "Gotenberg",
	"pdf.fallback_engine":   "Dompdf",
	"pdf.default_font_face": "DejaVu Sans",
	"pdf.default_font_size": 12.0,
	"pdf.language":          "en",

	"chromium.enabled":    false,
	"chromium.remote_url": "",
	"chromium.timeout":    30 * time.Second,
	"chromium.no_sandbox": false,
}

// Load reads config.toml from the working directory or /app, then applies
// PDFENGINE_* environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v. The metadata
// registry keeps reading v afterwards.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.Telemetry.ServiceName
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Viper returns the viper instance the configuration was read from
func (c *Config) Viper() *viper.Viper {
	if c.v == nil {
		c.v = viper.New()
	}
	return c.v
}

func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	check(slices.Contains([]string{DriverPostgres, DriverSQLite}, db.Driver),
		"database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, db.Driver)
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)

	st := c.Storage
	check(slices.Contains([]string{StorageS3, StorageFilesystem}, st.Backend),
		"storage.backend must be %q or %q, got %q", StorageS3, StorageFilesystem, st.Backend)
	check(st.Backend != StorageS3 || st.Bucket != "", "storage.bucket is required for the s3 backend")
	check(st.MaxObjectSize >= 0, "storage.max_object_size cannot be negative")

	check(!c.Profiling.Enabled || c.Profiling.ServerAddress != "",
		"profiling.server_address is required when profiling is enabled")
	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0 and 1, got %g", c.Telemetry.SamplingRatio)
	check(c.Gotenberg.Timeout >= 0, "gotenberg.timeout cannot be negative")
	check(c.PDF.DefaultFontSize >= 0, "pdf.default_font_size cannot be negative")
	if c.Chromium.RemoteURL != "" {
		u, err := url.Parse(c.Chromium.RemoteURL)
		check(err == nil && (u.Scheme == "ws" || u.Scheme == "wss"),
			"chromium.remote_url must be a ws:// or wss:// URL")
	}

	if c.App.Env == "production" {
		check(c.JWT.Secret != "", "jwt.secret is required in production")
		check(c.JWT.Secret == "" || len(c.JWT.Secret) >= 32, "jwt.secret must be at least 32 characters in production")
		if db.Driver == DriverPostgres {
			check(db.Password != "", "database.password is required in production")
			check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		}
		check(!slices.Contains(c.HTTP.CORSAllowOrigins, "*"),
			"http.cors_allow_origins cannot contain '*' in production")
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	}

	return errors.Join(errs...)
}

// DSN returns the sqlite path, or a postgres URL with escaped credentials
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
