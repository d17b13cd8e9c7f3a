package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Odoo      OdooConfig
	Enrich    EnrichConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// OdooConfig holds the upstream Odoo XML-RPC connection settings
type OdooConfig struct {
	Endpoint          string
	Database          string
	Username          string
	Password          string
	TimeoutSeconds    int
	SessionTTLSeconds int
}

// EnrichConfig holds enrichment pipeline settings
type EnrichConfig struct {
	NoteStrategy string // auto, origin, order_ref
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BRIDGE_ prefix (e.g., BRIDGE_ODOO_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Odoo: OdooConfig{
			Endpoint:          v.GetString("odoo.endpoint"),
			Database:          v.GetString("odoo.database"),
			Username:          v.GetString("odoo.username"),
			Password:          v.GetString("odoo.password"),
			TimeoutSeconds:    v.GetInt("odoo.timeout_seconds"),
			SessionTTLSeconds: v.GetInt("odoo.session_ttl_seconds"),
		},
		Enrich: EnrichConfig{
			NoteStrategy: v.GetString("enrich.note_strategy"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "webhook-bridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Odoo.TimeoutSeconds == 0 {
		cfg.Odoo.TimeoutSeconds = 15
	}
	if cfg.Odoo.SessionTTLSeconds == 0 {
		cfg.Odoo.SessionTTLSeconds = 300
	}
	if cfg.Enrich.NoteStrategy == "" {
		cfg.Enrich.NoteStrategy = "auto"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// The write deadline must outlast the whole remote read chain
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB, webhook payloads are small
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	// Note: Insecure defaults to false for safety (TLS enabled by default)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Enrich.NoteStrategy {
	case "auto", "origin", "order_ref":
	default:
		return fmt.Errorf("enrich.note_strategy must be auto, origin or order_ref, got %q", c.Enrich.NoteStrategy)
	}

	if c.Odoo.TimeoutSeconds < 0 {
		return fmt.Errorf("odoo.timeout_seconds cannot be negative")
	}
	if c.Odoo.SessionTTLSeconds < 0 {
		return fmt.Errorf("odoo.session_ttl_seconds cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Odoo.Endpoint == "" {
			return fmt.Errorf("odoo.endpoint is required in production")
		}
		if c.Odoo.Database == "" {
			return fmt.Errorf("odoo.database is required in production")
		}
		if c.Odoo.Username == "" {
			return fmt.Errorf("odoo.username is required in production")
		}
		if c.Odoo.Password == "" {
			return fmt.Errorf("odoo.password is required in production")
		}
		if strings.HasPrefix(c.Odoo.Endpoint, "http://") {
			return fmt.Errorf("odoo.endpoint must use https in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}
