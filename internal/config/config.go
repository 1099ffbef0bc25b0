// Package config loads and validates storefront configuration from the environment
// and an optional .env file using Viper.
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CredentialStoreMemory = "memory"
	CredentialStoreRedis  = "redis"
)

// Config holds the storefront BFF configuration.
type Config struct {
	// HTTPAddr is the address the storefront BFF listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GatewayBaseURL is the remote cart/payment gateway (e.g. https://middleware.example.com).
	GatewayBaseURL string `mapstructure:"GATEWAY_BASE_URL"`
	// GatewayTimeout bounds every gateway round trip (e.g. "10s").
	GatewayTimeout string `mapstructure:"GATEWAY_TIMEOUT"`
	// SendCodeSMSAck and SendCodeEmailAck are the exact send-code acknowledgements per channel.
	SendCodeSMSAck   string `mapstructure:"SEND_CODE_SMS_ACK"`
	SendCodeEmailAck string `mapstructure:"SEND_CODE_EMAIL_ACK"`

	// JWTSecret, when set, is the HMAC key used to verify bearer credentials.
	// When empty credentials are decoded without signature verification.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// CredentialStore selects client storage: "memory" or "redis".
	CredentialStore string `mapstructure:"CREDENTIAL_STORE"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	// CredentialTTL is how long a stored credential survives without a new login (e.g. "24h").
	CredentialTTL string `mapstructure:"CREDENTIAL_TTL"`
	// WorkspaceIdleTTL drops a client's in-memory cart and checkout state after this much inactivity.
	WorkspaceIdleTTL string `mapstructure:"WORKSPACE_IDLE_TTL"`
	// MaxWorkspaces caps how many clients are held in memory; the least recently used is evicted.
	MaxWorkspaces int `mapstructure:"MAX_WORKSPACES"`

	// EmailJS-style transactional email used for purchase confirmations.
	EmailJSBaseURL    string `mapstructure:"EMAILJS_BASE_URL"`
	EmailJSServiceID  string `mapstructure:"EMAILJS_SERVICE_ID"`
	EmailJSTemplateID string `mapstructure:"EMAILJS_TEMPLATE_ID"`
	EmailJSPublicKey  string `mapstructure:"EMAILJS_PUBLIC_KEY"`
	EmailJSPrivateKey string `mapstructure:"EMAILJS_PRIVATE_KEY"`
	// NotifySenderLabel is the from_name on confirmation emails.
	NotifySenderLabel string `mapstructure:"NOTIFY_SENDER_LABEL"`
	NotifyTimeout     string `mapstructure:"NOTIFY_TIMEOUT"`

	// KafkaBrokers is a comma-separated broker list; empty disables purchase events.
	KafkaBrokers       string `mapstructure:"KAFKA_BROKERS"`
	KafkaPurchaseTopic string `mapstructure:"KAFKA_PURCHASE_TOPIC"`

	// OTLPEndpoint is the OpenTelemetry collector; empty disables export.
	OTLPEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	ShutdownTimeout string `mapstructure:"SHUTDOWN_TIMEOUT"`
	Env             string `mapstructure:"APP_ENV"`

	// Sandbox gateway (cmd/sandbox-gateway only).
	SandboxAddr       string `mapstructure:"SANDBOX_ADDR"`
	SandboxCartStore  string `mapstructure:"SANDBOX_CART_STORE"`
	SandboxCodeStore  string `mapstructure:"SANDBOX_CODE_STORE"`
	SandboxOrderStore string `mapstructure:"SANDBOX_ORDER_STORE"`
	SandboxCodeTTL    string `mapstructure:"SANDBOX_CODE_TTL"`
	MongoURI          string `mapstructure:"MONGO_URI"`
	MongoDBName       string `mapstructure:"MONGO_DB_NAME"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	// SandboxCodeAttempts is how many wrong codes are accepted before the code is revoked.
	SandboxCodeAttempts int `mapstructure:"SANDBOX_CODE_ATTEMPTS"`
}

// Load reads .env (if present), then builds and validates Config from the environment.
// Env vars override .env.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.GatewayBaseURL == "" {
		return nil, errors.New("config: GATEWAY_BASE_URL must be set")
	}
	if _, err := url.ParseRequestURI(cfg.GatewayBaseURL); err != nil {
		return nil, errors.New("config: GATEWAY_BASE_URL must be an absolute URL")
	}
	return cfg, nil
}

// LoadSandbox loads configuration for the sandbox gateway; GATEWAY_BASE_URL is not required.
func LoadSandbox() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.SandboxCartStore == "mongo" && cfg.MongoURI == "" {
		return nil, errors.New("config: MONGO_URI must be set when SANDBOX_CART_STORE=mongo")
	}
	if cfg.SandboxOrderStore == "postgres" && cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL must be set when SANDBOX_ORDER_STORE=postgres")
	}
	if cfg.SandboxCodeStore == "redis" && cfg.RedisAddr == "" {
		return nil, errors.New("config: REDIS_ADDR must be set when SANDBOX_CODE_STORE=redis")
	}
	return cfg, nil
}

func load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GATEWAY_BASE_URL", "")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("SEND_CODE_SMS_ACK", "Code de confirmation envoyé par SMS.")
	v.SetDefault("SEND_CODE_EMAIL_ACK", "Code de confirmation envoyé par email.")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CREDENTIAL_STORE", CredentialStoreMemory)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CREDENTIAL_TTL", "24h")
	v.SetDefault("WORKSPACE_IDLE_TTL", "30m")
	v.SetDefault("MAX_WORKSPACES", 10000)
	v.SetDefault("EMAILJS_BASE_URL", "https://api.emailjs.com")
	v.SetDefault("EMAILJS_SERVICE_ID", "")
	v.SetDefault("EMAILJS_TEMPLATE_ID", "")
	v.SetDefault("EMAILJS_PUBLIC_KEY", "")
	v.SetDefault("EMAILJS_PRIVATE_KEY", "")
	v.SetDefault("NOTIFY_SENDER_LABEL", "Touskié-Byou3")
	v.SetDefault("NOTIFY_TIMEOUT", "15s")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_PURCHASE_TOPIC", "storefront-purchases")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("SANDBOX_ADDR", ":4000")
	v.SetDefault("SANDBOX_CART_STORE", "memory")
	v.SetDefault("SANDBOX_CODE_STORE", "memory")
	v.SetDefault("SANDBOX_ORDER_STORE", "memory")
	v.SetDefault("SANDBOX_CODE_TTL", "10m")
	v.SetDefault("SANDBOX_CODE_ATTEMPTS", 5)
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "storefront")
	v.SetDefault("DATABASE_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	switch cfg.CredentialStore {
	case CredentialStoreMemory:
	case CredentialStoreRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("config: REDIS_ADDR must be set when CREDENTIAL_STORE=redis")
		}
	default:
		return nil, errors.New("config: CREDENTIAL_STORE must be memory or redis")
	}
	if cfg.JWTSecret == "" && cfg.Env == "production" {
		return nil, errors.New("config: JWT_SECRET must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// GatewayTimeoutDuration parses GatewayTimeout. Returns 10s if unset or invalid.
func (c *Config) GatewayTimeoutDuration() time.Duration {
	return parseDuration(c.GatewayTimeout, 10*time.Second)
}

// NotifyTimeoutDuration parses NotifyTimeout. Returns 15s if unset or invalid.
func (c *Config) NotifyTimeoutDuration() time.Duration {
	return parseDuration(c.NotifyTimeout, 15*time.Second)
}

// CredentialTTLDuration parses CredentialTTL. Returns 24h if unset or invalid.
func (c *Config) CredentialTTLDuration() time.Duration {
	return parseDuration(c.CredentialTTL, 24*time.Hour)
}

// WorkspaceIdleTTLDuration parses WorkspaceIdleTTL. Returns 30m if unset or invalid.
func (c *Config) WorkspaceIdleTTLDuration() time.Duration {
	return parseDuration(c.WorkspaceIdleTTL, 30*time.Minute)
}

// ShutdownTimeoutDuration parses ShutdownTimeout. Returns 10s if unset or invalid.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

// SandboxCodeTTLDuration parses SandboxCodeTTL. Returns 10m if unset or invalid.
func (c *Config) SandboxCodeTTLDuration() time.Duration {
	return parseDuration(c.SandboxCodeTTL, 10*time.Minute)
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list disables purchase events.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EmailEnabled reports whether confirmation emails can be sent.
func (c *Config) EmailEnabled() bool {
	return c.EmailJSServiceID != "" && c.EmailJSTemplateID != "" && c.EmailJSPublicKey != ""
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
