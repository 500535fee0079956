package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	OIDC      OIDCConfig
	JWT       JWTConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	SMS       SMSConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	BasePath       string
	CORSOrigin     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// OIDCConfig describes the external identity provider. Issuer wins over
// URL+Realm (Keycloak style) when both are set.
type OIDCConfig struct {
	Issuer   string
	URL      string
	Realm    string
	ClientID string
}

// IssuerURL resolves the issuer used for discovery.
func (o OIDCConfig) IssuerURL() string {
	if o.Issuer != "" {
		return o.Issuer
	}
	if o.URL == "" {
		return ""
	}
	if o.Realm == "" {
		return o.URL
	}
	return strings.TrimRight(o.URL, "/") + "/realms/" + o.Realm
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type StorageConfig struct {
	Backend    string // minio | s3
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Bucket     string
	Region     string
	PublicURL  string
	PresignTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
	SMSPerMinute  int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	Sample      float64
	ServiceName string
}

type SMSConfig struct {
	Sender string // log
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_BASE_PATH", "/api")
	v.SetDefault("SERVER_CORS_ORIGIN", "*")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("MONGODB_DATABASE", "sitecraft")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	v.SetDefault("STORAGE_BACKEND", "minio")
	v.SetDefault("STORAGE_BUCKET", "sitecraft-assets")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_PRESIGN_TTL", 7*24*60)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("RATE_LIMIT_SMS_PER_MINUTE", 5)
	v.SetDefault("TRACING_SAMPLE", 0.1)
	v.SetDefault("TRACING_SERVICE_NAME", "sitecraft-api")
	v.SetDefault("SMS_SENDER", "log")

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    v.GetString("SERVER_ENVIRONMENT"),
			BasePath:       v.GetString("SERVER_BASE_PATH"),
			CORSOrigin:     v.GetString("SERVER_CORS_ORIGIN"),
			ReadTimeout:    time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout:   time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
			MaxUploadBytes: v.GetInt64("SERVER_MAX_UPLOAD_BYTES"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		OIDC: OIDCConfig{
			Issuer:   v.GetString("OIDC_ISSUER"),
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("OIDC_CLIENT_ID"),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(v.GetString("STORAGE_BACKEND")),
			Endpoint:   v.GetString("STORAGE_ENDPOINT"),
			AccessKey:  v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:  os.Getenv("STORAGE_SECRET_KEY"),
			UseSSL:     v.GetBool("STORAGE_USE_SSL"),
			Bucket:     v.GetString("STORAGE_BUCKET"),
			Region:     v.GetString("STORAGE_REGION"),
			PublicURL:  v.GetString("STORAGE_PUBLIC_URL"),
			PresignTTL: time.Duration(v.GetInt("STORAGE_PRESIGN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			SMSPerMinute:  v.GetInt("RATE_LIMIT_SMS_PER_MINUTE"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			Endpoint:    v.GetString("TRACING_ENDPOINT"),
			Insecure:    v.GetBool("TRACING_INSECURE"),
			Sample:      v.GetFloat64("TRACING_SAMPLE"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
		},
		SMS: SMSConfig{
			Sender: strings.ToLower(v.GetString("SMS_SENDER")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "minio", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q (want minio or s3)", c.Storage.Backend)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("SERVER_MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 0) {
		return fmt.Errorf("invalid rate limit: rps=%v burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("TRACING_ENDPOINT is required when tracing is enabled")
	}
	if c.SMS.Sender != "log" {
		return fmt.Errorf("unsupported SMS_SENDER %q", c.SMS.Sender)
	}
	return nil
}
