package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

type LoggerConfig struct {
	Level    string
	Filename string
}

type SessionConfig struct {
	Name   string
	Secret string
	MaxAge time.Duration
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether Google sign-in has credentials configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type StorageConfig struct {
	Type         string // local | s3
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
	PublicURL    string
}

type AppConfig struct {
	Port          string
	Env           string
	MongoURI      string
	MongoDatabase string
	ClientURL     string

	Session   SessionConfig
	Google    GoogleConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
	Storage   StorageConfig

	WorkerPoolSize           int
	InteractionRetentionDays int

	// TrustProxy reads the client address from X-Forwarded-For set by a
	// reverse proxy on a private network; otherwise the socket peer is used.
	TrustProxy bool
}

// IsProduction drives cookie flags and log encoding.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Load builds the application configuration from the environment.
func Load() *AppConfig {
	env := GetEnv("APP_ENV", GetEnv("NODE_ENV", "development"))

	cfg := &AppConfig{
		Port:          GetEnv("PORT", "5000"),
		Env:           strings.ToLower(env),
		MongoURI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: GetEnv("MONGODB_DATABASE", "realestate"),
		ClientURL:     strings.TrimRight(GetEnv("CLIENT_URL", "http://localhost:3000"), "/"),
		Session: SessionConfig{
			Name:   GetEnv("SESSION_NAME", "estatehub.sid"),
			Secret: GetEnv("SESSION_SECRET", ""),
			MaxAge: time.Duration(cast.ToInt(GetEnv("SESSION_MAX_AGE_HOURS", "168"))) * time.Hour,
		},
		Google: GoogleConfig{
			ClientID:     GetEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: GetEnv("GOOGLE_CLIENT_SECRET", ""),
			CallbackURL:  GetEnv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback"),
		},
		RateLimit: RateLimitConfig{
			Max:    cast.ToInt(GetEnv("RATE_LIMIT_MAX", "100")),
			Window: cast.ToDuration(GetEnv("RATE_LIMIT_WINDOW", "15m")),
		},
		Logger: LoggerConfig{
			Level:    GetEnv("LOG_LEVEL", "info"),
			Filename: GetEnv("LOG_FILE", ""),
		},
		Storage: StorageConfig{
			Type:         GetEnv("STORAGE_TYPE", "local"),
			LocalPath:    GetEnv("STORAGE_LOCAL_PATH", "./uploads"),
			S3Bucket:     GetEnv("AWS_S3_BUCKET", ""),
			S3Region:     GetEnv("AWS_REGION", "ap-south-1"),
			AWSAccessKey: GetEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey: GetEnv("AWS_SECRET_ACCESS_KEY", ""),
			PublicURL:    strings.TrimRight(GetEnv("STORAGE_PUBLIC_URL", ""), "/"),
		},
		WorkerPoolSize:           cast.ToInt(GetEnv("WORKER_POOL_SIZE", "64")),
		InteractionRetentionDays: cast.ToInt(GetEnv("INTERACTION_RETENTION_DAYS", "90")),
		TrustProxy:               cast.ToBool(GetEnv("TRUST_PROXY", "false")),
	}

	if cfg.Session.MaxAge <= 0 {
		cfg.Session.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.RateLimit.Max <= 0 {
		cfg.RateLimit.Max = 100
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = 15 * time.Minute
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 64
	}
	if cfg.InteractionRetentionDays <= 0 {
		cfg.InteractionRetentionDays = 90
	}
	if cfg.Session.Secret == "" && !cfg.IsProduction() {
		cfg.Session.Secret = "development-session-secret-change-me"
	}
	return cfg
}

// Validate reports configuration that would make the server unusable.
func (c *AppConfig) Validate() error {
	var problems []string
	if c.MongoURI == "" {
		problems = append(problems, "MONGODB_URI is required")
	}
	if c.Session.Secret == "" {
		problems = append(problems, "SESSION_SECRET is required")
	} else if c.IsProduction() && len(c.Session.Secret) < 32 {
		problems = append(problems, "SESSION_SECRET must be at least 32 characters in production")
	}
	if c.Storage.Type == "s3" && c.Storage.S3Bucket == "" {
		problems = append(problems, "AWS_S3_BUCKET is required when STORAGE_TYPE=s3")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
