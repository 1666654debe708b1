package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MongoDB holds messages, stories, admin accounts and GridFS images
	MongoDB MongoDBConfig `json:"mongodb"`

	// Redis is optional, only used for the category cache
	Redis RedisConfig `json:"redis"`

	Auth AuthConfig `json:"auth"`

	Moderation ModerationConfig `json:"moderation"`

	Media MediaConfig `json:"media"`

	Story StoryConfig `json:"story"`

	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port           string   `json:"port"`
	Host           string   `json:"host"`
	ReadTimeout    int      `json:"read_timeout"`
	WriteTimeout   int      `json:"write_timeout"`
	Environment    string   `json:"environment"` // development, production
	AllowedOrigins []string `json:"allowed_origins"`
}

type MongoDBConfig struct {
	URI      string `json:"uri"` // takes precedence over the parts below
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

type RedisConfig struct {
	Addr        string        `json:"addr"` // empty disables the cache
	Password    string        `json:"password"`
	DB          int           `json:"db"`
	CategoryTTL time.Duration `json:"category_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `json:"-"`
	TokenTTL  time.Duration `json:"token_ttl"`
	Issuer    string        `json:"issuer"`
}

// ModerationConfig drives the content validator and the toxicity classifier
type ModerationConfig struct {
	MessageMaxLength  int      `json:"message_max_length"`
	ReplyMaxLength    int      `json:"reply_max_length"`
	SafeDomains       []string `json:"safe_domains"`
	ToxicityThreshold float64  `json:"toxicity_threshold"`
	OpenAIKey         string   `json:"-"`
	OpenAIBaseURL     string   `json:"openai_base_url"`
	ModerationModel   string   `json:"moderation_model"`
}

// MediaConfig selects where story images are stored
type MediaConfig struct {
	Backend        string `json:"backend"` // gridfs or s3
	MaxUploadBytes int64  `json:"max_upload_bytes"`
	MaxWidth       int    `json:"max_width"`
	MaxHeight      int    `json:"max_height"`
	MaxPixels      int64  `json:"max_pixels"`

	// ServerPort is used by cmd/media-server only
	ServerPort string `json:"server_port"`

	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"-"`
	S3SecretKey string `json:"-"`
	S3Bucket    string `json:"s3_bucket"`
	S3Region    string `json:"s3_region"`
	S3PublicURL string `json:"s3_public_url"`
	S3UseSSL    bool   `json:"s3_use_ssl"`
}

type StoryConfig struct {
	TTL             time.Duration `json:"ttl"` // 0 keeps stories forever
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level"` // debug, info, warn, error
}

var DefaultSafeDomains = []string{"example.com", "trustedsite.org", "securepage.net"}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "5000"),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			Environment:    getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", ""),
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "anonboard"),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			CategoryTTL: getEnvAsDuration("REDIS_CATEGORY_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", time.Hour),
			Issuer:    getEnv("JWT_ISSUER", "anonboard"),
		},
		Moderation: ModerationConfig{
			MessageMaxLength:  getEnvAsInt("MESSAGE_MAX_LENGTH", 500),
			ReplyMaxLength:    getEnvAsInt("REPLY_MAX_LENGTH", 700),
			SafeDomains:       getEnvAsList("SAFE_DOMAINS", DefaultSafeDomains),
			ToxicityThreshold: getEnvAsFloat("TOXICITY_THRESHOLD", 0.9),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			ModerationModel:   getEnv("MODERATION_MODEL", "omni-moderation-latest"),
		},
		Media: MediaConfig{
			Backend:        getEnv("MEDIA_BACKEND", "gridfs"),
			MaxUploadBytes: int64(getEnvAsInt("MEDIA_MAX_UPLOAD_BYTES", 5<<20)),
			MaxWidth:       getEnvAsInt("MEDIA_MAX_WIDTH", 1080),
			MaxHeight:      getEnvAsInt("MEDIA_MAX_HEIGHT", 1920),
			MaxPixels:      int64(getEnvAsInt("MEDIA_MAX_PIXELS", 40_000_000)),
			ServerPort:     getEnv("MEDIA_SERVER_PORT", "8080"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", ""),
			S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),
			S3UseSSL:       getEnvAsBool("S3_USE_SSL", true),
		},
		Story: StoryConfig{
			TTL:             getEnvAsDuration("STORY_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("STORY_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate reports configuration the server cannot run without.
func (cfg *Config) Validate() error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	switch cfg.Media.Backend {
	case "gridfs":
	case "s3":
		if cfg.Media.S3Endpoint == "" || cfg.Media.S3Bucket == "" {
			return errors.New("S3_ENDPOINT and S3_BUCKET are required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.Media.Backend)
	}
	return nil
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.URI != "" {
		return cfg.MongoDB.URI
	}
	if cfg.MongoDB.Username != "" && cfg.MongoDB.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
			cfg.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
