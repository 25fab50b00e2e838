package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every externally supplied setting of the server
type Config struct {
	Server   ServerConfig
	Dynamo   DynamoConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Exchange ExchangeConfig
	Redis    RedisConfig

	AISuggestionAPIKey string
}

type ServerConfig struct {
	Port       string
	CORSOrigin string
}

type DynamoConfig struct {
	Region      string
	Endpoint    string
	TablePrefix string
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

type UploadConfig struct {
	Driver   string
	Dir      string
	Bucket   string
	MaxBytes int64
}

type ExchangeConfig struct {
	MatchRequestTTL time.Duration
	ListingTTL      time.Duration
	SweepInterval   time.Duration
}

type RedisConfig struct {
	URL     string
	Channel string
}

// ErrMissingJWTSecret is returned when JWT_SECRET is not set
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using process environment")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("TABLE_PREFIX", "")
	v.SetDefault("JWT_EXPIRY", "168h")
	v.SetDefault("UPLOAD_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_SIZE", 5<<20)
	v.SetDefault("MATCH_REQUEST_TTL", "168h")
	v.SetDefault("LISTING_TTL", "720h")
	v.SetDefault("SWEEP_INTERVAL", "1h")
	v.SetDefault("REDIS_CHANNEL", "hostelswap:events")
	return v
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:       v.GetString("PORT"),
			CORSOrigin: v.GetString("CORS_ORIGIN"),
		},
		Dynamo: DynamoConfig{
			Region:      v.GetString("AWS_REGION"),
			Endpoint:    v.GetString("DYNAMODB_ENDPOINT"),
			TablePrefix: v.GetString("TABLE_PREFIX"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			JWTExpiry: v.GetDuration("JWT_EXPIRY"),
		},
		Upload: UploadConfig{
			Driver:   v.GetString("UPLOAD_DRIVER"),
			Dir:      v.GetString("UPLOAD_DIR"),
			Bucket:   v.GetString("S3_BUCKET_NAME"),
			MaxBytes: v.GetInt64("MAX_UPLOAD_SIZE"),
		},
		Exchange: ExchangeConfig{
			MatchRequestTTL: v.GetDuration("MATCH_REQUEST_TTL"),
			ListingTTL:      v.GetDuration("LISTING_TTL"),
			SweepInterval:   v.GetDuration("SWEEP_INTERVAL"),
		},
		Redis: RedisConfig{
			URL:     v.GetString("REDIS_URL"),
			Channel: v.GetString("REDIS_CHANNEL"),
		},
		AISuggestionAPIKey: v.GetString("AI_SUGGESTION_API_KEY"),
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.Upload.Driver == "s3" && cfg.Upload.Bucket == "" {
		return nil, errors.New("S3_BUCKET_NAME must be set when UPLOAD_DRIVER is s3")
	}
	return cfg, nil
}
