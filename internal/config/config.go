// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	JWTExpiryMinutes int    `mapstructure:"JWT_EXPIRY_MINUTES"`
	Port             string `mapstructure:"PORT"`
	Env              string `mapstructure:"APP_ENV"`

	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBReadHost               string `mapstructure:"DB_READ_HOST"`
	DBReadPort               string `mapstructure:"DB_READ_PORT"`
	DBReadUser               string `mapstructure:"DB_READ_USER"`
	DBReadPassword           string `mapstructure:"DB_READ_PASSWORD"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBAutoMigrate            bool   `mapstructure:"DB_AUTO_MIGRATE"`

	RedisURL               string `mapstructure:"REDIS_URL"`
	ProfileCacheTTLSeconds int    `mapstructure:"PROFILE_CACHE_TTL_SECONDS"`
	AllowedOrigins         string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags           string `mapstructure:"FEATURE_FLAGS"`

	YouTubeAPIKey          string `mapstructure:"YOUTUBE_API_KEY"`
	YouTubeAPIURL          string `mapstructure:"YOUTUBE_API_URL"`
	MetadataTimeoutSeconds int    `mapstructure:"METADATA_TIMEOUT_SECONDS"`
	MetadataRatePerSecond  int    `mapstructure:"METADATA_RATE_PER_SECOND"`
	UploadMaxFileSizeMB    int    `mapstructure:"UPLOAD_MAX_FILE_SIZE_MB"`

	StorageDriver        string `mapstructure:"STORAGE_DRIVER"`
	StorageLocalDir      string `mapstructure:"STORAGE_LOCAL_DIR"`
	StoragePublicBaseURL string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`
	AppwriteURL          string `mapstructure:"APPWRITE_URL"`
	AppwriteProjectID    string `mapstructure:"APPWRITE_PROJECT_ID"`
	AppwriteAPIKey       string `mapstructure:"APPWRITE_API_KEY"`
	AppwriteBucketID     string `mapstructure:"APPWRITE_BUCKET_ID"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A local .env only fills variables that are not already set.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional; env vars and defaults cover every key.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_MINUTES", 30)

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "linkshelf")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_AUTO_MIGRATE", true)

	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("PROFILE_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "metadata_enrichment=on")

	viper.SetDefault("YOUTUBE_API_KEY", "")
	viper.SetDefault("YOUTUBE_API_URL", "https://www.googleapis.com/youtube/v3/videos")
	viper.SetDefault("METADATA_RATE_PER_SECOND", 10)
	viper.SetDefault("METADATA_TIMEOUT_SECONDS", 8)
	viper.SetDefault("UPLOAD_MAX_FILE_SIZE_MB", 5)

	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_LOCAL_DIR", "/tmp/linkshelf/storage")
	viper.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8375")
	viper.SetDefault("APPWRITE_URL", "")
	viper.SetDefault("APPWRITE_PROJECT_ID", "")
	viper.SetDefault("APPWRITE_API_KEY", "")
	viper.SetDefault("APPWRITE_BUCKET_ID", "")

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpiryMinutes <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}
	if c.UploadMaxFileSizeMB <= 0 {
		return errors.New("UPLOAD_MAX_FILE_SIZE_MB must be positive")
	}
	if c.MetadataTimeoutSeconds <= 0 {
		return errors.New("METADATA_TIMEOUT_SECONDS must be positive")
	}

	switch c.StorageDriver {
	case "", "local":
	case "appwrite":
		if c.AppwriteURL == "" || c.AppwriteProjectID == "" || c.AppwriteBucketID == "" || c.AppwriteAPIKey == "" {
			return errors.New("APPWRITE_URL, APPWRITE_PROJECT_ID, APPWRITE_API_KEY and APPWRITE_BUCKET_ID are required for the appwrite storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
		if c.YouTubeAPIKey == "" {
			log.Println("WARNING: YOUTUBE_API_KEY is empty; links will be stored without metadata.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
