package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultMaxUploadBytes        = 50 << 20
	defaultLedgerInsertBatchSize = 500
)

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	IsProduction    bool
	EnableDBCheck   bool
	JWTSecret       string
	JWTIssuer       string
	FrontendBaseURL string
	MigrationsPath  string

	// Ledger upload
	MaxUploadBytes        int64
	LedgerInsertBatchSize int
	GLDateDayFirst        bool
	UploadRateLimit       string

	// Cache invalidation
	RedisURL            string
	LedgerChangeChannel string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	viper.SetDefault("LEDGER_INSERT_BATCH_SIZE", defaultLedgerInsertBatchSize)
	viper.SetDefault("GL_DATE_DAY_FIRST", true)
	viper.SetDefault("RATE_LIMIT_UPLOADS", "30-M")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("LEDGER_CHANGE_CHANNEL", "ledger.changed")

	// Environment variables override defaults and .env values.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:           viper.GetString("PGSQL_URL"),
		Port:                  viper.GetString("PORT"),
		IsProduction:          viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:             viper.GetString("JWT_SECRET"),
		JWTIssuer:             viper.GetString("JWT_ISSUER"),
		FrontendBaseURL:       viper.GetString("FRONTEND_BASE_URL"),
		MigrationsPath:        viper.GetString("MIGRATIONS_PATH"),
		MaxUploadBytes:        viper.GetInt64("MAX_UPLOAD_BYTES"),
		LedgerInsertBatchSize: viper.GetInt("LEDGER_INSERT_BATCH_SIZE"),
		GLDateDayFirst:        viper.GetBool("GL_DATE_DAY_FIRST"),
		UploadRateLimit:       viper.GetString("RATE_LIMIT_UPLOADS"),
		RedisURL:              viper.GetString("REDIS_URL"),
		LedgerChangeChannel:   viper.GetString("LEDGER_CHANGE_CHANNEL"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.MaxUploadBytes <= 0 {
		log.Printf("Warning: Invalid MAX_UPLOAD_BYTES (%d). Defaulting to %d.\n", cfg.MaxUploadBytes, defaultMaxUploadBytes)
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	if cfg.LedgerInsertBatchSize <= 0 {
		log.Printf("Warning: Invalid LEDGER_INSERT_BATCH_SIZE (%d). Defaulting to %d.\n", cfg.LedgerInsertBatchSize, defaultLedgerInsertBatchSize)
		cfg.LedgerInsertBatchSize = defaultLedgerInsertBatchSize
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set. Ledger change notifications will only be logged.")
	}

	return cfg, nil
}
