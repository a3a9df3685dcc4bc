package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	HTTP     HTTPConfig
	Tax      TaxConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name     string
	Port     int
	Env      string
	LogLevel string
}

// HTTPConfig holds server and rate limiting configuration
type HTTPConfig struct {
	AllowedOrigins  []string
	RateLimit       int
	RateWindow      time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

const (
	SettingsSourcePostgres = "postgres"
	SettingsSourceFile     = "file"
)

// TaxConfig holds calculation policy that is not fixed by regulation
type TaxConfig struct {
	// Annual-value misdetection thresholds
	AnnualEarningsFactor    decimal.Decimal
	AnnualAbsoluteThreshold decimal.Decimal
	AnnualBasicFactor       decimal.Decimal
	AnnualRatioMin          decimal.Decimal
	AnnualRatioMax          decimal.Decimal

	// Settings document source
	SettingsSource string
	SettingsFile   string

	// Cache lifetimes
	SettingsCacheTTL time.Duration
	CategoryCacheTTL time.Duration
	TERRateCacheTTL  time.Duration
	PTKPCacheTTL     time.Duration
	YTDCacheTTL      time.Duration
	MethodCacheTTL   time.Duration

	CacheWarmInterval time.Duration
}

// DefaultTaxConfig returns the built-in thresholds and lifetimes.
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		AnnualEarningsFactor:    decimal.NewFromInt(3),
		AnnualAbsoluteThreshold: decimal.NewFromInt(100_000_000),
		AnnualBasicFactor:       decimal.NewFromInt(10),
		AnnualRatioMin:          decimal.NewFromInt(11),
		AnnualRatioMax:          decimal.NewFromInt(13),
		SettingsSource:          SettingsSourcePostgres,
		SettingsCacheTTL:        time.Hour,
		CategoryCacheTTL:        time.Hour,
		TERRateCacheTTL:         30 * time.Minute,
		PTKPCacheTTL:            time.Hour,
		YTDCacheTTL:             time.Hour,
		MethodCacheTTL:          time.Hour,
		CacheWarmInterval:       time.Hour,
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "pph21"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:     getEnv("APP_NAME", "pph21-engine"),
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// HTTP configuration
	rateLimit, err := strconv.Atoi(getEnv("HTTP_RATE_LIMIT", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_RATE_LIMIT: %w", err)
	}

	config.HTTP = HTTPConfig{
		AllowedOrigins:  getEnvSlice("HTTP_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimit:       rateLimit,
		RateWindow:      getDuration("HTTP_RATE_WINDOW", time.Minute),
		ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	// Tax configuration
	tax := DefaultTaxConfig()
	for _, item := range []struct {
		key string
		dst *decimal.Decimal
	}{
		{"TAX_ANNUAL_EARNINGS_FACTOR", &tax.AnnualEarningsFactor},
		{"TAX_ANNUAL_ABSOLUTE_THRESHOLD", &tax.AnnualAbsoluteThreshold},
		{"TAX_ANNUAL_BASIC_FACTOR", &tax.AnnualBasicFactor},
		{"TAX_ANNUAL_RATIO_MIN", &tax.AnnualRatioMin},
		{"TAX_ANNUAL_RATIO_MAX", &tax.AnnualRatioMax},
	} {
		if *item.dst, err = getDecimal(item.key, *item.dst); err != nil {
			return nil, err
		}
	}
	tax.SettingsSource = getEnv("TAX_SETTINGS_SOURCE", tax.SettingsSource)
	tax.SettingsFile = getEnv("TAX_SETTINGS_FILE", "")
	tax.SettingsCacheTTL = getDuration("TAX_SETTINGS_CACHE_TTL", tax.SettingsCacheTTL)
	tax.CategoryCacheTTL = getDuration("TAX_CATEGORY_CACHE_TTL", tax.CategoryCacheTTL)
	tax.TERRateCacheTTL = getDuration("TAX_TER_RATE_CACHE_TTL", tax.TERRateCacheTTL)
	tax.PTKPCacheTTL = getDuration("TAX_PTKP_CACHE_TTL", tax.PTKPCacheTTL)
	tax.YTDCacheTTL = getDuration("TAX_YTD_CACHE_TTL", tax.YTDCacheTTL)
	tax.MethodCacheTTL = getDuration("TAX_METHOD_CACHE_TTL", tax.MethodCacheTTL)
	tax.CacheWarmInterval = getDuration("TAX_CACHE_WARM_INTERVAL", tax.CacheWarmInterval)
	config.Tax = tax

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return c.Tax.Validate()
}

// Validate checks the tax policy values
func (t TaxConfig) Validate() error {
	switch t.SettingsSource {
	case SettingsSourcePostgres:
	case SettingsSourceFile:
		if t.SettingsFile == "" {
			return fmt.Errorf("TAX_SETTINGS_FILE is required when TAX_SETTINGS_SOURCE=file")
		}
	default:
		return fmt.Errorf("TAX_SETTINGS_SOURCE must be %q or %q", SettingsSourcePostgres, SettingsSourceFile)
	}
	if !t.AnnualEarningsFactor.IsPositive() || !t.AnnualAbsoluteThreshold.IsPositive() || !t.AnnualBasicFactor.IsPositive() {
		return fmt.Errorf("annual detection thresholds must be positive")
	}
	if t.AnnualRatioMin.GreaterThan(t.AnnualRatioMax) {
		return fmt.Errorf("TAX_ANNUAL_RATIO_MIN must not exceed TAX_ANNUAL_RATIO_MAX")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}

func getDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
