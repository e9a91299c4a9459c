package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig is the full configuration surface, read once at startup.
type AppConfig struct {
	// Monitored region.
	LocationName string  `validate:"required"`
	LocationCity string  `validate:"required"`
	Lat          float64 `validate:"latitude"`
	Lon          float64 `validate:"longitude"`

	// ProfileID selects the active threshold standard (us-epa, id-klhk).
	ProfileID string `validate:"required"`

	// UpdateInterval controls how often a collection cycle runs.
	UpdateInterval time.Duration `validate:"min=1m"`

	// CycleTimeout bounds one full cycle including all provider calls.
	CycleTimeout time.Duration `validate:"min=1s"`

	// HTTPTimeout bounds a single outbound provider request.
	HTTPTimeout time.Duration `validate:"min=1s"`

	// SufficiencyThreshold is the measurement count at which the
	// aggregator stops querying further fallback sources.
	SufficiencyThreshold int `validate:"min=1"`

	// Provider credentials. Key-gated sources are only registered when
	// their key is present.
	IQAirAPIKey  string
	AirNowAPIKey string

	// In-memory store retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	ExportDir   string
	Port        string
	MetricsPort string
	LogLevel    string
}

var validate = validator.New()

// Load reads configuration from environment with the original system's
// defaults (New York, 30-minute interval, US EPA standard).
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		LocationName:         getenvDefault("LOCATION_NAME", "New York, USA"),
		LocationCity:         getenvDefault("LOCATION_CITY", "New York"),
		ProfileID:            getenvDefault("PROFILE_ID", "us-epa"),
		IQAirAPIKey:          os.Getenv("IQAIR_API_KEY"),
		AirNowAPIKey:         os.Getenv("AIRNOW_API_KEY"),
		SufficiencyThreshold: getenvInt("SUFFICIENCY_THRESHOLD", 2),
		StoreMaxHistory:      getenvInt("STORE_MAX_HISTORY", 48), // roughly 24h at 30-minute intervals
		ExportDir:            getenvDefault("EXPORT_DIR", "exports"),
		Port:                 getenvDefault("PORT", "8080"),
		MetricsPort:          getenvDefault("METRICS_PORT", "9090"),
		LogLevel:             getenvDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Lat, err = getenvFloat("LOCATION_LAT", 40.7128); err != nil {
		return nil, err
	}
	if cfg.Lon, err = getenvFloat("LOCATION_LON", -74.0060); err != nil {
		return nil, err
	}
	if cfg.UpdateInterval, err = getenvDuration("UPDATE_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = getenvDuration("CYCLE_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
