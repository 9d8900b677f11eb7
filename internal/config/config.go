package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// AppConfig collects everything main.go needs to wire the service.
type AppConfig struct {
	ListenAddr         string
	StorageDriver      string
	DatabasePath       string
	DatabaseURL        string
	RedisURL           string
	RedisKeyPrefix     string
	Location           *time.Location
	FCMCredentialsFile string
	MetricsUser        string
	MetricsPass        string
	PprofSecret        string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads a .env file when present, then environment variables, and
// fills in defaults for anything missing.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	port := envOr("PORT", "3333")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = ":" + port
	}

	timezone := envOr("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid TIMEZONE %q: %w", timezone, err)
	}

	rps, err := strconv.ParseFloat(envOr("RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return AppConfig{}, fmt.Errorf("invalid RATE_LIMIT_RPS: %q", os.Getenv("RATE_LIMIT_RPS"))
	}

	burst, err := strconv.Atoi(envOr("RATE_LIMIT_BURST", "30"))
	if err != nil || burst <= 0 {
		return AppConfig{}, fmt.Errorf("invalid RATE_LIMIT_BURST: %q", os.Getenv("RATE_LIMIT_BURST"))
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		StorageDriver:      strings.ToLower(envOr("STORAGE_DRIVER", "sqlite")),
		DatabasePath:       envOr("DATABASE_PATH", "waterbuddy.db"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		RedisKeyPrefix:     envOr("REDIS_KEY_PREFIX", "waterbuddy:"),
		Location:           loc,
		FCMCredentialsFile: envOr("FCM_CREDENTIALS_FILE", "./serviceAccountKey.json"),
		MetricsUser:        os.Getenv("METRICS_USER"),
		MetricsPass:        os.Getenv("METRICS_PASS"),
		PprofSecret:        os.Getenv("PPROF_SECRET"),
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
