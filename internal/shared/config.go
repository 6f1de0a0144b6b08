package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	GeocoderURL    string
	GeocoderEmail  string
	GeocoderRPS    float64
	GeocodeWorkers int

	SnapshotTTL       time.Duration
	PublicationsLimit int
	RulesFile         string

	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads the environment. A .env file in the working directory is
// applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a positive number; using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", ""),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/immodash?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		GeocoderURL:    env("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderEmail:  env("GEOCODER_EMAIL", ""),
		GeocoderRPS:    atof("GEOCODER_RPS", 1),
		GeocodeWorkers: atoi("GEOCODE_WORKERS", 4),

		SnapshotTTL:       time.Duration(atoi("SNAPSHOT_TTL_SECONDS", 300)) * time.Second,
		PublicationsLimit: atoi("PUBLICATIONS_LIMIT", 500),
		RulesFile:         env("CLASSIFIER_RULES_FILE", ""),

		JWTSecret: env("JWT_SECRET", ""),
		TokenTTL:  time.Duration(atoi("TOKEN_TTL_HOURS", 24)) * time.Hour,
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	if c.GeocoderEmail == "" {
		log.Warn().Msg("GEOCODER_EMAIL is empty; Nominatim asks for a contact address")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
