package config

import (
	"os"
	"strconv"
	"time"

	"taskboard/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Registration endpoint limits
	RegisterRateLimit  int
	RegisterRateWindow time.Duration

	// Optional directory with the registration page and other assets
	StaticDir string

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, with .env support.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	registerLimit := 5
	if v := os.Getenv("REGISTER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			registerLimit = n
		}
	}

	registerWindow := time.Minute
	if v := os.Getenv("REGISTER_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			registerWindow = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:            port,
		DatabaseURL:        dbURL,
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		RegisterRateLimit:  registerLimit,
		RegisterRateWindow: registerWindow,
		StaticDir:          os.Getenv("STATIC_DIR"),
		LogLevel:           envDefault("LOG_LEVEL", "info"),
		LogJSON:            os.Getenv("LOG_JSON") == "true",
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
