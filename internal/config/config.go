package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DSN       string
	JWTSecret string
	AppPort   string

	LogLevel  string
	LogFormat string

	// LockWaitTimeout bounds how long a lifecycle operation waits for the asset row lock.
	LockWaitTimeout time.Duration

	SearchBranchLimit int
	SearchMaxPageSize int

	RateLimitRPS float64
	SeedOnStart  bool
}

func Load() (Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded successfully!")
	}

	cfg := Config{
		DSN:       os.Getenv("MYSQL_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		AppPort:   os.Getenv("APP_PORT"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	}

	if cfg.DSN == "" {
		return cfg, errors.New("MYSQL_DSN not set in environment")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-only"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	var err error
	if cfg.LockWaitTimeout, err = durationEnv("LOCK_WAIT_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.SearchBranchLimit, err = intEnv("SEARCH_BRANCH_LIMIT", 50); err != nil {
		return cfg, err
	}
	if cfg.SearchMaxPageSize, err = intEnv("SEARCH_MAX_PAGE_SIZE", 100); err != nil {
		return cfg, err
	}
	if cfg.RateLimitRPS, err = floatEnv("RATE_LIMIT_RPS", 20); err != nil {
		return cfg, err
	}
	if v := os.Getenv("SEED_ON_START"); v != "" {
		if cfg.SeedOnStart, err = strconv.ParseBool(v); err != nil {
			return cfg, errors.New("SEED_ON_START must be a boolean")
		}
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, errors.New(key + " must be a positive duration (e.g. 5s)")
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, errors.New(key + " must be a positive number")
	}
	return f, nil
}
