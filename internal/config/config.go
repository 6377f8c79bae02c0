package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	RedisURL      string
	NatsURL       string
	NatsToken     string
	LogLevel      string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	APIToken      string
	FetchTimeout  int // seconds, for job page fetches
}

func Load() Config {
	return Config{
		Port:          envInt("JOBTRACKER_PORT", 8760),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		RedisURL:      envStr("REDIS_URL", ""),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		GeminiAPIKey:  envStr("GEMINI_API_KEY", ""),
		GeminiModel:   envStr("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		GeminiBaseURL: envStr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		APIToken:      envStr("JOBTRACKER_API_TOKEN", ""),
		FetchTimeout:  envInt("FETCH_TIMEOUT_SECONDS", 10),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
