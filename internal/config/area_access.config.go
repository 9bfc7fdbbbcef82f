package config

import (
	"os"
)

type AppConfig struct {
	HTTPAddr    string
	RedisAddr   string
	RedisPass   string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:    getEnv("HTTP_ADDR", ":7340"),
		RedisAddr:   getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", "identity-service"),
		JWTAudience: getEnv("JWT_AUDIENCE", "area-access"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
