package config

import (
	"fmt"
	"os"
	"time"
)

// Config carries everything the process reads from the environment.
// Credentials are injected into the components that need them instead of
// being read from package-level state.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret    string
	JWTExpiresIn time.Duration

	PasswordSalt string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	RedisAddr string

	Domain    string
	ClientURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8000"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		PasswordSalt: os.Getenv("HASH_PW_SALT"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "465"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "Organivo <no-reply@organivo.app>"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		Domain:       os.Getenv("DOMAIN"),
		ClientURL:    os.Getenv("CLIENT_URL"),
	}

	expiresIn := getEnv("JWT_EXPIRES_IN", "24h")
	d, err := time.ParseDuration(expiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN %q: %w", expiresIn, err)
	}
	cfg.JWTExpiresIn = d

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if cfg.PasswordSalt == "" {
		return nil, fmt.Errorf("HASH_PW_SALT environment variable is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
