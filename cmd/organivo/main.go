package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/auth"
	"github.com/organivo/organivo/internal/config"
	"github.com/organivo/organivo/internal/mailer"
	"github.com/organivo/organivo/internal/middleware"
	"github.com/organivo/organivo/internal/router"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)

	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v", err)
	}

	var mail mailer.Mailer = mailer.LogMailer{}

	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		log.Println("SMTP_HOST not set, verification codes will be logged instead of mailed")
	}

	var limiter *middleware.RateLimiter

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = middleware.NewRateLimiter(client, "organivo:ratelimit:", 10, time.Minute)
	}

	r := router.New(router.Dependencies{
		Tokens:  tokens,
		Hasher:  auth.NewPasswordHasher(cfg.PasswordSalt),
		Mailer:  mail,
		Limiter: limiter,
		Domain:  cfg.Domain,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
