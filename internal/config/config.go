package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN        string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL        string `env:"RABBITMQ_URL,required=true"`
	RedisURL           string `env:"REDIS_URL,required=true"`
	SendGridAPIKey     string `env:"SENDGRID_API_KEY,required=true"`
	FromEmail          string `env:"FROM_EMAIL,required=true"`
	FromName           string `env:"FROM_NAME,default=Event Notifications"`
	QueueName          string `env:"QUEUE_NAME,default=email.notifications"`
	MaxSendAttempts    int    `env:"MAX_SEND_ATTEMPTS,default=3"`
	RetryIntervalMins  int    `env:"RETRY_INTERVAL_MINUTES,default=5"`
	RetryWindowHours   int    `env:"RETRY_WINDOW_HOURS,default=24"`
	RetryScanLimit     int    `env:"RETRY_SCAN_LIMIT,default=100"`
	RateLimitPerSec    int    `env:"RATE_LIMIT_PER_SEC,default=10"`
	APIPort            int    `env:"API_PORT,default=8080"`
	LogLevel           string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
