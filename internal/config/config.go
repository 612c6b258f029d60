package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
	ServerPort  string `env:"SERVER_PORT"  envDefault:"3000"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"shop.db"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	SMTP SMTPConfig

	AllowedEmailDomain string `env:"ALLOWED_EMAIL_DOMAIN" envDefault:"gmail.com"`

	AdminEmail    string `env:"ADMIN_EMAIL"    envDefault:"admin@modavibe.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"123456"`

	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`

	CSRFEnabled bool `env:"CSRF_ENABLED" envDefault:"false"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ES ESConfig
}

type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"     envDefault:"smtp.gmail.com"`
	Port     int           `env:"SMTP_PORT"     envDefault:"587"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	From     string        `env:"SMTP_FROM"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT"  envDefault:"10s"`
}

type ESConfig struct {
	URL      string `env:"ES_URL"`
	User     string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	Index    string `env:"ES_INDEX" envDefault:"products"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AllowedEmailDomain = strings.ToLower(strings.TrimPrefix(cfg.AllowedEmailDomain, "@"))
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	return &cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.ServerPort
}
