package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustLoad loads the configuration and stops the process when a secret the
// service cannot run without is missing.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}

	MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
	MustNonEmpty(cfg.SMTP.Username, "SMTP_USERNAME")
	MustNonEmpty(cfg.SMTP.Password, "SMTP_PASSWORD")

	return cfg
}
