package unregister

import "time"

type Config struct {
	AuditTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AuditTimeout: 3 * time.Second,
	}
}
