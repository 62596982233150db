package signup

import "time"

type Config struct {
	// Timeout bounds the audit and notification calls that follow a signup.
	SideEffectTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SideEffectTimeout: 3 * time.Second,
	}
}
