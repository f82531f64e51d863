package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

const masked = "******"

// PrintConfig writes the effective configuration to stdout with secrets masked.
func PrintConfig(cfg *Config) {
	out, err := yaml.Marshal(cfg.masked())
	if err != nil {
		fmt.Printf("failed to print config: %v\n", err)
		return
	}
	fmt.Printf("configuration:\n%s\n", out)
}

func (c Config) masked() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = masked
		}
	}
	mask(&c.Database.Password)
	mask(&c.RabbitMQ.Password)
	mask(&c.Redis.Password)
	mask(&c.Auth.JWTSecret)
	mask(&c.Agent.Password)
	return c
}
