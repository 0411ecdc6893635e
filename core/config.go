package core

import (
	"fmt"
	"strings"
)

type CredentialConfig struct {
	TokenBytes int `json:"token_bytes" koanf:"token_bytes" mapstructure:"token_bytes"`
	HashCost   int `json:"hash_cost" koanf:"hash_cost" mapstructure:"hash_cost"`
}

type Config struct {
	// ServiceName is the catalog offering name surfaced in duplicate-binding
	// messages.
	ServiceName string `json:"service_name" koanf:"service_name" mapstructure:"service_name"`
	// DashboardURL is echoed on provision responses. The broker ships no
	// dashboard, so the default stays empty.
	DashboardURL string           `json:"dashboard_url" koanf:"dashboard_url" mapstructure:"dashboard_url"`
	Credential   CredentialConfig `json:"credential" koanf:"credential" mapstructure:"credential"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "servicebroker",
		Credential:  CredentialConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Credential.TokenBytes < 0 {
		return fmt.Errorf("core: credential.token_bytes must be >= 0")
	}
	if c.Credential.HashCost < 0 {
		return fmt.Errorf("core: credential.hash_cost must be >= 0")
	}
	return nil
}
