package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// credentialEnv maps the upstream credential env names fixed by the Graph
// API setup docs onto config keys. These override file and prefixed env.
var credentialEnv = map[string]string{
	"APP_ID":                  "app_id",
	"APP_SECRET":              "app_secret",
	"ACCESS_LONG_LIVED_TOKEN": "access_token",
	"INSTAGRAM_ACCOUNT_ID":    "account_id",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if INSTAPULSE_CONFIG is set
//  3. env (prefix INSTAPULSE_)
//  4. fixed credential env names (APP_ID, APP_SECRET, ...)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("INSTAPULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: INSTAPULSE_ADDR, INSTAPULSE_MAX_RETRIES, ...
	// Map env keys like INSTAPULSE_MAX_RETRIES -> max_retries (flat keys).
	envProvider := env.Provider("INSTAPULSE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "instapulse_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// The credential env names are part of the deployment contract and take
	// precedence over every other source.
	applyCredentialEnv(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

func applyCredentialEnv(cfg *Config) {
	for name, key := range credentialEnv {
		val := os.Getenv(name)
		if val == "" {
			continue
		}
		switch key {
		case "app_id":
			cfg.AppID = val
		case "app_secret":
			cfg.AppSecret = val
		case "access_token":
			cfg.AccessToken = val
		case "account_id":
			cfg.AccountID = val
		}
	}
}
