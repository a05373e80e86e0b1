// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env on top.
// - Upstream credentials keep their fixed env names (APP_ID, APP_SECRET,
//   ACCESS_LONG_LIVED_TOKEN, INSTAGRAM_ACCOUNT_ID) and win over any other
//   source.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Default configuration values.
const (
	defaultAddr          = ":8000"
	defaultLogLevel      = "info"
	defaultGraphBaseURL  = "https://graph.facebook.com/v20.0"
	defaultMaxRetries    = 3
	defaultRetryBackoff  = 5
	defaultHTTPTimeout   = 30
	defaultTopPostsCap   = 50
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr" validate:"required"`

	// GraphBaseURL points at the versioned Graph API root.
	GraphBaseURL string `koanf:"graph_base_url" validate:"required,url"`

	// AppID and AppSecret identify the Facebook app; only needed by the
	// accountid tool's token inspection.
	AppID     string `koanf:"app_id"`
	AppSecret string `koanf:"app_secret"`

	// AccessToken is the long-lived Graph API token.
	AccessToken string `koanf:"access_token" validate:"required"`

	// AccountID is the Instagram business account to read from.
	AccountID string `koanf:"account_id" validate:"required"`

	// MaxRetries bounds total attempts for a rate-limited upstream call.
	MaxRetries int `koanf:"max_retries" validate:"min=1"`

	// RetryBackoffSeconds is the sleep before a retry when the upstream 429
	// carries no Retry-After header.
	RetryBackoffSeconds int `koanf:"retry_backoff_seconds" validate:"min=1"`

	// UpstreamTimeoutSeconds bounds one outbound HTTP request.
	UpstreamTimeoutSeconds int `koanf:"upstream_timeout_seconds" validate:"min=1"`

	// MaxTopPostsLimit caps GET /top-posts?limit.
	MaxTopPostsLimit int `koanf:"max_top_posts_limit" validate:"min=1"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               defaultLogLevel,
		Addr:                   defaultAddr,
		GraphBaseURL:           defaultGraphBaseURL,
		MaxRetries:             defaultMaxRetries,
		RetryBackoffSeconds:    defaultRetryBackoff,
		UpstreamTimeoutSeconds: defaultHTTPTimeout,
		MaxTopPostsLimit:       defaultTopPostsCap,
	}
}

// RetryBackoff returns the retry backoff as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSeconds) * time.Second
}

// UpstreamTimeout returns the outbound request timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}
