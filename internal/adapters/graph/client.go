// Package graph is the outbound adapter for the Instagram Graph API. It
// performs authenticated GET calls, masks transient rate limiting with a
// bounded retry loop, and translates upstream failures into the service's
// error taxonomy.
package graph

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/instapulse/pkg/logger"
	"github.com/okian/instapulse/pkg/metrics"
)

// Default client configuration.
const (
	DefaultBaseURL      = "https://graph.facebook.com/v20.0"
	defaultMaxRetries   = 3
	defaultRetryBackoff = 5 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

// rateLimitDetail is the fixed message reported once the retry budget for a
// 429 response is exhausted.
const rateLimitDetail = "Rate limit exceeded. Please try again later."

// Client issues authenticated read calls against the Graph API. Calls are
// synchronous; a rate-limited call blocks its caller for the retry sleeps.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	accessToken  string
	accountID    string
	maxRetries   int
	retryBackoff time.Duration
	logger       logger.Logger
}

// NewClient builds a Client for the given long-lived token and account ID.
func NewClient(accessToken, accountID string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:      DefaultBaseURL,
		accessToken:  accessToken,
		accountID:    accountID,
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	return c
}

// AccountID returns the configured account identifier.
func (c *Client) AccountID() string {
	return c.accountID
}

// graphErrorEnvelope mirrors the upstream error body shape.
type graphErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Call performs one logical GET against path, adding the access token to
// params, and decodes the JSON body into out.
//
// A 429 response is retried after honoring the Retry-After header (falling
// back to the configured backoff) until maxRetries total attempts have been
// made; the final 429 is reported as ErrRateLimited. Any other non-2xx is
// translated immediately with the upstream status and message. Transport
// failures and undecodable bodies map to ErrTransport and ErrDecode.
func (c *Client) Call(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.accessToken)
	target := c.baseURL + "/" + path + "?" + params.Encode()
	edge := edgeLabel(path)

	start := time.Now()
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return newAPIError(http.StatusInternalServerError, ErrTransport, "Request failed: "+err.Error())
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordUpstreamRequest(edge, "transport_error")
			return newAPIError(http.StatusInternalServerError, ErrTransport, "Request failed: "+err.Error())
		}

		// Bind the response of this attempt locally so error translation
		// never reaches for a variable that a transport failure left unset.
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			metrics.RecordUpstreamRequest(edge, "transport_error")
			return newAPIError(http.StatusInternalServerError, ErrTransport, "Request failed: "+readErr.Error())
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= c.maxRetries {
				metrics.RecordUpstreamRateLimited()
				metrics.RecordUpstreamRequest(edge, "rate_limited")
				return newAPIError(http.StatusTooManyRequests, ErrRateLimited, rateLimitDetail)
			}
			delay := retryDelay(resp.Header, c.retryBackoff)
			c.logger.Warn(ctx, "rate limited by upstream; backing off",
				logger.String("path", path),
				logger.Int("attempt", attempt),
				logger.String("delay", delay.String()),
			)
			metrics.RecordUpstreamRetry()
			select {
			case <-ctx.Done():
				return newAPIError(http.StatusInternalServerError, ErrTransport, "Request failed: "+ctx.Err().Error())
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			metrics.RecordUpstreamRequest(edge, "upstream_error")
			return newAPIError(resp.StatusCode, ErrUpstream, upstreamMessage(body, resp.Status))
		}

		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				metrics.RecordUpstreamRequest(edge, "decode_error")
				return newAPIError(http.StatusInternalServerError, ErrDecode, "Invalid JSON response: "+err.Error())
			}
		}
		metrics.RecordUpstreamRequest(edge, "ok")
		metrics.RecordUpstreamLatency(time.Since(start).Seconds())
		return nil
	}
}

// edgeLabel maps a request path to a low-cardinality metrics label. Media
// object reads hit paths that embed the media ID, so anything unrecognized
// collapses to "object".
func edgeLabel(path string) string {
	switch {
	case strings.HasSuffix(path, "/insights"):
		return "insights"
	case strings.HasSuffix(path, "/media"):
		return "media"
	case path == "debug_token":
		return "debug_token"
	default:
		return "object"
	}
}

// retryDelay reads Retry-After seconds from the response headers, falling
// back to the configured backoff when the header is missing or malformed.
func retryDelay(h http.Header, fallback time.Duration) time.Duration {
	raw := h.Get("Retry-After")
	if raw == "" {
		return fallback
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// upstreamMessage extracts the Graph error message, falling back to the
// HTTP status line when the body is not the expected envelope.
func upstreamMessage(body []byte, status string) string {
	var envelope graphErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return status
}
