// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/okian/instapulse/internal/adapters/graph"
	"github.com/okian/instapulse/internal/domain/insights"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// AccountInsights passes the upstream insight series through unchanged.
	AccountInsights(ctx context.Context, period, metrics, since, until string) ([]insights.InsightMetric, error)

	// GrowthTrends compares two adjacent half-windows of the lookback range.
	GrowthTrends(ctx context.Context, windowDays int) ([]insights.GrowthTrend, error)

	// TopPosts ranks recent posts by engagement score.
	TopPosts(ctx context.Context, rangeDays, limit int) ([]insights.PostEngagement, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rootHandler     *RootHandler
	insightsHandler *InsightsHandler
	trendsHandler   *TrendsHandler
	topPostsHandler *TopPostsHandler
}

// NewServer creates a new API server with all handlers. maxTopPosts caps the
// /top-posts limit parameter.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxTopPosts int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		rootHandler:     NewRootHandler(),
		insightsHandler: NewInsightsHandler(deps),
		trendsHandler:   NewTrendsHandler(deps),
		topPostsHandler: NewTopPostsHandler(deps, maxTopPosts),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/account-insights", RequestIDMiddleware(MetricsMiddleware(s.insightsHandler.HandleGetInsights, "account-insights")))
	mux.HandleFunc("/growth-trends", RequestIDMiddleware(MetricsMiddleware(s.trendsHandler.HandleGetTrends, "growth-trends")))
	mux.HandleFunc("/top-posts", RequestIDMiddleware(MetricsMiddleware(s.topPostsHandler.HandleGetTopPosts, "top-posts")))
	mux.HandleFunc("/", RequestIDMiddleware(MetricsMiddleware(s.rootHandler.HandleRoot, "root")))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeUpstreamError translates a failed upstream call into the response
// mandated by the error taxonomy: upstream-rejected calls propagate the
// upstream status and message, everything else surfaces as produced by the
// graph adapter.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *graph.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.StatusCode, upstreamErrorCode(apiErr), apiErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func upstreamErrorCode(err *graph.APIError) string {
	switch {
	case errors.Is(err, graph.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, graph.ErrTransport):
		return "upstream_unreachable"
	case errors.Is(err, graph.ErrDecode):
		return "upstream_malformed"
	default:
		return "upstream_error"
	}
}
