// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/instapulse/internal/domain/insights"
)

// dayWindowPattern matches lookback windows like "7d" or "30d".
var dayWindowPattern = regexp.MustCompile(`^\d+d$`)

// parseDayWindow converts a "<N>d" string to its day count.
func parseDayWindow(raw string) (int, bool) {
	if !dayWindowPattern.MatchString(raw) {
		return 0, false
	}
	days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
	if err != nil {
		return 0, false
	}
	return days, true
}

// TrendsHandler handles growth trend requests.
type TrendsHandler struct {
	deps Dependencies
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(deps Dependencies) *TrendsHandler {
	return &TrendsHandler{deps: deps}
}

type trendsResponse struct {
	Trends []insights.GrowthTrend `json:"trends"`
}

// HandleGetTrends handles GET /growth-trends?period=30d requests.
func (h *TrendsHandler) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "30d"
	}
	days, ok := parseDayWindow(period)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "period must match ^\\d+d$, e.g. 30d")
		return
	}

	trends, err := h.deps.GrowthTrends(r.Context(), days)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trendsResponse{Trends: trends})
}
