// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/okian/instapulse/internal/domain/insights"
)

// defaultInsightMetrics is the full metric set fetched when the caller does
// not narrow the list.
const defaultInsightMetrics = "impressions,reach,profile_views,website_clicks," +
	"email_contacts,get_directions_clicks,phone_call_clicks,text_message_clicks," +
	"follower_count,online_followers"

// validPeriods enumerates the period values the upstream insights edge accepts.
var validPeriods = map[string]bool{
	"day":     true,
	"week":    true,
	"days_28": true,
}

// InsightsHandler handles account insights requests.
type InsightsHandler struct {
	deps Dependencies
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(deps Dependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps}
}

type insightsResponse struct {
	Data []insights.InsightMetric `json:"data"`
}

// HandleGetInsights handles GET /account-insights requests. Parameter
// validation failures are rejected before any upstream call is made.
func (h *InsightsHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()

	period := q.Get("period")
	if period == "" {
		period = "day"
	}
	if !validPeriods[period] {
		writeError(w, http.StatusBadRequest, "bad_request", "period must be one of day, week, days_28")
		return
	}

	metrics := q.Get("metrics")
	if metrics == "" {
		metrics = defaultInsightMetrics
	}

	since := q.Get("since")
	until := q.Get("until")
	for name, val := range map[string]string{"since": since, "until": until} {
		if val == "" {
			continue
		}
		if _, err := strconv.ParseInt(val, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", name+" must be a Unix timestamp")
			return
		}
	}

	data, err := h.deps.AccountInsights(r.Context(), period, metrics, since, until)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if data == nil {
		data = []insights.InsightMetric{}
	}
	writeJSON(w, http.StatusOK, insightsResponse{Data: data})
}
