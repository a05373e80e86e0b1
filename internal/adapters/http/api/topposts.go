// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/okian/instapulse/internal/domain/insights"
)

// Default top-posts query values.
const (
	defaultTopPostsLimit = 5
	defaultTimeRange     = "7d"
)

// TopPostsHandler handles top-posts ranking requests.
type TopPostsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewTopPostsHandler creates a new top-posts handler.
func NewTopPostsHandler(deps Dependencies, maxLimit int) *TopPostsHandler {
	return &TopPostsHandler{deps: deps, maxLimit: maxLimit}
}

type topPostsResponse struct {
	TopPosts []insights.PostEngagement `json:"top_posts"`
}

// HandleGetTopPosts handles GET /top-posts?limit=N&time_range=7d requests.
func (h *TopPostsHandler) HandleGetTopPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()

	limit := defaultTopPostsLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "bad_request",
				"limit must be an integer between 1 and "+strconv.Itoa(h.maxLimit))
			return
		}
		limit = n
	}

	timeRange := q.Get("time_range")
	if timeRange == "" {
		timeRange = defaultTimeRange
	}
	days, ok := parseDayWindow(timeRange)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "time_range must match ^\\d+d$, e.g. 7d")
		return
	}

	posts, err := h.deps.TopPosts(r.Context(), days, limit)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if posts == nil {
		posts = []insights.PostEngagement{}
	}
	writeJSON(w, http.StatusOK, topPostsResponse{TopPosts: posts})
}
