// Package insights holds the value shapes and pure derived-metric functions
// for account analytics: growth rates, window aggregates, and post ranking.
package insights

// InsightValue is a single data point of a metric time series. Value keeps
// the upstream shape as-is: usually a number, but a map for metrics such as
// online_followers.
type InsightValue struct {
	Value   any    `json:"value"`
	EndTime string `json:"end_time,omitempty"`
}

// InsightMetric is one named metric time series as returned by the upstream
// API. It is passed through to callers without reshaping.
type InsightMetric struct {
	Name        string         `json:"name"`
	Period      string         `json:"period"`
	Values      []InsightValue `json:"values"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ID          string         `json:"id"`
}

// PostEngagement is a post together with its derived engagement score.
type PostEngagement struct {
	ID              string `json:"id"`
	Permalink       string `json:"permalink"`
	Caption         string `json:"caption"`
	LikeCount       int    `json:"like_count"`
	CommentsCount   int    `json:"comments_count"`
	EngagementScore int    `json:"engagement_score"`
}

// GrowthTrend compares an aggregate value across two adjacent time windows.
type GrowthTrend struct {
	Metric        string  `json:"metric"`
	CurrentValue  float64 `json:"current_value"`
	PreviousValue float64 `json:"previous_value"`
	GrowthRate    float64 `json:"growth_rate"`
}

// Snapshot aggregates one time window of account metrics.
type Snapshot struct {
	FollowerCount  float64
	EngagementRate float64
}
