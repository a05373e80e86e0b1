package insights

import (
	"sort"

	json "github.com/goccy/go-json"
)

// Percentage base for growth-rate computation.
const percent = 100

// EngagementScore computes the ranking value for a post. Likes plus comments
// is a stand-in until a follower-normalized rate is available; callers depend
// on this exact formula, so changing it is a breaking change.
func EngagementScore(likeCount, commentsCount int) int {
	return likeCount + commentsCount
}

// CalculateGrowth builds a GrowthTrend for the given metric label.
//
// The rate is the percentage change (current-previous)/previous*100. A zero
// baseline is special-cased: any growth from zero reports 100, and zero to
// zero reports 0. The asymmetry is a fixed contract, not a rounding artifact.
func CalculateGrowth(current, previous float64, metric string) GrowthTrend {
	var rate float64
	switch {
	case previous > 0:
		rate = (current - previous) / previous * percent
	case current > 0:
		rate = percent
	default:
		rate = 0
	}
	return GrowthTrend{
		Metric:        metric,
		CurrentValue:  current,
		PreviousValue: previous,
		GrowthRate:    rate,
	}
}

// RankPosts sorts posts by engagement score, highest first, and truncates to
// limit. The sort is stable so equally scored posts keep their fetch order.
func RankPosts(posts []PostEngagement, limit int) []PostEngagement {
	ranked := make([]PostEngagement, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EngagementScore > ranked[j].EngagementScore
	})
	if limit >= 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// AggregateWindow sums metric values per metric name across all returned
// data points and derives the window's engagement rate as total impressions
// over total reach. Zero reach yields a zero rate. Non-numeric data points
// (e.g. online_followers maps) contribute nothing to the sums.
func AggregateWindow(metrics []InsightMetric) Snapshot {
	totals := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		for _, v := range m.Values {
			if n, ok := numeric(v.Value); ok {
				totals[m.Name] += n
			}
		}
	}

	var rate float64
	if reach := totals["reach"]; reach > 0 {
		rate = totals["impressions"] / reach
	}
	return Snapshot{
		FollowerCount:  totals["follower_count"],
		EngagementRate: rate,
	}
}

// numeric coerces a decoded JSON value to float64.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
