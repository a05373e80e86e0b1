// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/instapulse/internal/adapters/graph"
	"github.com/okian/instapulse/internal/domain/insights"
	"github.com/okian/instapulse/pkg/logger"
)

// Trend metric labels reported by GrowthTrends.
const (
	followerGrowthMetric = "Follower Growth Rate"
	engagementRateMetric = "Engagement Rate Change"
)

// trendWindowMetrics are the insight series fetched per half-window.
const trendWindowMetrics = "follower_count,impressions,reach"

const hoursPerDay = 24

// Service implements the API dependencies for the insights proxy. All
// operations are synchronous: one inbound request drives one or more
// sequential upstream calls and returns.
type Service struct {
	mu sync.RWMutex

	graph  *graph.Client
	logger logger.Logger
	now    func() time.Time

	started bool

	// Request counters exposed via GetStats.
	insightsServed atomic.Int64
	trendsServed   atomic.Int64
	topPostsServed atomic.Int64
	upstreamErrors atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGraphClient sets the upstream Graph API client.
func WithGraphClient(c *graph.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.graph = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow overrides the clock used for window computation.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service ready. It verifies wiring rather than spawning
// anything; there is no background work in this service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.graph == nil {
		return ErrNoGraphClient
	}

	s.started = true
	s.logger.Info(ctx, "insights service started",
		logger.String("account_id", s.graph.AccountID()),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "insights service stopped")
}

// AccountInsights fetches the requested account insight series and passes
// them through unchanged.
func (s *Service) AccountInsights(ctx context.Context, period, metrics, since, until string) ([]insights.InsightMetric, error) {
	data, err := s.graph.AccountInsights(ctx, graph.InsightsQuery{
		Period:  period,
		Metrics: metrics,
		Since:   since,
		Until:   until,
	})
	if err != nil {
		s.upstreamErrors.Add(1)
		return nil, err
	}
	s.insightsServed.Add(1)
	return data, nil
}

// GrowthTrends splits the lookback window into two equal halves, aggregates
// follower count and engagement rate per half, and reports the percentage
// change for both.
func (s *Service) GrowthTrends(ctx context.Context, windowDays int) ([]insights.GrowthTrend, error) {
	now := s.now()
	half := time.Duration(windowDays) * hoursPerDay * time.Hour / 2
	mid := now.Add(-half)
	start := mid.Add(-half)

	previous, err := s.windowSnapshot(ctx, start, mid)
	if err != nil {
		s.upstreamErrors.Add(1)
		return nil, err
	}
	current, err := s.windowSnapshot(ctx, mid, now)
	if err != nil {
		s.upstreamErrors.Add(1)
		return nil, err
	}

	trends := []insights.GrowthTrend{
		insights.CalculateGrowth(current.FollowerCount, previous.FollowerCount, followerGrowthMetric),
		insights.CalculateGrowth(current.EngagementRate, previous.EngagementRate, engagementRateMetric),
	}
	s.trendsServed.Add(1)
	return trends, nil
}

// windowSnapshot fetches and aggregates one half-window of account metrics.
func (s *Service) windowSnapshot(ctx context.Context, since, until time.Time) (insights.Snapshot, error) {
	data, err := s.graph.AccountInsights(ctx, graph.InsightsQuery{
		Period:  "day",
		Metrics: trendWindowMetrics,
		Since:   unixString(since),
		Until:   unixString(until),
	})
	if err != nil {
		return insights.Snapshot{}, err
	}
	return insights.AggregateWindow(data), nil
}

// TopPosts fetches posts created within the lookback range, scores each one
// with a per-post engagement call, and returns the top limit entries sorted
// by score. A failed engagement fetch fails the whole request; partial
// results are never returned.
func (s *Service) TopPosts(ctx context.Context, rangeDays, limit int) ([]insights.PostEngagement, error) {
	since := s.now().Add(-time.Duration(rangeDays) * hoursPerDay * time.Hour)
	media, err := s.graph.MediaSince(ctx, since)
	if err != nil {
		s.upstreamErrors.Add(1)
		return nil, err
	}

	scored := make([]insights.PostEngagement, 0, len(media))
	for _, m := range media {
		eng, err := s.graph.MediaEngagement(ctx, m.ID)
		if err != nil {
			s.upstreamErrors.Add(1)
			return nil, err
		}
		scored = append(scored, insights.PostEngagement{
			ID:              m.ID,
			Permalink:       m.Permalink,
			Caption:         m.Caption,
			LikeCount:       eng.LikeCount,
			CommentsCount:   eng.CommentsCount,
			EngagementScore: insights.EngagementScore(eng.LikeCount, eng.CommentsCount),
		})
	}

	s.topPostsServed.Add(1)
	return insights.RankPosts(scored, limit), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"insightsServed": int(s.insightsServed.Load()),
		"trendsServed":   int(s.trendsServed.Load()),
		"topPostsServed": int(s.topPostsServed.Load()),
		"upstreamErrors": int(s.upstreamErrors.Load()),
	}
}

func unixString(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
