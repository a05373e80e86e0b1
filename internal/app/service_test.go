package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/okian/instapulse/internal/adapters/graph"
	app "github.com/okian/instapulse/internal/app"
	"github.com/okian/instapulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func newService(baseURL string, now time.Time) *app.Service {
	client := graph.NewClient("tok", "42",
		graph.WithBaseURL(baseURL),
		graph.WithRetryBackoff(time.Millisecond),
	)
	return app.New(
		app.WithGraphClient(client),
		app.WithNow(func() time.Time { return now }),
	)
}

func TestGrowthTrends(t *testing.T) {
	Convey("Given an upstream with two half-windows of data", t, func() {
		now := time.Unix(1_700_000_000, 0)

		var windows []struct{ since, until string }
		mux := http.NewServeMux()
		mux.HandleFunc("/42/insights", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			windows = append(windows, struct{ since, until string }{q.Get("since"), q.Get("until")})

			// First call covers the earlier half, second the later one.
			if len(windows) == 1 {
				_, _ = w.Write([]byte(`{"data":[
					{"name":"follower_count","values":[{"value":400},{"value":600}]},
					{"name":"impressions","values":[{"value":100}]},
					{"name":"reach","values":[{"value":100}]}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[
				{"name":"follower_count","values":[{"value":1100}]},
				{"name":"impressions","values":[{"value":300}]},
				{"name":"reach","values":[{"value":150}]}]}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		svc := newService(srv.URL, now)

		Convey("When computing trends over 30 days", func() {
			trends, err := svc.GrowthTrends(context.Background(), 30)

			Convey("Then both trends are computed from the window sums", func() {
				So(err, ShouldBeNil)
				So(trends, ShouldHaveLength, 2)

				So(trends[0].Metric, ShouldEqual, "Follower Growth Rate")
				So(trends[0].CurrentValue, ShouldEqual, 1100)
				So(trends[0].PreviousValue, ShouldEqual, 1000)
				So(trends[0].GrowthRate, ShouldAlmostEqual, 10.0, 1e-9)

				So(trends[1].Metric, ShouldEqual, "Engagement Rate Change")
				So(trends[1].CurrentValue, ShouldAlmostEqual, 2.0, 1e-9)
				So(trends[1].PreviousValue, ShouldAlmostEqual, 1.0, 1e-9)
				So(trends[1].GrowthRate, ShouldAlmostEqual, 100.0, 1e-9)
			})

			Convey("And the two windows split the range at its midpoint", func() {
				So(windows, ShouldHaveLength, 2)

				mid := now.Add(-15 * 24 * time.Hour)
				start := now.Add(-30 * 24 * time.Hour)
				So(windows[0].since, ShouldEqual, strconv.FormatInt(start.Unix(), 10))
				So(windows[0].until, ShouldEqual, strconv.FormatInt(mid.Unix(), 10))
				So(windows[1].since, ShouldEqual, strconv.FormatInt(mid.Unix(), 10))
				So(windows[1].until, ShouldEqual, strconv.FormatInt(now.Unix(), 10))
			})
		})

		Convey("When the service counts the request", func() {
			_, _ = svc.GrowthTrends(context.Background(), 30)

			Convey("Then GetStats reflects it", func() {
				So(svc.GetStats()["trendsServed"], ShouldEqual, 1)
			})
		})
	})
}

func TestTopPosts(t *testing.T) {
	Convey("Given an upstream with recent media", t, func() {
		now := time.Unix(1_700_000_000, 0)

		mux := http.NewServeMux()
		mux.HandleFunc("/42/media", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[
				{"id":"m1","permalink":"https://ig/p/m1/","caption":"one","media_type":"IMAGE"},
				{"id":"m2","permalink":"https://ig/p/m2/","caption":"two","media_type":"IMAGE"},
				{"id":"m3","permalink":"https://ig/p/m3/","caption":"three","media_type":"VIDEO"}]}`))
		})
		mux.HandleFunc("/m1", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"like_count":5,"comments_count":1}`))
		})
		mux.HandleFunc("/m2", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"like_count":2,"comments_count":10}`))
		})
		mux.HandleFunc("/m3", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"like_count":3,"comments_count":3}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		svc := newService(srv.URL, now)

		Convey("When ranking the top 2 posts of the last 7 days", func() {
			posts, err := svc.TopPosts(context.Background(), 7, 2)

			Convey("Then posts come back sorted by engagement score", func() {
				So(err, ShouldBeNil)
				So(posts, ShouldHaveLength, 2)
				So(posts[0].ID, ShouldEqual, "m2")
				So(posts[0].EngagementScore, ShouldEqual, 12)
				So(posts[1].ID, ShouldEqual, "m1")
				So(posts[1].EngagementScore, ShouldEqual, 6)
			})
		})

		Convey("When the limit exceeds the fetched posts", func() {
			posts, err := svc.TopPosts(context.Background(), 7, 50)

			Convey("Then all posts come back, ties in fetch order", func() {
				So(err, ShouldBeNil)
				So(posts, ShouldHaveLength, 3)
				So(posts[1].ID, ShouldEqual, "m1")
				So(posts[2].ID, ShouldEqual, "m3")
			})
		})
	})
}

func TestTopPostsFailureIsolation(t *testing.T) {
	Convey("Given an upstream where one engagement fetch fails", t, func() {
		now := time.Unix(1_700_000_000, 0)

		mux := http.NewServeMux()
		mux.HandleFunc("/42/media", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[
				{"id":"m1","permalink":"https://ig/p/m1/","caption":"one","media_type":"IMAGE"},
				{"id":"m2","permalink":"https://ig/p/m2/","caption":"two","media_type":"IMAGE"}]}`))
		})
		mux.HandleFunc("/m1", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"like_count":5,"comments_count":1}`))
		})
		mux.HandleFunc("/m2", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported get request"}}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		svc := newService(srv.URL, now)

		Convey("When ranking posts", func() {
			posts, err := svc.TopPosts(context.Background(), 7, 5)

			Convey("Then the whole request fails; no partial results", func() {
				So(posts, ShouldBeNil)
				So(errors.Is(err, graph.ErrUpstream), ShouldBeTrue)

				var apiErr *graph.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Message, ShouldEqual, "Unsupported get request")
			})
		})
	})
}

func TestAccountInsightsPassThrough(t *testing.T) {
	Convey("Given an upstream insights edge", t, func() {
		now := time.Unix(1_700_000_000, 0)

		var gotQuery map[string]string
		mux := http.NewServeMux()
		mux.HandleFunc("/42/insights", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			gotQuery = map[string]string{
				"metric": q.Get("metric"),
				"period": q.Get("period"),
				"since":  q.Get("since"),
				"until":  q.Get("until"),
			}
			_, _ = w.Write([]byte(`{"data":[{"name":"reach","period":"week","values":[{"value":7}],
				"title":"Reach","description":"Unique viewers","id":"42_reach"}]}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		svc := newService(srv.URL, now)

		Convey("When fetching insights with bounds", func() {
			data, err := svc.AccountInsights(context.Background(), "week", "reach", "1699000000", "1700000000")

			Convey("Then the query maps onto the upstream call", func() {
				So(err, ShouldBeNil)
				So(gotQuery["metric"], ShouldEqual, "reach")
				So(gotQuery["period"], ShouldEqual, "week")
				So(gotQuery["since"], ShouldEqual, "1699000000")
				So(gotQuery["until"], ShouldEqual, "1700000000")
			})

			Convey("And the series passes through untouched", func() {
				So(data, ShouldHaveLength, 1)
				So(data[0].Name, ShouldEqual, "reach")
				So(data[0].Title, ShouldEqual, "Reach")
			})
		})
	})
}
