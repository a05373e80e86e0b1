package graph

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/instapulse/internal/domain/insights"
)

// Media is one media object from the account's media edge.
type Media struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	Permalink string `json:"permalink"`
	Timestamp string `json:"timestamp"`
	MediaType string `json:"media_type"`
}

// Engagement carries the per-media interaction counts.
type Engagement struct {
	LikeCount     int `json:"like_count"`
	CommentsCount int `json:"comments_count"`
}

// InsightsQuery names the parameters of an account insights read.
type InsightsQuery struct {
	Period  string
	Metrics string
	Since   string
	Until   string
}

// AccountInsights fetches the account insight series for the query and
// returns the upstream data array verbatim.
func (c *Client) AccountInsights(ctx context.Context, q InsightsQuery) ([]insights.InsightMetric, error) {
	params := url.Values{}
	params.Set("metric", q.Metrics)
	params.Set("period", q.Period)
	if q.Since != "" {
		params.Set("since", q.Since)
	}
	if q.Until != "" {
		params.Set("until", q.Until)
	}

	var resp struct {
		Data []insights.InsightMetric `json:"data"`
	}
	if err := c.Call(ctx, c.accountID+"/insights", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// MediaSince lists the account's media created at or after since.
func (c *Client) MediaSince(ctx context.Context, since time.Time) ([]Media, error) {
	params := url.Values{}
	params.Set("fields", strings.Join([]string{"id", "caption", "permalink", "timestamp", "media_type"}, ","))
	params.Set("since", strconv.FormatInt(since.Unix(), 10))

	var resp struct {
		Data []Media `json:"data"`
	}
	if err := c.Call(ctx, c.accountID+"/media", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// MediaEngagement fetches the like and comment counts for one media object.
func (c *Client) MediaEngagement(ctx context.Context, mediaID string) (Engagement, error) {
	params := url.Values{}
	params.Set("fields", "like_count,comments_count")

	var eng Engagement
	if err := c.Call(ctx, mediaID, params, &eng); err != nil {
		return Engagement{}, err
	}
	return eng, nil
}

// BusinessAccountID resolves the Instagram business account linked to a
// Facebook page.
func (c *Client) BusinessAccountID(ctx context.Context, pageID string) (string, error) {
	params := url.Values{}
	params.Set("fields", "instagram_business_account")

	var resp struct {
		BusinessAccount struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	if err := c.Call(ctx, pageID, params, &resp); err != nil {
		return "", err
	}
	if resp.BusinessAccount.ID == "" {
		return "", newAPIError(404, ErrUpstream, "no Instagram business account linked to page "+pageID)
	}
	return resp.BusinessAccount.ID, nil
}

// TokenInfo is the subset of /debug_token output the accountid tool prints.
type TokenInfo struct {
	AppID     string   `json:"app_id"`
	IsValid   bool     `json:"is_valid"`
	ExpiresAt int64    `json:"expires_at"`
	Scopes    []string `json:"scopes"`
}

// DebugToken inspects inputToken using the app credentials, as the Graph
// /debug_token endpoint requires an app token of the form "app_id|app_secret".
func (c *Client) DebugToken(ctx context.Context, inputToken, appID, appSecret string) (TokenInfo, error) {
	params := url.Values{}
	params.Set("input_token", inputToken)
	params.Set("access_token", appID+"|"+appSecret)

	var resp struct {
		Data TokenInfo `json:"data"`
	}
	// Call overwrites access_token with the client token, so issue this one
	// with a dedicated client bound to the app token.
	appClient := &Client{
		httpClient:   c.httpClient,
		baseURL:      c.baseURL,
		accessToken:  appID + "|" + appSecret,
		maxRetries:   c.maxRetries,
		retryBackoff: c.retryBackoff,
		logger:       c.logger,
	}
	if err := appClient.Call(ctx, "debug_token", params, &resp); err != nil {
		return TokenInfo{}, err
	}
	return resp.Data, nil
}
