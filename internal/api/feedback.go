package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultRecentLimit is the page size the dashboard uses for the feed.
const DefaultRecentLimit = 5

// GetRecentFeedbacks returns the newest limit feedbacks. A non-positive
// limit uses DefaultRecentLimit.
func (c *Client) GetRecentFeedbacks(ctx context.Context, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out []Feedback
	err := c.doJSON(ctx, call{op: "getRecentFeedbacks", method: http.MethodGet, path: "/feedback/recent", query: q}, &out)
	return out, err
}

// GetAllFeedbacks returns every stored feedback.
func (c *Client) GetAllFeedbacks(ctx context.Context) ([]Feedback, error) {
	var out []Feedback
	err := c.doJSON(ctx, call{op: "getAllFeedbacks", method: http.MethodGet, path: "/feedback/all"}, &out)
	return out, err
}

// GetRecentAIAnalyses returns up to limit analyses from the last days days.
func (c *Client) GetRecentAIAnalyses(ctx context.Context, limit, days int) ([]AIAnalysis, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("days", strconv.Itoa(days))

	var out []AIAnalysis
	err := c.doJSON(ctx, call{op: "getRecentAIAnalyses", method: http.MethodGet, path: "/ai-analysis/recent", query: q}, &out)
	return out, err
}

// GetAllAIAnalyses returns analyses newest first. A non-positive limit
// returns all of them.
func (c *Client) GetAllAIAnalyses(ctx context.Context, limit int) ([]AIAnalysis, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out []AIAnalysis
	err := c.doJSON(ctx, call{op: "getAllAIAnalyses", method: http.MethodGet, path: "/ai-analysis/all", query: q}, &out)
	return out, err
}
