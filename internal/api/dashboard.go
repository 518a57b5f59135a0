package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// StatsQuery selects the window for GetDashboardStats. Zero fields are
// omitted and the backend default applies.
type StatsQuery struct {
	Limit int
	Days  int
}

func (q StatsQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Days > 0 {
		v.Set("days", strconv.Itoa(q.Days))
	}
	return v
}

// GetDashboardStats returns the dashboard headline block.
func (c *Client) GetDashboardStats(ctx context.Context, q StatsQuery) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.doJSON(ctx, call{op: "getDashboardStats", method: http.MethodGet, path: "/dashboard/stats", query: q.values()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDashboardSummary returns stats, the latest recentLimit feedbacks and
// the top limit categories and tags.
func (c *Client) GetDashboardSummary(ctx context.Context, limit, recentLimit int) (*DashboardSummary, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("recent_limit", strconv.Itoa(recentLimit))

	var out DashboardSummary
	if err := c.doJSON(ctx, call{op: "getDashboardSummary", method: http.MethodGet, path: "/dashboard/summary", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTrendData returns the per-day trend of the last days days. The backend
// serves it as the recent_trend block of the stats endpoint.
func (c *Client) GetTrendData(ctx context.Context, days int) (*TrendData, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var out DashboardStats
	if err := c.doJSON(ctx, call{op: "getTrendData", method: http.MethodGet, path: "/dashboard/stats", query: q}, &out); err != nil {
		return nil, err
	}
	return &out.RecentTrend, nil
}

// GetChartData returns chart series for the last days days. keywordDays
// widens the keyword-trigger window independently; zero leaves it to the
// backend.
func (c *Client) GetChartData(ctx context.Context, days, keywordDays int) (*ChartData, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	if keywordDays > 0 {
		q.Set("keyword_days", strconv.Itoa(keywordDays))
	}

	var out ChartData
	if err := c.doJSON(ctx, call{op: "getChartData", method: http.MethodGet, path: "/dashboard/chart-data", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAnalyticsData returns the rolling analytics document for the last days
// days.
func (c *Client) GetAnalyticsData(ctx context.Context, days int) (map[string]Document, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var out map[string]Document
	err := c.doJSON(ctx, call{op: "getAnalyticsData", method: http.MethodGet, path: "/analytics/data", query: q}, &out)
	return out, err
}

// HealthCheck calls the backend liveness endpoint.
func (c *Client) HealthCheck(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.doJSON(ctx, call{op: "healthCheck", method: http.MethodGet, path: "/health"}, &out)
	return out, err
}
