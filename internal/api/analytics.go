package api

import (
	"context"
	"mime"
	"net/http"

	"github.com/sentineleye/dashboard/pkg/daterange"
)

// Analytics endpoints take the week as a JSON body and return documents
// whose shape is owned by the backend.

func (c *Client) postRange(ctx context.Context, op, path string, r daterange.DateRange) (Document, error) {
	var doc Document
	err := c.doJSON(ctx, call{op: op, method: http.MethodPost, path: path, body: r}, &doc)
	return doc, err
}

// GetOverviewStats returns headline counts for the range.
func (c *Client) GetOverviewStats(ctx context.Context, r daterange.DateRange) (Document, error) {
	return c.postRange(ctx, "getOverviewStats", "/analytics/overview", r)
}

// GetFeedbackTypeDistribution returns feedback counts per type.
func (c *Client) GetFeedbackTypeDistribution(ctx context.Context, r daterange.DateRange) (Document, error) {
	return c.postRange(ctx, "getFeedbackTypeDistribution", "/analytics/type-distribution", r)
}

// GetFeedbackTrend returns the daily trend for the range.
func (c *Client) GetFeedbackTrend(ctx context.Context, r daterange.DateRange) (Document, error) {
	return c.postRange(ctx, "getFeedbackTrend", "/analytics/trend", r)
}

// GetCategoryAnalysis returns the category breakdown for the range.
func (c *Client) GetCategoryAnalysis(ctx context.Context, r daterange.DateRange) (Document, error) {
	return c.postRange(ctx, "getCategoryAnalysis", "/analytics/category", r)
}

// GetKeywordAnalysis returns keyword hit counts for the range.
func (c *Client) GetKeywordAnalysis(ctx context.Context, r daterange.DateRange) (Document, error) {
	return c.postRange(ctx, "getKeywordAnalysis", "/analytics/keywords", r)
}

// GetAllAnalytics returns every analytics section in one document.
func (c *Client) GetAllAnalytics(ctx context.Context, r daterange.DateRange) (map[string]Document, error) {
	var out map[string]Document
	err := c.doJSON(ctx, call{op: "getAllAnalytics", method: http.MethodPost, path: "/analytics/all", body: r}, &out)
	return out, err
}

// GenerateWeeklyReport asks the backend to render the report for the range
// and returns the binary response untouched.
func (c *Client) GenerateWeeklyReport(ctx context.Context, r daterange.DateRange) (*Blob, error) {
	resp, err := c.exchange(ctx, call{
		op:     "generateWeeklyReport",
		method: http.MethodPost,
		path:   "/analytics/generate-report",
		body:   r,
	})
	if err != nil {
		return nil, err
	}
	blob := &Blob{
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}
	if cd := resp.header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			blob.Filename = params["filename"]
		}
	}
	return blob, nil
}
