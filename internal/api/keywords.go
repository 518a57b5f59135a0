package api

import (
	"context"
	"net/http"
	"net/url"
)

// Keyword operations pass values through untouched. Uniqueness and
// existence are enforced by the backend, which answers 400 and 404.

// GetKeywords returns the monitored keywords in backend order.
func (c *Client) GetKeywords(ctx context.Context) ([]string, error) {
	var out []string
	err := c.doJSON(ctx, call{op: "getKeywords", method: http.MethodGet, path: "/keywords"}, &out)
	return out, err
}

// AddKeyword registers keyword.
func (c *Client) AddKeyword(ctx context.Context, keyword string) (*KeywordMutation, error) {
	body := struct {
		Keyword string `json:"keyword"`
	}{Keyword: keyword}

	var out KeywordMutation
	if err := c.doJSON(ctx, call{op: "addKeyword", method: http.MethodPost, path: "/keywords", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteKeyword removes keyword. The keyword travels as a single escaped
// path segment, so values containing '/' or '?' arrive intact.
func (c *Client) DeleteKeyword(ctx context.Context, keyword string) (*KeywordMutation, error) {
	var out KeywordMutation
	if err := c.doJSON(ctx, call{op: "deleteKeyword", method: http.MethodDelete, path: "/keywords/" + url.PathEscape(keyword)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateKeyword renames oldKeyword to newKeyword.
func (c *Client) UpdateKeyword(ctx context.Context, oldKeyword, newKeyword string) (*KeywordMutation, error) {
	q := url.Values{}
	q.Set("old", oldKeyword)
	q.Set("new", newKeyword)

	var out KeywordMutation
	if err := c.doJSON(ctx, call{op: "updateKeyword", method: http.MethodPut, path: "/keywords", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
