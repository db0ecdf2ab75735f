package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"issuesearch/internal/domain"
	"issuesearch/internal/recent"
)

// ErrUnexpectedStatus wraps any non-2xx reply
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to a Server, or anything speaking the same routes
type Client struct {
	baseURL string
	org     string
	token   string
	http    *http.Client
}

var _ recent.Store = (*Client)(nil)

// NewClient creates a client. org scopes tag lookups; hc may be nil.
func NewClient(baseURL, org, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		org:     org,
		token:   token,
		http:    hc,
	}
}

func (c *Client) orgURL(org, path string, params url.Values) string {
	u := c.baseURL + "/api/0/organizations/" + url.PathEscape(org) + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, u string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %w %d: %s", method, req.URL.Path, ErrUnexpectedStatus, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %w %d", method, req.URL.Path, ErrUnexpectedStatus, resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Recent implements recent.Store
func (c *Client) Recent(ctx context.Context, org string, searchType domain.SearchType, query string, limit int) ([]domain.RecentSearch, error) {
	params := url.Values{}
	params.Set("type", strconv.Itoa(int(searchType)))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if query != "" {
		params.Set("query", query)
	}

	var out []domain.RecentSearch
	if err := c.do(ctx, http.MethodGet, c.orgURL(org, "/recent-searches/", params), nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Organization = org
	}
	return out, nil
}

// Save implements recent.Store. Blank queries fail locally.
func (c *Client) Save(ctx context.Context, org string, searchType domain.SearchType, query string) error {
	if strings.TrimSpace(query) == "" {
		return recent.ErrEmptyQuery
	}
	body := RecentSearchRequest{Query: query, Type: searchType}
	return c.do(ctx, http.MethodPost, c.orgURL(org, "/recent-searches/", nil), body, nil)
}

// Clear implements recent.Store
func (c *Client) Clear(ctx context.Context, org string, searchType domain.SearchType) error {
	params := url.Values{}
	params.Set("type", strconv.Itoa(int(searchType)))
	return c.do(ctx, http.MethodDelete, c.orgURL(org, "/recent-searches/", params), nil, nil)
}

// TagValues fetches values of key matching query; it satisfies tags.Loader
func (c *Client) TagValues(ctx context.Context, key, query string) ([]domain.TagValue, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	var out []domain.TagValue
	path := "/tags/" + url.PathEscape(key) + "/values/"
	if err := c.do(ctx, http.MethodGet, c.orgURL(c.org, path, params), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TagKeys lists the tags known to the server
func (c *Client) TagKeys(ctx context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	if err := c.do(ctx, http.MethodGet, c.orgURL(c.org, "/tags/", nil), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health checks the server is reachable
func (c *Client) Health(ctx context.Context) error {
	var out HealthResponse
	return c.do(ctx, http.MethodGet, c.baseURL+"/healthz", nil, &out)
}
