package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/ports"
	"InsightsDashboard/internal/query"
)

const defaultClientTimeout = 15 * time.Second

// Client is a RecordRepository backed by another dashboard server's /api/data.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

var (
	_ ports.RecordRepository = (*Client)(nil)
	_ ports.OptionSource     = (*Client)(nil)
)

// NewClient validates baseURL and builds a client with the given timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}, logger: logger}, nil
}

// Find sends the predicate as query parameters. A predicate with an invalid clause
// has no wire form and matches nothing, so no request is made.
func (c *Client) Find(ctx context.Context, predicate domain.Predicate) ([]domain.Record, error) {
	values, ok := query.Encode(predicate)
	if !ok {
		c.debug("skip unsatisfiable predicate", "clauses", len(predicate))
		return []domain.Record{}, nil
	}

	var records []domain.Record
	if err := c.get(ctx, "/api/data", values, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// Options fetches the remote option lists.
func (c *Client) Options(ctx context.Context) (map[domain.Field][]string, error) {
	options := map[domain.Field][]string{}
	if err := c.get(ctx, "/api/options", nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values, out interface{}) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorBody
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	c.debug("remote request", "path", path, "query", u.RawQuery, "request_id", req.Header.Get(RequestIDHeader))
	return nil
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
