// Package client is a typed Go client for the PED record store API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pedtrack/internal/filter"
	"pedtrack/internal/model"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pedtrack: server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running PED API instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL (e.g. "http://localhost:3000").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("pedtrack: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("pedtrack: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pedtrack: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pedtrack: decode response: %w", err)
	}
	return nil
}

// specQuery encodes a filter spec as the REST query-parameter contract.
func specQuery(spec filter.Spec) string {
	values := url.Values{}
	set := func(key, v string) {
		if v != "" {
			values.Set(key, v)
		}
	}
	set("searchText", spec.SearchText)
	set("country", spec.Country)
	set("documentType", spec.DocumentType)
	set("state", spec.State)
	if spec.DateFrom != nil {
		values.Set("dateFrom", spec.DateFrom.Format(time.RFC3339))
	}
	if spec.DateTo != nil {
		values.Set("dateTo", spec.DateTo.Format(time.RFC3339))
	}
	set("transactionId", spec.TransactionID)
	set("sessionId", spec.SessionID)
	set("searchedQuery", spec.SearchedQuery)
	set("podId", spec.PodID)
	set("sfmStatus", spec.SfmStatus)

	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// ListDocuments fetches PED details matching the filter spec. A zero spec
// returns the full collection.
func (c *Client) ListDocuments(ctx context.Context, spec filter.Spec) ([]model.PedDetail, error) {
	var out []model.PedDetail
	if err := c.doJSON(ctx, http.MethodGet, "/api/ped-details"+specQuery(spec), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDocument fetches a single PED detail by id.
func (c *Client) GetDocument(ctx context.Context, id int64) (model.PedDetail, error) {
	var out model.PedDetail
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/ped-details/%d", id), nil, &out)
	return out, err
}

// StatesForCountry fetches the state facet for a country.
func (c *Client) StatesForCountry(ctx context.Context, country string) ([]string, error) {
	var out []string
	err := c.doJSON(ctx, http.MethodGet, "/api/ped-details/states/"+url.PathEscape(country), nil, &out)
	return out, err
}

// CreateDocument persists a new PED detail and returns the stored record.
func (c *Client) CreateDocument(ctx context.Context, detail model.PedDetail) (model.PedDetail, error) {
	var out model.PedDetail
	err := c.doJSON(ctx, http.MethodPost, "/api/ped-details", detail, &out)
	return out, err
}

// UpdateDocument replaces the mutable fields of a PED detail.
func (c *Client) UpdateDocument(ctx context.Context, detail model.PedDetail) (model.PedDetail, error) {
	var out model.PedDetail
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/ped-details/%d", detail.ID), detail, &out)
	return out, err
}

// DeleteDocument removes a PED detail.
func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/ped-details/%d", id), nil, nil)
}

// ListQueries fetches all collector queries.
func (c *Client) ListQueries(ctx context.Context) ([]model.CollectorQuery, error) {
	var out []model.CollectorQuery
	err := c.doJSON(ctx, http.MethodGet, "/api/collector-queries", nil, &out)
	return out, err
}

// CreateQuery persists a new collector query.
func (c *Client) CreateQuery(ctx context.Context, query model.CollectorQuery) (model.CollectorQuery, error) {
	var out model.CollectorQuery
	err := c.doJSON(ctx, http.MethodPost, "/api/collector-queries", query, &out)
	return out, err
}

// ExecuteResult is the response of a successful query execution.
type ExecuteResult struct {
	Message     string    `json:"message"`
	QueryID     int64     `json:"queryId"`
	ExecutionID int64     `json:"executionId"`
	ExecutedAt  time.Time `json:"executedAt"`
}

// ExecuteQuery runs a collector query, stamping last_run_at and opening an
// Execution record.
func (c *Client) ExecuteQuery(ctx context.Context, id int64) (ExecuteResult, error) {
	var out ExecuteResult
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/collector-queries/%d/execute", id), nil, &out)
	return out, err
}

// ExecutionsForQuery fetches the run history of a collector query.
func (c *Client) ExecutionsForQuery(ctx context.Context, queryID int64) ([]model.Execution, error) {
	var out []model.Execution
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/executions/query/%d", queryID), nil, &out)
	return out, err
}
