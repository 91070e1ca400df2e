// Package recordstore is the HTTP client for the expense record store.
// Every call is a single request with no retries; failures come back as *Error.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/api"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
)

const maxErrorBody = 64 << 10

// Client talks to the record store over its JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for baseURL, e.g. "http://localhost:8001".
// A trailing "/api" is tolerated.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid record store url %q", baseURL)
	}
	base := strings.TrimSuffix(strings.TrimSuffix(u.String(), "/"), "/api")
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(applog.FieldComponent, applog.ComponentRecordStore)
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out)
	return out, err
}

// ListExpenses returns expenses newest first, narrowed by filter.
func (c *Client) ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	q := url.Values{}
	if !filter.StartDate.IsZero() {
		q.Set("start_date", filter.StartDate.Format(time.RFC3339Nano))
	}
	if !filter.EndDate.IsZero() {
		q.Set("end_date", filter.EndDate.Format(time.RFC3339Nano))
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	var out []api.Expense
	if err := c.do(ctx, http.MethodGet, "/api/expenses", q, nil, &out); err != nil {
		return nil, err
	}
	return api.ToExpenses(out), nil
}

func (c *Client) CreateExpense(ctx context.Context, e core.NewExpense) (core.Expense, error) {
	var out api.Expense
	if err := c.do(ctx, http.MethodPost, "/api/expenses", nil, api.FromNewExpense(e), &out); err != nil {
		return core.Expense{}, err
	}
	return out.Core(), nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	var out api.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/expenses/"+url.PathEscape(id), nil, nil, &out)
}

// Summary fetches the server-computed summary for p.
func (c *Client) Summary(ctx context.Context, p core.Period) (core.Summary, error) {
	if !p.Valid() {
		return core.Summary{}, fmt.Errorf("unknown period %q", p)
	}
	var out api.Summary
	if err := c.do(ctx, http.MethodGet, "/api/expenses/summary/"+p.String(), nil, nil, &out); err != nil {
		return core.Summary{}, err
	}
	return out.Core(p), nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []api.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return api.ToCategories(out), nil
}

func (c *Client) CreateCategory(ctx context.Context, nc core.NewCategory) (core.Category, error) {
	var out api.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", nil, api.FromNewCategory(nc), &out); err != nil {
		return core.Category{}, err
	}
	return out.Core(), nil
}

// ListBudgets returns every budget with the server's month-to-date spending.
func (c *Client) ListBudgets(ctx context.Context) ([]core.BudgetStatus, error) {
	var out []api.Budget
	if err := c.do(ctx, http.MethodGet, "/api/budgets", nil, nil, &out); err != nil {
		return nil, err
	}
	return api.ToBudgetStatuses(out), nil
}

func (c *Client) CreateBudget(ctx context.Context, b core.NewBudget) (core.BudgetStatus, error) {
	var out api.Budget
	if err := c.do(ctx, http.MethodPost, "/api/budgets", nil, api.FromNewBudget(b), &out); err != nil {
		return core.BudgetStatus{}, err
	}
	return out.Core(), nil
}

func (c *Client) UpdateBudget(ctx context.Context, id string, b core.NewBudget) (core.BudgetStatus, error) {
	var out api.Budget
	if err := c.do(ctx, http.MethodPut, "/api/budgets/"+url.PathEscape(id), nil, api.FromNewBudget(b), &out); err != nil {
		return core.BudgetStatus{}, err
	}
	return out.Core(), nil
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	var out api.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/budgets/"+url.PathEscape(id), nil, nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Record store request failed",
			applog.FieldMethod, method, applog.FieldPath, path, applog.FieldError, err)
		return transportError(err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Record store request",
		applog.FieldMethod, method,
		applog.FieldPath, path,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError(err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var er api.ErrorResponse
	detail := ""
	if len(raw) > 0 && json.Unmarshal(raw, &er) == nil {
		detail = er.Message()
	}
	return StatusError(resp.StatusCode, detail)
}
