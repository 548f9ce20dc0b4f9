package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/renderwatch/internal/domain"
)

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the monitor.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

type StartRequest struct {
	AppURLs             []string `json:"app_urls"`
	WebhookURL          string   `json:"webhook_url"`
	InactivityThreshold float64  `json:"inactivity_threshold,omitempty"`
	Interval            string   `json:"interval,omitempty"`
}

type StartResponse struct {
	Status              string   `json:"status"`
	App                 string   `json:"app"`
	Apps                []string `json:"apps"`
	JobID               string   `json:"job_id"`
	InactivityThreshold float64  `json:"inactivity_threshold"`
	Interval            string   `json:"interval"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var out StartResponse
	if err := c.do(ctx, http.MethodPost, "/api/monitor/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stop(ctx context.Context, appURL string) error {
	return c.do(ctx, http.MethodPost, "/api/monitor/stop?app_url="+url.QueryEscape(appURL), nil, nil)
}

func (c *Client) Status(ctx context.Context) ([]domain.TargetState, error) {
	var out []domain.TargetState
	if err := c.do(ctx, http.MethodGet, "/api/monitor/status", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) History(ctx context.Context, appURL string, limit int) ([]domain.CheckResult, error) {
	q := url.Values{}
	q.Set("app_url", appURL)
	q.Set("limit", strconv.Itoa(limit))
	var out []domain.CheckResult
	if err := c.do(ctx, http.MethodGet, "/api/monitor/history?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var e struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		detail := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil {
			if e.Detail != "" {
				detail = e.Detail
			} else if e.Error != "" {
				detail = e.Error
			}
		}
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
