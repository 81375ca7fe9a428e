// Package backend is the HTTP client for the election backend. It
// covers the four endpoints the monitor client consumes: login,
// check-in, submission history and result submission. All bodies are
// JSON; a non-2xx status is decoded into an APIError carrying the
// backend's message.
package backend

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

	"go.uber.org/zap"
)

// HTTPClient interface for testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the election backend
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewClient creates a backend client with the given base URL and
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client (tests)
func (c *Client) SetHTTPClient(hc HTTPClient) {
	c.httpClient = hc
}

// Login authenticates a monitor. On success the returned string is the
// backend's confirmation message (may be empty). A bad credential
// surfaces as an *APIError whose Message is shown verbatim.
func (c *Client) Login(ctx context.Context, monitorID, password string) (string, error) {
	body := map[string]string{"monitorId": monitorID, "password": password}
	return c.postJSON(ctx, "/login", body)
}

// CheckIn records the monitor's presence at their station
func (c *Client) CheckIn(ctx context.Context, monitorID string) (string, error) {
	body := map[string]string{"monitorId": monitorID}
	return c.postJSON(ctx, "/checkin", body)
}

// Submissions fetches the monitor's submission history in backend
// order. An empty list is a valid success case.
func (c *Client) Submissions(ctx context.Context, monitorID string) ([]SubmissionRecord, error) {
	endpoint := c.baseURL + "/submissions/" + url.PathEscape(monitorID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Submission history request failed",
			zap.String("monitor_id", monitorID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp.StatusCode, raw)
	}

	var records []SubmissionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode submission list: %w", err)
	}

	c.logger.Debug("Fetched submission history",
		zap.String("monitor_id", monitorID),
		zap.Int("count", len(records)))

	return records, nil
}

// SubmitResults sends a completed draft. A nil req.SubmissionID
// creates a new submission; a concrete id updates that submission.
func (c *Client) SubmitResults(ctx context.Context, req SubmitRequest) (string, error) {
	return c.postJSON(ctx, "/submit-results", req)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed",
			zap.String("path", path),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.apiError(resp.StatusCode, raw)
	}

	var msg messageResponse
	if len(raw) > 0 {
		// Success bodies without a message field are tolerated.
		_ = json.Unmarshal(raw, &msg)
	}
	return msg.Message, nil
}

func (c *Client) apiError(status int, raw []byte) error {
	var msg messageResponse
	_ = json.Unmarshal(raw, &msg)

	c.logger.Warn("Backend returned non-success status",
		zap.Int("status", status),
		zap.String("message", msg.Message))

	return &APIError{Status: status, Message: msg.Message}
}
