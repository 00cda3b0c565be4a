package loadcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUnexpectedStatus is returned when the service answers with a status
// the check does not expect.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type errorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, out any) (int, errorBody, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, errorBody{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errorBody{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errorBody{}, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return resp.StatusCode, eb, nil
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, errorBody{}, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, errorBody{}, nil
}

// ListActivities fetches GET /activities.
func (c *HTTPClient) ListActivities(ctx context.Context) (map[string]Activity, error) {
	var all map[string]Activity
	status, eb, err := c.do(ctx, http.MethodGet, "/activities", &all)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: GET /activities: %d %s", ErrUnexpectedStatus, status, eb.Code)
	}
	return all, nil
}

// Activity fetches GET /activities/{name}.
func (c *HTTPClient) Activity(ctx context.Context, name string) (Activity, error) {
	var a Activity
	status, eb, err := c.do(ctx, http.MethodGet, "/activities/"+url.PathEscape(name), &a)
	if err != nil {
		return Activity{}, err
	}
	if status != http.StatusOK {
		return Activity{}, fmt.Errorf("%w: GET activity %q: %d %s", ErrUnexpectedStatus, name, status, eb.Code)
	}
	return a, nil
}

// SignUp posts a signup and reports the status and error code.
func (c *HTTPClient) SignUp(ctx context.Context, name, email string) (Outcome, error) {
	path := "/activities/" + url.PathEscape(name) + "/signup?email=" + url.QueryEscape(email)
	status, eb, err := c.do(ctx, http.MethodPost, path, nil)
	return Outcome{Email: email, Status: status, Code: eb.Code}, err
}

// Unregister deletes a participant and reports the status and error code.
func (c *HTTPClient) Unregister(ctx context.Context, name, email string) (Outcome, error) {
	path := "/activities/" + url.PathEscape(name) + "/participants?email=" + url.QueryEscape(email)
	status, eb, err := c.do(ctx, http.MethodDelete, path, nil)
	return Outcome{Email: email, Status: status, Code: eb.Code}, err
}
