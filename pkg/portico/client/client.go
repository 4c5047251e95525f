// Package client is the Go SDK for the Portico API.
//
// The client wraps the HTTP API with typed methods per resource. Every
// method takes a context and returns the decoded response or an *APIError
// carrying the status code and the server's error message:
//
//	c, err := client.New("http://localhost:8095", token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	page, err := c.Pool(ctx, nodeID, 1, 100)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, alloc := range page.Unassigned {
//	    fmt.Println(alloc.BindAddress, alloc.Port)
//	}
//
// Deleting a node that still hosts workloads fails with *BlockedError, which
// carries the live workload count standing in the way.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Portico server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given server. The token is sent as a bearer
// credential on every request; pass an empty string when the server runs
// without authentication.
func New(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client, for custom transports
// or timeouts.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// APIError is an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("portico: %s (HTTP %d): %s", e.Message, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("portico: %s (HTTP %d)", e.Message, e.StatusCode)
}

// BlockedError reports a node deletion refused because workloads still
// reference the node.
type BlockedError struct {
	Message   string
	Workloads int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("portico: %s (%d workloads)", e.Message, e.Workloads)
}

// PlanInvalidError reports a plan refused before application because its
// source failed validation. Findings carries the parse warnings and errors.
type PlanInvalidError struct {
	Findings *PlanParseResult
}

func (e *PlanInvalidError) Error() string {
	if e.Findings != nil && len(e.Findings.Errors) > 0 {
		return fmt.Sprintf("portico: invalid plan: %s", strings.Join(e.Findings.Errors, "; "))
	}
	return "portico: invalid plan"
}

// send issues one request and returns the raw response. The caller owns the
// body and the status handling.
func (c *Client) send(ctx context.Context, method, path string, in interface{}) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// do issues one request and decodes the response into out when out is
// non-nil. Non-2xx responses come back as *APIError, except a BLOCKED
// conflict which becomes *BlockedError.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusConflict {
		var blocked struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Context map[string]int `json:"context"`
		}
		if json.Unmarshal(data, &blocked) == nil && blocked.Code == "BLOCKED" {
			return &BlockedError{
				Message:   blocked.Message,
				Workloads: blocked.Context["workloads"],
			}
		}
	}

	var apiErr struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiErr.Error,
			Details:    apiErr.Details,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(data)),
	}
}

// Health checks whether the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Refresh rebuilds the server's fleet snapshot from storage.
func (c *Client) Refresh(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/refresh", nil, nil)
}
