// Package api provides a client for the policy control-plane deployment API.
package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"polship/internal/logger"
	"polship/internal/model"
)

// Client is an authenticated API client for the control plane. The embedded
// http.Client timeout bounds each fetch so a hung request cannot stall the
// poll loop's deadline check for long.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithToken returns a new client with the specified auth token.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		token:      token,
	}
}

// DeploymentRun represents a triggered pipeline run from the API.
type DeploymentRun struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entity_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// DeployRequest is the payload for triggering a deployment run.
type DeployRequest struct {
	BundleRef string `json:"bundle_ref"`
	Message   string `json:"message,omitempty"`
}

// TriggerDeployment starts a deployment pipeline run for an entity. The
// request carries a deterministic Idempotency-Key so a retried trigger on
// the server side cannot start a second run.
func (c *Client) TriggerDeployment(ctx context.Context, entityID string, req DeployRequest) (*DeploymentRun, error) {
	var run DeploymentRun
	path := "/v1/entities/" + entityID + "/deployments"
	headers := map[string]string{
		"Idempotency-Key": idempotencyKey(entityID, req.BundleRef),
	}
	if err := c.post(ctx, path, headers, req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// logsResponse is the JSON envelope around a fetched log batch.
type logsResponse struct {
	Logs []model.LogEntry `json:"logs"`
}

// FetchLogs returns the most recent log entries for a run, newest window
// first as ordered by the server. Overlap with previously fetched windows is
// expected; the poller deduplicates.
func (c *Client) FetchLogs(ctx context.Context, entityID, runID string, limit int) ([]model.LogEntry, error) {
	var envelope logsResponse
	path := fmt.Sprintf("/v1/entities/%s/runs/%s/logs?limit=%d", entityID, runID, limit)
	if err := c.get(ctx, path, &envelope); err != nil {
		return nil, err
	}
	return envelope.Logs, nil
}

// idempotencyKey derives a deterministic deduplication key for a trigger
// request from the entity and bundle reference.
func idempotencyKey(entityID, bundleRef string) string {
	sum := sha256.Sum256([]byte(entityID + "\x00" + bundleRef))
	return hex.EncodeToString(sum[:16])
}

// get performs a GET request and unmarshals the response envelope.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, result)
}

// post performs a POST request with a JSON body.
func (c *Client) post(ctx context.Context, path string, headers map[string]string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, headers, payload, result)
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body []byte, result interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.WithFields(map[string]interface{}{
		"method": method,
		"path":   path,
	}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
