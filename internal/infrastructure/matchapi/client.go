// Package matchapi provides the HTTP client for the external athlete
// matching API. The matching service treats any error from this client
// as a signal to fall back to the local scorer.
package matchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	matchingapp "github.com/nilmarket/backend/internal/application/matching"
	"github.com/nilmarket/backend/internal/infrastructure/config"
)

// ErrAPIUnavailable indicates the matching API could not be reached
var ErrAPIUnavailable = errors.New("matchapi: service unavailable")

// ErrAPIRequestFailed indicates the matching API returned a non-success status
var ErrAPIRequestFailed = errors.New("matchapi: request failed")

// Client calls the external matching API over HTTP
type Client struct {
	baseURL          string
	apiKey           string
	maxResponseBytes int64
	httpClient       *http.Client
}

// NewClient creates a matching API client from configuration.
// Returns nil when no base URL is configured, which the matching
// service reads as "local scorer only".
func NewClient(cfg config.MatchingConfig) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:           cfg.APIKey,
		maxResponseBytes: cfg.MaxResponseBytes,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Match sends the campaign criteria to the matching API and decodes the ranked results
func (c *Client) Match(ctx context.Context, req matchingapp.MatchAPIRequest) (*matchingapp.MatchAPIResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("matchapi: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/match", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("matchapi: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("matchapi: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrAPIRequestFailed, resp.StatusCode)
	}

	var apiResp matchingapp.MatchAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("matchapi: failed to decode response: %w", err)
	}
	return &apiResp, nil
}

// Healthy reports whether the API answers its health endpoint within the timeout
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Ensure Client implements the matching service's client interface
var _ matchingapp.MatchClient = (*Client)(nil)
