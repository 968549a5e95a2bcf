package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// apiClient is a thin HTTP client for the diagnosis API.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(cfg config) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		token:   cfg.Token,
		// Synthesis runs can take a while; leave headroom over the
		// server's own write timeout.
		httpClient: &http.Client{Timeout: 3 * time.Minute},
	}
}

// usageStats mirrors the API's usage payload.
type usageStats struct {
	ShopID        string    `json:"shop_id"`
	Tier          string    `json:"tier"`
	UsedThisMonth int       `json:"used_this_month"`
	Limit         int       `json:"limit"`
	Remaining     int       `json:"remaining"`
	ResetDate     time.Time `json:"reset_date"`
}

// outcomeRequest mirrors the API's outcome payload.
type outcomeRequest struct {
	RunID       string   `json:"run_id"`
	ActualCause string   `json:"actual_cause"`
	WasCorrect  bool     `json:"was_correct"`
	PartsUsed   []string `json:"parts_used,omitempty"`
	ActualHours float64  `json:"actual_hours,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

func (c *apiClient) Diagnose(ctx context.Context, shopID string, query models.DiagnosticQuery) (*models.DiagnosisResult, error) {
	var result models.DiagnosisResult
	path := fmt.Sprintf("/api/shops/%s/diagnose", shopID)
	if err := c.do(ctx, "POST", path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) RecordOutcome(ctx context.Context, req outcomeRequest) (*models.OutcomeRecord, error) {
	var record models.OutcomeRecord
	if err := c.do(ctx, "POST", "/api/outcomes", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *apiClient) Stats(ctx context.Context) (*models.AccuracyStats, error) {
	var stats models.AccuracyStats
	if err := c.do(ctx, "GET", "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *apiClient) Usage(ctx context.Context, shopID string) (*usageStats, error) {
	var stats usageStats
	if err := c.do(ctx, "GET", fmt.Sprintf("/api/shops/%s/usage", shopID), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
