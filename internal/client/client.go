// Package client talks to a running timesheet server over its JSON API.
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

	"github.com/Tiliavir/simple-timesheet/internal/model"
)

const defaultTimeout = 30 * time.Second

// Client is a timesheet API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a Client for the server at baseURL. A nil httpClient gets a
// client with a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// errorResponse mirrors the server's JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// AddEntry submits in. A rejection by the server's validation is returned as
// a *model.ValidationError.
func (c *Client) AddEntry(ctx context.Context, in model.EntryInput) (model.Entry, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return model.Entry{}, fmt.Errorf("encoding entry: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/entries", bytes.NewReader(body))
	if err != nil {
		return model.Entry{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var entry model.Entry
	if err := c.do(req, http.StatusCreated, &entry); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// Entries fetches every stored entry in insertion order.
func (c *Client) Entries(ctx context.Context) ([]model.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/entries", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var entries []model.Entry
	if err := c.do(req, http.StatusOK, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

// CSV downloads the timesheet export.
func (c *Client) CSV(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/timesheet.csv", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timesheet request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timesheet server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// do sends req and decodes a JSON response with the wanted status into out.
func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("timesheet request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != want {
		var er errorResponse
		if jsonErr := json.Unmarshal(body, &er); jsonErr == nil && er.Error != "" {
			if resp.StatusCode == http.StatusBadRequest {
				return model.NewValidationError(er.Error)
			}
			return fmt.Errorf("timesheet server error %d: %s", resp.StatusCode, er.Error)
		}
		return fmt.Errorf("timesheet server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding timesheet response: %w", err)
	}
	return nil
}
