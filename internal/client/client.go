// Package client provides a Go SDK for talking to one node of the
// distributed key-value store. It hides HTTP and JSON details behind a
// small, typed Go API; the distributed logic (replication, conflict
// resolution) all happens server-side, so this client is intentionally
// thin.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kvgossip/internal/store"
)

// Client talks to one KV node at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A zero timeout is replaced with a 10s default — in
// a distributed system, never call the network without one.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Update performs a client write: PATCH /update with a flat key → value
// object body. An empty value deletes that key.
func (c *Client) Update(ctx context.Context, kv map[string]string) error {
	body, err := json.Marshal(kv)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/update", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("PATCH /update: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Set is a one-key convenience wrapper over Update.
func (c *Client) Set(ctx context.Context, key, value string) error {
	return c.Update(ctx, map[string]string{key: value})
}

// Delete is Update with an empty value, the source's delete convention.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.Update(ctx, map[string]string{key: ""})
}

// Records fetches GET /records: the node's currently visible key → value map.
func (c *Client) Records(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/records", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /records: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out map[string]string
	return out, json.NewDecoder(resp.Body).Decode(&out)
}

// Snapshot fetches GET /snapshot: data, per-key clocks, and this node's
// local clock.
func (c *Client) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/snapshot", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /snapshot: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out store.Snapshot
	return &out, json.NewDecoder(resp.Body).Decode(&out)
}

// Exclude installs a peer blacklist via PUT /exclude, used to simulate a
// network partition from this node's point of view.
func (c *Client) Exclude(ctx context.Context, ids []store.NodeID) error {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = strconv.Itoa(int(id))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/exclude", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Nodes", strings.Join(tokens, ","))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("PUT /exclude: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// APIError carries the HTTP status and message body from a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = string(body)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
