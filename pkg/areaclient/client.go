// Package areaclient is the HTTP client other services and admin tooling use
// to talk to the area access service.
package areaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"area-access-service/internal/domain"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientFromEnv resolves the service address the way the other service
// clients do.
func NewClientFromEnv(token string) *Client {
	addr := os.Getenv("AREA_ACCESS_ADDR")
	if addr == "" {
		addr = "http://area-access-service:7340"
	}
	return NewClient(addr, token)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: status %d: decode response: %w", method, path, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %s (status %d)", method, path, msg, resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}

	return nil
}

func (c *Client) ListAreas(ctx context.Context) ([]*domain.Area, error) {
	var data struct {
		Areas []*domain.Area `json:"areas"`
	}
	if err := c.do(ctx, http.MethodGet, "/areas", nil, &data); err != nil {
		return nil, err
	}
	return data.Areas, nil
}

func (c *Client) GetUserAreas(ctx context.Context, userID string) (*domain.UserAreaAccess, error) {
	var access domain.UserAreaAccess
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/areas", nil, &access); err != nil {
		return nil, err
	}
	return &access, nil
}

type LoadResult struct {
	Catalog []*domain.Area
	Access  *domain.UserAreaAccess
}

// LoadData fetches the catalog and the user's override record concurrently
// and waits for both. Cancelling ctx aborts the in-flight requests, so a
// panel closed mid-load never delivers a stale result.
func (c *Client) LoadData(ctx context.Context, userID string) (*LoadResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	catalogCh := make(chan []*domain.Area, 1)
	accessCh := make(chan *domain.UserAreaAccess, 1)
	errCh := make(chan error, 2)

	go func() {
		areas, err := c.ListAreas(ctx)
		if err != nil {
			errCh <- err
			return
		}
		catalogCh <- areas
	}()

	go func() {
		access, err := c.GetUserAreas(ctx, userID)
		if err != nil {
			errCh <- err
			return
		}
		accessCh <- access
	}()

	result := &LoadResult{}
	for i := 0; i < 2; i++ {
		select {
		case result.Catalog = <-catalogCh:
		case result.Access = <-accessCh:
		case err := <-errCh:
			cancel()
			return nil, err
		}
	}

	return result, nil
}

type saveOverrideRequest struct {
	OverrideMode domain.OverrideMode `json:"override_mode"`
	Grants       []string            `json:"grants"`
	Revokes      []string            `json:"revokes,omitempty"`
}

// SaveOverride submits a full replace of the user's override record.
func (c *Client) SaveOverride(ctx context.Context, userID string, mode domain.OverrideMode, grants, revokes []string) (*domain.UserAreaOverride, error) {
	req := saveOverrideRequest{OverrideMode: mode, Grants: grants, Revokes: revokes}

	var saved domain.UserAreaOverride
	if err := c.do(ctx, http.MethodPut, "/users/"+userID+"/areas", req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// RemoveOverrides reverts the user to pure role defaults. Idempotent.
func (c *Client) RemoveOverrides(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+userID+"/areas", nil, nil)
}
