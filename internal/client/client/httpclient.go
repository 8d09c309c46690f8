// Package client provides the local database bootstrap and the HTTP client
// that talks to a sync server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	stdsync "sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/sync"
)

// HTTPClient implements sync.Transport against the notekeeper server API.
//
// A session token is obtained lazily from POST /api/v1/session using the
// account identifier and verifier derived from the seed phrase; an expired
// token is re-acquired once and the failed request replayed.
type HTTPClient struct {
	baseURL   string
	accountID string
	verifier  []byte
	httpc     *http.Client

	mu    stdsync.Mutex
	token string
}

// NewHTTPClient returns a transport for the server at baseURL, authenticating
// as accountID with the given verifier.
func NewHTTPClient(baseURL, accountID string, verifier []byte) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		accountID: accountID,
		verifier:  append([]byte(nil), verifier...),
		httpc:     &http.Client{Timeout: 15 * time.Second},
	}
}

// HealthCheck probes GET /api/v1/health.
func (c *HTTPClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Pull fetches envelopes modified after since.
func (c *HTTPClient) Pull(ctx context.Context, since int64) ([]sync.Envelope, error) {
	path := "/api/v1/envelopes?since=" + strconv.FormatInt(since, 10)

	var result struct {
		Envelopes []sync.Envelope `json:"envelopes"`
	}
	if err := c.doAuthed(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Envelopes, nil
}

// Push upserts one envelope.
func (c *HTTPClient) Push(ctx context.Context, env sync.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.doAuthed(ctx, http.MethodPut, "/api/v1/envelopes/"+url.PathEscape(env.ID), body, nil)
}

// Delete tombstones one envelope.
func (c *HTTPClient) Delete(ctx context.Context, id string, modifiedAt int64) error {
	path := "/api/v1/envelopes/" + url.PathEscape(id) + "?modified_at=" + strconv.FormatInt(modifiedAt, 10)
	return c.doAuthed(ctx, http.MethodDelete, path, nil, nil)
}

// doAuthed performs an authenticated request, re-acquiring the session token
// once on 401 before giving up.
func (c *HTTPClient) doAuthed(ctx context.Context, method, path string, body []byte, out any) error {
	token, err := c.sessionToken(ctx, false)
	if err != nil {
		return err
	}

	status, payload, err := c.do(ctx, method, path, body, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		if token, err = c.sessionToken(ctx, true); err != nil {
			return err
		}
		if status, payload, err = c.do(ctx, method, path, body, token); err != nil {
			return err
		}
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: %s %s: status %d", common.ErrTransport, method, path, status)
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", common.ErrTransport, err)
		}
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.AuthHeaderName, "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, payload, nil
}

// sessionToken returns the cached token, logging in when none is held or
// when refresh is forced.
func (c *HTTPClient) sessionToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !force {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]any{
		"account_id": c.accountID,
		"verifier":   c.verifier,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/session", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", common.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: session: status %d", common.ErrTransport, resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: session: %v", common.ErrTransport, err)
	}
	c.token = result.Token
	return c.token, nil
}
