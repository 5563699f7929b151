// Package jamf provides a client for the management server's HTTP API.
// It handles token authentication and the category and script endpoints the
// sync engine consumes.
package jamf

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"scriptsync/internal/logging"
	"scriptsync/internal/model"
)

// Options configures the client connection.
type Options struct {
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// WarnInsecure logs a warning when verification is disabled.
	WarnInsecure bool
	// Timeout bounds each HTTP call. Defaults to 30s.
	Timeout time.Duration
}

// APIError is a non-2xx response from the server, carrying the status code
// and, when present, the server-supplied error body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Body)
}

// Client talks to a single management server with a bearer token obtained
// at dial time.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Dial authenticates against the server and returns a ready client.
// Authentication posts basic credentials to the token endpoint; a non-2xx
// response is surfaced as an APIError.
func Dial(ctx context.Context, url, username, password string, opts Options) (*Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.InsecureSkipVerify && opts.WarnInsecure {
		logging.Warn("TLS certificate verification is disabled")
	}

	c := &Client{
		baseURL: url,
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS12,
					InsecureSkipVerify: opts.InsecureSkipVerify, // #nosec G402 - operator-controlled toggle
				},
			},
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/uapi/auth/tokens", nil)
	if err != nil {
		return nil, fmt.Errorf("build auth request: %w", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authenticate against %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if body.Token == "" {
		return nil, fmt.Errorf("auth response from %s carried no token", url)
	}

	c.token = body.Token
	return c, nil
}

// ListCategories retrieves all categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var envelope struct {
		Results []model.Category `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/uapi/v1/categories", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// ListScripts retrieves all scripts, metadata and contents inline.
func (c *Client) ListScripts(ctx context.Context) ([]model.RemoteScript, error) {
	var envelope struct {
		Results []model.RemoteScript `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/uapi/v1/scripts", nil, &envelope); err != nil {
		return nil, err
	}
	for _, rs := range envelope.Results {
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("invalid script in listing: %w", err)
		}
	}
	return envelope.Results, nil
}

// GetScript retrieves a single script by id.
func (c *Client) GetScript(ctx context.Context, id int) (model.RemoteScript, error) {
	var rs model.RemoteScript
	if err := c.do(ctx, http.MethodGet, "/uapi/v1/scripts/"+strconv.Itoa(id), nil, &rs); err != nil {
		return model.RemoteScript{}, err
	}
	if err := rs.Validate(); err != nil {
		return model.RemoteScript{}, err
	}
	return rs, nil
}

// UpsertScript creates or updates a script. A record without an id is
// created (empty id segment); a registered record is updated in place.
// The returned record carries the server-assigned id and name.
func (c *Client) UpsertScript(ctx context.Context, s model.Script) (model.RemoteScript, error) {
	path := "/uapi/v1/scripts/"
	if s.Registered() {
		path += strconv.Itoa(s.ID)
	}

	var rs model.RemoteScript
	if err := c.do(ctx, http.MethodPut, path, s, &rs); err != nil {
		return model.RemoteScript{}, err
	}
	if err := rs.Validate(); err != nil {
		return model.RemoteScript{}, fmt.Errorf("upsert response: %w", err)
	}
	return rs, nil
}

// DeleteScript removes a script by id.
func (c *Client) DeleteScript(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/uapi/v1/scripts/"+strconv.Itoa(id), nil, nil)
}

// RenameScript changes only a script's name.
func (c *Client) RenameScript(ctx context.Context, id int, newName string) error {
	payload := map[string]string{"name": newName}
	return c.do(ctx, http.MethodPut, "/uapi/v1/scripts/"+strconv.Itoa(id), payload, nil)
}

// do performs an authenticated request and decodes the response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// checkStatus turns a non-2xx response into an APIError with the server's
// error body attached when it can be read.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		Status: resp.StatusCode,
		Body:   string(bytes.TrimSpace(data)),
	}
}
