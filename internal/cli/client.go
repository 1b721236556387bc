package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"llamad/pkg/types"
)

// Client is a thin HTTP client for the daemon API.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client for the given base URL, e.g. http://127.0.0.1:8080.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// apiError carries the decoded error payload of a non-2xx response.
type apiError struct {
	status int
	msg    string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.msg, e.status)
}

func (c *Client) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e types.ErrorResponse
		if derr := json.NewDecoder(resp.Body).Decode(&e); derr == nil && e.Error != "" {
			return apiError{status: resp.StatusCode, msg: e.Error}
		}
		return apiError{status: resp.StatusCode, msg: http.StatusText(resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Setup asks the daemon to download and load a model. With verbose the
// response includes the progress trace.
func (c *Client) Setup(name string, verbose bool) (types.SetupResponse, error) {
	path := "/setup"
	if verbose {
		path += "?verbose=1"
	}
	var resp types.SetupResponse
	err := c.do(http.MethodPost, path, types.SetupRequest{Name: name}, &resp)
	return resp, err
}

// Generate runs text generation against the active model.
func (c *Client) Generate(req types.GenerateRequest) (types.GenerateResponse, error) {
	var resp types.GenerateResponse
	err := c.do(http.MethodPost, "/generate", req, &resp)
	return resp, err
}

// Status returns the active model summary.
func (c *Client) Status() (types.StatusResponse, error) {
	var resp types.StatusResponse
	err := c.do(http.MethodGet, "/status", nil, &resp)
	return resp, err
}

// Models lists persisted model records.
func (c *Client) Models() (types.ModelsResponse, error) {
	var resp types.ModelsResponse
	err := c.do(http.MethodGet, "/models", nil, &resp)
	return resp, err
}

// Remove deletes a record and its artifacts.
func (c *Client) Remove(name string) error {
	return c.do(http.MethodDelete, "/models/"+url.PathEscape(name), nil, nil)
}

// Registry lists catalog entries, optionally filtered by tag or verified.
func (c *Client) Registry(tag string, verified bool) (types.RegistryResponse, error) {
	path := "/registry"
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if verified {
		q.Set("verified", "1")
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp types.RegistryResponse
	err := c.do(http.MethodGet, path, nil, &resp)
	return resp, err
}

// Search queries the catalog.
func (c *Client) Search(query string) (types.RegistryResponse, error) {
	var resp types.RegistryResponse
	err := c.do(http.MethodGet, "/registry/search?q="+url.QueryEscape(query), nil, &resp)
	return resp, err
}

// Health fetches the daemon health report. The report is returned even when
// the daemon answers 503 for an unhealthy state.
func (c *Client) Health() (types.HealthResponse, error) {
	resp, err := c.http.Get(c.base + "/healthz")
	if err != nil {
		return types.HealthResponse{}, err
	}
	defer resp.Body.Close()
	var report types.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return types.HealthResponse{}, err
	}
	return report, nil
}
