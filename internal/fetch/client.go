// client.go retrieves included files from a remote file API.

// Package fetch provides the file-retrieval collaborators used to expand
// !include directives: an HTTP client for the file API and a local
// directory reader.
package fetch

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

	"github.com/example/pumlkit/internal/include"
)

// GetFilePath is the route that serves file content by path.
const GetFilePath = "/api/file/getFile"

// MaxFileBytes caps the size of a single fetched file.
const MaxFileBytes = 8 << 20

const defaultTimeout = 20 * time.Second

// Request is the JSON body posted to the file API.
type Request struct {
	Path string `json:"path"`
}

// Client fetches files by posting {"path": ...} to a file API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ include.Fetcher = (*Client)(nil)

// NewClient returns a Client for the API rooted at baseURL. A zero timeout
// uses the package default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// GetFile returns the raw content stored at path.
func (c *Client) GetFile(ctx context.Context, path string) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", errors.New("file API base URL is not configured")
	}
	body, err := json.Marshal(Request{Path: path})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GetFilePath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetch %s: %s: %s", path, resp.Status, strings.TrimSpace(string(msg)))
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > MaxFileBytes {
		return "", fmt.Errorf("fetch %s: file too large (>%d bytes)", path, MaxFileBytes)
	}
	return string(raw), nil
}

// GetFile retrieves a single file through f. It is the standalone helper for
// callers that need file content outside of include resolution.
func GetFile(ctx context.Context, f include.Fetcher, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if f == nil {
		return "", errors.New("no file fetcher configured")
	}
	return f.GetFile(ctx, path)
}
