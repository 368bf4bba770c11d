// Package client drives workflow instances against a Shtack server.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Chargde-Porcupine/SHtack/internal/token"
)

// StagePath is the well-known path that starts a workflow instance.
const StagePath = "/push"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// ErrUnexpectedPath is returned when the server answers a stage request
// with something other than a capability path in the expected namespace.
var ErrUnexpectedPath = errors.New("server returned unexpected capability path")

// StatusError is returned when the server answers with a status the
// operation did not expect. Body holds the server's message.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Client provides methods to interact with the Shtack API.
type Client struct {
	// BaseURL is the base URL of the API (e.g., "http://localhost:8000").
	BaseURL string

	// HTTPClient is the HTTP client used for requests.
	// If nil, http.DefaultClient is used. The client must not follow
	// redirects for Location-bearing 303s; NewClient configures that.
	HTTPClient *http.Client
}

// NewClient creates a new API client for baseURL. A bare host:port is
// accepted and treated as http.
func NewClient(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// doRequest executes an HTTP request and returns the response body.
// If form is not nil, it is URL-encoded and sent as the request body.
// Returns a *StatusError if the response status is not expectedStatus.
func (c *Client) doRequest(ctx context.Context, method, path string, form url.Values, expectedStatus int) (string, error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	body := string(data)

	if resp.StatusCode != expectedStatus {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(body)}
	}
	return body, nil
}

// Stage submits command on a stage path (StagePath or a minted push path)
// and returns the capability path the server minted in response.
// From StagePath the next path is a push capability; from a minted push
// path it is a pop capability.
func (c *Client) Stage(ctx context.Context, path, command string) (string, error) {
	form := url.Values{"command": {command}}
	next, err := c.doRequest(ctx, http.MethodPost, path, form, http.StatusSeeOther)
	if err != nil {
		return "", fmt.Errorf("stage on %s: %w", path, err)
	}

	want := token.NamespacePop
	if path == StagePath || path == StagePath+"/" {
		want = token.NamespacePush
	}
	if !hasNamespace(next, want) {
		return "", fmt.Errorf("stage on %s: %w: %q", path, ErrUnexpectedPath, next)
	}
	return next, nil
}

// Release consumes a pop capability and returns the released command.
func (c *Client) Release(ctx context.Context, path string) (string, error) {
	cmd, err := c.doRequest(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("release on %s: %w", path, err)
	}
	return cmd, nil
}

// Run performs one complete workflow instance: stage first, stage second,
// then release. It returns the released command, which is the oldest one
// staged on the server and not necessarily first.
func (c *Client) Run(ctx context.Context, first, second string) (string, error) {
	pushPath, err := c.Stage(ctx, StagePath, first)
	if err != nil {
		return "", err
	}
	popPath, err := c.Stage(ctx, pushPath, second)
	if err != nil {
		return "", err
	}
	return c.Release(ctx, popPath)
}

// hasNamespace reports whether path is /<ns>/<token> with a non-empty token.
func hasNamespace(path string, ns token.Namespace) bool {
	prefix := "/" + string(ns) + "/"
	rest, ok := strings.CutPrefix(path, prefix)
	return ok && rest != "" && !strings.Contains(rest, "/")
}
