// Package testutil holds helpers shared by the HTTP tests.
package testutil

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

// NoRedirectClient returns an HTTP client that neither follows redirects nor
// uses any proxy from the environment. The API answers 303 with the next
// capability in the body, and the tests need to see that response as is.
func NoRedirectClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: nil,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   string
	Header http.Header
}

// PostForm posts a URL-encoded form and returns the read response.
// The command value is omitted from the form when it is nil.
func PostForm(t *testing.T, c *http.Client, target string, command *string) Response {
	t.Helper()
	form := url.Values{}
	if command != nil {
		form.Set("command", *command)
	}
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, c, req)
}

// Get issues a GET and returns the read response.
func Get(t *testing.T, c *http.Client, target string) Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, http.NoBody)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return do(t, c, req)
}

// Ptr returns a pointer to s.
func Ptr(s string) *string { return &s }

func do(t *testing.T, c *http.Client, req *http.Request) Response {
	t.Helper()
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return Response{Status: resp.StatusCode, Body: string(body), Header: resp.Header}
}
