// Package apiclient talks to the upstream task REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tugaskita/tugasboard/pkg/cerr"
)

const maxResponseBody = 16 << 20

type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid API base URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unsupported API URL scheme %q", u.Scheme), nil)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.base.String()
}

// ResolveURL turns a photo reference from the API into an absolute URL.
// References the server stores as relative paths hang off the API base.
func (c *Client) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.base.String() + "/" + strings.TrimLeft(ref, "/")
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "cannot build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
	}
	return c.newRequest(ctx, method, path, bytes.NewReader(body), "application/json")
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends req and decodes a JSON body into out. Non-2xx answers become a
// *cerr.Error carrying the server's message.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return cerr.From(ctxErr)
		}
		return cerr.NewError(cerr.Unavailable, "cannot reach the task server", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	slog.DebugContext(req.Context(), "api request",
		"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		return cerr.NewError(cerr.Unavailable, "cannot read the server response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		code := cerr.CodeFromHTTPStatus(resp.StatusCode)
		if code == cerr.OK {
			code = cerr.Unknown
		}
		return cerr.NewError(code, msg,
			fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status))
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return cerr.NewError(cerr.Internal, "unexpected response from the task server", err)
	}
	return nil
}
