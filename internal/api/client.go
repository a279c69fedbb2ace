// Package api is the one place the console talks to the backend from.
// Base URL, bearer token and session cookie handling live here; call
// sites never carry their own endpoint strings.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tnslabs/waconsole/internal/apperrors"
	"github.com/tnslabs/waconsole/internal/logger"
)

type Client struct {
	baseURL        string
	token          string
	maxUploadBytes int64
	http           *http.Client
}

// Options configures a Client. MaxUploadBytes guards the media upload
// path; zero disables the check.
type Options struct {
	BaseURL        string
	BearerToken    string
	Timeout        time.Duration
	MaxUploadBytes int64
}

// New builds a Client with a cookie jar so the backend's session cookie
// rides along with the bearer token on every call.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create cookie jar: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		token:          opts.BearerToken,
		maxUploadBytes: opts.MaxUploadBytes,
		http:           &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// envelope is the common {ok, error} wrapper every endpoint uses.
type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (c *Client) endpoint(name string, query url.Values) string {
	u := c.baseURL + "/" + name
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, urlStr string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out (which should embed or sit beside an envelope).
// Status-level failures are mapped onto the apperrors sentinels; the
// caller inspects the envelope for payload-level failures.
func (c *Client) doJSON(ctx context.Context, method, name string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", name, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, c.endpoint(name, query), reader)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", name, err)
	}

	if resp.StatusCode >= 400 {
		return c.statusError(name, resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", name, err)
		}
	}
	return nil
}

func (c *Client) statusError(name string, status int, body []byte) error {
	var env envelope
	_ = json.Unmarshal(body, &env)
	msg := env.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	logger.Log.Warn("backend call failed",
		zap.String("endpoint", name),
		zap.Int("status", status),
		zap.String("error", msg))

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %s: %w", name, msg, apperrors.ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", name, msg, apperrors.ErrNotFound)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %s: %w", name, msg, apperrors.ErrBadRequest)
	default:
		return fmt.Errorf("%s: %s (status %d): %w", name, msg, status, apperrors.ErrBackend)
	}
}

func envelopeError(name string, env envelope) error {
	msg := env.Error
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Errorf("%s: %s: %w", name, msg, apperrors.ErrBackend)
}

// flexString tolerates the backend's habit of emitting ids and timestamps
// as either JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
