package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Timeouts bounds a single remote call.
type Timeouts struct {
	Connect time.Duration // dial + TLS handshake
	Read    time.Duration // waiting for response headers
	Write   time.Duration // sending the request body
}

// DefaultTimeouts mirrors the mobile client: 60s connect, 120s read/write.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Connect: 60 * time.Second,
		Read:    120 * time.Second,
		Write:   120 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.Connect <= 0 {
		t.Connect = d.Connect
	}
	if t.Read <= 0 {
		t.Read = d.Read
	}
	if t.Write <= 0 {
		t.Write = d.Write
	}
	return t
}

// NewHTTPClient builds a pooled *http.Client honouring the given timeouts.
// net/http has no separate write deadline, so the overall client timeout is
// the sum of the three phases.
func NewHTTPClient(t Timeouts) *http.Client {
	t = t.withDefaults()
	dialer := &net.Dialer{
		Timeout:   t.Connect,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: t.Connect + t.Write + t.Read,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   t.Connect,
			ResponseHeaderTimeout: t.Read,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

// Transport issues authenticated POST requests against one base URL.
// It holds no mutable state and is safe for concurrent use.
type Transport struct {
	baseURL    string
	credential string
	doer       Doer
	logger     *slog.Logger
}

// NewTransport creates a Transport. A nil doer gets a client built from
// DefaultTimeouts.
func NewTransport(baseURL, credential string, doer Doer, logger *slog.Logger) *Transport {
	if doer == nil {
		doer = NewHTTPClient(DefaultTimeouts())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		doer:       doer,
		logger:     logger,
	}
}

// Response is a successful reply.
type Response struct {
	Body        []byte
	ContentType string
}

// Post sends body to path and returns the full 2xx reply.
func (t *Transport) Post(ctx context.Context, op, path, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+t.credential)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := t.doer.Do(req)
	if err != nil {
		t.logger.Debug("speech request failed", "op", op, "path", path, "error", err, "elapsed", time.Since(start))
		return nil, &ConnectionError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	t.logger.Debug("speech request done",
		"op", op,
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Message:    serverMessage(respBody),
		}
	}
	return &Response{Body: respBody, ContentType: resp.Header.Get("Content-Type")}, nil
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

// serverMessage pulls the OpenAI-style error.message out of an error body,
// falling back to the trimmed raw body.
func serverMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String {
		return msg.Str
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
