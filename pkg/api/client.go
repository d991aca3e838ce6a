// Package api is the HTTP client for the pairing service.
//
// Every call returns *errors.TransportError when the request fails or the
// server answers with a non-2xx status. Context cancellation is returned
// unwrapped so supervisors can tell it apart from a failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

// DefaultTimeout bounds each request when no HTTP client is supplied.
const DefaultTimeout = 2 * time.Minute

// Client calls the pairing service rooted at a base URL.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the service at baseURL, e.g.
// "http://10.0.0.5:8081".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Devices lists the paired devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var resp DevicesResponse
	if err := c.do(ctx, "devices()", http.MethodGet, "/api/devices", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Devices == nil {
		return []Device{}, nil
	}
	return resp.Devices, nil
}

// Pair commissions a device. A response with a non-success status and a 2xx
// code is returned as is; callers check OK.
func (c *Client) Pair(ctx context.Context, req PairRequest) (*PairResponse, error) {
	var resp PairResponse
	if err := c.do(ctx, "pair()", http.MethodPost, "/api/pair", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unpair removes a device from the fabric and the registry.
func (c *Client) Unpair(ctx context.Context, req UnpairRequest) (*Response, error) {
	var resp Response
	op := fmt.Sprintf("unpair(%d)", req.NodeID)
	if err := c.do(ctx, op, http.MethodPost, "/api/unpair", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &errors.TransportError{Op: op, Message: err.Error(), Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return &errors.TransportError{Op: op, Message: err.Error(), Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("api.request.failed", "op", op, "err", err)
		return &errors.TransportError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.TransportError{Op: op, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	c.logger.Debug("api.request", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &errors.TransportError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
		var r Response
		if json.Unmarshal(data, &r) == nil && r.Message != "" {
			te.Err = stderrors.New(r.Message)
		}
		c.logger.Warn("api.request.status", "op", op, "status", resp.StatusCode)
		return te
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &errors.TransportError{Op: op, Status: resp.StatusCode, Message: "invalid response: " + err.Error(), Err: err}
	}
	return nil
}
