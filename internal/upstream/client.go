// Package upstream performs HTTP round trips against the native
// generative backend: credential attachment, JSON bodies, an optional
// outbound proxy, and a streaming chunk iterator over server-sent
// events.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"llmgateway/internal/constants"
	"llmgateway/internal/credential"
	"llmgateway/internal/tracing"
)

// Client performs HTTP round trips to one upstream base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config configures a Client.
type Config struct {
	BaseURL          string
	OutboundProxyURL string
}

// New builds a Client with a pooled transport sized per
// internal/constants.
func New(cfg Config) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:          constants.MaxIdleConns,
		MaxIdleConnsPerHost:   constants.MaxIdleConnsPerHost,
		MaxConnsPerHost:       constants.MaxConnsPerHost,
		IdleConnTimeout:       constants.IdleConnTimeout,
		TLSHandshakeTimeout:   constants.TLSHandshakeTimeout,
		ResponseHeaderTimeout: constants.ResponseHeaderTimeout,
		ExpectContinueTimeout: constants.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout: constants.DialTimeout,
		}).DialContext,
	}
	if cfg.OutboundProxyURL != "" {
		proxyURL, err := url.Parse(cfg.OutboundProxyURL)
		if err != nil {
			return nil, fmt.Errorf("upstream: invalid outbound_proxy_url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Transport: transport},
	}, nil
}

// Attempt is one HTTP round trip's raw result, before classification.
type Attempt struct {
	StatusCode int
	Body       []byte         // populated for non-streaming calls
	Stream     *http.Response // populated (body unread) for streaming calls
}

// Generate performs a single non-streaming call, returning the raw
// response body. The caller is responsible for classifying status/body
// into an errors.Kind.
func (c *Client) Generate(ctx context.Context, cred credential.Credential, path string, body []byte) (Attempt, error) {
	resp, err := c.do(ctx, cred, path, body)
	if err != nil {
		return Attempt{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Attempt{}, err
	}
	return Attempt{StatusCode: resp.StatusCode, Body: data}, nil
}

// Stream performs a single streaming call and returns the response with
// its body unread, for the caller to wrap in a ChunkIterator. The
// response must be closed by the caller once the stream is drained or
// cancelled.
func (c *Client) Stream(ctx context.Context, cred credential.Credential, path string, body []byte) (Attempt, error) {
	resp, err := c.do(ctx, cred, path, body)
	if err != nil {
		return Attempt{}, err
	}
	return Attempt{StatusCode: resp.StatusCode, Stream: resp}, nil
}

func (c *Client) do(ctx context.Context, cred credential.Credential, path string, body []byte) (resp *http.Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "upstream", "do")
	defer func() { tracing.EndWithError(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.Secret)

	return c.httpClient.Do(req)
}

// ReadAll drains and closes a response body, returning its bytes. Used
// by callers that need the body of an error response before classifying
// it.
func ReadAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// AttemptDeadline computes min(overallDeadline, now+perAttemptTimeout).
func AttemptDeadline(overallDeadline time.Time, perAttemptTimeout time.Duration) time.Time {
	attemptDeadline := time.Now().Add(perAttemptTimeout)
	if attemptDeadline.After(overallDeadline) {
		return overallDeadline
	}
	return attemptDeadline
}
