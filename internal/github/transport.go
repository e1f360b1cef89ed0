package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/backoff"
	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/events"
)

type graphQLRequest struct {
	Query string `json:"query"`
}

// response is one complete HTTP exchange.
type response struct {
	status int
	body   []byte
	path   string
}

// post sends text with up to RetryAttempts tries. The first 200 is returned
// at once. When every try fails, the result is a timeout error if any try
// timed out and a query-failure error for the last response otherwise.
// Transport errors other than timeouts are returned immediately.
func (c *Client) post(ctx context.Context, text string, probe bool) (*response, error) {
	payload, err := json.Marshal(graphQLRequest{Query: text})
	if err != nil {
		return nil, fmt.Errorf("github: encode request: %w", err)
	}
	headers, err := c.headers()
	if err != nil {
		return nil, err
	}

	b := backoff.New(ctx, backoff.Config{
		MinBackoff: c.opts.MinBackoff,
		MaxBackoff: c.opts.MaxBackoff,
		MaxRetries: c.opts.RetryAttempts,
	})
	var (
		last     *response
		timedOut bool
		attempt  int
	)
	for b.Ongoing() {
		attempt++
		resp, err := c.attempt(ctx, payload, headers, attempt, probe)
		switch {
		case err == nil && resp.status == http.StatusOK:
			return resp, nil
		case err == nil:
			last = resp
			level.Warn(c.logger).Log("msg", "request failed, retrying", "status", resp.status, "attempt", attempt, "probe", probe)
		case isTimeout(ctx, err):
			timedOut = true
			level.Warn(c.logger).Log("msg", "request timed out, retrying", "attempt", attempt, "timeout", c.opts.Timeout, "probe", probe)
		default:
			return nil, fmt.Errorf("github: post %s: %w", c.url, err)
		}
		b.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timedOut || last == nil {
		return nil, &Error{Kind: KindTimeout, Err: fmt.Errorf("all %d retry attempts exhausted", attempt)}
	}
	return nil, queryFailed(last, text, nil)
}

func (c *Client) attempt(ctx context.Context, payload []byte, headers map[string]string, n int, probe bool) (*response, error) {
	actx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	eventbus.Publish(ctx, c.opts.Events, events.RequestStart{URL: c.url, Attempt: n, Probe: probe})
	out, err := c.do(req)
	finish := events.RequestFinish{
		URL:      c.url,
		Attempt:  n,
		Probe:    probe,
		Timeout:  err != nil && isTimeout(ctx, err),
		Err:      err,
		Duration: time.Since(start),
	}
	if out != nil {
		finish.Status = out.status
	}
	eventbus.Publish(ctx, c.opts.Events, finish)
	return out, err
}

func (c *Client) do(req *http.Request) (*response, error) {
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &response{status: resp.StatusCode, body: body, path: req.URL.Path}, nil
}

func (c *Client) headers() (map[string]string, error) {
	h, err := c.opts.Authenticator.AuthorizationHeader()
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Err: fmt.Errorf("authorization header: %w", err)}
	}
	out := make(map[string]string, len(h)+len(c.opts.Headers))
	for k, v := range h {
		out[k] = v
	}
	for k, v := range c.opts.Headers {
		out[k] = v
	}
	return out, nil
}

// isTimeout reports whether err is a per-attempt timeout rather than the
// caller giving up.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
