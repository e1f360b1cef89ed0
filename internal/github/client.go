// Package github executes query documents against the GitHub GraphQL API.
//
// Every execution is priced first: the client sends the document wrapped
// with rateLimit(dryrun: true), and if RetryAttempts times the reported cost
// exceeds the remaining quota it sleeps until the quota resets (plus a
// safety margin) before sending the real query. Both requests go through a
// bounded retry loop in which each attempt has its own timeout.
//
// Paginated documents are consumed as a page sequence that advances the
// document's cursor after every page. A document's cursor can be consumed by
// one sequence at a time.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hanpama/gitminer/internal/cost"
	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/events"
	"github.com/hanpama/gitminer/internal/query"
	"github.com/hanpama/gitminer/internal/reqid"
)

// Client sends query documents to one GraphQL endpoint. It is safe for
// concurrent use, but it does not coordinate quota between concurrent calls.
type Client struct {
	opts   *Options
	url    string
	logger log.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New creates a client. A missing authenticator, fewer than one retry
// attempt, a non-positive timeout or a backoff without a minimum is a
// configuration error.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	if o.Authenticator == nil {
		return nil, ErrNoAuthenticator
	}
	if o.RetryAttempts < 1 {
		return nil, &Error{Kind: KindConfiguration, Err: fmt.Errorf("retry attempts must be at least 1, got %d", o.RetryAttempts)}
	}
	if o.Timeout <= 0 {
		return nil, &Error{Kind: KindConfiguration, Err: fmt.Errorf("timeout must be positive, got %s", o.Timeout)}
	}
	if o.MaxBackoff > 0 && o.MinBackoff <= 0 {
		return nil, &Error{Kind: KindConfiguration, Err: fmt.Errorf("retry backoff needs a positive minimum, got %s", o.MinBackoff)}
	}
	if o.HTTPClient == nil {
		o.HTTPClient = defaultOptions().HTTPClient
	}
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	return &Client{
		opts:   o,
		url:    endpoint(o),
		logger: log.With(o.Logger, "component", "github"),
		now:    time.Now,
		sleep:  sleepContext,
	}, nil
}

// URL returns the GraphQL endpoint.
func (c *Client) URL() string { return c.url }

// endpoint resolves the GraphQL URL. Enterprise hosts currently resolve the
// same way as github.com; Options.Enterprise is kept for when they diverge.
func endpoint(o *Options) string {
	return fmt.Sprintf("%s://%s/graphql", o.Protocol, o.Host)
}

// Execute runs a plain document and returns its data object unmodified.
func (c *Client) Execute(ctx context.Context, doc *query.Document) (map[string]any, error) {
	if doc.Paginated() {
		return nil, ErrPaginated
	}
	_, data, err := c.execute(ctx, doc)
	return data, err
}

// Run executes doc and calls fn with every data object it produces: once
// for a plain document, once per page for a paginated one. It stops at the
// first error from the client or from fn.
func (c *Client) Run(ctx context.Context, doc *query.Document, fn func(map[string]any) error) error {
	if !doc.Paginated() {
		data, err := c.Execute(ctx, doc)
		if err != nil {
			return err
		}
		return fn(data)
	}
	pages, err := c.Paginate(ctx, doc)
	if err != nil {
		return err
	}
	defer pages.Close()
	for pages.Next() {
		if err := fn(pages.Data()); err != nil {
			return err
		}
	}
	return pages.Err()
}

// execute prices, throttles and sends the current rendering of doc.
func (c *Client) execute(ctx context.Context, doc *query.Document) (json.RawMessage, map[string]any, error) {
	ctx, id := reqid.NewContext(ctx)
	text := doc.String()

	start := time.Now()
	eventbus.Publish(ctx, c.opts.Events, events.ExecuteStart{Query: text})
	raw, data, err := c.executeText(ctx, doc, text)
	eventbus.Publish(ctx, c.opts.Events, events.ExecuteFinish{Query: text, Err: err, Duration: time.Since(start)})
	if err != nil {
		level.Debug(c.logger).Log("msg", "execution failed", "execution", id, "err", err)
	}
	return raw, data, err
}

func (c *Client) executeText(ctx context.Context, doc *query.Document, text string) (json.RawMessage, map[string]any, error) {
	if err := c.throttle(ctx, doc); err != nil {
		return nil, nil, err
	}
	resp, err := c.post(ctx, text, false)
	if err != nil {
		return nil, nil, err
	}
	return decode(resp, text)
}

// throttle prices doc with a dry-run probe and waits for the quota to reset
// when the retry budget could overrun what is left.
func (c *Client) throttle(ctx context.Context, doc *query.Document) error {
	probe, err := cost.Probe(doc, true)
	if err != nil {
		return fmt.Errorf("github: %w", err)
	}
	text := probe.String()
	resp, err := c.post(ctx, text, true)
	if err != nil {
		return err
	}
	raw, _, err := decode(resp, text)
	if err != nil {
		return err
	}
	snap, err := cost.ParseSnapshot(raw)
	if err != nil {
		return queryFailed(resp, text, err)
	}
	eventbus.Publish(ctx, c.opts.Events, events.RateLimit{Cost: snap.Cost, Remaining: snap.Remaining, ResetAt: snap.ResetAt})
	if !snap.Exceeds(c.opts.RetryAttempts) {
		return nil
	}

	now := c.now().UTC()
	wait := snap.Wait(now, c.opts.SafetyMargin)
	level.Warn(c.logger).Log(
		"msg", "GitHub GraphQL API rate limit exceeded, waiting for reset",
		"cost", snap.Cost,
		"remaining", snap.Remaining,
		"attempts", c.opts.RetryAttempts,
		"stopped_at", now.Format(time.RFC3339),
		"reset_at", snap.ResetAt.Format(time.RFC3339),
		"wait", wait,
	)
	eventbus.Publish(ctx, c.opts.Events, events.ThrottleStart{Cost: snap.Cost, Remaining: snap.Remaining, ResetAt: snap.ResetAt, Wait: wait})
	start := time.Now()
	err = c.sleep(ctx, wait)
	eventbus.Publish(ctx, c.opts.Events, events.ThrottleFinish{Slept: time.Since(start), Err: err})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
