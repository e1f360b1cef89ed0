package github

import (
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/hanpama/gitminer/internal/auth"
	"github.com/hanpama/gitminer/internal/eventbus"
)

// Options configures the client.
//
// Defaults:
// - Endpoint:      https://api.github.com/graphql
// - RetryAttempts: 3
// - Timeout:       10s per HTTP attempt
// - SafetyMargin:  5s added to every rate-limit wait
// - Backoff:       none, retries are sent immediately
// - Logger:        nop
//
// Authenticator has no default; New fails without one.
type Options struct {
	Protocol   string
	Host       string
	Enterprise bool

	Authenticator auth.Authenticator
	Headers       map[string]string

	RetryAttempts int
	Timeout       time.Duration
	SafetyMargin  time.Duration
	MinBackoff    time.Duration
	MaxBackoff    time.Duration

	HTTPClient *http.Client
	Logger     log.Logger
	Events     *eventbus.Bus
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Protocol:      "https",
		Host:          "api.github.com",
		RetryAttempts: 3,
		Timeout:       10 * time.Second,
		SafetyMargin:  5 * time.Second,
		HTTPClient:    &http.Client{},
		Logger:        log.NewNopLogger(),
	}
}

func WithEndpoint(protocol, host string) Option {
	return func(o *Options) { o.Protocol, o.Host = protocol, host }
}
func WithEnterprise(on bool) Option                 { return func(o *Options) { o.Enterprise = on } }
func WithAuthenticator(a auth.Authenticator) Option { return func(o *Options) { o.Authenticator = a } }
func WithRetryAttempts(n int) Option                { return func(o *Options) { o.RetryAttempts = n } }
func WithTimeout(d time.Duration) Option            { return func(o *Options) { o.Timeout = d } }
func WithSafetyMargin(d time.Duration) Option       { return func(o *Options) { o.SafetyMargin = d } }
func WithHTTPClient(c *http.Client) Option          { return func(o *Options) { o.HTTPClient = c } }
func WithLogger(l log.Logger) Option                { return func(o *Options) { o.Logger = l } }
func WithEvents(b *eventbus.Bus) Option             { return func(o *Options) { o.Events = b } }

// WithRetryBackoff spaces retries with a jittered exponential backoff
// between min and max.
func WithRetryBackoff(min, max time.Duration) Option {
	return func(o *Options) { o.MinBackoff, o.MaxBackoff = min, max }
}

// WithHeader adds a header sent with every request. It overrides an
// authenticator header of the same name.
func WithHeader(name, value string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = map[string]string{}
		}
		o.Headers[name] = value
	}
}
