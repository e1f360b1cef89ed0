// Package cost prices GraphQL queries against the GitHub rate limit.
//
// A probe wraps a query together with rateLimit(dryrun: true), which makes
// the endpoint report what the query would cost without running it. The
// package only builds probes and reads their answers; sending them is the
// client's job.
package cost

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/hanpama/gitminer/internal/query"
)

// ErrEmptyQuery indicates a probe was requested for an empty query.
var ErrEmptyQuery = errors.New("cost: query must not be empty")

// ResetAtLayout is the format of rateLimit.resetAt.
const ResetAtLayout = "2006-01-02T15:04:05Z"

// RateLimitField returns rateLimit(dryrun: <dryrun>) { cost remaining resetAt }.
func RateLimitField(dryrun bool) *query.Field {
	return query.Node("rateLimit", query.Args("dryrun", dryrun)).
		Select("cost", "remaining", "resetAt")
}

// Probe returns a document holding doc's fields and bindings plus the
// rateLimit probe. The fields are shared with doc, so a paginated
// document is priced at its current cursor position.
func Probe(doc *query.Document, dryrun bool) (*query.Document, error) {
	if doc.Empty() {
		return nil, ErrEmptyQuery
	}
	return doc.Extend(RateLimitField(dryrun)), nil
}

// ProbeText is Probe for a raw query body, i.e. the text between the outer
// braces of a rendered query.
func ProbeText(body string, dryrun bool) (*query.Document, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyQuery
	}
	return query.New(query.Leaf(body), RateLimitField(dryrun)), nil
}

// Snapshot is one reading of the rate limit.
type Snapshot struct {
	Cost      int
	Remaining int
	ResetAt   time.Time
}

// Exceeds reports whether attempts tries of a query could overrun the
// remaining quota.
func (s Snapshot) Exceeds(attempts int) bool {
	return attempts*s.Cost > s.Remaining
}

// Wait returns how long to sleep at now before the quota resets, plus margin.
// A reset time already in the past only waits for the margin.
func (s Snapshot) Wait(now time.Time, margin time.Duration) time.Duration {
	d := s.ResetAt.Sub(now)
	if d < 0 {
		d = 0
	}
	return d + margin
}

// ParseSnapshot reads rateLimit from the raw data object of a probe response.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	c, err := jsonparser.GetInt(data, "rateLimit", "cost")
	if err != nil {
		return s, fmt.Errorf("cost: rateLimit.cost: %w", err)
	}
	r, err := jsonparser.GetInt(data, "rateLimit", "remaining")
	if err != nil {
		return s, fmt.Errorf("cost: rateLimit.remaining: %w", err)
	}
	raw, err := jsonparser.GetString(data, "rateLimit", "resetAt")
	if err != nil {
		return s, fmt.Errorf("cost: rateLimit.resetAt: %w", err)
	}
	reset, err := ParseResetAt(raw)
	if err != nil {
		return s, err
	}
	return Snapshot{Cost: int(c), Remaining: int(r), ResetAt: reset}, nil
}

// ParseResetAt parses a resetAt timestamp as UTC.
func ParseResetAt(v string) (time.Time, error) {
	t, err := time.ParseInLocation(ResetAtLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("cost: resetAt %q: %w", v, err)
	}
	return t, nil
}
