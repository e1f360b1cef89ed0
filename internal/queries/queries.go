// Package queries declares the GitHub GraphQL queries gitminer runs and the
// functions that read their results.
//
// Constructors return a fresh document on every call: documents carry cursor
// state and must not be shared between unrelated runs. Extraction functions
// are pure; they take the data object returned by the client.
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hanpama/gitminer/internal/query"
)

// DefaultPageSize is the page size used by the CLI for connection queries.
const DefaultPageSize = 10

// ErrNoUser indicates a response whose user object is null.
var ErrNoUser = errors.New("queries: user not found")

// Dated is a connection node of which only the creation time is queried.
type Dated struct {
	CreatedAt time.Time `json:"createdAt"`
}

// CountCreatedBefore counts the leading items created before t. Counting
// stops at the first item that is not, so items are expected in ascending
// creation order.
func CountCreatedBefore(items []Dated, t time.Time) int {
	n := 0
	for _, it := range items {
		if !it.CreatedAt.Before(t) {
			break
		}
		n++
	}
	return n
}

type totalCount struct {
	TotalCount int `json:"totalCount"`
}

func pageInfo() *query.Field {
	return query.Node("pageInfo", nil, query.Leaves("endCursor", "hasNextPage")...)
}

func mustPaginated(fields ...*query.Field) *query.Document {
	doc, err := query.NewPaginated(fields...)
	if err != nil {
		panic(err)
	}
	return doc
}

// decode re-reads a decoded data object into out.
func decode(data map[string]any, out any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("queries: encode data: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("queries: decode data: %w", err)
	}
	return nil
}
