package github

import (
	"errors"
	"fmt"
)

// Kind classifies client failures.
type Kind int

const (
	// KindConfiguration is a fatal construction-time error.
	KindConfiguration Kind = iota + 1
	// KindTimeout means every retry attempt timed out.
	KindTimeout
	// KindQueryFailed covers non-200 responses, undecodable bodies and
	// responses carrying GraphQL errors.
	KindQueryFailed
	// KindMalformedPagination means a page lacks pageInfo at the document path.
	KindMalformedPagination
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTimeout:
		return "timeout"
	case KindQueryFailed:
		return "query failed"
	case KindMalformedPagination:
		return "malformed pagination"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the error returned by the client. Under errors.Is an Error
// matches a target of the same Kind whose Err is nil or the same as its
// own, so ErrConfiguration matches every configuration error while
// ErrNoAuthenticator matches only itself.
type Error struct {
	Kind Kind

	// StatusCode, Query, Path and Body describe the failed exchange.
	// Query is empty when the request text is unknown; Path is then used.
	StatusCode int
	Query      string
	Path       string
	Body       string

	// Errors holds the GraphQL errors of the response, if any.
	Errors []GraphQLError

	Err error
}

var (
	ErrConfiguration       = &Error{Kind: KindConfiguration}
	ErrNoAuthenticator     = &Error{Kind: KindConfiguration, Err: errors.New("authenticator must be specified")}
	ErrTimeoutExhausted    = &Error{Kind: KindTimeout}
	ErrQueryFailed         = &Error{Kind: KindQueryFailed}
	ErrMalformedPagination = &Error{Kind: KindMalformedPagination}

	// ErrPaginated is returned by Execute for paginated documents.
	ErrPaginated = errors.New("github: paginated document, use Paginate or Run")
	// ErrNotPaginated is returned by Paginate for plain documents.
	ErrNotPaginated = errors.New("github: document is not paginated")
)

func (e *Error) Error() string {
	if e.Kind == KindQueryFailed {
		var msg string
		if e.Query != "" {
			msg = fmt.Sprintf("github: query failed with code %d. Query: %s. Response: %s", e.StatusCode, e.Query, e.Body)
		} else {
			msg = fmt.Sprintf("github: query failed with code %d. Path: %s. Response: %s", e.StatusCode, e.Path, e.Body)
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}
	if e.Err == nil {
		return "github: " + e.Kind.String()
	}
	return "github: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Err == nil || t.Err == e.Err)
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
