package query

import "errors"

var (
	// ErrCursorBusy indicates a page sequence is already consuming the cursor.
	ErrCursorBusy = errors.New("query: cursor is already being consumed")
	// ErrExhausted indicates the document's last page has been fetched.
	ErrExhausted = errors.New("query: document has no more pages")
	// ErrNoCursor indicates a paginated document without a paginated field.
	ErrNoCursor = errors.New("query: no paginated field in document")
	// ErrManyCursors indicates more than one paginated field in a document.
	ErrManyCursors = errors.New("query: more than one paginated field in document")
)
