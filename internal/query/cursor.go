package query

import (
	"sync"
	"sync/atomic"
)

// Cursor is the pagination state of one paginated field.
//
// It starts with no end cursor and a next page, and is advanced only by
// Update with the pageInfo reported by the server. A cursor has a single
// writer: whoever holds the claim returned by Claim.
type Cursor struct {
	mu        sync.Mutex
	endCursor *string
	hasNext   bool

	claimed atomic.Bool
}

// NewCursor returns a cursor positioned before the first page.
func NewCursor() *Cursor { return &Cursor{hasNext: true} }

// HasNext reports whether another page is available.
func (c *Cursor) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasNext
}

// EndCursor returns the server cursor of the last fetched page.
// ok is false until a page reporting a non-null endCursor has been applied.
func (c *Cursor) EndCursor() (cursor string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endCursor == nil {
		return "", false
	}
	return *c.endCursor, true
}

// Update applies one page's pageInfo.
func (c *Cursor) Update(hasNextPage bool, endCursor *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasNext = hasNextPage
	if endCursor == nil {
		c.endCursor = nil
		return
	}
	v := *endCursor
	c.endCursor = &v
}

// Claim takes exclusive ownership of the cursor for one page sequence.
// It fails with ErrCursorBusy while another claim is held and with
// ErrExhausted once the last page has been applied.
func (c *Cursor) Claim() (release func(), err error) {
	if !c.claimed.CompareAndSwap(false, true) {
		return nil, ErrCursorBusy
	}
	if !c.HasNext() {
		c.claimed.Store(false)
		return nil, ErrExhausted
	}
	var once sync.Once
	return func() { once.Do(func() { c.claimed.Store(false) }) }, nil
}
