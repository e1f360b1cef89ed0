package github

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/go-kit/log/level"
	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/events"
	"github.com/hanpama/gitminer/internal/query"
)

// Pages is the lazy page sequence of one paginated document. It holds the
// document's cursor claim until it ends or is closed, and it cannot be
// restarted: once it ends, the document is exhausted.
//
//	pages, err := client.Paginate(ctx, doc)
//	if err != nil { ... }
//	defer pages.Close()
//	for pages.Next() {
//		use(pages.Data())
//	}
//	if err := pages.Err(); err != nil { ... }
type Pages struct {
	c       *Client
	ctx     context.Context
	doc     *query.Document
	release func()

	page int
	data map[string]any
	err  error
	done bool
}

// Paginate claims doc's cursor and returns its page sequence. It fails with
// query.ErrCursorBusy when another sequence is consuming the same document
// and with query.ErrExhausted when its last page was already fetched.
func (c *Client) Paginate(ctx context.Context, doc *query.Document) (*Pages, error) {
	if !doc.Paginated() {
		return nil, ErrNotPaginated
	}
	release, err := doc.Cursor().Claim()
	if err != nil {
		return nil, err
	}
	return &Pages{c: c, ctx: ctx, doc: doc, release: release}, nil
}

// Next fetches the next page. It returns false when the server reported no
// further page, on error, or after Close.
func (p *Pages) Next() bool {
	if p.done {
		return false
	}
	cur := p.doc.Cursor()
	if !cur.HasNext() {
		p.Close()
		return false
	}
	raw, data, err := p.c.execute(p.ctx, p.doc)
	if err != nil {
		p.fail(err)
		return false
	}
	hasNext, end, err := pageInfo(raw, p.doc.Path())
	if err != nil {
		p.fail(&Error{Kind: KindMalformedPagination, Query: p.doc.String(), Body: string(raw), Err: err})
		return false
	}
	cur.Update(hasNext, end)
	p.page++
	p.data = data

	endCursor := ""
	if end != nil {
		endCursor = *end
	}
	level.Debug(p.c.logger).Log("msg", "page fetched", "page", p.page, "has_next", hasNext, "end_cursor", endCursor)
	eventbus.Publish(p.ctx, p.c.opts.Events, events.PageFetched{Page: p.page, HasNext: hasNext, EndCursor: endCursor})
	return true
}

// Data returns the data object of the current page.
func (p *Pages) Data() map[string]any { return p.data }

// Page returns the 1-based number of the current page.
func (p *Pages) Page() int { return p.page }

// Err returns the error that ended the sequence, if any.
func (p *Pages) Err() error { return p.err }

// Close ends the sequence and releases the cursor claim. The cursor keeps
// its position.
func (p *Pages) Close() {
	if p.done {
		return
	}
	p.done = true
	p.data = nil
	p.release()
}

func (p *Pages) fail(err error) {
	p.err = err
	p.Close()
}

// All returns the remaining pages as an iterator. A failure is yielded
// once, as the last element, with a nil page.
func (p *Pages) All() iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		defer p.Close()
		for p.Next() {
			if !yield(p.data, nil) {
				return
			}
		}
		if p.err != nil {
			yield(nil, p.err)
		}
	}
}

// pageInfo reads pageInfo.hasNextPage and pageInfo.endCursor below path in
// a raw data object.
func pageInfo(data []byte, path []string) (bool, *string, error) {
	keys := append(append([]string(nil), path...), "pageInfo")
	info, typ, _, err := jsonparser.Get(data, keys...)
	if err != nil || typ != jsonparser.Object {
		return false, nil, fmt.Errorf("no pageInfo object at %s", strings.Join(keys, "."))
	}
	hasNext, err := jsonparser.GetBoolean(info, "hasNextPage")
	if err != nil {
		return false, nil, fmt.Errorf("pageInfo.hasNextPage: %w", err)
	}
	v, typ, _, err := jsonparser.Get(info, "endCursor")
	switch {
	case err != nil:
		return false, nil, fmt.Errorf("pageInfo.endCursor: %w", err)
	case typ == jsonparser.Null:
		return hasNext, nil, nil
	case typ != jsonparser.String:
		return false, nil, fmt.Errorf("pageInfo.endCursor: unexpected %s", typ)
	}
	s, err := jsonparser.ParseString(v)
	if err != nil {
		return false, nil, fmt.Errorf("pageInfo.endCursor: %w", err)
	}
	return hasNext, &s, nil
}
