package query

import (
	"fmt"
	"strings"
)

// Document is one complete query request: an ordered list of top-level
// fields plus optional variable bindings. A paginated document also knows
// its single cursor and the response path to the object holding pageInfo.
//
// A document is built once per logical request and reused across pages;
// only its cursor state changes between renderings.
type Document struct {
	fields []*Field
	vars   map[string]any

	cursor *Cursor
	path   []string
}

// New returns a plain (non-paginated) document.
func New(fields ...*Field) *Document {
	return &Document{fields: fields}
}

// NewPaginated returns a paginated document. The tree must hold exactly one
// field created with Paginated; the response path to it is derived from the
// names of its ancestors, skipping inline fragments.
func NewPaginated(fields ...*Field) (*Document, error) {
	c, path, err := findCursor(fields)
	if err != nil {
		return nil, err
	}
	return &Document{fields: fields, cursor: c, path: path}, nil
}

// NewPaginatedAt is NewPaginated with an explicit response path, for trees
// whose response keys cannot be derived from field names.
func NewPaginatedAt(path []string, fields ...*Field) (*Document, error) {
	c, _, err := findCursor(fields)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("query: empty pagination path")
	}
	return &Document{fields: fields, cursor: c, path: append([]string(nil), path...)}, nil
}

// Bind sets the value substituted for the $name placeholder at render time
// and returns d. Bindings must be set before the document is executed.
func (d *Document) Bind(name string, value any) *Document {
	if d.vars == nil {
		d.vars = map[string]any{}
	}
	d.vars[strings.TrimPrefix(name, "$")] = value
	return d
}

// Fields returns the top-level fields.
func (d *Document) Fields() []*Field { return append([]*Field(nil), d.fields...) }

// Empty reports whether the document has no fields.
func (d *Document) Empty() bool { return d == nil || len(d.fields) == 0 }

// Paginated reports whether the document carries a cursor.
func (d *Document) Paginated() bool { return d.cursor != nil }

// Cursor returns the document's cursor, or nil for a plain document.
func (d *Document) Cursor() *Cursor { return d.cursor }

// Path returns the response path to the object holding pageInfo.
func (d *Document) Path() []string { return append([]string(nil), d.path...) }

// Extend returns a plain document with d's fields and bindings followed by
// extra. The fields are shared, so cursor positions in d are reflected.
func (d *Document) Extend(extra ...*Field) *Document {
	fields := make([]*Field, 0, len(d.fields)+len(extra))
	fields = append(fields, d.fields...)
	fields = append(fields, extra...)
	out := &Document{fields: fields}
	if len(d.vars) > 0 {
		out.vars = make(map[string]any, len(d.vars))
		for k, v := range d.vars {
			out.vars[k] = v
		}
	}
	return out
}

// String renders the document as sent over the wire.
func (d *Document) String() string {
	var b strings.Builder
	b.WriteString("query { ")
	for i, f := range d.fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		f.render(&b, d.vars)
	}
	b.WriteString(" }")
	return b.String()
}

func findCursor(fields []*Field) (*Cursor, []string, error) {
	var (
		found *Cursor
		path  []string
		count int
	)
	var walk func(fs []*Field, prefix []string)
	walk = func(fs []*Field, prefix []string) {
		for _, f := range fs {
			p := prefix
			if key := responseKey(f.Name); key != "" {
				p = append(append([]string(nil), prefix...), key)
			}
			if f.cursor != nil {
				count++
				found, path = f.cursor, p
			}
			walk(f.Children, p)
		}
	}
	walk(fields, nil)
	switch {
	case count == 0:
		return nil, nil, ErrNoCursor
	case count > 1:
		return nil, nil, ErrManyCursors
	}
	return found, path, nil
}

// responseKey returns the key a field occupies in a response object.
// Inline fragments have none; "alias: name" uses the alias; arguments
// written into the name ("parents (first: 2)") are dropped.
func responseKey(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "...") {
		return ""
	}
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
