// Package query builds GraphQL query documents from trees of fields and
// renders them into the exact text sent to the GitHub GraphQL endpoint.
package query

import (
	"fmt"
	"strings"
)

// Arg is a single field argument. Arguments render in the order given.
type Arg struct {
	Name  string
	Value any
}

// Args builds an argument list from alternating name/value pairs.
// It panics if kv has odd length or a name is not a string.
func Args(kv ...any) []Arg {
	if len(kv)%2 != 0 {
		panic("query: Args needs name/value pairs")
	}
	out := make([]Arg, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("query: argument name %v is not a string", kv[i]))
		}
		out = append(out, Arg{Name: name, Value: kv[i+1]})
	}
	return out
}

// Field is one node of a query tree. A field without children is a leaf.
// A field created with Paginated also carries a Cursor.
type Field struct {
	Name     string
	Args     []Arg
	Children []*Field

	cursor *Cursor
}

// Leaf returns a scalar field.
func Leaf(name string) *Field { return &Field{Name: name} }

// Leaves returns one leaf per name, in order.
func Leaves(names ...string) []*Field {
	out := make([]*Field, len(names))
	for i, n := range names {
		out[i] = Leaf(n)
	}
	return out
}

// Node returns a field with arguments and children.
func Node(name string, args []Arg, children ...*Field) *Field {
	return &Field{Name: name, Args: args, Children: children}
}

// Paginated returns a field that owns a fresh pagination cursor. Its children
// are expected to include pageInfo { endCursor hasNextPage }.
func Paginated(name string, args []Arg, children ...*Field) *Field {
	f := Node(name, args, children...)
	f.cursor = NewCursor()
	return f
}

// Add appends children and returns f.
func (f *Field) Add(children ...*Field) *Field {
	f.Children = append(f.Children, children...)
	return f
}

// Select appends one leaf per name and returns f.
func (f *Field) Select(names ...string) *Field {
	return f.Add(Leaves(names...)...)
}

// Cursor returns the pagination cursor attached to f, or nil.
func (f *Field) Cursor() *Cursor { return f.cursor }

// IsLeaf reports whether f renders as a bare name (plus arguments).
func (f *Field) IsLeaf() bool { return len(f.Children) == 0 }

// String renders f without variable bindings.
func (f *Field) String() string {
	var b strings.Builder
	f.render(&b, nil)
	return b.String()
}

func (f *Field) render(b *strings.Builder, vars map[string]any) {
	b.WriteString(f.Name)

	args := f.Args
	if f.cursor != nil {
		if after, ok := f.cursor.EndCursor(); ok {
			args = withAfter(args, after)
		}
	}
	if len(args) > 0 {
		b.WriteByte('(')
		for i, a := range args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			writeValue(b, a.Value, vars)
		}
		b.WriteByte(')')
	}

	if len(f.Children) == 0 {
		return
	}
	b.WriteString(" { ")
	for i, c := range f.Children {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.render(b, vars)
	}
	b.WriteString(" }")
}

// withAfter returns args with the after argument set to cursor. The caller's
// slice is never modified.
func withAfter(args []Arg, cursor string) []Arg {
	out := make([]Arg, 0, len(args)+1)
	replaced := false
	for _, a := range args {
		if a.Name == afterArg {
			a.Value = cursor
			replaced = true
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, Arg{Name: afterArg, Value: cursor})
	}
	return out
}

const afterArg = "after"
