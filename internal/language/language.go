// Package language parses rendered GraphQL documents so callers can check
// what the query builder produced before it goes over the wire.
package language

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

type (
	QueryDocument = ast.QueryDocument
	Field         = ast.Field
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// CheckSyntax returns the first syntax error in source, or nil.
func CheckSyntax(source string) error {
	doc, err := ParseQuery(source)
	if err != nil {
		return err
	}
	if len(doc.Operations) != 1 {
		return fmt.Errorf("expected one operation, got %d", len(doc.Operations))
	}
	return nil
}

// RootFields returns the response keys selected at the top level of the
// single operation in source.
func RootFields(source string) ([]string, error) {
	doc, err := ParseQuery(source)
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("expected one operation, got %d", len(doc.Operations))
	}
	var out []string
	for _, sel := range doc.Operations[0].SelectionSet {
		if f, ok := sel.(*Field); ok {
			out = append(out, f.Alias)
		}
	}
	return out, nil
}
