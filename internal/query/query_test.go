package query

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	language "github.com/hanpama/gitminer/internal/language"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		doc  *Document
		want string
	}{
		{
			name: "leaf",
			doc:  New(Leaf("viewer")),
			want: `query { viewer }`,
		},
		{
			name: "nested with string argument",
			doc: New(Node("user", Args("login", "octocat")).
				Select("login", "name", "id", "email", "createdAt")),
			want: `query { user(login: "octocat") { login name id email createdAt } }`,
		},
		{
			name: "variables numbers and booleans stay unquoted",
			doc: New(Node("repositories", Args("first", 50, "isFork", false, "after", "$after", "owner", Var("owner")),
				Leaf("totalCount"))),
			want: `query { repositories(first: 50, isFork: false, after: $after, owner: $owner) { totalCount } }`,
		},
		{
			name: "ordering object and enum list",
			doc: New(Node("languages", Args(
				"first", 100,
				"orderBy", Object{{Name: "field", Value: Enum("SIZE")}, {Name: "direction", Value: Enum("DESC")}},
				"ownerAffiliations", []Enum{"OWNER", "COLLABORATOR"},
			), Leaf("totalSize"))),
			want: `query { languages(first: 100, orderBy: {field: SIZE, direction: DESC}, ownerAffiliations: [OWNER, COLLABORATOR]) { totalSize } }`,
		},
		{
			name: "map argument renders with sorted keys",
			doc:  New(Node("x", Args("o", map[string]any{"z": 1, "a": "b"}), Leaf("y"))),
			want: `query { x(o: {a: "b", z: 1}) { y } }`,
		},
		{
			name: "null float and time",
			doc: New(Node("c", Args("n", nil, "f", 1.5,
				"from", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), Leaf("d"))),
			want: `query { c(n: null, f: 1.5, from: "2024-01-02T03:04:05Z") { d } }`,
		},
		{
			name: "string escaping",
			doc:  New(Node("s", Args("q", "a \"b\"\n\\"), Leaf("t"))),
			want: `query { s(q: "a \"b\"\n\\") { t } }`,
		},
		{
			name: "siblings keep insertion order",
			doc:  New(Leaf("b"), Leaf("a"), Node("c", nil, Leaf("z"), Leaf("y"))),
			want: `query { b a c { z y } }`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.doc.String()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("render mismatch (-want +got):\n%s", diff)
			}
			require.Equal(t, got, tt.doc.String(), "rendering must be deterministic")
			require.NoError(t, language.CheckSyntax(got))
		})
	}
}

func TestBindSubstitutesPlaceholders(t *testing.T) {
	doc := New(Node("user", Args("login", "$user"), Node("repositories", Args("first", Var("pg_size")), Leaf("totalCount"))))
	require.Equal(t, `query { user(login: $user) { repositories(first: $pg_size) { totalCount } } }`, doc.String())

	doc.Bind("user", "octocat").Bind("$pg_size", 25)
	require.Equal(t, `query { user(login: "octocat") { repositories(first: 25) { totalCount } } }`, doc.String())

	doc.Bind("pg_size", json.Number("10"))
	require.Equal(t, `query { user(login: "octocat") { repositories(first: 10) { totalCount } } }`, doc.String())
}

func TestJSONNumberLiteral(t *testing.T) {
	doc := New(Node("search", Args("first", json.Number("5"), "minScore", json.Number("0.75")), Leaf("count")))
	require.Equal(t, `query { search(first: 5, minScore: 0.75) { count } }`, doc.String())
	require.NoError(t, language.CheckSyntax(doc.String()))
}

func TestPaginatedDocument(t *testing.T) {
	repos := Paginated("repositories", Args("first", 2),
		Node("nodes", nil, Leaf("name")),
		Node("pageInfo", nil, Leaves("endCursor", "hasNextPage")...),
	)
	doc, err := NewPaginated(Node("user", Args("login", "octocat"), repos))
	require.NoError(t, err)
	require.True(t, doc.Paginated())
	require.Equal(t, []string{"user", "repositories"}, doc.Path())
	require.Same(t, repos.Cursor(), doc.Cursor())

	first := doc.String()
	require.NotContains(t, first, "after:")

	c1 := "Y3Vyc29yOjE="
	doc.Cursor().Update(true, &c1)
	require.Equal(t,
		`query { user(login: "octocat") { repositories(first: 2, after: "Y3Vyc29yOjE=") { nodes { name } pageInfo { endCursor hasNextPage } } } }`,
		doc.String())
	require.Equal(t, Args("first", 2), repos.Args, "cursor must not modify declared arguments")

	c2 := "C2"
	doc.Cursor().Update(false, &c2)
	require.False(t, doc.Cursor().HasNext())
	got, ok := doc.Cursor().EndCursor()
	require.True(t, ok)
	require.Equal(t, "C2", got)
}

func TestCursorReplacesAfterArgument(t *testing.T) {
	f := Paginated("history", Args("first", "$pg_size", "after", nil), Leaf("totalCount"))
	c := "abc"
	f.Cursor().Update(true, &c)
	require.Equal(t, `history(first: $pg_size, after: "abc") { totalCount }`, f.String())
}

func TestPathDerivation(t *testing.T) {
	history := Paginated("history", Args("first", 10),
		Node("nodes", nil, Leaf("message"), Node("parents (first: 2)", nil, Leaf("totalCount"))),
		Node("pageInfo", nil, Leaves("endCursor", "hasNextPage")...),
	)
	doc, err := NewPaginated(
		Node("repository", Args("owner", "o", "name", "n"),
			Node("defaultBranchRef", nil,
				Node("target", nil,
					Node("... on Commit", nil, history)))))
	require.NoError(t, err)
	require.Equal(t, []string{"repository", "defaultBranchRef", "target", "history"}, doc.Path())
	require.NoError(t, language.CheckSyntax(doc.String()))

	require.Equal(t, "parents", responseKey("parents (first: 2)"))
	require.Equal(t, "mine", responseKey("mine: repositories"))
	require.Equal(t, "", responseKey("... on User"))
}

func TestNewPaginatedErrors(t *testing.T) {
	_, err := NewPaginated(Leaf("viewer"))
	require.ErrorIs(t, err, ErrNoCursor)

	_, err = NewPaginated(Paginated("a", nil, Leaf("x")), Paginated("b", nil, Leaf("y")))
	require.ErrorIs(t, err, ErrManyCursors)

	doc, err := NewPaginatedAt([]string{"search"}, Paginated("search", nil, Leaf("x")))
	require.NoError(t, err)
	require.Equal(t, []string{"search"}, doc.Path())
}

func TestExtendSharesCursorAndBindings(t *testing.T) {
	page := Paginated("gists", Args("first", "$n"), Leaf("totalCount"))
	doc, err := NewPaginated(Node("user", Args("login", "$user"), page))
	require.NoError(t, err)
	doc.Bind("user", "octocat").Bind("n", 5)

	ext := doc.Extend(Node("rateLimit", Args("dryrun", true), Leaf("cost")))
	require.False(t, ext.Paginated())
	require.Len(t, doc.Fields(), 1)

	c := "C1"
	doc.Cursor().Update(true, &c)
	require.Equal(t,
		`query { user(login: "octocat") { gists(first: 5, after: "C1") { totalCount } } rateLimit(dryrun: true) { cost } }`,
		ext.String())
}

func TestCursorClaim(t *testing.T) {
	c := NewCursor()
	release, err := c.Claim()
	require.NoError(t, err)

	_, err = c.Claim()
	require.ErrorIs(t, err, ErrCursorBusy)

	release()
	release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Claim(); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestCursorExhausted(t *testing.T) {
	c := NewCursor()
	require.True(t, c.HasNext())
	_, ok := c.EndCursor()
	require.False(t, ok)

	c.Update(false, nil)
	_, err := c.Claim()
	require.ErrorIs(t, err, ErrExhausted)
}
