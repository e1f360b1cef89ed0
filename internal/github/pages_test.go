package github

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/events"
	"github.com/hanpama/gitminer/internal/ghtest"
	"github.com/hanpama/gitminer/internal/query"
	"github.com/stretchr/testify/require"
)

func reposDocument(t *testing.T) *query.Document {
	t.Helper()
	doc, err := query.NewPaginated(query.Node("user", query.Args("login", "octocat"),
		query.Paginated("repositories", query.Args("first", 2),
			query.Node("nodes", nil, query.Leaf("name")),
			query.Node("pageInfo", nil, query.Leaves("endCursor", "hasNextPage")...),
		)))
	require.NoError(t, err)
	return doc
}

const (
	reposPage1 = `{"user":{"repositories":{"nodes":[{"name":"a"},{"name":"b"}],"pageInfo":{"endCursor":"C1","hasNextPage":true}}}}`
	reposPage2 = `{"user":{"repositories":{"nodes":[{"name":"c"}],"pageInfo":{"endCursor":"C2","hasNextPage":false}}}}`
)

func repoNames(t *testing.T, data map[string]any) []string {
	t.Helper()
	user, ok := data["user"].(map[string]any)
	require.True(t, ok, "user object")
	repos, ok := user["repositories"].(map[string]any)
	require.True(t, ok, "repositories object")
	var names []string
	for _, n := range repos["nodes"].([]any) {
		names = append(names, n.(map[string]any)["name"].(string))
	}
	return names
}

func TestPaginateTwoPages(t *testing.T) {
	srv := ghtest.NewServer(t)
	srv.Queue(ghtest.Data(reposPage1), ghtest.Data(reposPage2))
	c := newTestClient(t, srv)
	doc := reposDocument(t)

	pages, err := c.Paginate(context.Background(), doc)
	require.NoError(t, err)
	defer pages.Close()

	require.True(t, pages.Next())
	require.Equal(t, 1, pages.Page())
	require.Equal(t, []string{"a", "b"}, repoNames(t, pages.Data()))
	end, ok := doc.Cursor().EndCursor()
	require.True(t, ok)
	require.Equal(t, "C1", end)
	require.True(t, doc.Cursor().HasNext())

	require.True(t, pages.Next())
	require.Equal(t, 2, pages.Page())
	require.Equal(t, []string{"c"}, repoNames(t, pages.Data()))

	require.False(t, pages.Next())
	require.NoError(t, pages.Err())
	require.False(t, doc.Cursor().HasNext())

	queries := srv.Queries()
	require.Len(t, queries, 2, "no request after the last page")
	require.NotContains(t, queries[0], "after:")
	require.Contains(t, queries[1], `repositories(first: 2, after: "C1")`)

	probes := srv.Probes()
	require.Len(t, probes, 2)
	require.Contains(t, probes[1], `after: "C1"`, "each page is priced at its own cursor")

	_, err = c.Paginate(context.Background(), doc)
	require.ErrorIs(t, err, query.ErrExhausted)
}

func TestPaginateNullEndCursor(t *testing.T) {
	srv := ghtest.NewServer(t)
	srv.Queue(ghtest.Data(`{"user":{"repositories":{"nodes":[],"pageInfo":{"endCursor":null,"hasNextPage":false}}}}`))
	c := newTestClient(t, srv)
	doc := reposDocument(t)

	n := 0
	err := c.Run(context.Background(), doc, func(map[string]any) error {
		n++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	_, ok := doc.Cursor().EndCursor()
	require.False(t, ok)
}

func TestPaginateCursorBusy(t *testing.T) {
	srv := ghtest.NewServer(t)
	c := newTestClient(t, srv)
	doc := reposDocument(t)

	first, err := c.Paginate(context.Background(), doc)
	require.NoError(t, err)

	_, err = c.Paginate(context.Background(), doc)
	require.ErrorIs(t, err, query.ErrCursorBusy)

	first.Close()
	second, err := c.Paginate(context.Background(), doc)
	require.NoError(t, err)
	second.Close()
}

func TestPaginateMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing pageInfo", `{"user":{"repositories":{"nodes":[]}}}`},
		{"wrong path", `{"viewer":{"repositories":{"pageInfo":{"endCursor":"C1","hasNextPage":true}}}}`},
		{"hasNextPage not boolean", `{"user":{"repositories":{"pageInfo":{"endCursor":"C1","hasNextPage":"yes"}}}}`},
		{"endCursor not string", `{"user":{"repositories":{"pageInfo":{"endCursor":7,"hasNextPage":true}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ghtest.NewServer(t)
			srv.Queue(ghtest.Data(tt.data))
			c := newTestClient(t, srv)
			doc := reposDocument(t)

			pages, err := c.Paginate(context.Background(), doc)
			require.NoError(t, err)
			require.False(t, pages.Next())
			require.ErrorIs(t, pages.Err(), ErrMalformedPagination)
			require.False(t, pages.Next(), "a failed sequence stays ended")

			require.True(t, doc.Cursor().HasNext(), "cursor is unchanged")
			_, ok := doc.Cursor().EndCursor()
			require.False(t, ok)

			again, err := c.Paginate(context.Background(), doc)
			require.NoError(t, err, "the claim is released on failure")
			again.Close()
		})
	}
}

func TestPaginatePageFailure(t *testing.T) {
	srv := ghtest.NewServer(t)
	notFound := ghtest.JSON(http.StatusNotFound, `{"message":"Not Found"}`)
	srv.Queue(ghtest.Data(reposPage1), notFound, notFound, notFound)
	c := newTestClient(t, srv)
	doc := reposDocument(t)

	var got [][]string
	var iterErr error
	pages, err := c.Paginate(context.Background(), doc)
	require.NoError(t, err)
	for data, err := range pages.All() {
		if err != nil {
			iterErr = err
			break
		}
		got = append(got, repoNames(t, data))
	}
	require.Equal(t, [][]string{{"a", "b"}}, got)
	require.ErrorIs(t, iterErr, ErrQueryFailed)

	end, ok := doc.Cursor().EndCursor()
	require.True(t, ok)
	require.Equal(t, "C1", end, "the cursor keeps the last applied page")
}

func TestPaginateRejectsPlain(t *testing.T) {
	srv := ghtest.NewServer(t)
	c := newTestClient(t, srv)

	_, err := c.Paginate(context.Background(), userLogin())
	require.ErrorIs(t, err, ErrNotPaginated)
}

func TestRun(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		srv := ghtest.NewServer(t)
		srv.Queue(ghtest.Data(`{"viewer":{"login":"octocat"}}`))
		c := newTestClient(t, srv)

		var got []map[string]any
		err := c.Run(context.Background(), query.New(query.Node("viewer", nil).Select("login")), func(d map[string]any) error {
			got = append(got, d)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []map[string]any{{"viewer": map[string]any{"login": "octocat"}}}, got)
	})

	t.Run("paginated", func(t *testing.T) {
		srv := ghtest.NewServer(t)
		srv.Queue(ghtest.Data(reposPage1), ghtest.Data(reposPage2))
		bus := eventbus.New()
		var fetched []events.PageFetched
		eventbus.Subscribe(bus, func(_ context.Context, e events.PageFetched) { fetched = append(fetched, e) })
		c := newTestClient(t, srv, WithEvents(bus))

		var names []string
		err := c.Run(context.Background(), reposDocument(t), func(d map[string]any) error {
			names = append(names, repoNames(t, d)...)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, names)
		require.Equal(t, []events.PageFetched{
			{Page: 1, HasNext: true, EndCursor: "C1"},
			{Page: 2, HasNext: false, EndCursor: "C2"},
		}, fetched)
	})

	t.Run("callback error stops", func(t *testing.T) {
		srv := ghtest.NewServer(t)
		srv.Queue(ghtest.Data(reposPage1), ghtest.Data(reposPage2))
		c := newTestClient(t, srv)
		doc := reposDocument(t)
		stop := errors.New("stop")

		err := c.Run(context.Background(), doc, func(map[string]any) error { return stop })
		require.ErrorIs(t, err, stop)
		require.Len(t, srv.Queries(), 1)

		pages, err := c.Paginate(context.Background(), doc)
		require.NoError(t, err, "Run releases the cursor")
		pages.Close()
	})
}
