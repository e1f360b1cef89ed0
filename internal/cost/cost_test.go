package cost

import (
	"testing"
	"time"

	language "github.com/hanpama/gitminer/internal/language"
	"github.com/hanpama/gitminer/internal/query"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	doc := query.New(query.Node("user", query.Args("login", "octocat")).Select("login"))

	for _, dryrun := range []bool{true, false} {
		p, err := Probe(doc, dryrun)
		require.NoError(t, err)
		want := `query { user(login: "octocat") { login } rateLimit(dryrun: ` +
			map[bool]string{true: "true", false: "false"}[dryrun] +
			`) { cost remaining resetAt } }`
		require.Equal(t, want, p.String())
		require.NoError(t, language.CheckSyntax(p.String()))
	}
	require.Equal(t, `query { user(login: "octocat") { login } }`, doc.String(), "probe must not modify the priced document")
}

func TestProbeFollowsCursor(t *testing.T) {
	doc, err := query.NewPaginated(query.Node("viewer", nil,
		query.Paginated("gists", query.Args("first", 10), query.Node("pageInfo", nil, query.Leaves("endCursor", "hasNextPage")...))))
	require.NoError(t, err)
	p, err := Probe(doc, true)
	require.NoError(t, err)

	c := "C1"
	doc.Cursor().Update(true, &c)
	require.Contains(t, p.String(), `gists(first: 10, after: "C1")`)
}

func TestProbeEmpty(t *testing.T) {
	_, err := Probe(query.New(), true)
	require.ErrorIs(t, err, ErrEmptyQuery)
	_, err = Probe(nil, true)
	require.ErrorIs(t, err, ErrEmptyQuery)
	_, err = ProbeText("  ", false)
	require.ErrorIs(t, err, ErrEmptyQuery)

	p, err := ProbeText(`viewer { login }`, false)
	require.NoError(t, err)
	require.Equal(t, `query { viewer { login } rateLimit(dryrun: false) { cost remaining resetAt } }`, p.String())
}

func TestExceeds(t *testing.T) {
	require.True(t, Snapshot{Cost: 40, Remaining: 100}.Exceeds(3))
	require.False(t, Snapshot{Cost: 40, Remaining: 130}.Exceeds(3))
	require.False(t, Snapshot{Cost: 40, Remaining: 120}.Exceeds(3))
}

func TestWait(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := Snapshot{ResetAt: now.Add(90 * time.Second)}
	require.Equal(t, 95*time.Second, s.Wait(now, 5*time.Second))

	past := Snapshot{ResetAt: now.Add(-time.Minute)}
	require.Equal(t, 5*time.Second, past.Wait(now, 5*time.Second))
}

func TestParseSnapshot(t *testing.T) {
	s, err := ParseSnapshot([]byte(`{"rateLimit":{"cost":1,"remaining":4999,"resetAt":"2024-05-01T13:00:00Z"}}`))
	require.NoError(t, err)
	require.Equal(t, Snapshot{Cost: 1, Remaining: 4999, ResetAt: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)}, s)

	_, err = ParseSnapshot([]byte(`{"rateLimit":{"cost":1,"remaining":4999}}`))
	require.Error(t, err)
	_, err = ParseSnapshot([]byte(`{"rateLimit":{"cost":1,"remaining":4999,"resetAt":"soon"}}`))
	require.Error(t, err)
	_, err = ParseSnapshot([]byte(`{}`))
	require.Error(t, err)
}
