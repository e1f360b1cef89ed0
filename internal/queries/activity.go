package queries

import (
	"encoding/json"
	"fmt"

	"github.com/hanpama/gitminer/internal/query"
)

// Activity is one page of a user connection of which only creation times
// are queried.
type Activity struct {
	Login      string
	TotalCount int
	Nodes      []Dated
}

const (
	connPullRequests   = "pullRequests"
	connGists          = "gists"
	connCommitComments = "commitComments"
)

func datedConnection(conn, login string, pageSize int) *query.Document {
	doc := mustPaginated(query.Node("user", query.Args("login", "$user"),
		query.Leaf("login"),
		query.Paginated(conn, query.Args("first", "$pg_size"),
			query.Leaf("totalCount"),
			query.Node("nodes", nil, query.Leaf("createdAt")),
			pageInfo(),
		),
	))
	return doc.Bind("user", login).Bind("pg_size", pageSize)
}

// UserPullRequests pages through the pull requests opened by login.
func UserPullRequests(login string, pageSize int) *query.Document {
	return datedConnection(connPullRequests, login, pageSize)
}

// UserGists pages through the gists of login.
func UserGists(login string, pageSize int) *query.Document {
	return datedConnection(connGists, login, pageSize)
}

// UserCommitComments pages through the commit comments written by login.
func UserCommitComments(login string, pageSize int) *query.Document {
	return datedConnection(connCommitComments, login, pageSize)
}

func ExtractPullRequests(data map[string]any) (Activity, error) {
	return extractActivity(data, connPullRequests)
}

func ExtractGists(data map[string]any) (Activity, error) {
	return extractActivity(data, connGists)
}

func ExtractCommitComments(data map[string]any) (Activity, error) {
	return extractActivity(data, connCommitComments)
}

func extractActivity(data map[string]any, conn string) (Activity, error) {
	var v struct {
		User map[string]json.RawMessage `json:"user"`
	}
	if err := decode(data, &v); err != nil {
		return Activity{}, err
	}
	if v.User == nil {
		return Activity{}, ErrNoUser
	}
	var a Activity
	if raw, ok := v.User["login"]; ok {
		if err := json.Unmarshal(raw, &a.Login); err != nil {
			return Activity{}, fmt.Errorf("queries: user.login: %w", err)
		}
	}
	var c struct {
		TotalCount int     `json:"totalCount"`
		Nodes      []Dated `json:"nodes"`
	}
	raw, ok := v.User[conn]
	if !ok {
		return Activity{}, fmt.Errorf("queries: no user.%s object", conn)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return Activity{}, fmt.Errorf("queries: user.%s: %w", conn, err)
	}
	a.TotalCount, a.Nodes = c.TotalCount, c.Nodes
	return a, nil
}
