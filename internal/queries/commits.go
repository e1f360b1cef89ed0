package queries

import (
	"time"

	"github.com/hanpama/gitminer/internal/query"
)

// RepositoryCommits pages through the history of owner/name's default branch.
func RepositoryCommits(owner, name string, pageSize int) *query.Document {
	doc := mustPaginated(query.Node("repository", query.Args("owner", "$owner", "name", "$repo_name"),
		query.Node("defaultBranchRef", nil,
			query.Node("target", nil,
				query.Node("... on Commit", nil,
					query.Paginated("history", query.Args("first", "$pg_size"),
						query.Leaf("totalCount"),
						query.Node("nodes", nil,
							query.Leaf("authoredDate"),
							query.Leaf("changedFilesIfAvailable"),
							query.Leaf("additions"),
							query.Leaf("deletions"),
							query.Leaf("message"),
							query.Node("parents", query.Args("first", 2), query.Leaf("totalCount")),
							query.Node("author", nil,
								query.Leaf("name"),
								query.Leaf("email"),
								query.Node("user", nil, query.Leaf("login")),
							),
						),
						pageInfo(),
					),
				),
			),
		),
	))
	return doc.Bind("owner", owner).Bind("repo_name", name).Bind("pg_size", pageSize)
}

// Commit is one node of RepositoryCommits.
type Commit struct {
	AuthoredDate time.Time
	ChangedFiles int
	Additions    int
	Deletions    int
	Message      string
	Parents      int

	AuthorName  string
	AuthorEmail string
	// AuthorLogin is empty when the author is not linked to a GitHub user.
	AuthorLogin string
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool { return c.Parents > 1 }

type commitNode struct {
	AuthoredDate            time.Time  `json:"authoredDate"`
	ChangedFilesIfAvailable *int       `json:"changedFilesIfAvailable"`
	Additions               int        `json:"additions"`
	Deletions               int        `json:"deletions"`
	Message                 string     `json:"message"`
	Parents                 totalCount `json:"parents"`
	Author                  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		User  *struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"author"`
}

// ExtractCommits returns the commits of one page. A repository without a
// default branch yields no commits.
func ExtractCommits(data map[string]any) ([]Commit, error) {
	var v struct {
		Repository struct {
			DefaultBranchRef *struct {
				Target struct {
					History struct {
						Nodes []commitNode `json:"nodes"`
					} `json:"history"`
				} `json:"target"`
			} `json:"defaultBranchRef"`
		} `json:"repository"`
	}
	if err := decode(data, &v); err != nil {
		return nil, err
	}
	ref := v.Repository.DefaultBranchRef
	if ref == nil {
		return nil, nil
	}
	out := make([]Commit, 0, len(ref.Target.History.Nodes))
	for _, n := range ref.Target.History.Nodes {
		c := Commit{
			AuthoredDate: n.AuthoredDate,
			Additions:    n.Additions,
			Deletions:    n.Deletions,
			Message:      n.Message,
			Parents:      n.Parents.TotalCount,
			AuthorName:   n.Author.Name,
			AuthorEmail:  n.Author.Email,
		}
		if n.ChangedFilesIfAvailable != nil {
			c.ChangedFiles = *n.ChangedFilesIfAvailable
		}
		if n.Author.User != nil {
			c.AuthorLogin = n.Author.User.Login
		}
		out = append(out, c)
	}
	return out, nil
}

// CommitTotals accumulates the commits of one author.
type CommitTotals struct {
	Commits   int
	Additions int
	Deletions int
	Files     int
}

// AuthorKey identifies a commit author. Login is empty for authors not
// linked to a GitHub user.
type AuthorKey struct {
	Name  string
	Login string
}

// TallyCommits adds the non-merge commits to totals and returns it. A nil
// map is allocated.
func TallyCommits(totals map[AuthorKey]*CommitTotals, commits []Commit) map[AuthorKey]*CommitTotals {
	if totals == nil {
		totals = map[AuthorKey]*CommitTotals{}
	}
	for _, c := range commits {
		if c.IsMerge() {
			continue
		}
		k := AuthorKey{Name: c.AuthorName, Login: c.AuthorLogin}
		t := totals[k]
		if t == nil {
			t = &CommitTotals{}
			totals[k] = t
		}
		t.Commits++
		t.Additions += c.Additions
		t.Deletions += c.Deletions
		t.Files += c.ChangedFiles
	}
	return totals
}
