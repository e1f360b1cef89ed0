package queries

import (
	"time"

	"github.com/hanpama/gitminer/internal/query"
)

func orderBy(field, direction string) query.Object {
	return query.Object{
		{Name: "field", Value: query.Enum(field)},
		{Name: "direction", Value: query.Enum(direction)},
	}
}

// UserRepositories pages through the non-fork repositories owned by login,
// newest first, with their languages ordered by size.
func UserRepositories(login string, pageSize int) *query.Document {
	return mustPaginated(query.Node("user", query.Args("login", login),
		query.Paginated("repositories", query.Args(
			"first", pageSize,
			"isFork", false,
			"ownerAffiliations", []query.Enum{"OWNER"},
			"orderBy", orderBy("CREATED_AT", "DESC"),
		),
			query.Leaf("totalCount"),
			query.Node("nodes", nil,
				query.Leaf("name"),
				query.Leaf("isEmpty"),
				query.Leaf("createdAt"),
				query.Leaf("updatedAt"),
				query.Leaf("forkCount"),
				query.Leaf("stargazerCount"),
				query.Node("watchers", nil, query.Leaf("totalCount")),
				query.Node("primaryLanguage", nil, query.Leaf("name")),
				query.Node("languages", query.Args("first", 100, "orderBy", orderBy("SIZE", "DESC")),
					query.Leaf("totalSize"),
					query.Node("edges", nil,
						query.Leaf("size"),
						query.Node("node", nil, query.Leaf("name")),
					),
				),
			),
			pageInfo(),
		),
	))
}

// Repository is one node of UserRepositories.
type Repository struct {
	Name            string
	IsEmpty         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ForkCount       int
	StargazerCount  int
	Watchers        int
	PrimaryLanguage string
	// Languages is ordered by size, largest first.
	Languages []LanguageSize
	TotalSize int
}

type LanguageSize struct {
	Name string
	Size int
}

type repositoryNode struct {
	Name            string     `json:"name"`
	IsEmpty         bool       `json:"isEmpty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ForkCount       int        `json:"forkCount"`
	StargazerCount  int        `json:"stargazerCount"`
	Watchers        totalCount `json:"watchers"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	Languages struct {
		TotalSize int `json:"totalSize"`
		Edges     []struct {
			Size int `json:"size"`
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"languages"`
}

// ExtractRepositories returns the repositories of one page.
func ExtractRepositories(data map[string]any) ([]Repository, error) {
	var v struct {
		User *struct {
			Repositories struct {
				Nodes []repositoryNode `json:"nodes"`
			} `json:"repositories"`
		} `json:"user"`
	}
	if err := decode(data, &v); err != nil {
		return nil, err
	}
	if v.User == nil {
		return nil, ErrNoUser
	}
	out := make([]Repository, 0, len(v.User.Repositories.Nodes))
	for _, n := range v.User.Repositories.Nodes {
		r := Repository{
			Name:           n.Name,
			IsEmpty:        n.IsEmpty,
			CreatedAt:      n.CreatedAt,
			UpdatedAt:      n.UpdatedAt,
			ForkCount:      n.ForkCount,
			StargazerCount: n.StargazerCount,
			Watchers:       n.Watchers.TotalCount,
			TotalSize:      n.Languages.TotalSize,
		}
		if n.PrimaryLanguage != nil {
			r.PrimaryLanguage = n.PrimaryLanguage.Name
		}
		for _, e := range n.Languages.Edges {
			r.Languages = append(r.Languages, LanguageSize{Name: e.Node.Name, Size: e.Size})
		}
		out = append(out, r)
	}
	return out, nil
}
