package queries

import (
	"time"

	"github.com/hanpama/gitminer/internal/query"
)

// UserLoginViewer asks for the login of the authenticated user.
func UserLoginViewer() *query.Document {
	return query.New(query.Node("viewer", nil).Select("login"))
}

// ExtractViewer returns viewer.login.
func ExtractViewer(data map[string]any) (string, error) {
	var v struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}
	if err := decode(data, &v); err != nil {
		return "", err
	}
	return v.Viewer.Login, nil
}

// UserLogin asks for the basic profile of login.
func UserLogin(login string) *query.Document {
	return query.New(query.Node("user", query.Args("login", login)).
		Select("login", "name", "id", "email", "createdAt"))
}

// Login is the result of UserLogin.
type Login struct {
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func ExtractLogin(data map[string]any) (Login, error) {
	var v struct {
		User *Login `json:"user"`
	}
	if err := decode(data, &v); err != nil {
		return Login{}, err
	}
	if v.User == nil {
		return Login{}, ErrNoUser
	}
	return *v.User, nil
}

// UserProfileStats asks for the activity totals shown on a profile.
func UserProfileStats(login string) *query.Document {
	count := func(name string) *query.Field { return query.Node(name, nil, query.Leaf("totalCount")) }
	return query.New(query.Node("user", query.Args("login", login),
		query.Leaf("login"),
		query.Leaf("name"),
		query.Leaf("email"),
		query.Leaf("createdAt"),
		count("issues"),
		count("pullRequests"),
		count("repositories"),
		count("gistComments"),
		count("issueComments"),
		count("commitComments"),
		count("repositoryDiscussionComments"),
	))
}

// ProfileStats is the result of UserProfileStats.
type ProfileStats struct {
	Login                        string
	CreatedAt                    time.Time
	Issues                       int
	PullRequests                 int
	Repositories                 int
	GistComments                 int
	IssueComments                int
	CommitComments               int
	RepositoryDiscussionComments int
}

func ExtractProfileStats(data map[string]any) (ProfileStats, error) {
	var v struct {
		User *struct {
			Login                        string     `json:"login"`
			CreatedAt                    time.Time  `json:"createdAt"`
			Issues                       totalCount `json:"issues"`
			PullRequests                 totalCount `json:"pullRequests"`
			Repositories                 totalCount `json:"repositories"`
			GistComments                 totalCount `json:"gistComments"`
			IssueComments                totalCount `json:"issueComments"`
			CommitComments               totalCount `json:"commitComments"`
			RepositoryDiscussionComments totalCount `json:"repositoryDiscussionComments"`
		} `json:"user"`
	}
	if err := decode(data, &v); err != nil {
		return ProfileStats{}, err
	}
	u := v.User
	if u == nil {
		return ProfileStats{}, ErrNoUser
	}
	return ProfileStats{
		Login:                        u.Login,
		CreatedAt:                    u.CreatedAt,
		Issues:                       u.Issues.TotalCount,
		PullRequests:                 u.PullRequests.TotalCount,
		Repositories:                 u.Repositories.TotalCount,
		GistComments:                 u.GistComments.TotalCount,
		IssueComments:                u.IssueComments.TotalCount,
		CommitComments:               u.CommitComments.TotalCount,
		RepositoryDiscussionComments: u.RepositoryDiscussionComments.TotalCount,
	}, nil
}
