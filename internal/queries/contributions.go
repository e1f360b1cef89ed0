package queries

import (
	"time"

	"github.com/hanpama/gitminer/internal/query"
)

// MaxContributionPeriod is the longest range GitHub accepts for one
// contributionsCollection.
const MaxContributionPeriod = 365 * 24 * time.Hour

// Period is the half-open time range [From, To).
type Period struct {
	From, To time.Time
}

// ContributionPeriods splits [from, to) into consecutive periods no longer
// than MaxContributionPeriod. It returns nil when from is not before to.
func ContributionPeriods(from, to time.Time) []Period {
	var out []Period
	for from.Before(to) {
		end := from.Add(MaxContributionPeriod)
		if end.After(to) {
			end = to
		}
		out = append(out, Period{From: from, To: end})
		from = end
	}
	return out
}

// UserContributions asks for the contribution totals of login between from
// and to. GitHub limits the range to one year; see ContributionPeriods.
func UserContributions(login string, from, to time.Time) *query.Document {
	doc := query.New(query.Node("user", query.Args("login", "$user"),
		query.Node("contributionsCollection", query.Args("from", "$start", "to", "$end")).Select(
			"startedAt",
			"endedAt",
			"restrictedContributionsCount",
			"totalCommitContributions",
			"totalIssueContributions",
			"totalPullRequestContributions",
			"totalPullRequestReviewContributions",
			"totalRepositoryContributions",
		),
	))
	return doc.Bind("user", login).Bind("start", from).Bind("end", to)
}

// Contributions is the result of UserContributions.
type Contributions struct {
	StartedAt          time.Time `json:"startedAt"`
	EndedAt            time.Time `json:"endedAt"`
	Restricted         int       `json:"restrictedContributionsCount"`
	Commits            int       `json:"totalCommitContributions"`
	Issues             int       `json:"totalIssueContributions"`
	PullRequests       int       `json:"totalPullRequestContributions"`
	PullRequestReviews int       `json:"totalPullRequestReviewContributions"`
	Repositories       int       `json:"totalRepositoryContributions"`
}

func ExtractContributions(data map[string]any) (Contributions, error) {
	var v struct {
		User *struct {
			ContributionsCollection Contributions `json:"contributionsCollection"`
		} `json:"user"`
	}
	if err := decode(data, &v); err != nil {
		return Contributions{}, err
	}
	if v.User == nil {
		return Contributions{}, ErrNoUser
	}
	return v.User.ContributionsCollection, nil
}

// Add returns the sum of c and o over the counters. The period is the union
// of both periods.
func (c Contributions) Add(o Contributions) Contributions {
	out := Contributions{
		StartedAt:          c.StartedAt,
		EndedAt:            c.EndedAt,
		Restricted:         c.Restricted + o.Restricted,
		Commits:            c.Commits + o.Commits,
		Issues:             c.Issues + o.Issues,
		PullRequests:       c.PullRequests + o.PullRequests,
		PullRequestReviews: c.PullRequestReviews + o.PullRequestReviews,
		Repositories:       c.Repositories + o.Repositories,
	}
	if out.StartedAt.IsZero() || (!o.StartedAt.IsZero() && o.StartedAt.Before(out.StartedAt)) {
		out.StartedAt = o.StartedAt
	}
	if o.EndedAt.After(out.EndedAt) {
		out.EndedAt = o.EndedAt
	}
	return out
}
