package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hanpama/gitminer/internal/auth"
	"github.com/hanpama/gitminer/internal/cost"
	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/github"
	"github.com/hanpama/gitminer/internal/language"
	"github.com/hanpama/gitminer/internal/metrics"
	"github.com/hanpama/gitminer/internal/otel"
	"github.com/hanpama/gitminer/internal/queries"
	"github.com/hanpama/gitminer/internal/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const rootUsage = `gitminer - GitHub GraphQL query runner

USAGE:
  gitminer <command> [flags] [args]

COMMANDS:
  render           Print the GraphQL document of a catalogue query
  ratelimit        Show the current rate limit
  profile          Fetch profile statistics for one or more logins
  contributions    Fetch contribution totals for one or more logins
  repos            List the repositories of one or more logins
  commits          Summarize the default-branch commits of a repository
  activity         Count pull requests, gists or commit comments created before a date
  help             Show help for any command
`

const renderUsage = `render FLAGS <query>:
  -login <login>          User login (default: octocat)
  -owner <login>          Repository owner for commits
  -repo <name>            Repository name for commits
  -page-size N            Page size of connection queries (default: 10)
  -from <date>            Start of the contributions range, YYYY-MM-DD
  -to <date>              End of the contributions range, YYYY-MM-DD
  -after <cursor>         Render a paginated query positioned after cursor
  -probe                  Render the dry-run cost probe instead
  -check                  Parse the rendered document and fail on syntax errors

QUERIES:
  viewer, login, profile, ratelimit, contributions, repositories, commits,
  pull-requests, gists, commit-comments
`

const clientUsage = `CLIENT FLAGS:
  -github.protocol <scheme>          Endpoint scheme (default: https)
  -github.host <host>                Endpoint host (default: api.github.com)
  -github.enterprise                 The host is a GitHub Enterprise server
  -auth.token <token>                Personal access token (default: $GITHUB_TOKEN)
  -client.retry-attempts N           Attempts per request (default: 3)
  -client.timeout <duration>         Timeout per attempt (default: 10s)
  -client.safety-margin <duration>   Added to every rate-limit wait (default: 5s)
  -client.min-backoff <duration>     Minimum delay between attempts (default: 0)
  -client.max-backoff <duration>     Maximum delay between attempts (default: 0)
  -log.level <level>                 debug, info, warn or error (default: info)
  -otel.endpoint <addr>              OTLP collector endpoint
  -otel.service <name>               OpenTelemetry service name (default: gitminer)
  -metrics.addr <addr>               Serve Prometheus metrics on addr
`

const ratelimitUsage = "ratelimit FLAGS:\n" + clientUsage

const profileUsage = "profile FLAGS <login>...:\n" + clientUsage

const contributionsUsage = `contributions FLAGS <login>...:
  -from <date>   Start of the range, YYYY-MM-DD (default: one year ago)
  -to <date>     End of the range, YYYY-MM-DD (default: today)
                 Ranges over a year are fetched one year at a time and summed.
` + clientUsage

const activityUsage = `activity FLAGS <login>...:
  -kind <kind>     pull-requests, gists or commit-comments (default: pull-requests)
  -before <date>   Count items created before this date, YYYY-MM-DD (default: today)
  -page-size N     Items per page (default: 10)
` + clientUsage

const reposUsage = `repos FLAGS <login>...:
  -page-size N   Repositories per page (default: 10)
` + clientUsage

const commitsUsage = `commits FLAGS <owner>/<name>:
  -page-size N   Commits per page (default: 10)
` + clientUsage

func main() {
	if err := run(os.Args[1:]); err != nil {
		stdlog.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("gitminer", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer))
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "render":
		return cmdRender(cmdArgs)
	case "ratelimit":
		return cmdRateLimit(cmdArgs)
	case "profile":
		return cmdProfile(cmdArgs)
	case "contributions":
		return cmdContributions(cmdArgs)
	case "repos":
		return cmdRepos(cmdArgs)
	case "commits":
		return cmdCommits(cmdArgs)
	case "activity":
		return cmdActivity(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "render":
		fmt.Print(renderUsage)
	case "ratelimit":
		fmt.Print(ratelimitUsage)
	case "profile":
		fmt.Print(profileUsage)
	case "contributions":
		fmt.Print(contributionsUsage)
	case "repos":
		fmt.Print(reposUsage)
	case "commits":
		fmt.Print(commitsUsage)
	case "activity":
		fmt.Print(activityUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

const dateLayout = "2006-01-02"

type dateFlag struct{ t *time.Time }

func (d dateFlag) String() string {
	if d.t == nil || d.t.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d dateFlag) Set(v string) error {
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	*d.t = t
	return nil
}

type renderParams struct {
	login    string
	owner    string
	repo     string
	pageSize int
	from, to time.Time
}

func catalogueDocument(name string, p renderParams) (*query.Document, error) {
	switch name {
	case "viewer":
		return queries.UserLoginViewer(), nil
	case "login":
		return queries.UserLogin(p.login), nil
	case "profile":
		return queries.UserProfileStats(p.login), nil
	case "ratelimit":
		return queries.RateLimit(true), nil
	case "contributions":
		return queries.UserContributions(p.login, p.from, p.to), nil
	case "repositories":
		return queries.UserRepositories(p.login, p.pageSize), nil
	case "commits":
		if p.owner == "" || p.repo == "" {
			return nil, fmt.Errorf("-owner and -repo are required for commits")
		}
		return queries.RepositoryCommits(p.owner, p.repo, p.pageSize), nil
	case "pull-requests":
		return queries.UserPullRequests(p.login, p.pageSize), nil
	case "gists":
		return queries.UserGists(p.login, p.pageSize), nil
	case "commit-comments":
		return queries.UserCommitComments(p.login, p.pageSize), nil
	default:
		return nil, fmt.Errorf("unknown query %q", name)
	}
}

func cmdRender(args []string) error {
	p := renderParams{login: "octocat", pageSize: queries.DefaultPageSize}
	after := ""
	probe := false
	check := false

	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&p.login, "login", p.login, "User login")
	fs.StringVar(&p.owner, "owner", p.owner, "Repository owner")
	fs.StringVar(&p.repo, "repo", p.repo, "Repository name")
	fs.IntVar(&p.pageSize, "page-size", p.pageSize, "Page size")
	fs.Var(dateFlag{&p.from}, "from", "Start of the contributions range")
	fs.Var(dateFlag{&p.to}, "to", "End of the contributions range")
	fs.StringVar(&after, "after", after, "Cursor to render after")
	fs.BoolVar(&probe, "probe", probe, "Render the cost probe")
	fs.BoolVar(&check, "check", check, "Check the rendered syntax")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, renderUsage)
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, renderUsage)
		return fmt.Errorf("expected exactly one query name")
	}
	if p.to.IsZero() {
		p.to = time.Now().UTC()
	}
	if p.from.IsZero() {
		p.from = p.to.AddDate(-1, 0, 0)
	}

	doc, err := catalogueDocument(fs.Arg(0), p)
	if err != nil {
		return err
	}
	if after != "" {
		if !doc.Paginated() {
			return fmt.Errorf("query %q is not paginated", fs.Arg(0))
		}
		doc.Cursor().Update(true, &after)
	}
	if probe {
		if doc, err = cost.Probe(doc, true); err != nil {
			return err
		}
	}
	text := doc.String()
	if check {
		if err := language.CheckSyntax(text); err != nil {
			return fmt.Errorf("rendered document does not parse: %w", err)
		}
	}
	fmt.Println(text)
	return nil
}

// clientConfig holds the flags shared by every command that talks to GitHub.
type clientConfig struct {
	protocol      string
	host          string
	enterprise    bool
	token         string
	retryAttempts int
	timeout       time.Duration
	safetyMargin  time.Duration
	minBackoff    time.Duration
	maxBackoff    time.Duration
	logLevel      string
	otelEndpoint  string
	otelService   string
	metricsAddr   string
}

func newClientConfig(fs *flag.FlagSet) *clientConfig {
	c := &clientConfig{
		protocol:      "https",
		host:          "api.github.com",
		token:         os.Getenv("GITHUB_TOKEN"),
		retryAttempts: 3,
		timeout:       10 * time.Second,
		safetyMargin:  5 * time.Second,
		logLevel:      "info",
		otelService:   "gitminer",
	}
	fs.StringVar(&c.protocol, "github.protocol", c.protocol, "Endpoint scheme")
	fs.StringVar(&c.host, "github.host", c.host, "Endpoint host")
	fs.BoolVar(&c.enterprise, "github.enterprise", c.enterprise, "GitHub Enterprise host")
	fs.StringVar(&c.token, "auth.token", c.token, "Personal access token")
	fs.IntVar(&c.retryAttempts, "client.retry-attempts", c.retryAttempts, "Attempts per request")
	fs.DurationVar(&c.timeout, "client.timeout", c.timeout, "Timeout per attempt")
	fs.DurationVar(&c.safetyMargin, "client.safety-margin", c.safetyMargin, "Added to rate-limit waits")
	fs.DurationVar(&c.minBackoff, "client.min-backoff", c.minBackoff, "Minimum delay between attempts")
	fs.DurationVar(&c.maxBackoff, "client.max-backoff", c.maxBackoff, "Maximum delay between attempts")
	fs.StringVar(&c.logLevel, "log.level", c.logLevel, "Log level")
	fs.StringVar(&c.otelEndpoint, "otel.endpoint", c.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&c.otelService, "otel.service", c.otelService, "OpenTelemetry service name")
	fs.StringVar(&c.metricsAddr, "metrics.addr", c.metricsAddr, "Prometheus metrics listen address")
	return c
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("invalid log level %q", lvl)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, allow), nil
}

// session is a configured client with its telemetry.
type session struct {
	client *github.Client
	logger log.Logger
	close  func()
}

func (c *clientConfig) open() (*session, error) {
	logger, err := newLogger(os.Stderr, c.logLevel)
	if err != nil {
		return nil, err
	}
	bus := eventbus.New()
	opts := []github.Option{
		github.WithEndpoint(c.protocol, c.host),
		github.WithEnterprise(c.enterprise),
		github.WithRetryAttempts(c.retryAttempts),
		github.WithTimeout(c.timeout),
		github.WithSafetyMargin(c.safetyMargin),
		github.WithRetryBackoff(c.minBackoff, c.maxBackoff),
		github.WithLogger(logger),
		github.WithEvents(bus),
	}
	if c.token != "" {
		opts = append(opts, github.WithAuthenticator(auth.PersonalAccessToken(c.token)))
	}
	client, err := github.New(opts...)
	if err != nil {
		return nil, err
	}

	shutdown, err := otel.Setup(c.otelEndpoint, c.otelService, bus)
	if err != nil {
		return nil, fmt.Errorf("otel setup: %w", err)
	}
	closers := []func(){func() { _ = shutdown(context.Background()) }}

	if c.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics.New(reg).Subscribe(bus)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: c.metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				level.Error(logger).Log("msg", "metrics listener failed", "addr", c.metricsAddr, "err", err)
			}
		}()
		level.Info(logger).Log("msg", "serving metrics", "addr", c.metricsAddr)
		closers = append(closers, func() { _ = srv.Close() })
	}

	return &session{
		client: client,
		logger: logger,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func printJSON(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}

func cmdRateLimit(args []string) error {
	fs := flag.NewFlagSet("ratelimit", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	cfg := newClientConfig(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, ratelimitUsage)
		return err
	}
	s, err := cfg.open()
	if err != nil {
		return err
	}
	defer s.close()
	ctx, cancel := signalContext()
	defer cancel()

	data, err := s.client.Execute(ctx, queries.RateLimit(true))
	if err != nil {
		return err
	}
	rl, err := queries.ExtractRateLimit(data)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"limit":     rl.Limit,
		"remaining": rl.Remaining,
		"used":      rl.Used,
		"reset_at":  rl.ResetAt.Format(time.RFC3339),
	})
}

// forEachLogin runs fn for every login, logging failures and carrying on
// with the next one. It fails if any login failed.
func forEachLogin(s *session, logins []string, what string, fn func(login string) error) error {
	failed := 0
	for _, login := range logins {
		if err := fn(login); err != nil {
			failed++
			level.Error(s.logger).Log("msg", "failed to fetch "+what, "login", login, "err", err)
			continue
		}
		level.Debug(s.logger).Log("msg", "fetched "+what, "login", login)
	}
	if failed > 0 {
		return fmt.Errorf("%s: %d of %d logins failed", what, failed, len(logins))
	}
	return nil
}

func cmdProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	cfg := newClientConfig(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, profileUsage)
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprint(os.Stderr, profileUsage)
		return fmt.Errorf("at least one login is required")
	}
	s, err := cfg.open()
	if err != nil {
		return err
	}
	defer s.close()
	ctx, cancel := signalContext()
	defer cancel()

	return forEachLogin(s, fs.Args(), "profile", func(login string) error {
		data, err := s.client.Execute(ctx, queries.UserProfileStats(login))
		if err != nil {
			return err
		}
		st, err := queries.ExtractProfileStats(data)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"login":                          st.Login,
			"created_at":                     st.CreatedAt.Format(time.RFC3339),
			"issues":                         st.Issues,
			"pull_requests":                  st.PullRequests,
			"repositories":                   st.Repositories,
			"gist_comments":                  st.GistComments,
			"issue_comments":                 st.IssueComments,
			"commit_comments":                st.CommitComments,
			"repository_discussion_comments": st.RepositoryDiscussionComments,
		})
	})
}

func cmdContributions(args []string) error {
	var from, to time.Time
	fs := flag.NewFlagSet("contributions", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(dateFlag{&from}, "from", "Start of the range")
	fs.Var(dateFlag{&to}, "to", "End of the range")
	cfg := newClientConfig(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, contributionsUsage)
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprint(os.Stderr, contributionsUsage)
		return fmt.Errorf("at least one login is required")
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 0)
	}
	if !from.Before(to) {
		return fmt.Errorf("-from must be before -to")
	}
	s, err := cfg.open()
	if err != nil {
		return err
	}
	defer s.close()
	ctx, cancel := signalContext()
	defer cancel()

	periods := queries.ContributionPeriods(from, to)
	return forEachLogin(s, fs.Args(), "contributions", func(login string) error {
		var total queries.Contributions
		for _, p := range periods {
			data, err := s.client.Execute(ctx, queries.UserContributions(login, p.From, p.To))
			if err != nil {
				return err
			}
			c, err := queries.ExtractContributions(data)
			if err != nil {
				return err
			}
			total = total.Add(c)
		}
		return printJSON(map[string]any{
			"login":                login,
			"started_at":           total.StartedAt.Format(time.RFC3339),
			"ended_at":             total.EndedAt.Format(time.RFC3339),
			"periods":              len(periods),
			"restricted":           total.Restricted,
			"commits":              total.Commits,
			"issues":               total.Issues,
			"pull_requests":        total.PullRequests,
			"pull_request_reviews": total.PullRequestReviews,
			"repositories":         total.Repositories,
		})
	})
}

// activityKinds maps the -kind values of the activity command to their
// catalogue entries.
var activityKinds = map[string]struct {
	document func(login string, pageSize int) *query.Document
	extract  func(map[string]any) (queries.Activity, error)
}{
	"pull-requests":   {queries.UserPullRequests, queries.ExtractPullRequests},
	"gists":           {queries.UserGists, queries.ExtractGists},
	"commit-comments": {queries.UserCommitComments, queries.ExtractCommitComments},
}

// errStopPaging ends a Run early once the remaining pages cannot count.
var errStopPaging = errors.New("stop paging")

func cmdActivity(args []string) error {
	kind := "pull-requests"
	pageSize := queries.DefaultPageSize
	var before time.Time
	fs := flag.NewFlagSet("activity", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&kind, "kind", kind, "Activity to count")
	fs.IntVar(&pageSize, "page-size", pageSize, "Items per page")
	fs.Var(dateFlag{&before}, "before", "Count items created before this date")
	cfg := newClientConfig(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, activityUsage)
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprint(os.Stderr, activityUsage)
		return fmt.Errorf("at least one login is required")
	}
	entry, ok := activityKinds[kind]
	if !ok {
		return fmt.Errorf("unknown activity kind %q", kind)
	}
	if before.IsZero() {
		before = time.Now().UTC()
	}
	s, err := cfg.open()
	if err != nil {
		return err
	}
	defer s.close()
	ctx, cancel := signalContext()
	defer cancel()

	return forEachLogin(s, fs.Args(), kind, func(login string) error {
		total, count := 0, 0
		err := s.client.Run(ctx, entry.document(login, pageSize), func(data map[string]any) error {
			a, err := entry.extract(data)
			if err != nil {
				return err
			}
			total = a.TotalCount
			n := queries.CountCreatedBefore(a.Nodes, before)
			count += n
			if n < len(a.Nodes) {
				return errStopPaging
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopPaging) {
			return err
		}
		return printJSON(map[string]any{
			"login":          login,
			"kind":           kind,
			"before":         before.Format(time.RFC3339),
			"total":          total,
			"created_before": count,
		})
	})
}

func cmdRepos(args []string) error {
	pageSize := queries.DefaultPageSize
	fs := flag.NewFlagSet("repos", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.IntVar(&pageSize, "page-size", pageSize, "Repositories per page")
	cfg := newClientConfig(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, reposUsage)
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprint(os.Stderr, reposUsage)
		return fmt.Errorf("at least one login is required")
	}
	s, err := cfg.open()
	if err != nil {
		return err
	}
	defer s.close()
	ctx, cancel := signalContext()
	defer cancel()

	return forEachLogin(s, fs.Args(), "repositories", func(login string) error {
		return s.client.Run(ctx, queries.UserRepositories(login, pageSize), func(data map[string]any) error {
			repos, err := queries.ExtractRepositories(data)
			if err != nil {
				return err
			}
			for _, r := range repos {
				langs := make([]string, 0, len(r.Languages))
				for _, l := range r.Languages {
					langs = append(langs, l.Name)
				}
				if err := printJSON(map[string]any{
					"login":            login,
					"name":             r.Name,
					"created_at":       r.CreatedAt.Format(time.RFC3339),
					"forks":            r.ForkCount,
					"stars":            r.StargazerCount,
					"watchers":         r.Watchers,
					"primary_language": r.PrimaryLanguage,
					"languages":        langs,
				}); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func cmdCommits(args []string) error {
	pageSize := queries.DefaultPageSize
	fs := flag.NewFlagSet("commits", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.IntVar(&pageSize, "page-size", pageSize, "Commits per page")
	cfg := newClientConfig(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, commitsUsage)
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, commitsUsage)
		return fmt.Errorf("expected exactly one <owner>/<name>")
	}
	owner, name, ok := splitRepo(fs.Arg(0))
	if !ok {
		return fmt.Errorf("invalid repository %q, want <owner>/<name>", fs.Arg(0))
	}
	s, err := cfg.open()
	if err != nil {
		return err
	}
	defer s.close()
	ctx, cancel := signalContext()
	defer cancel()

	var totals map[queries.AuthorKey]*queries.CommitTotals
	pages, err := s.client.Paginate(ctx, queries.RepositoryCommits(owner, name, pageSize))
	if err != nil {
		return err
	}
	for data, err := range pages.All() {
		if err != nil {
			return err
		}
		commits, err := queries.ExtractCommits(data)
		if err != nil {
			return err
		}
		totals = queries.TallyCommits(totals, commits)
	}
	authors := make([]queries.AuthorKey, 0, len(totals))
	for k := range totals {
		authors = append(authors, k)
	}
	sort.Slice(authors, func(i, j int) bool {
		a, b := totals[authors[i]], totals[authors[j]]
		if a.Commits != b.Commits {
			return a.Commits > b.Commits
		}
		return authors[i].Name < authors[j].Name
	})
	for _, k := range authors {
		t := totals[k]
		if err := printJSON(map[string]any{
			"name":      k.Name,
			"login":     k.Login,
			"commits":   t.Commits,
			"additions": t.Additions,
			"deletions": t.Deletions,
			"files":     t.Files,
		}); err != nil {
			return err
		}
	}
	return nil
}

func splitRepo(v string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(v, "/")
	return owner, name, ok && owner != "" && name != "" && !strings.Contains(name, "/")
}
