package vcs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/nao1215/linkguard/internal/retry"
)

// GitHub API access defaults.
const (
	// defaultAPITimeout bounds a single API request.
	defaultAPITimeout = 10 * time.Second

	// defaultAPIRate keeps unauthenticated clients well below the hourly
	// quota during a burst of lookups.
	defaultAPIRate = 1.2
)

// GitHub is a Remote backed by the GitHub REST API.
type GitHub struct {
	client  *gh.Client
	owner   string
	repo    string
	policy  retry.Policy
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// GitHubOption configures a GitHub remote.
type GitHubOption func(*GitHub)

// WithToken authenticates API requests with a personal access token.
// An empty token leaves the client unauthenticated.
func WithToken(token string) GitHubOption {
	return func(g *GitHub) {
		if token == "" {
			return
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		g.client = gh.NewClient(oauth2.NewClient(context.Background(), ts))
	}
}

// WithGitHubClient replaces the API client, for example with one pointed
// at a test server or a GitHub Enterprise instance.
func WithGitHubClient(client *gh.Client) GitHubOption {
	return func(g *GitHub) {
		g.client = client
	}
}

// WithGitHubPolicy sets the retry policy of API lookups.
func WithGitHubPolicy(p retry.Policy) GitHubOption {
	return func(g *GitHub) {
		g.policy = p
	}
}

// WithAPITimeout sets the per-request timeout.
func WithAPITimeout(d time.Duration) GitHubOption {
	return func(g *GitHub) {
		g.timeout = d
	}
}

// WithAPIRate sets the request rate in requests per second. Zero or less
// disables throttling.
func WithAPIRate(perSecond float64) GitHubOption {
	return func(g *GitHub) {
		if perSecond <= 0 {
			g.limiter = nil
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithGitHubLogger sets the logger.
func WithGitHubLogger(logger *slog.Logger) GitHubOption {
	return func(g *GitHub) {
		g.logger = logger
	}
}

// NewGitHub creates a Remote for github.com/owner/repo.
func NewGitHub(owner, repo string, opts ...GitHubOption) *GitHub {
	g := &GitHub{
		client:  gh.NewClient(nil),
		owner:   owner,
		repo:    repo,
		policy:  retry.Policy{Attempts: 3, Backoff: time.Second},
		timeout: defaultAPITimeout,
		limiter: rate.NewLimiter(rate.Limit(defaultAPIRate), 1),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ParseGitHubRepo extracts owner and repository from a github.com base URL
// such as https://github.com/owner/repo.
func ParseGitHubRepo(baseURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(baseURL)
	if err != nil || !strings.EqualFold(u.Hostname(), "github.com") {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}

// HasRef implements Remote. Branches, tags and commit ids are all resolved
// through the commits endpoint.
func (g *GitHub) HasRef(ctx context.Context, ref string) (bool, error) {
	if err := validRef(ref); err != nil {
		return false, nil
	}
	found := false
	err := g.do(ctx, "has ref", func(ctx context.Context) error {
		_, _, err := g.client.Repositories.GetCommitSHA1(ctx, g.owner, g.repo, ref, "")
		if err == nil {
			found = true
		}
		return err
	})
	if isNotFound(err) {
		return false, nil
	}
	return found, err
}

// ObjectKind implements Remote using the contents endpoint: a file answer
// is a blob, a directory listing is a tree.
func (g *GitHub) ObjectKind(ctx context.Context, ref, path string) (ObjectKind, error) {
	if err := validRef(ref); err != nil {
		return KindNone, err
	}
	kind := KindNone
	err := g.do(ctx, "object kind", func(ctx context.Context) error {
		file, dir, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path,
			&gh.RepositoryContentGetOptions{Ref: ref})
		if err != nil {
			return err
		}
		switch {
		case file != nil && file.GetType() == "dir":
			kind = KindTree
		case file != nil:
			kind = KindBlob
		case dir != nil:
			kind = KindTree
		}
		return nil
	})
	if isNotFound(err) {
		return KindNone, nil
	}
	return kind, err
}

// do runs one API call under the retry policy, the rate limiter and the
// per-request timeout.
func (g *GitHub) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	return g.policy.Do(ctx, func(ctx context.Context, attempt int) (retry.Outcome, error) {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return retry.Retryable, err
			}
		}

		err := call(ctx)
		outcome := classifyAPIError(err)
		if outcome == retry.Retryable {
			g.logger.Debug("github api attempt failed", "op", op, "attempt", attempt, "error", err)
		}
		return outcome, err
	})
}

// classifyAPIError maps a go-github error to a retry outcome. Not-found
// answers are definitive; rate limiting fails closed without waiting for
// the quota reset.
func classifyAPIError(err error) retry.Outcome {
	if err == nil {
		return retry.Success
	}
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return retry.Fatal
	}
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
			return retry.Retryable
		}
		return retry.Fatal
	}
	return retry.Retryable
}

// isNotFound reports whether err is a 404 or 422 API answer. The commits
// endpoint answers 422 for malformed or unknown commit ids.
func isNotFound(err error) bool {
	var respErr *gh.ErrorResponse
	if !errors.As(err, &respErr) || respErr.Response == nil {
		return false
	}
	code := respErr.Response.StatusCode
	return code == http.StatusNotFound || code == http.StatusUnprocessableEntity
}
