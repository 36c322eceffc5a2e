package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/linkguard/internal/cache"
	"github.com/nao1215/linkguard/internal/retry"
)

// maxDrain is the number of body bytes read before a response is closed,
// so that keep-alive connections can be reused.
const maxDrain = 64 * 1024

// Checker probes external URLs. It is safe for concurrent use.
type Checker struct {
	client  *http.Client
	policy  retry.Policy
	timeout time.Duration
	allow   AllowList
	limiter *rate.Limiter
	logger  *slog.Logger
	memo    cache.Memo[struct{}]
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets the HTTP client used for probes.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.client = client
	}
}

// WithPolicy sets the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(c *Checker) {
		c.policy = p
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.timeout = d
	}
}

// WithAllowList sets prefixes that bypass the probe.
func WithAllowList(allow AllowList) Option {
	return func(c *Checker) {
		c.allow = allow
	}
}

// WithRateLimit caps probes per second across all hosts. Zero or less
// disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Checker) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker. Without options it uses http.DefaultClient,
// three attempts with a one second backoff and a ten second timeout.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:  http.DefaultClient,
		policy:  retry.Policy{Attempts: 3, Backoff: time.Second},
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check returns nil when rawURL is reachable, or the last observed error
// once the retry budget is spent. Repeated calls with the same URL return
// the first outcome without touching the network.
func (c *Checker) Check(ctx context.Context, rawURL string) error {
	if c.allow.Match(rawURL) {
		return nil
	}
	_, err := c.memo.Do(rawURL, func() (struct{}, error) {
		return struct{}{}, c.probe(ctx, rawURL)
	})
	return err
}

// Probes returns the number of distinct URLs actually probed.
func (c *Checker) Probes() int {
	return c.memo.Computations()
}

func (c *Checker) probe(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	err = c.policy.Do(ctx, func(ctx context.Context, attempt int) (retry.Outcome, error) {
		outcome, err := c.attempt(ctx, rawURL)
		if outcome != retry.Success {
			c.logger.Debug("probe attempt failed",
				"url", rawURL,
				"attempt", attempt,
				"outcome", outcome.String(),
				"error", err,
			)
		}
		return outcome, err
	})
	if err != nil {
		c.logger.Info("url unreachable", "url", rawURL, "error", err)
	}
	return err
}

// attempt performs one HEAD probe with GET fallback under the per-call
// timeout.
func (c *Checker) attempt(ctx context.Context, rawURL string) (retry.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Retryable, err
		}
	}

	status, err := c.request(ctx, http.MethodHead, rawURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusForbidden) {
		status, err = c.request(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return retry.Retryable, transportError(err)
	}
	return Classify(status)
}

func (c *Checker) request(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	return resp.StatusCode, nil
}

// Classify maps an HTTP status to a retry outcome.
func Classify(status int) (retry.Outcome, error) {
	switch {
	case status < http.StatusBadRequest:
		return retry.Success, nil
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError:
		return retry.Retryable, &StatusError{Code: status}
	default:
		return retry.Fatal, &StatusError{Code: status}
	}
}

// transportError strips the "Head \"https://...\":" prefix that net/http
// adds, since the URL is already part of every violation line.
func transportError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return fmt.Errorf("timeout: %w", ue.Err)
		}
		return ue.Err
	}
	return err
}
