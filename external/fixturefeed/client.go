package fixturefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/riskibarqy/score-predictor/internal/platform/resilience"
	"github.com/riskibarqy/score-predictor/internal/usecase"
)

const (
	DefaultMaxPages     = 100
	defaultTimeout      = 15 * time.Second
	defaultRetryBackoff = time.Second
	maxBodyBytes        = 8 << 20
	nextTokenParam      = "_next"
)

var errFeedTransient = crerr.New("fixture feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxPages       int
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerSettings
}

// Client walks a cursor-paginated match feed.
type Client struct {
	httpClient   *http.Client
	maxPages     int
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.Breaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &Client{
		httpClient:   httpClient,
		maxPages:     maxPages,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger.Named("fixturefeed"),
		breaker:      resilience.NewBreaker(cfg.CircuitBreaker),
	}
}

// FetchMatches follows pagination from sourceURL until the feed runs out of
// pages or the page cap is reached. Any page failure fails the whole fetch.
func (c *Client) FetchMatches(ctx context.Context, sourceURL string) (usecase.FeedBatch, error) {
	base, err := parseSourceURL(sourceURL)
	if err != nil {
		return usecase.FeedBatch{}, err
	}

	var batch usecase.FeedBatch
	pageURL := base.String()
	for {
		if batch.Pages >= c.maxPages {
			batch.Truncated = true
			c.logger.WarnContext(ctx, "fixture feed page cap reached", "max_pages", c.maxPages, "url", redactURL(base))
			break
		}

		page, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			return usecase.FeedBatch{}, fmt.Errorf("fetch page %d: %w", batch.Pages+1, err)
		}
		batch.Pages++

		for _, raw := range page.items {
			item, ok := raw.(map[string]any)
			if !ok {
				batch.Skipped++
				continue
			}
			match, ok := extractMatch(item)
			if !ok {
				batch.Skipped++
				continue
			}
			batch.Matches = append(batch.Matches, match)
		}

		if page.next == "" {
			break
		}
		pageURL, err = nextPageURL(base, page.next)
		if err != nil {
			return usecase.FeedBatch{}, fmt.Errorf("resolve next page: %w", err)
		}
	}

	if batch.Skipped > 0 {
		c.logger.DebugContext(ctx, "fixture feed records skipped", "skipped", batch.Skipped, "pages", batch.Pages)
	}
	return batch, nil
}

type feedPage struct {
	items []any
	next  string
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (feedPage, error) {
	var page feedPage
	err := c.breaker.Do(func() error {
		raw, err := c.executeRequest(ctx, pageURL)
		if err != nil {
			return err
		}
		page, err = decodePage(raw)
		return err
	}, isTransient)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "fixture feed circuit breaker rejected request", "state", c.breaker.State())
		return feedPage{}, fmt.Errorf("%w: fixture feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return feedPage{}, err
	}
	return page, nil
}

func (c *Client) executeRequest(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.doRequest(ctx, pageURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "fixture feed request failed", "url", redactRawURL(pageURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("send request: %w", err), errFeedTransient)
	}
	defer func() { _ = resp.Body.Close() }()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, crerr.Mark(fmt.Errorf("read response body: %w", err), errFeedTransient)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
		if isRetryableStatus(resp.StatusCode) {
			return nil, crerr.Mark(statusErr, errFeedTransient)
		}
		return nil, statusErr
	}

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// decodePage reads the item array from data, content or matches, in that
// order, and the continuation token from pagination._next. A bare array
// is a single page.
func decodePage(raw []byte) (feedPage, error) {
	var payload any
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return feedPage{}, fmt.Errorf("decode feed payload: %w", err)
	}

	switch typed := payload.(type) {
	case []any:
		return feedPage{items: typed}, nil
	case map[string]any:
		var page feedPage
		for _, key := range []string{"data", "content", "matches"} {
			if items, ok := typed[key].([]any); ok {
				page.items = items
				break
			}
		}
		if next, ok := stringAt("pagination", nextTokenParam)(typed); ok {
			page.next = next
		}
		return page, nil
	default:
		return feedPage{}, fmt.Errorf("decode feed payload: unexpected top-level %T", payload)
	}
}

func parseSourceURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid feed url: %v", usecase.ErrInvalidInput, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: feed url must be absolute http(s)", usecase.ErrInvalidInput)
	}
	return parsed, nil
}

// nextPageURL follows an absolute or relative link as is; any other token is
// sent back to the source URL as the _next query parameter.
func nextPageURL(base *url.URL, token string) (string, error) {
	lower := strings.ToLower(token)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return token, nil
	}
	if strings.HasPrefix(token, "/") {
		ref, err := url.Parse(token)
		if err != nil {
			return "", err
		}
		return base.ResolveReference(ref).String(), nil
	}

	next := *base
	query := next.Query()
	query.Set(nextTokenParam, token)
	next.RawQuery = query.Encode()
	return next.String(), nil
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

// redactURL drops the query string, which may carry tokens.
func redactURL(u *url.URL) string {
	out := *u
	out.RawQuery = ""
	out.User = nil
	return out.String()
}

func redactRawURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return redactURL(parsed)
}
