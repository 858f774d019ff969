package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/GarvitBanga/JobMatch/internal/discover"
	"github.com/GarvitBanga/JobMatch/internal/limits"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the per-attempt client-side deadline.
	DefaultTimeout = 10 * time.Second
	// DefaultConcurrency bounds in-flight fetches for one scan; wider
	// fan-out tends to trip anti-bot defenses.
	DefaultConcurrency = 5

	// maxBodyBytes caps how much HTML is read from a posting page.
	maxBodyBytes = 2 << 20

	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHTML       = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage   = "en-US,en;q=0.9"
)

// Client retrieves job postings discovered on a career page. Links sharing
// the page's origin are fetched directly; cross-origin links go through
// the proxied fetch service. Before any network call the client consults
// the cache and the per-identity rate limiter.
type Client struct {
	pageOrigin  *url.URL
	httpClient  *http.Client
	proxy       *ProxyClient
	cache       *limits.Cache[*FetchResult]
	limiter     *limits.RateLimiter
	logger      *zap.Logger
	userAgent   string
	concurrency int
}

// ClientConfig configures a per-scan fetch client.
type ClientConfig struct {
	// PageURL is the referring career page; it decides origin routing.
	PageURL string
	// Proxy handles cross-origin links. Optional; without it cross-origin
	// fetches degrade to a network error.
	Proxy *ProxyClient
	// Cache and Limiter are the process-wide instances shared across scans.
	Cache   *limits.Cache[*FetchResult]
	Limiter *limits.RateLimiter

	Timeout     time.Duration
	Concurrency int
	UserAgent   string
	Logger      *zap.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	origin, err := url.Parse(cfg.PageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url %q: %w", cfg.PageURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := cfg.Cache
	if cache == nil {
		cache = limits.NewCache[*FetchResult](limits.DefaultCacheTTL, limits.DefaultCacheCapacity)
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = limits.NewRateLimiter(limits.DefaultWindow, limits.DefaultFetchCap, limits.DefaultScoreCap)
	}

	return &Client{
		pageOrigin:  origin,
		httpClient:  &http.Client{Timeout: timeout},
		proxy:       cfg.Proxy,
		cache:       cache,
		limiter:     limiter,
		logger:      logger,
		userAgent:   userAgent,
		concurrency: concurrency,
	}, nil
}

// Fetch retrieves one link's content. A fresh cache hit short-circuits
// both the quota check and the network call; a quota rejection yields a
// quota_exceeded result without any network I/O. Failed attempts are not
// retried and are not cached.
func (c *Client) Fetch(ctx context.Context, identity string, link discover.JobLink) *FetchResult {
	key := NormalizeURL(link.URL)

	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("fetch served from cache", zap.String("url", link.URL))
		return cached
	}

	if !c.limiter.Allow(identity, limits.KindFetch) {
		c.logger.Debug("fetch rejected by quota", zap.String("url", link.URL), zap.String("identity", identity))
		return &FetchResult{
			URL:       link.URL,
			Status:    StatusQuotaExceeded,
			FetchedAt: time.Now(),
			Origin:    c.originKind(link.URL),
		}
	}

	var result *FetchResult
	if c.originKind(link.URL) == SameOrigin {
		result = c.fetchDirect(ctx, link.URL)
	} else {
		result = c.fetchProxied(ctx, link.URL)
	}

	if result.OK() {
		c.cache.Put(key, result)
	}

	return result
}

func (c *Client) originKind(raw string) OriginKind {
	u, err := url.Parse(raw)
	if err != nil {
		return CrossOrigin
	}
	if u.Scheme == c.pageOrigin.Scheme && u.Host == c.pageOrigin.Host {
		return SameOrigin
	}
	return CrossOrigin
}

func (c *Client) fetchDirect(ctx context.Context, rawURL string) *FetchResult {
	result := &FetchResult{URL: rawURL, FetchedAt: time.Now(), Origin: SameOrigin}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Status = StatusNetworkError
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Language", acceptLanguage)

	c.logger.Debug("direct fetch", zap.String("url", rawURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Status = classifyError(err)
		return result
	}
	defer resp.Body.Close()

	result.HTTPStatus = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Status = StatusHTTPError
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		result.Status = classifyError(err)
		return result
	}

	result.Status = StatusOK
	result.RawHTML = string(body)
	return result
}

func (c *Client) fetchProxied(ctx context.Context, rawURL string) *FetchResult {
	result := &FetchResult{URL: rawURL, FetchedAt: time.Now(), Origin: CrossOrigin}

	job, err := c.proxy.FetchJob(ctx, rawURL)
	if err != nil {
		result.Status = classifyError(err)
		c.logger.Debug("proxied fetch failed", zap.String("url", rawURL), zap.Error(err))
		return result
	}

	result.Status = StatusOK
	result.Proxied = job
	return result
}

// classifyError maps transport failures onto the fetch status taxonomy.
// Cancellation counts as a timeout: the scan deadline expired and the
// attempt was abandoned.
func classifyError(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StatusTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return StatusTimeout
	}
	return StatusNetworkError
}
