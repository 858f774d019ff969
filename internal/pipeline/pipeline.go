// Package pipeline wires discovery, fetching, extraction and scoring into
// one scan of a career page. The cache and rate limiter are process-wide;
// everything else is built per scan.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/GarvitBanga/JobMatch/internal/discover"
	"github.com/GarvitBanga/JobMatch/internal/extract"
	"github.com/GarvitBanga/JobMatch/internal/fetch"
	"github.com/GarvitBanga/JobMatch/internal/limits"
	"github.com/GarvitBanga/JobMatch/internal/match"
	"github.com/GarvitBanga/JobMatch/internal/match/gemini"
	"github.com/GarvitBanga/JobMatch/internal/profile"
	"go.uber.org/zap"
)

const (
	// DefaultMaxLinks caps how many discovered links one scan processes.
	DefaultMaxLinks = 25

	// batchMinJobs is the floor below which batch scoring is not worth
	// the external call; smaller sets go straight to the fallback scorer.
	batchMinJobs = 4
)

type Scanner struct {
	discoverer *discover.Discoverer
	extractor  *extract.Extractor
	matcher    match.Matcher
	fallback   *match.FallbackScorer
	cache      *limits.Cache[*fetch.FetchResult]
	limiter    *limits.RateLimiter
	proxy      *fetch.ProxyClient
	logger     *zap.Logger

	maxLinks     int
	fetchTimeout time.Duration
	concurrency  int
	userAgent    string
}

type Config struct {
	// Matcher scores batches externally. Nil keeps every scan on the
	// fallback scorer.
	Matcher match.Matcher
	// Proxy handles cross-origin fetches. Optional.
	Proxy *fetch.ProxyClient
	// Cache and Limiter are shared across scans. Nil values get defaults.
	Cache   *limits.Cache[*fetch.FetchResult]
	Limiter *limits.RateLimiter

	MaxLinks     int
	FetchTimeout time.Duration
	Concurrency  int
	UserAgent    string
	Logger       *zap.Logger
}

func NewScanner(cfg Config) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := cfg.Cache
	if cache == nil {
		cache = limits.NewCache[*fetch.FetchResult](limits.DefaultCacheTTL, limits.DefaultCacheCapacity)
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = limits.NewRateLimiter(limits.DefaultWindow, limits.DefaultFetchCap, limits.DefaultScoreCap)
	}
	maxLinks := cfg.MaxLinks
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}
	// The link cap can never exceed the scoring batch cap: every job that
	// survives the cap must be able to get a result from one batch call.
	if maxLinks > gemini.MaxBatchJobs {
		maxLinks = gemini.MaxBatchJobs
	}

	return &Scanner{
		discoverer:   discover.New(logger),
		extractor:    extract.New(logger),
		matcher:      cfg.Matcher,
		fallback:     match.NewFallbackScorer(logger),
		cache:        cache,
		limiter:      limiter,
		proxy:        cfg.Proxy,
		logger:       logger,
		maxLinks:     maxLinks,
		fetchTimeout: cfg.FetchTimeout,
		concurrency:  cfg.Concurrency,
		userAgent:    cfg.UserAgent,
	}
}

// Scan runs the full discover, fetch, extract, score sequence for one
// page snapshot. It returns partial results on every failure except a
// page with no links and no hints.
func (s *Scanner) Scan(ctx context.Context, req Request) *Response {
	links := s.collectLinks(req)
	if len(links) == 0 {
		s.logger.Warn("scan found no job links", zap.String("page_url", req.PageURL))
		return &Response{
			Success:          false,
			Matches:          []match.MatchResult{},
			ProcessingMethod: MethodError,
			Message:          "no job links found on the page and no hints were provided",
		}
	}
	if len(links) > s.maxLinks {
		s.logger.Debug("capping discovered links",
			zap.Int("found", len(links)),
			zap.Int("cap", s.maxLinks),
		)
		links = links[:s.maxLinks]
	}

	client, err := fetch.NewClient(fetch.ClientConfig{
		PageURL:     req.PageURL,
		Proxy:       s.proxy,
		Cache:       s.cache,
		Limiter:     s.limiter,
		Timeout:     s.fetchTimeout,
		Concurrency: s.concurrency,
		UserAgent:   s.userAgent,
		Logger:      s.logger,
	})
	if err != nil {
		return &Response{
			Success:          false,
			Matches:          []match.MatchResult{},
			ProcessingMethod: MethodError,
			Message:          fmt.Sprintf("invalid page url: %v", err),
		}
	}

	fetched := client.FetchAll(ctx, req.Identity, links)

	records := make([]*extract.JobRecord, len(links))
	for i, res := range fetched {
		records[i] = s.extractor.Extract(res, links[i])
	}

	scored := s.score(ctx, records, req.Profile, req.Identity)
	if scored.status == outcomeDegraded {
		s.logger.Info("batch scoring degraded to fallback", zap.String("reason", scored.reason))
	}

	matches := filterByThreshold(scored.results, req.Threshold)

	s.logger.Info("scan complete",
		zap.String("page_url", req.PageURL),
		zap.Int("jobs_found", len(records)),
		zap.Int("matches", len(matches)),
		zap.String("processing_method", scored.method),
	)

	return &Response{
		Success:          true,
		Matches:          matches,
		JobsFound:        len(records),
		ProcessingMethod: scored.method,
		Message:          fmt.Sprintf("scored %d jobs via %s, %d at or above threshold", len(records), scored.method, len(matches)),
	}
}

// collectLinks prefers links discovered in the snapshot and falls back to
// the caller's pre-extracted hints.
func (s *Scanner) collectLinks(req Request) []discover.JobLink {
	if req.PageHTML != "" {
		links, err := s.discoverer.Discover(req.PageURL, req.PageHTML)
		if err != nil {
			s.logger.Warn("link discovery failed", zap.Error(err))
		}
		if len(links) > 0 {
			return links
		}
	}
	return req.Hints
}

// score is the single decision point between the batch matcher and the
// fallback scorer. Every degradation path lands on the fallback, which
// cannot fail.
func (s *Scanner) score(ctx context.Context, records []*extract.JobRecord, prof *profile.CandidateProfile, identity string) scoreOutcome {
	reason := ""
	switch {
	case prof == nil:
		reason = "no candidate profile"
	case s.matcher == nil:
		reason = "batch scoring disabled"
	case len(records) < batchMinJobs:
		reason = fmt.Sprintf("only %d jobs, below batching threshold of %d", len(records), batchMinJobs)
	case !s.limiter.Allow(identity, limits.KindScore):
		reason = "scoring quota exhausted"
	}

	if reason == "" {
		results, err := s.matcher.ScoreBatch(ctx, records, prof)
		if err == nil {
			return scoreOutcome{status: outcomeOk, results: results, method: MethodBatchLLM}
		}
		s.logger.Warn("batch scoring failed", zap.Error(err))
		reason = err.Error()
	}

	return scoreOutcome{
		status:  outcomeDegraded,
		results: s.fallback.ScoreAll(records, prof),
		method:  MethodFallback,
		reason:  reason,
	}
}

// filterByThreshold drops matches scoring below threshold*100, keeping
// rank order.
func filterByThreshold(results []match.MatchResult, threshold float64) []match.MatchResult {
	if threshold <= 0 {
		return results
	}
	floor := int(threshold*100 + 0.5)
	kept := make([]match.MatchResult, 0, len(results))
	for _, res := range results {
		if res.Score >= floor {
			kept = append(kept, res)
		}
	}
	return kept
}
