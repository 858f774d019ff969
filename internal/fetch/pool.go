package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/GarvitBanga/JobMatch/internal/discover"

	"go.uber.org/zap"
)

// FetchAll retrieves a batch of links with bounded parallelism, returning
// one result per link in input order. At most the configured concurrency
// is in flight at any time. When the context expires, links that never
// got a worker yield timeout results so the caller can degrade them
// instead of discarding the scan.
func (c *Client) FetchAll(ctx context.Context, identity string, links []discover.JobLink) []*FetchResult {
	results := make([]*FetchResult, len(links))
	sem := make(chan struct{}, c.concurrency)

	var wg sync.WaitGroup
	for i, link := range links {
		if ctx.Err() != nil {
			results[i] = &FetchResult{
				URL:       link.URL,
				Status:    StatusTimeout,
				FetchedAt: time.Now(),
				Origin:    c.originKind(link.URL),
			}
			continue
		}

		select {
		case <-ctx.Done():
			results[i] = &FetchResult{
				URL:       link.URL,
				Status:    StatusTimeout,
				FetchedAt: time.Now(),
				Origin:    c.originKind(link.URL),
			}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, link discover.JobLink) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = c.Fetch(ctx, identity, link)
		}(i, link)
	}
	wg.Wait()

	fetched := 0
	for _, r := range results {
		if r.OK() {
			fetched++
		}
	}
	c.logger.Debug("fetch wave complete",
		zap.Int("links", len(links)),
		zap.Int("fetched", fetched),
	)

	return results
}
