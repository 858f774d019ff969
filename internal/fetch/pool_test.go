package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GarvitBanga/JobMatch/internal/discover"
)

func TestFetchAllBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.Write([]byte("<html>job</html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{Concurrency: 2})

	links := make([]discover.JobLink, 8)
	for i := range links {
		links[i] = discover.JobLink{URL: fmt.Sprintf("%s/jobs/%d", server.URL, i)}
	}

	results := client.FetchAll(context.Background(), "user", links)

	if len(results) != len(links) {
		t.Fatalf("expected %d results, got %d", len(links), len(results))
	}
	for i, r := range results {
		if r == nil || r.Status != StatusOK {
			t.Fatalf("result %d not ok: %+v", i, r)
		}
		if r.URL != links[i].URL {
			t.Fatalf("result %d out of order: got %q want %q", i, r.URL, links[i].URL)
		}
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("expected at most 2 in-flight fetches, observed %d", p)
	}
}

func TestFetchAllExpiredContextYieldsTimeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>job</html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	links := []discover.JobLink{
		{URL: server.URL + "/jobs/1"},
		{URL: server.URL + "/jobs/2"},
	}

	results := client.FetchAll(ctx, "user", links)
	if len(results) != 2 {
		t.Fatalf("expected partial results for every link, got %d", len(results))
	}
	for i, r := range results {
		if r.Status != StatusTimeout {
			t.Fatalf("result %d: expected timeout after cancellation, got %s", i, r.Status)
		}
	}
}
