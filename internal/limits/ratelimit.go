package limits

import (
	"sync"
	"time"
)

// Kind distinguishes the two budgeted operations.
type Kind string

const (
	// KindFetch covers page and posting retrievals.
	KindFetch Kind = "fetch"
	// KindScore covers external scoring calls, budgeted separately since
	// scoring is the costlier operation.
	KindScore Kind = "score"
)

const (
	// DefaultWindow is the rolling span over which budgets apply.
	DefaultWindow = 24 * time.Hour
	// DefaultFetchCap is the per-identity fetch budget per window.
	DefaultFetchCap = 50
	// DefaultScoreCap is the per-identity scoring budget per window.
	DefaultScoreCap = 10
)

// RateLimiter enforces per-identity rolling-window budgets. Identity is an
// opaque caller-supplied key; the limiter attaches no meaning to it.
type RateLimiter struct {
	span time.Duration
	caps map[Kind]int

	mu         sync.Mutex
	identities map[string]*budget

	now func() time.Time
}

// budget holds the counters for one identity. Each budget carries its own
// lock so that concurrent checks for distinct identities never contend.
type budget struct {
	mu       sync.Mutex
	counters map[Kind]*window
}

// NewRateLimiter creates a limiter with the given window span and caps.
// Non-positive arguments fall back to the defaults.
func NewRateLimiter(span time.Duration, fetchCap, scoreCap int) *RateLimiter {
	if span <= 0 {
		span = DefaultWindow
	}
	if fetchCap <= 0 {
		fetchCap = DefaultFetchCap
	}
	if scoreCap <= 0 {
		scoreCap = DefaultScoreCap
	}
	return &RateLimiter{
		span: span,
		caps: map[Kind]int{
			KindFetch: fetchCap,
			KindScore: scoreCap,
		},
		identities: make(map[string]*budget),
		now:        time.Now,
	}
}

// Allow reports whether identity may perform one more operation of the
// given kind, consuming budget as a side effect when it may. Entries older
// than the window are pruned on every check; over-cap calls are not
// counted. A rejection is normal control flow, not an error.
func (l *RateLimiter) Allow(identity string, kind Kind) bool {
	cap, ok := l.caps[kind]
	if !ok {
		return false
	}

	b := l.budgetFor(identity)

	b.mu.Lock()
	defer b.mu.Unlock()

	w := b.counters[kind]
	if w == nil {
		w = &window{}
		b.counters[kind] = w
	}

	now := l.now()
	w.prune(now, l.span)

	if w.count() >= cap {
		return false
	}

	w.add(now)
	return true
}

// Remaining reports how much budget identity has left for kind. Used for
// reporting only; it does not consume budget.
func (l *RateLimiter) Remaining(identity string, kind Kind) int {
	cap, ok := l.caps[kind]
	if !ok {
		return 0
	}

	b := l.budgetFor(identity)

	b.mu.Lock()
	defer b.mu.Unlock()

	w := b.counters[kind]
	if w == nil {
		return cap
	}

	w.prune(l.now(), l.span)
	left := cap - w.count()
	if left < 0 {
		left = 0
	}
	return left
}

func (l *RateLimiter) budgetFor(identity string) *budget {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.identities[identity]
	if !ok {
		b = &budget{counters: make(map[Kind]*window)}
		l.identities[identity] = b
	}
	return b
}
