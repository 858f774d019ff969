package limits

import "time"

// window tracks event timestamps over a rolling span. Both the cache and
// the rate limiter share this bookkeeping primitive. It is not safe for
// concurrent use; owners serialize access per key.
type window struct {
	stamps []time.Time
}

// prune drops timestamps older than span relative to now.
func (w *window) prune(now time.Time, span time.Duration) {
	cutoff := now.Add(-span)
	keep := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	w.stamps = keep
}

func (w *window) add(now time.Time) {
	w.stamps = append(w.stamps, now)
}

func (w *window) count() int {
	return len(w.stamps)
}
