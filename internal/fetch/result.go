package fetch

import (
	"net/url"
	"strings"
	"time"
)

// Status classifies the outcome of a fetch attempt.
type Status string

const (
	StatusOK            Status = "ok"
	StatusHTTPError     Status = "http_error"
	StatusNetworkError  Status = "network_error"
	StatusTimeout       Status = "timeout"
	StatusQuotaExceeded Status = "quota_exceeded"
)

// OriginKind records which path retrieved the content.
type OriginKind string

const (
	SameOrigin  OriginKind = "same_origin"
	CrossOrigin OriginKind = "cross_origin"
)

// FetchResult is the raw outcome of retrieving one job link. Results are
// never mutated after creation; an expired cache entry is superseded by a
// fresh fetch, not updated in place.
type FetchResult struct {
	URL        string
	Status     Status
	HTTPStatus int
	RawHTML    string
	Proxied    *ProxyJob
	FetchedAt  time.Time
	Origin     OriginKind
}

// OK reports whether the fetch produced usable content.
func (r *FetchResult) OK() bool {
	return r != nil && r.Status == StatusOK
}

// NormalizeURL canonicalizes a URL for use as a cache key: lowercased
// scheme and host, fragment dropped, trailing slash trimmed.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}
