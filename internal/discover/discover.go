package discover

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Discoverer finds candidate job-posting links in a career page snapshot.
// It performs no network I/O; given the same snapshot it produces the same
// links in the same order.
type Discoverer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{logger: logger}
}

var whitespace = regexp.MustCompile(`\s+`)

// Discover parses the snapshot HTML and returns a deduplicated, ordered
// list of job links. Vendor-specific selector sets are applied when the
// page host matches a known vendor; the generic set applies otherwise.
// An empty result means no selector matched; the caller decides whether
// to fall back to whole-page extraction.
func (d *Discoverer) Discover(pageURL, html string) ([]JobLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page snapshot: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url %q: %w", pageURL, err)
	}

	selectors := genericLinkSelectors
	vendor := "generic"
	if set := vendorForHost(base.Hostname()); set != nil {
		selectors = set.linkSelectors
		vendor = set.name
	}

	pageTitle := cleanText(doc.Find("title").First().Text())

	seen := make(map[string]struct{})
	var links []JobLink

	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				// Some vendors mark the title element instead of the anchor.
				if nested := sel.Find("a[href]").First(); nested.Length() > 0 {
					href, _ = nested.Attr("href")
				}
			}

			abs := absoluteURL(base, href)
			if abs == "" {
				return
			}
			if _, dup := seen[abs]; dup {
				return
			}
			seen[abs] = struct{}{}

			links = append(links, d.buildLink(abs, selector, sel, base, pageTitle))
		})
	}

	d.logger.Debug("link discovery finished",
		zap.String("vendor", vendor),
		zap.String("page", pageURL),
		zap.Int("links", len(links)),
	)

	return links, nil
}

// buildLink extracts best-effort hints from the nearest card container,
// falling back to the anchor's own text and the page title.
func (d *Discoverer) buildLink(abs, selector string, sel *goquery.Selection, base *url.URL, pageTitle string) JobLink {
	link := JobLink{URL: abs, SourceSelector: selector}

	card := sel.Closest(cardSelector)
	scope := sel
	if card.Length() > 0 {
		scope = card
	}

	link.TitleHint = firstMatchText(scope, titleHintSelectors)
	if link.TitleHint == "" {
		link.TitleHint = cleanText(sel.Text())
	}

	link.CompanyHint = firstMatchText(scope, companyHintSelectors)
	if link.CompanyHint == "" {
		link.CompanyHint = companyFromPageTitle(pageTitle, base)
	}

	link.LocationHint = firstMatchText(scope, locationHintSelectors)

	return link
}

func vendorForHost(host string) *vendorLinkSet {
	host = strings.ToLower(host)
	for i := range vendorLinkSets {
		for _, fragment := range vendorLinkSets[i].hostFragments {
			if strings.Contains(host, fragment) {
				return &vendorLinkSets[i]
			}
		}
	}
	return nil
}

func firstMatchText(scope *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := cleanText(scope.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// absoluteURL resolves href against the page URL, dropping fragments and
// non-HTTP schemes.
func absoluteURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""

	return abs.String()
}

// companyFromPageTitle guesses the company from "Jobs - Acme" style page
// titles, falling back to the registrable part of the host.
func companyFromPageTitle(pageTitle string, base *url.URL) string {
	for _, sep := range []string{" - ", " | ", " – "} {
		if idx := strings.Index(pageTitle, sep); idx > 0 {
			left := strings.TrimSpace(pageTitle[:idx])
			if !looksLikeListingLabel(left) {
				return left
			}
			return strings.TrimSpace(pageTitle[idx+len(sep):])
		}
	}
	if pageTitle != "" && !looksLikeListingLabel(pageTitle) {
		return pageTitle
	}

	host := strings.TrimPrefix(strings.ToLower(base.Hostname()), "www.")
	if idx := strings.Index(host, "."); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return ""
	}
	return strings.ToUpper(host[:1]) + host[1:]
}

func looksLikeListingLabel(s string) bool {
	lower := strings.ToLower(s)
	for _, label := range []string{"jobs", "careers", "openings", "open positions", "vacancies", "join us"} {
		if strings.Contains(lower, label) {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
