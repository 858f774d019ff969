package extract

import (
	"net/url"
	"strings"

	"github.com/GarvitBanga/JobMatch/internal/discover"
	"github.com/GarvitBanga/JobMatch/internal/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Extractor maps fetch results onto normalized job records. It fails
// closed: without usable content it builds a hint-only record, and
// malformed HTML degrades to empty fields rather than an error.
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract builds one JobRecord from a fetch result and the link it came
// from. It never errors; the extraction method records how much content
// survived.
func (e *Extractor) Extract(res *fetch.FetchResult, link discover.JobLink) *JobRecord {
	record := &JobRecord{
		ID:       uuid.NewString(),
		URL:      link.URL,
		Title:    link.TitleHint,
		Company:  link.CompanyHint,
		Location: link.LocationHint,
		Method:   MethodFallback,
		Site:     siteForURL(link.URL),
	}

	if !res.OK() {
		e.logger.Debug("extraction degraded to hints",
			zap.String("url", link.URL),
			zap.String("site_type", string(record.Site)),
		)
		return record
	}

	if res.Proxied != nil {
		e.fillFromProxy(record, res.Proxied)
		return record
	}

	e.fillFromHTML(record, res.RawHTML)
	return record
}

func (e *Extractor) fillFromProxy(record *JobRecord, job *fetch.ProxyJob) {
	record.Method = MethodProxied
	if site := parseSiteType(job.SiteType); site != "" {
		record.Site = site
	}

	if job.Title != "" {
		record.Title = job.Title
	}
	if job.Company != "" {
		record.Company = job.Company
	}
	if job.Location != "" {
		record.Location = job.Location
	}
	record.Description = capText(job.Description, maxDescriptionLen)
	record.Requirements = job.Requirements
	record.Qualifications = job.Qualifications
}

func (e *Extractor) fillFromHTML(record *JobRecord, html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparsable HTML leaves the hint-only record intact.
		e.logger.Debug("html parse failed", zap.String("url", record.URL), zap.Error(err))
		return
	}

	record.Method = MethodDirect

	p := parserForHost(hostOf(record.URL))
	record.Site = p.site

	parsed := p.parse(doc)

	if parsed.Title != "" {
		record.Title = parsed.Title
	}
	if parsed.Location != "" {
		record.Location = parsed.Location
	}
	record.Description = capText(parsed.Description, maxDescriptionLen)
	record.Requirements = parsed.Requirements
	record.Qualifications = parsed.Qualifications

	e.logger.Debug("extraction complete",
		zap.String("url", record.URL),
		zap.String("site_type", string(record.Site)),
		zap.Int("description_length", len(record.Description)),
	)
}

// siteForURL classifies a URL by host without parsing any content.
func siteForURL(raw string) SiteType {
	return parserForHost(hostOf(raw)).site
}

func parseSiteType(s string) SiteType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "workday":
		return SiteWorkday
	case "greenhouse":
		return SiteGreenhouse
	case "lever":
		return SiteLever
	case "bamboohr":
		return SiteBambooHR
	case "amazon":
		return SiteAmazon
	case "generic":
		return SiteGeneric
	default:
		return ""
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
