package extract

// SiteType identifies the vendor whose markup conventions were assumed
// during extraction. Recorded for observability regardless of success.
type SiteType string

const (
	SiteGeneric    SiteType = "generic"
	SiteWorkday    SiteType = "workday"
	SiteGreenhouse SiteType = "greenhouse"
	SiteLever      SiteType = "lever"
	SiteBambooHR   SiteType = "bamboohr"
	SiteAmazon     SiteType = "amazon"
)

// Method records which path produced the record's content.
type Method string

const (
	// MethodDirect means the posting HTML was fetched and parsed locally.
	MethodDirect Method = "direct"
	// MethodProxied means the proxied fetch service extracted the fields.
	MethodProxied Method = "proxied"
	// MethodFallback means only the discovery hints were available.
	MethodFallback Method = "fallback"
)

// JobRecord is the normalized, site-independent representation of one
// posting. Method and Site are diagnostic: set once at creation and never
// mutated afterward.
type JobRecord struct {
	ID             string   `json:"id"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements,omitempty"`
	Qualifications []string `json:"qualifications,omitempty"`
	Method         Method   `json:"extraction_method"`
	Site           SiteType `json:"site_type"`
}
