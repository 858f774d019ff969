package discover

// JobLink is a discovered candidate job posting: an absolute URL plus
// best-effort inline metadata pulled from the surrounding markup. Links
// are immutable once created.
type JobLink struct {
	URL            string `json:"url"`
	TitleHint      string `json:"title_hint,omitempty"`
	CompanyHint    string `json:"company_hint,omitempty"`
	LocationHint   string `json:"location_hint,omitempty"`
	SourceSelector string `json:"source_selector,omitempty"`
}
