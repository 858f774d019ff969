package discover

// vendorLinkSet holds the anchor selectors for one hosted ATS vendor,
// matched against the career page's own host before the generic set is
// tried. Selectors are ordered by reliability.
type vendorLinkSet struct {
	name          string
	hostFragments []string
	linkSelectors []string
}

// Vendor sets come first in dispatch; the generic set is the catch-all.
var vendorLinkSets = []vendorLinkSet{
	{
		name:          "workday",
		hostFragments: []string{"myworkdayjobs.com", "workday"},
		linkSelectors: []string{
			`a[data-automation-id="jobTitle"]`,
			`li[data-automation-id="listItem"] a`,
			`a[href*="/job/"]`,
		},
	},
	{
		name:          "greenhouse",
		hostFragments: []string{"greenhouse.io", "grnh.se"},
		linkSelectors: []string{
			`.opening a`,
			`div.opening a[href*="/jobs/"]`,
			`a[href*="/jobs/"]`,
		},
	},
	{
		name:          "lever",
		hostFragments: []string{"jobs.lever.co", "lever.co"},
		linkSelectors: []string{
			`.posting .posting-title`,
			`a.posting-title`,
			`.posting a[href*="lever.co"]`,
		},
	},
	{
		name:          "bamboohr",
		hostFragments: []string{"bamboohr.com"},
		linkSelectors: []string{
			`.BambooHR-ATS-Jobs-Item a`,
			`ul.BambooHR-ATS-Department-List a`,
			`a[href*="/careers/"]`,
		},
	},
}

// genericLinkSelectors cover career pages without a recognized vendor:
// href patterns first, then common listing class names.
var genericLinkSelectors = []string{
	`a[href*="/job/"]`,
	`a[href*="/jobs/"]`,
	`a[href*="/position/"]`,
	`a[href*="/positions/"]`,
	`a[href*="/career/"]`,
	`a[href*="/careers/"]`,
	`a[href*="/opening/"]`,
	`a[href*="/openings/"]`,
	`a.job-link`,
	`a.job-title`,
	`.job-listing a`,
	`.job-card a`,
	`li.job a`,
}

// cardSelector finds the nearest ancestor "card" container that carries a
// link's inline metadata.
const cardSelector = `li, article, tr, div[class*="job"], div[class*="card"], div[class*="opening"], div[class*="posting"], section[class*="job"]`

// Inner hint selectors, in priority order, applied within the card.
var (
	titleHintSelectors = []string{
		`.job-title`, `.posting-title`, `[data-automation-id="jobTitle"]`,
		`h1`, `h2`, `h3`, `h4`, `[class*="title"]`,
	}
	companyHintSelectors = []string{
		`.company`, `.company-name`, `.employer`,
		`[class*="company"]`, `[class*="employer"]`,
	}
	locationHintSelectors = []string{
		`.location`, `.job-location`, `.posting-categories .sort-by-location`,
		`[data-automation-id="locations"]`, `[class*="location"]`, `[class*="city"]`,
	}
)
