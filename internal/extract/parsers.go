package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxDescriptionLen caps extracted description text to bound the payload
// sent downstream to the scorer.
const maxDescriptionLen = 2000

const maxListItems = 12

// fields is the per-parser output. Fields are extracted independently; a
// parser may find a title but no description.
type fields struct {
	Title          string
	Location       string
	Description    string
	Requirements   []string
	Qualifications []string
}

// parser binds a site type to a host predicate and a pure HTML→fields
// function. Parsers never error; missing content degrades to empty fields.
type parser struct {
	site          SiteType
	hostFragments []string
	parse         func(doc *goquery.Document) fields
}

// parserTable is iterated in fixed priority order; the generic parser is
// the catch-all and must stay last. New vendors are supported by adding a
// row, not by touching dispatch.
var parserTable = []parser{
	{
		site:          SiteWorkday,
		hostFragments: []string{"myworkdayjobs.com", "workday"},
		parse: func(doc *goquery.Document) fields {
			return fields{
				Title: firstText(doc,
					`[data-automation-id="jobPostingHeader"]`,
					`h1[data-automation-id]`,
					`h1.gwt-Label`,
					`h1`,
				),
				Location: firstText(doc,
					`[data-automation-id="locations"]`,
					`[data-automation-id="jobPostingHeaderSubtitle"]`,
				),
				Description: firstText(doc,
					`[data-automation-id="jobPostingDescription"]`,
					`[data-automation-id="jobPostingDescriptionText"]`,
					`.gwt-RichTextArea`,
				),
				Requirements:   sectionItems(doc, requirementsHeading),
				Qualifications: sectionItems(doc, qualificationsHeading),
			}
		},
	},
	{
		site:          SiteGreenhouse,
		hostFragments: []string{"greenhouse.io", "grnh.se"},
		parse: func(doc *goquery.Document) fields {
			return fields{
				Title:          firstText(doc, `.app-title`, `.posting-headline h2`, `h1`),
				Location:       firstText(doc, `.location`, `.app-location`),
				Description:    firstText(doc, `#content`, `.posting-content`, `.app-content`),
				Requirements:   sectionItems(doc, requirementsHeading),
				Qualifications: sectionItems(doc, qualificationsHeading),
			}
		},
	},
	{
		site:          SiteLever,
		hostFragments: []string{"jobs.lever.co", "lever.co"},
		parse: func(doc *goquery.Document) fields {
			return fields{
				Title:          firstText(doc, `.posting-headline h2`, `.posting-title`, `h2`),
				Location:       firstText(doc, `.posting-categories .location`, `.sort-by-location`),
				Description:    firstText(doc, `.posting-content`, `.section-wrapper .section`, `.content`),
				Requirements:   sectionItems(doc, requirementsHeading),
				Qualifications: sectionItems(doc, qualificationsHeading),
			}
		},
	},
	{
		site:          SiteBambooHR,
		hostFragments: []string{"bamboohr.com"},
		parse: func(doc *goquery.Document) fields {
			return fields{
				Title:          firstText(doc, `.BambooHR-ATS-Jobs-Item h2`, `#jobTitle`, `h1`, `h2`),
				Location:       firstText(doc, `#location`, `.location`, `[class*="location"]`),
				Description:    firstText(doc, `.BambooHR-ATS-Description`, `#jobDescription`, `.description`),
				Requirements:   sectionItems(doc, requirementsHeading),
				Qualifications: sectionItems(doc, qualificationsHeading),
			}
		},
	},
	{
		site:          SiteAmazon,
		hostFragments: []string{"amazon.jobs", "amazon."},
		parse: func(doc *goquery.Document) fields {
			return fields{
				Title:          firstText(doc, `h1.title`, `.job-detail .title`, `h1`),
				Location:       firstText(doc, `.location-and-id`, `.location`, `[class*="location"]`),
				Description:    firstText(doc, `#job-description`, `.job-detail-description`, `.description`, `.content`),
				Requirements:   sectionItems(doc, requirementsHeading),
				Qualifications: sectionItems(doc, qualificationsHeading),
			}
		},
	},
	{
		site:          SiteGeneric,
		hostFragments: nil, // catch-all
		parse: func(doc *goquery.Document) fields {
			return fields{
				Title:    firstText(doc, `h1`, `.job-title`, `.position-title`, `.posting-headline`, `h2`),
				Location: firstText(doc, `.job-location`, `.location`, `[class*="location"]`),
				Description: firstText(doc,
					`.job-description`,
					`.description`,
					`.job-details`,
					`main`,
					`article`,
					`[class*="description"]`,
				),
				Requirements:   sectionItems(doc, requirementsHeading),
				Qualifications: sectionItems(doc, qualificationsHeading),
			}
		},
	},
}

var (
	requirementsHeading   = regexp.MustCompile(`(?i)\b(requirements?|what you.ll need|must have)\b`)
	qualificationsHeading = regexp.MustCompile(`(?i)\b(qualifications?|nice to have|preferred)\b`)
	spaceRun              = regexp.MustCompile(`[ \t]+`)
	blankRun              = regexp.MustCompile(`\n{3,}`)
)

// parserForHost selects the first parser whose host fragments match.
func parserForHost(host string) parser {
	host = strings.ToLower(host)
	for _, p := range parserTable {
		for _, fragment := range p.hostFragments {
			if strings.Contains(host, fragment) {
				return p
			}
		}
	}
	return parserTable[len(parserTable)-1]
}

// firstText returns the text of the first selector yielding non-empty
// content. Each field cascades independently.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if text := normalizeText(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// sectionItems collects list items under the first heading matching the
// given pattern.
func sectionItems(doc *goquery.Document, heading *regexp.Regexp) []string {
	var items []string

	doc.Find("h1, h2, h3, h4, h5, strong, b").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !heading.MatchString(sel.Text()) {
			return true
		}

		list := sel.NextFiltered("ul, ol")
		if list.Length() == 0 {
			list = sel.Parent().NextFiltered("ul, ol")
		}
		if list.Length() == 0 {
			list = sel.NextAll().Filter("ul, ol").First()
		}

		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			if len(items) >= maxListItems {
				return
			}
			if text := normalizeText(li.Text()); text != "" {
				items = append(items, text)
			}
		})

		return false
	})

	return items
}

func normalizeText(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func capText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
