package extract

import (
	"strings"
	"testing"

	"github.com/GarvitBanga/JobMatch/internal/discover"
	"github.com/GarvitBanga/JobMatch/internal/fetch"

	"go.uber.org/zap"
)

func TestExtractFailsClosedWithoutContent(t *testing.T) {
	e := New(zap.NewNop())

	link := discover.JobLink{
		URL:          "https://acme.example/jobs/1",
		TitleHint:    "Backend Engineer",
		CompanyHint:  "Acme",
		LocationHint: "Berlin",
	}

	cases := []*fetch.FetchResult{
		nil,
		{URL: link.URL, Status: fetch.StatusNetworkError},
		{URL: link.URL, Status: fetch.StatusTimeout},
		{URL: link.URL, Status: fetch.StatusQuotaExceeded},
	}

	for i, res := range cases {
		record := e.Extract(res, link)
		if record.Method != MethodFallback {
			t.Fatalf("case %d: expected fallback method, got %s", i, record.Method)
		}
		if record.Title != "Backend Engineer" || record.Company != "Acme" || record.Location != "Berlin" {
			t.Fatalf("case %d: expected hints to survive, got %+v", i, record)
		}
		if record.ID == "" || record.URL == "" {
			t.Fatalf("case %d: expected id and url to be set", i)
		}
	}
}

func TestExtractWorkdayMarkup(t *testing.T) {
	html := `
<html><body>
  <h1 data-automation-id="jobPostingHeader">Senior Platform Engineer</h1>
  <div data-automation-id="locations">Dublin, Ireland</div>
  <div data-automation-id="jobPostingDescription">
    Build internal platforms.
    <h3>Requirements</h3>
    <ul><li>5 years of Go</li><li>Kubernetes experience</li></ul>
    <h3>Preferred Qualifications</h3>
    <ul><li>Terraform</li></ul>
  </div>
</body></html>`

	e := New(zap.NewNop())
	record := e.Extract(
		&fetch.FetchResult{Status: fetch.StatusOK, RawHTML: html},
		discover.JobLink{URL: "https://acme.wd1.myworkdayjobs.com/acme/job/Dublin/R123"},
	)

	if record.Method != MethodDirect {
		t.Fatalf("expected direct method, got %s", record.Method)
	}
	if record.Site != SiteWorkday {
		t.Fatalf("expected workday site type, got %s", record.Site)
	}
	if record.Title != "Senior Platform Engineer" {
		t.Fatalf("unexpected title %q", record.Title)
	}
	if record.Location != "Dublin, Ireland" {
		t.Fatalf("unexpected location %q", record.Location)
	}
	if !strings.Contains(record.Description, "Build internal platforms") {
		t.Fatalf("unexpected description %q", record.Description)
	}
	if len(record.Requirements) != 2 || record.Requirements[0] != "5 years of Go" {
		t.Fatalf("unexpected requirements %v", record.Requirements)
	}
	if len(record.Qualifications) != 1 || record.Qualifications[0] != "Terraform" {
		t.Fatalf("unexpected qualifications %v", record.Qualifications)
	}
}

func TestExtractFieldsDegradeIndependently(t *testing.T) {
	// Title present, description missing: the record keeps what it can.
	html := `<html><body><h1>Data Engineer</h1></body></html>`

	e := New(zap.NewNop())
	record := e.Extract(
		&fetch.FetchResult{Status: fetch.StatusOK, RawHTML: html},
		discover.JobLink{URL: "https://acme.example/jobs/2", CompanyHint: "Acme"},
	)

	if record.Method != MethodDirect {
		t.Fatalf("expected direct method, got %s", record.Method)
	}
	if record.Title != "Data Engineer" {
		t.Fatalf("unexpected title %q", record.Title)
	}
	if record.Description != "" {
		t.Fatalf("expected empty description, got %q", record.Description)
	}
	if record.Company != "Acme" {
		t.Fatalf("expected company hint to survive, got %q", record.Company)
	}
}

func TestExtractGenericCapsDescription(t *testing.T) {
	long := strings.Repeat("responsibilities and duties ", 200)
	html := `<html><body><h1>Engineer</h1><div class="job-description">` + long + `</div></body></html>`

	e := New(zap.NewNop())
	record := e.Extract(
		&fetch.FetchResult{Status: fetch.StatusOK, RawHTML: html},
		discover.JobLink{URL: "https://acme.example/jobs/3"},
	)

	if record.Site != SiteGeneric {
		t.Fatalf("expected generic site type, got %s", record.Site)
	}
	if got := len([]rune(record.Description)); got > maxDescriptionLen {
		t.Fatalf("expected description capped at %d runes, got %d", maxDescriptionLen, got)
	}
}

func TestExtractFromProxyPayload(t *testing.T) {
	e := New(zap.NewNop())
	record := e.Extract(
		&fetch.FetchResult{
			Status: fetch.StatusOK,
			Proxied: &fetch.ProxyJob{
				Title:          "SDE II",
				Company:        "Amazon",
				Location:       "Seattle, WA",
				Description:    "Distributed systems work.",
				Requirements:   []string{"3+ years of software development"},
				Qualifications: []string{"AWS experience"},
				SiteType:       "amazon",
			},
		},
		discover.JobLink{URL: "https://www.amazon.jobs/en/jobs/123", TitleHint: "old hint"},
	)

	if record.Method != MethodProxied {
		t.Fatalf("expected proxied method, got %s", record.Method)
	}
	if record.Site != SiteAmazon {
		t.Fatalf("expected amazon site type, got %s", record.Site)
	}
	if record.Title != "SDE II" || record.Company != "Amazon" {
		t.Fatalf("expected proxy payload fields, got %+v", record)
	}
	if len(record.Requirements) != 1 || len(record.Qualifications) != 1 {
		t.Fatalf("expected requirement lists from payload, got %+v", record)
	}
}

func TestExtractNeverPanicsOnGarbage(t *testing.T) {
	e := New(zap.NewNop())

	inputs := []string{
		"",
		"<<<<not html at all",
		"<html><body><div class='job'>" + strings.Repeat("<span>", 50),
	}

	for i, html := range inputs {
		record := e.Extract(
			&fetch.FetchResult{Status: fetch.StatusOK, RawHTML: html},
			discover.JobLink{URL: "https://acme.example/jobs/4", TitleHint: "hint"},
		)
		if record == nil {
			t.Fatalf("case %d: expected a record", i)
		}
	}
}
