package pipeline

import (
	"github.com/GarvitBanga/JobMatch/internal/discover"
	"github.com/GarvitBanga/JobMatch/internal/match"
	"github.com/GarvitBanga/JobMatch/internal/profile"
)

// ProcessingMethod reports which scoring path produced the matches.
const (
	MethodBatchLLM = "batch_llm"
	MethodFallback = "fallback"
	MethodError    = "error"
)

// Request is one scan of one career page.
type Request struct {
	// PageURL is the career page the snapshot was taken from. It decides
	// same-origin versus proxied routing for every discovered link.
	PageURL string
	// PageHTML is the DOM snapshot to discover links in. Optional when
	// Hints are supplied.
	PageHTML string
	// Hints are pre-extracted job links, used as-is when PageHTML is empty
	// or yields nothing.
	Hints []discover.JobLink
	// Profile is the candidate to score against. Nil disables batch
	// scoring; the fallback scorer still runs.
	Profile *profile.CandidateProfile
	// Threshold is a fraction in [0, 1]; matches scoring below
	// threshold*100 are dropped from the response.
	Threshold float64
	// Identity keys the rate-limiter budgets. Opaque to the pipeline.
	Identity string
}

// Response is the scan outcome returned to the caller. Success is false
// only when the page yielded no links and no hints; every other failure
// degrades to partial results with an explanatory message.
type Response struct {
	Success          bool                `json:"success"`
	Matches          []match.MatchResult `json:"matches"`
	JobsFound        int                 `json:"jobs_found"`
	ProcessingMethod string              `json:"processing_method"`
	Message          string              `json:"message"`
}

// outcome classifies how a pipeline stage ended. Each stage maps its own
// failures to one of these, and Scan holds the single decision point that
// picks the next path.
type outcome int

const (
	outcomeOk outcome = iota
	outcomeDegraded
	outcomeFailed
)

// scoreOutcome is the scoring stage verdict. Degraded means the batch
// call was skipped or failed and the fallback scorer produced the
// results instead.
type scoreOutcome struct {
	status  outcome
	results []match.MatchResult
	method  string
	reason  string
}
