package match

import (
	"context"

	"github.com/GarvitBanga/JobMatch/internal/extract"
	"github.com/GarvitBanga/JobMatch/internal/profile"
)

// Confidence grades how much to trust a score.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// MatchResult is the final per-job verdict returned to the caller.
// Exactly one exists per scored JobRecord; ranks within one batch form a
// strict total order with no duplicates.
type MatchResult struct {
	JobID          string     `json:"job_id"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`
	Score          int        `json:"score"`
	MatchingSkills []string   `json:"matching_skills"`
	MissingSkills  []string   `json:"missing_skills"`
	Rationale      string     `json:"rationale"`
	Rank           int        `json:"rank"`
	Confidence     Confidence `json:"confidence"`
}

// Matcher scores a batch of jobs against a candidate profile in one
// external call.
type Matcher interface {
	ScoreBatch(ctx context.Context, jobs []*extract.JobRecord, prof *profile.CandidateProfile) ([]MatchResult, error)
}

// ConfidenceForScore maps a 0–100 score onto a confidence band, used when
// the scorer does not report one itself.
func ConfidenceForScore(score int) Confidence {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
