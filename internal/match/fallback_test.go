package match

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/GarvitBanga/JobMatch/internal/extract"
	"github.com/GarvitBanga/JobMatch/internal/profile"

	"go.uber.org/zap"
)

func testJobs(n int) []*extract.JobRecord {
	jobs := make([]*extract.JobRecord, n)
	for i := range jobs {
		jobs[i] = &extract.JobRecord{
			ID:          fmt.Sprintf("job-%d", i),
			URL:         fmt.Sprintf("https://acme.example/jobs/%d", i),
			Title:       "Backend Engineer",
			Company:     "Acme",
			Description: "We need Go, Docker and Kubernetes experience.",
			Method:      extract.MethodDirect,
			Site:        extract.SiteGeneric,
		}
	}
	return jobs
}

func TestFallbackScoreStaysInBoundsWithProfile(t *testing.T) {
	s := NewFallbackScorer(zap.NewNop())
	prof := &profile.CandidateProfile{Skills: []string{"Go", "Docker", "Kubernetes", "Terraform", "AWS", "Python"}}

	results := s.ScoreAll(testJobs(30), prof)

	for _, r := range results {
		if r.Score < 65 || r.Score > 95 {
			t.Fatalf("score %d outside [65, 95] at rank %d", r.Score, r.Rank)
		}
	}
}

func TestFallbackIsPure(t *testing.T) {
	s := NewFallbackScorer(zap.NewNop())
	prof := &profile.CandidateProfile{Skills: []string{"Go", "Docker"}}
	jobs := testJobs(5)

	first := s.ScoreAll(jobs, prof)
	second := s.ScoreAll(jobs, prof)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical inputs")
	}
}

func TestFallbackSkillOverlap(t *testing.T) {
	s := NewFallbackScorer(zap.NewNop())
	prof := &profile.CandidateProfile{Skills: []string{"Go", "Docker", "COBOL"}}

	result := s.ScoreOne(testJobs(1)[0], prof, 0)

	if len(result.MatchingSkills) != 2 {
		t.Fatalf("expected Go and Docker to match, got %v", result.MatchingSkills)
	}
	if !containsFold(result.MissingSkills, "kubernetes") {
		t.Fatalf("expected kubernetes to be reported missing, got %v", result.MissingSkills)
	}
	if result.Rationale == "" {
		t.Fatalf("expected a rationale")
	}
	if result.Confidence != ConfidenceMedium {
		t.Fatalf("expected medium confidence for an extracted job, got %s", result.Confidence)
	}
}

func TestFallbackSkillMatchIsCaseInsensitive(t *testing.T) {
	s := NewFallbackScorer(zap.NewNop())

	job := &extract.JobRecord{
		ID:          "job-0",
		Title:       "PYTHON Developer",
		Description: "KUBERNETES a plus",
		Method:      extract.MethodDirect,
	}

	result := s.ScoreOne(job, &profile.CandidateProfile{Skills: []string{"python", "Kubernetes"}}, 0)
	if len(result.MatchingSkills) != 2 {
		t.Fatalf("expected case-insensitive matches, got %v", result.MatchingSkills)
	}
}

func TestFallbackWithoutProfileDecreasesByPosition(t *testing.T) {
	s := NewFallbackScorer(zap.NewNop())

	results := s.ScoreAll(testJobs(4), nil)

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("expected non-increasing scores, got %d then %d", results[i-1].Score, results[i].Score)
		}
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, r.Rank)
		}
		if r.Confidence != ConfidenceLow {
			t.Fatalf("expected low confidence without a profile")
		}
	}
}

func TestFallbackHintOnlyJobsGetLowConfidence(t *testing.T) {
	s := NewFallbackScorer(zap.NewNop())

	job := &extract.JobRecord{ID: "job-0", Title: "Engineer", Method: extract.MethodFallback}
	result := s.ScoreOne(job, &profile.CandidateProfile{Skills: []string{"Go"}}, 0)

	if result.Confidence != ConfidenceLow {
		t.Fatalf("expected low confidence for hint-only record, got %s", result.Confidence)
	}
}
