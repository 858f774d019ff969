package gemini

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/GarvitBanga/JobMatch/internal/extract"
	"github.com/GarvitBanga/JobMatch/internal/match"
	"github.com/GarvitBanga/JobMatch/internal/profile"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func batchJobs(n int) []*extract.JobRecord {
	jobs := make([]*extract.JobRecord, n)
	for i := range jobs {
		jobs[i] = &extract.JobRecord{
			ID:          "job-" + string(rune('a'+i)),
			URL:         "https://careers.example.com/jobs/" + string(rune('a'+i)),
			Title:       "Engineer " + string(rune('A'+i)),
			Company:     "Example",
			Description: "Build distributed systems in Go.",
		}
	}
	return jobs
}

func testProfile() *profile.CandidateProfile {
	return &profile.CandidateProfile{
		Skills:  []string{"Go", "Docker"},
		Summary: "Backend engineer.",
	}
}

func TestScoreBatchRanksByScore(t *testing.T) {
	stub := &stubGenerator{response: `{"results": [
		{"index": 0, "score": 70, "matching_skills": ["Go"], "missing_skills": [], "rationale": "Fine."},
		{"index": 1, "score": 92, "matching_skills": ["Go", "Docker"], "missing_skills": [], "rationale": "Strong."},
		{"index": 2, "score": 55, "matching_skills": [], "missing_skills": ["Rust"], "rationale": "Weak."}
	]}`}
	matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

	results, err := matcher.ScoreBatch(context.Background(), batchJobs(3), testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Score != 92 || results[0].JobID != "job-b" {
		t.Fatalf("expected job-b ranked first with score 92, got %+v", results[0])
	}
	for i, res := range results {
		if res.Rank != i+1 {
			t.Fatalf("expected rank %d at position %d, got %d", i+1, i, res.Rank)
		}
	}
	if results[0].Confidence != match.ConfidenceHigh {
		t.Fatalf("expected high confidence for score 92, got %s", results[0].Confidence)
	}
	if results[2].Confidence != match.ConfidenceLow {
		t.Fatalf("expected low confidence for score 55, got %s", results[2].Confidence)
	}
}

func TestScoreBatchPromptContents(t *testing.T) {
	stub := &stubGenerator{response: `{"results": [{"index": 0, "score": 80, "matching_skills": [], "missing_skills": [], "rationale": "ok"}]}`}
	matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

	jobs := batchJobs(1)
	jobs[0].Title = "Senior Platform Engineer"

	if _, err := matcher.ScoreBatch(context.Background(), jobs, testProfile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Senior Platform Engineer", "Backend engineer.", `"index": 0`, "1 total"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected prompt to contain %q, got: %s", want, stub.lastPrompt)
		}
	}
}

func TestScoreBatchStripsMarkdownFences(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"results\": [{\"index\": 0, \"score\": 75, \"matching_skills\": [], \"missing_skills\": [], \"rationale\": \"ok\"}]}\n```"}
	matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

	results, err := matcher.ScoreBatch(context.Background(), batchJobs(1), testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Score != 75 {
		t.Fatalf("expected score 75, got %d", results[0].Score)
	}
}

func TestScoreBatchRejectsMalformedResponses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
	}{
		{"not json", "I cannot help with that."},
		{"missing result", `{"results": [{"index": 0, "score": 80, "rationale": "ok"}]}`},
		{"duplicate index", `{"results": [
			{"index": 0, "score": 80, "rationale": "ok"},
			{"index": 0, "score": 70, "rationale": "dup"}
		]}`},
		{"out of range index", `{"results": [
			{"index": 0, "score": 80, "rationale": "ok"},
			{"index": 5, "score": 70, "rationale": "bad"}
		]}`},
		{"score too high", `{"results": [
			{"index": 0, "score": 120, "rationale": "bad"},
			{"index": 1, "score": 70, "rationale": "ok"}
		]}`},
		{"missing score", `{"results": [
			{"index": 0, "rationale": "bad"},
			{"index": 1, "score": 70, "rationale": "ok"}
		]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubGenerator{response: tc.response}
			matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

			if _, err := matcher.ScoreBatch(context.Background(), batchJobs(2), testProfile()); err == nil {
				t.Fatalf("expected error for %s response", tc.name)
			}
		})
	}
}

func TestScoreBatchDoesNotRetry(t *testing.T) {
	stub := &stubGenerator{err: errors.New("model unavailable")}
	matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

	if _, err := matcher.ScoreBatch(context.Background(), batchJobs(2), testProfile()); err == nil {
		t.Fatalf("expected error from generator")
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one generator call, got %d", stub.calls)
	}
}

func TestScoreBatchRequiresProfile(t *testing.T) {
	stub := &stubGenerator{response: "{}"}
	matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

	if _, err := matcher.ScoreBatch(context.Background(), batchJobs(1), nil); err == nil {
		t.Fatalf("expected error without profile")
	}
	if stub.calls != 0 {
		t.Fatalf("expected no generator call without profile, got %d", stub.calls)
	}
}

func TestScoreBatchFullCapSucceeds(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"results": [`)
	for i := 0; i < MaxBatchJobs; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"index": ` + strconv.Itoa(i) + `, "score": 50, "matching_skills": [], "missing_skills": [], "rationale": "ok"}`)
	}
	sb.WriteString("]}")

	stub := &stubGenerator{response: sb.String()}
	matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

	results, err := matcher.ScoreBatch(context.Background(), batchJobs(MaxBatchJobs), testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != MaxBatchJobs {
		t.Fatalf("expected %d results, got %d", MaxBatchJobs, len(results))
	}
}

func TestScoreBatchRejectsOversizedBatch(t *testing.T) {
	stub := &stubGenerator{response: "{}"}
	matcher := NewBatchMatcher(stub, zap.NewNop(), 0)

	// An over-cap batch must error rather than drop the trailing jobs:
	// every submitted job gets a result or the whole call fails.
	if _, err := matcher.ScoreBatch(context.Background(), batchJobs(MaxBatchJobs+1), testProfile()); err == nil {
		t.Fatalf("expected error for batch over the cap")
	}
	if stub.calls != 0 {
		t.Fatalf("expected no generator call for an over-cap batch, got %d", stub.calls)
	}
}

func TestNewBatchMatcherDefaultsNilLogger(t *testing.T) {
	stub := &stubGenerator{response: `{"results": [{"index": 0, "score": 80, "matching_skills": [], "missing_skills": [], "rationale": "ok"}]}`}
	matcher := NewBatchMatcher(stub, nil, 0)

	if _, err := matcher.ScoreBatch(context.Background(), batchJobs(1), testProfile()); err != nil {
		t.Fatalf("unexpected error with nil logger: %v", err)
	}
}
