package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/GarvitBanga/JobMatch/internal/extract"
	"github.com/GarvitBanga/JobMatch/internal/match"
	"github.com/GarvitBanga/JobMatch/internal/profile"
	"github.com/GarvitBanga/JobMatch/internal/util"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	// MaxBatchJobs caps how many jobs go into a single scoring prompt.
	MaxBatchJobs = 25

	defaultMaxLogLength     = 200
	maxPromptDescriptionLen = 600
	maxPromptSummaryLen     = 1200
)

// BatchMatcher scores a whole slice of jobs against one candidate profile
// in a single model call. Any malformed response fails the entire batch;
// the caller is expected to fall back rather than retry.
type BatchMatcher struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewBatchMatcher(generator contentGenerator, logger *zap.Logger, maxLogLength int) *BatchMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &BatchMatcher{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

type promptJob struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description"`
}

type batchItem struct {
	Index          int      `json:"index"`
	Score          *float64 `json:"score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Rationale      string   `json:"rationale"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
}

// ScoreBatch implements match.Matcher. Jobs are scored in submission order
// and returned ranked by descending score, ties broken by submission order.
// Every submitted job gets exactly one result; a batch over the cap is
// rejected up front so no job can silently lose its result.
func (m *BatchMatcher) ScoreBatch(ctx context.Context, jobs []*extract.JobRecord, prof *profile.CandidateProfile) ([]match.MatchResult, error) {
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no jobs to score")
	}
	if len(jobs) > MaxBatchJobs {
		return nil, fmt.Errorf("batch of %d jobs exceeds the cap of %d", len(jobs), MaxBatchJobs)
	}
	if prof == nil {
		return nil, fmt.Errorf("candidate profile is required for batch scoring")
	}

	prompt, err := buildPrompt(jobs, prof)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini batch scoring request",
		zap.Int("jobs", len(jobs)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini batch scoring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, m.maxLogLen)),
	)

	items, err := parseBatchResponse(raw, len(jobs))
	if err != nil {
		return nil, err
	}

	results := make([]match.MatchResult, len(jobs))
	for _, item := range items {
		job := jobs[item.Index]
		score := int(*item.Score + 0.5)
		results[item.Index] = match.MatchResult{
			JobID:          job.ID,
			URL:            job.URL,
			Title:          job.Title,
			Company:        job.Company,
			Location:       job.Location,
			Score:          score,
			MatchingSkills: item.MatchingSkills,
			MissingSkills:  item.MissingSkills,
			Rationale:      strings.TrimSpace(item.Rationale),
			Confidence:     match.ConfidenceForScore(score),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	return results, nil
}

func buildPrompt(jobs []*extract.JobRecord, prof *profile.CandidateProfile) (string, error) {
	payload := make([]promptJob, len(jobs))
	for i, job := range jobs {
		payload[i] = promptJob{
			Index:       i,
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			Description: truncateRunes(job.Description, maxPromptDescriptionLen),
		}
	}

	jobsJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal jobs payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE_SUMMARY}}\n\nJobs:\n{{JOBS_JSON}}\n\nJSON Response:"
	}

	prompt := strings.ReplaceAll(template, "{{PROFILE_SUMMARY}}", truncateRunes(prof.PromptSummary(maxPromptSummaryLen), maxPromptSummaryLen))
	prompt = strings.ReplaceAll(prompt, "{{JOBS_JSON}}", string(jobsJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_COUNT}}", strconv.Itoa(len(jobs)))

	return prompt, nil
}

// parseBatchResponse validates the model output strictly. The contract is
// exactly one result per submitted job, indexed 0..n-1, with scores in
// [0, 100]. Any deviation invalidates the whole batch.
func parseBatchResponse(raw string, jobCount int) ([]batchItem, error) {
	cleaned := extractJSON(raw)

	var resp batchResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if len(resp.Results) != jobCount {
		return nil, fmt.Errorf("gemini returned %d results for %d jobs", len(resp.Results), jobCount)
	}

	seen := make(map[int]bool, jobCount)
	for _, item := range resp.Results {
		if item.Index < 0 || item.Index >= jobCount {
			return nil, fmt.Errorf("gemini returned out-of-range index %d", item.Index)
		}
		if seen[item.Index] {
			return nil, fmt.Errorf("gemini returned duplicate index %d", item.Index)
		}
		seen[item.Index] = true
		if item.Score == nil {
			return nil, fmt.Errorf("gemini returned no score for index %d", item.Index)
		}
		if *item.Score < 0 || *item.Score > 100 {
			return nil, fmt.Errorf("gemini returned score %v outside 0-100 for index %d", *item.Score, item.Index)
		}
	}

	return resp.Results, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
