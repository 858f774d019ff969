package match

import (
	"fmt"
	"strings"

	"github.com/GarvitBanga/JobMatch/internal/extract"
	"github.com/GarvitBanga/JobMatch/internal/profile"

	"go.uber.org/zap"
)

const (
	// Fallback scores stay inside [65, 95] to avoid implying precision
	// the local heuristic does not have.
	fallbackMinScore = 65
	fallbackMaxScore = 95

	fallbackBaseScore = 86
	positionPenalty   = 2
	skillBonus        = 2
	maxSkillBonus     = 10

	noProfileBaseScore = 85
)

// commonSkills is the vocabulary used to spot skill terms inside a job's
// text when estimating what the posting asks for.
var commonSkills = []string{
	"python", "javascript", "typescript", "java", "c++", "c#", "go", "golang",
	"rust", "ruby", "php", "swift", "kotlin", "scala", "sql",
	"react", "vue", "angular", "node.js", "nodejs", "django", "flask", "spring",
	"html", "css",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch", "kafka",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "jenkins",
	"linux", "git", "ci/cd", "grpc", "rest", "graphql", "microservices",
	"machine learning", "tensorflow", "pytorch", "spark",
}

// FallbackScorer is the deterministic local scoring path. It performs no
// network calls and never fails; it is the pipeline's unconditional
// success path. Same job list and profile always produce the same scores.
type FallbackScorer struct {
	logger *zap.Logger
}

func NewFallbackScorer(logger *zap.Logger) *FallbackScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackScorer{logger: logger}
}

// ScoreAll scores every job locally, preserving list order: ranks are
// assigned by position with decreasing scores.
func (s *FallbackScorer) ScoreAll(jobs []*extract.JobRecord, prof *profile.CandidateProfile) []MatchResult {
	results := make([]MatchResult, 0, len(jobs))
	for i, job := range jobs {
		results = append(results, s.ScoreOne(job, prof, i))
	}

	s.logger.Debug("fallback scoring complete",
		zap.Int("jobs", len(jobs)),
		zap.Bool("profile_present", prof != nil),
	)

	return results
}

// ScoreOne scores a single job at the given list position. With a profile
// the score combines a positional base with bounded skill-overlap bonuses,
// clamped into [65, 95]; without one it is a flat decreasing value.
func (s *FallbackScorer) ScoreOne(job *extract.JobRecord, prof *profile.CandidateProfile, position int) MatchResult {
	result := MatchResult{
		JobID:    job.ID,
		URL:      job.URL,
		Title:    job.Title,
		Company:  job.Company,
		Location: job.Location,
		Rank:     position + 1,
	}

	if prof == nil {
		result.Score = clampScore(noProfileBaseScore - positionPenalty*position)
		result.Rationale = "No profile provided; ordered by position on the page."
		result.Confidence = ConfidenceLow
		return result
	}

	text := jobText(job)
	jobSkills := skillsIn(text, commonSkills)
	matched := overlap(prof.Skills, text)

	missing := make([]string, 0, len(jobSkills))
	for _, skill := range jobSkills {
		if !containsFold(matched, skill) {
			missing = append(missing, skill)
		}
	}

	bonus := skillBonus * len(matched)
	if bonus > maxSkillBonus {
		bonus = maxSkillBonus
	}

	result.Score = clampScore(fallbackBaseScore - positionPenalty*position + bonus)
	result.MatchingSkills = matched
	result.MissingSkills = missing

	switch {
	case len(matched) > 0:
		result.Rationale = fmt.Sprintf("Local estimate: %d of your skills appear in the posting (%s).",
			len(matched), strings.Join(head(matched, 3), ", "))
	case job.Method == extract.MethodFallback:
		result.Rationale = "Local estimate from listing hints only; the posting could not be fetched."
	default:
		result.Rationale = "Local estimate; no direct skill overlap was found."
	}

	if job.Method == extract.MethodFallback {
		result.Confidence = ConfidenceLow
	} else {
		result.Confidence = ConfidenceMedium
	}

	return result
}

func jobText(job *extract.JobRecord) string {
	parts := []string{job.Title, job.Description}
	parts = append(parts, job.Requirements...)
	parts = append(parts, job.Qualifications...)
	return strings.ToLower(strings.Join(parts, " "))
}

// overlap returns the candidate skills present in the job text,
// case-insensitive, preserving profile order.
func overlap(skills []string, text string) []string {
	var matched []string
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(trimmed)) {
			matched = append(matched, trimmed)
		}
	}
	return matched
}

func skillsIn(text string, vocabulary []string) []string {
	var found []string
	for _, skill := range vocabulary {
		if strings.Contains(text, skill) {
			found = append(found, skill)
		}
	}
	return found
}

func containsFold(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < fallbackMinScore {
		return fallbackMinScore
	}
	if score > fallbackMaxScore {
		return fallbackMaxScore
	}
	return score
}

func head(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
