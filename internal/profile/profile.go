package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CandidateProfile is the structured resume data produced by the resume
// upload flow. The scan pipeline only reads it.
type CandidateProfile struct {
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Summary    string       `json:"summary"`
}

// Experience is a single resume position.
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// LoadFile reads a candidate profile from a JSON file.
func LoadFile(path string) (*CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file %q: %w", path, err)
	}

	var p CandidateProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile file %q: %w", path, err)
	}

	return &p, nil
}

// PromptSummary renders a compact plain-text summary of the profile for
// inclusion in a scoring prompt. The result is bounded by maxLen runes to
// keep the outbound payload within budget.
func (c *CandidateProfile) PromptSummary(maxLen int) string {
	if c == nil {
		return ""
	}

	var b strings.Builder

	if summary := strings.TrimSpace(c.Summary); summary != "" {
		b.WriteString(summary)
	}

	if len(c.Skills) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Skills: ")
		b.WriteString(strings.Join(c.Skills, ", "))
	}

	titles := make([]string, 0, len(c.Experience))
	for _, exp := range c.Experience {
		title := strings.TrimSpace(exp.Title)
		if title == "" {
			continue
		}
		if company := strings.TrimSpace(exp.Company); company != "" {
			title = title + " at " + company
		}
		titles = append(titles, title)
	}
	if len(titles) > 0 {
		b.WriteString("\nExperience: ")
		b.WriteString(strings.Join(titles, "; "))
	}

	out := b.String()
	if maxLen > 0 {
		runes := []rune(out)
		if len(runes) > maxLen {
			out = string(runes[:maxLen])
		}
	}

	return out
}
