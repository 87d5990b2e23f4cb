package scoring

import (
	"fmt"
	"strings"

	"github.com/spigell/tutormatch/internal/tutor"
)

const (
	// MaxReasons caps the factual reasons attached to a match.
	MaxReasons = 3
	// MaxInsights caps the synthesized insights attached to a match.
	MaxInsights = 2

	reasonThreshold = 0.7
	minReasons      = 2
)

// Explanation is the human readable part of a match result.
type Explanation struct {
	Reasons  []string
	Insights []string
}

// Explainer derives reasons and insights from dimension scores and candidate attributes.
type Explainer struct {
	synonyms *SynonymTable
}

// NewExplainer creates an explainer. The synonym table is used to name the matched subject.
func NewExplainer(synonyms *SynonymTable) *Explainer {
	if synonyms == nil {
		synonyms = NewSynonymTable(DefaultSynonyms())
	}
	return &Explainer{synonyms: synonyms}
}

// Explain builds the reasons and insights for one candidate. prefs must already be resolved
// against the seeker profile.
func (e *Explainer) Explain(c *tutor.Candidate, scores tutor.DimensionScores, prefs *tutor.Preferences) Explanation {
	if prefs == nil {
		prefs = &tutor.Preferences{}
	}
	return Explanation{
		Reasons:  Tidy(e.reasons(c, scores, prefs), MaxReasons),
		Insights: Tidy(insights(c, scores, prefs), MaxInsights),
	}
}

func (e *Explainer) reasons(c *tutor.Candidate, scores tutor.DimensionScores, prefs *tutor.Preferences) []string {
	var reasons []string

	if scores.Subject > reasonThreshold {
		if subject, _ := e.synonyms.BestSubject(prefs.SubjectQuery, c.Subjects); subject != "" {
			reasons = append(reasons, fmt.Sprintf("Specialist in %s", subject))
		}
	}

	if scores.Style > reasonThreshold && c.Rating != nil {
		if c.ReviewCount != nil && *c.ReviewCount > 0 {
			reasons = append(reasons, fmt.Sprintf("Rated %.1f⭐ by %d students", *c.Rating, *c.ReviewCount))
		} else {
			reasons = append(reasons, fmt.Sprintf("Rated %.1f⭐", *c.Rating))
		}
	}

	if scores.Experience > reasonThreshold {
		if years, ok := ParseYears(c.Experience); ok && years > 0 {
			reasons = append(reasons, fmt.Sprintf("%d years of teaching experience", years))
		}
	}

	if scores.Price > reasonThreshold && prefs.Constrained(tutor.DimensionPrice) {
		reasons = append(reasons, "Price under your budget")
	}

	if scores.Location > reasonThreshold && prefs.Constrained(tutor.DimensionLocation) {
		if Normalize(prefs.Location) == tutor.LocationOnline {
			reasons = append(reasons, "Offers online classes")
		} else if city := c.City(); city != "" {
			reasons = append(reasons, fmt.Sprintf("Based in %s", city))
		}
	}

	if scores.Schedule > reasonThreshold {
		reasons = append(reasons, "Available to start now")
	}

	if len(reasons) >= minReasons {
		return reasons
	}

	for _, fallback := range fallbackReasons(c) {
		if len(reasons) >= minReasons {
			break
		}
		reasons = append(reasons, fallback)
	}
	return reasons
}

func fallbackReasons(c *tutor.Candidate) []string {
	var out []string
	if strings.TrimSpace(c.Bio) != "" {
		out = append(out, "Complete profile with biography")
	}
	switch n := len(c.Subjects); {
	case n > 1:
		out = append(out, fmt.Sprintf("Teaches %d subjects", n))
	case n == 1:
		out = append(out, fmt.Sprintf("Focused on %s", strings.TrimSpace(c.Subjects[0])))
	}
	return append(out, "Open to new students")
}

func insights(c *tutor.Candidate, scores tutor.DimensionScores, prefs *tutor.Preferences) []string {
	var out []string

	if years, ok := ParseYears(c.Experience); ok && years > 0 && scores.Subject >= 0.9 && scores.Experience >= 0.8 {
		out = append(out, "Strong specialization backed by teaching experience")
	}
	if prefs.Constrained(tutor.DimensionPrice) && scores.Price > reasonThreshold && scores.Style >= 0.8 {
		out = append(out, "Great value: highly rated at a price within your budget")
	}
	if prefs.Constrained(tutor.DimensionLocation) && scores.Location == 1 && scores.Schedule == 1 {
		out = append(out, "Convenient option: matches your location and is available now")
	}
	if len(out) > 0 {
		return out
	}

	switch overall := scores.Overall(); {
	case overall > 0.8:
		return []string{"Exceptional match for your needs"}
	case overall > 0.7:
		return []string{"Good general compatibility"}
	default:
		return []string{"Moderate compatibility with room for improvement"}
	}
}

// Tidy trims, deduplicates and caps a list of statements, preserving order.
func Tidy(items []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
