package scoring

import (
	"strings"

	"github.com/spigell/tutormatch/internal/tutor"
)

const (
	priceBudgetReward = 0.2

	locationOnlineMismatch = 0.3
	locationOnlineForCity  = 0.2

	scheduleUnknown = 0.5
)

// Evaluator computes per-dimension compatibility for one seeker and candidate pair.
// It is safe for concurrent use.
type Evaluator struct {
	synonyms *SynonymTable
}

// NewEvaluator creates an evaluator using the provided synonym table.
// A nil table falls back to DefaultSynonyms.
func NewEvaluator(synonyms *SynonymTable) *Evaluator {
	if synonyms == nil {
		synonyms = NewSynonymTable(DefaultSynonyms())
	}
	return &Evaluator{synonyms: synonyms}
}

// Synonyms returns the table the evaluator matches subjects with.
func (e *Evaluator) Synonyms() *SynonymTable {
	return e.synonyms
}

// Evaluate scores every dimension independently. It never fails: missing candidate
// data lowers the affected dimension only.
func (e *Evaluator) Evaluate(seeker *tutor.Seeker, prefs *tutor.Preferences, c *tutor.Candidate) tutor.DimensionScores {
	var p tutor.Preferences
	if prefs != nil {
		p = prefs.Resolve(seeker)
	}

	return tutor.DimensionScores{
		Subject:    e.subject(&p, c),
		Price:      price(&p, c),
		Location:   location(&p, c),
		Schedule:   schedule(c),
		Style:      style(c),
		Experience: experience(&p, c),
	}
}

func (e *Evaluator) subject(p *tutor.Preferences, c *tutor.Candidate) float64 {
	if !p.Constrained(tutor.DimensionSubject) {
		return subjectUnqueried
	}
	if len(c.Subjects) == 0 {
		return subjectNone
	}
	_, score := e.synonyms.BestSubject(p.SubjectQuery, c.Subjects)
	return score
}

func price(p *tutor.Preferences, c *tutor.Candidate) float64 {
	if !p.Constrained(tutor.DimensionPrice) {
		return 1.0
	}
	if c.HourlyPrice == nil || *c.HourlyPrice < 0 {
		return 0
	}
	ceiling, value := *p.MaxPrice, *c.HourlyPrice
	if value > ceiling {
		return 0
	}
	return 1 - priceBudgetReward*(value/ceiling)
}

func location(p *tutor.Preferences, c *tutor.Candidate) float64 {
	if !p.Constrained(tutor.DimensionLocation) {
		return 1.0
	}

	wanted := Normalize(p.Location)
	candidate := ""
	if c.Location != nil {
		candidate = Normalize(*c.Location)
	}
	online := strings.Contains(candidate, tutor.LocationOnline)

	if wanted == tutor.LocationOnline {
		if online {
			return 1.0
		}
		return locationOnlineMismatch
	}

	wantedCity, _, _ := strings.Cut(wanted, ",")
	if candidate != "" && Normalize(c.City()) == strings.TrimSpace(wantedCity) {
		return 1.0
	}
	if online {
		return locationOnlineForCity
	}
	return 0
}

func schedule(c *tutor.Candidate) float64 {
	if c.Available == nil {
		return scheduleUnknown
	}
	if *c.Available {
		return 1.0
	}
	return 0
}

func style(c *tutor.Candidate) float64 {
	if c.Rating == nil {
		return 0.2
	}
	r := *c.Rating
	switch {
	case r >= 4.5:
		return 1.0
	case r >= 4.0:
		return 0.8
	case r >= 3.5:
		return 0.6
	case r >= 3.0:
		return 0.4
	default:
		return 0.2
	}
}

func experience(p *tutor.Preferences, c *tutor.Candidate) float64 {
	if !p.Constrained(tutor.DimensionExperience) {
		return 1.0
	}
	years, ok := ParseYears(c.Experience)
	if !ok {
		return 0
	}
	return experienceScore(p.ExperienceBand, years)
}
