package tutor

import (
	"math"
	"slices"
	"sort"
	"strings"
)

const (
	// LocationAny is the sentinel location value meaning "no location constraint".
	LocationAny = "any"
	// LocationOnline is the location value for remote classes.
	LocationOnline = "online"
)

// ExperienceBand is the experience level a seeker is looking for.
type ExperienceBand string

const (
	ExperienceAny          ExperienceBand = "any"
	ExperienceBeginner     ExperienceBand = "beginner"
	ExperienceIntermediate ExperienceBand = "intermediate"
	ExperienceExpert       ExperienceBand = "expert"
)

// Normalized returns the lowercase band with surrounding spaces removed.
// An empty band is reported as ExperienceAny.
func (b ExperienceBand) Normalized() ExperienceBand {
	v := ExperienceBand(strings.ToLower(strings.TrimSpace(string(b))))
	if v == "" {
		return ExperienceAny
	}
	return v
}

// Valid reports whether the band is one of the known values.
func (b ExperienceBand) Valid() bool {
	switch b.Normalized() {
	case ExperienceAny, ExperienceBeginner, ExperienceIntermediate, ExperienceExpert:
		return true
	default:
		return false
	}
}

// Seeker is the user requesting matches.
type Seeker struct {
	ID             string         `json:"id" yaml:"id" mapstructure:"id"`
	Mode           string         `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	Subjects       []string       `json:"subjects,omitempty" yaml:"subjects,omitempty" mapstructure:"subjects"`
	Location       *string        `json:"location,omitempty" yaml:"location,omitempty" mapstructure:"location"`
	BudgetCeiling  *float64       `json:"budget_ceiling,omitempty" yaml:"budget_ceiling,omitempty" mapstructure:"budget-ceiling"`
	RatingFloor    *float64       `json:"rating_floor,omitempty" yaml:"rating_floor,omitempty" mapstructure:"rating-floor"`
	ExperienceBand ExperienceBand `json:"experience_band,omitempty" yaml:"experience_band,omitempty" mapstructure:"experience-band"`
}

// Candidate is a tutor profile supplied by the user directory.
// Every optional attribute is a pointer so a missing value is distinguishable from a zero one.
type Candidate struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Subjects    []string `json:"subjects,omitempty" yaml:"subjects,omitempty"`
	HourlyPrice *float64 `json:"hourly_price,omitempty" yaml:"hourly_price,omitempty"`
	Location    *string  `json:"location,omitempty" yaml:"location,omitempty"`
	Available   *bool    `json:"available,omitempty" yaml:"available,omitempty"`
	Rating      *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty" yaml:"review_count,omitempty"`
	Experience  *string  `json:"experience,omitempty" yaml:"experience,omitempty"`
	Bio         string   `json:"bio,omitempty" yaml:"bio,omitempty"`
	Avatar      string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// City returns the primary city segment of the candidate location (text before the first comma).
func (c *Candidate) City() string {
	if c.Location == nil {
		return ""
	}
	city, _, _ := strings.Cut(*c.Location, ",")
	return strings.TrimSpace(city)
}

// Clone returns a copy of the candidate that shares no memory with c.
func (c Candidate) Clone() Candidate {
	c.Subjects = slices.Clone(c.Subjects)
	c.HourlyPrice = clonePtr(c.HourlyPrice)
	c.Location = clonePtr(c.Location)
	c.Available = clonePtr(c.Available)
	c.Rating = clonePtr(c.Rating)
	c.ReviewCount = clonePtr(c.ReviewCount)
	c.Experience = clonePtr(c.Experience)
	return c
}

// CloneCandidates deep-copies a candidate pool.
func CloneCandidates(candidates []Candidate) []Candidate {
	if candidates == nil {
		return nil
	}
	out := make([]Candidate, len(candidates))
	for i := range candidates {
		out[i] = candidates[i].Clone()
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Dimension names one independently scored compatibility axis.
type Dimension string

const (
	DimensionSubject    Dimension = "subject"
	DimensionPrice      Dimension = "price"
	DimensionLocation   Dimension = "location"
	DimensionSchedule   Dimension = "schedule"
	DimensionStyle      Dimension = "style"
	DimensionExperience Dimension = "experience"
)

// Dimensions lists every dimension in their canonical order.
var Dimensions = []Dimension{
	DimensionSubject,
	DimensionPrice,
	DimensionLocation,
	DimensionSchedule,
	DimensionStyle,
	DimensionExperience,
}

// DimensionScores holds one score in [0,1] per dimension.
type DimensionScores struct {
	Subject    float64 `json:"subject"`
	Price      float64 `json:"price"`
	Location   float64 `json:"location"`
	Schedule   float64 `json:"schedule"`
	Style      float64 `json:"style"`
	Experience float64 `json:"experience"`
}

// Get returns the score of the named dimension.
func (d DimensionScores) Get(dim Dimension) float64 {
	switch dim {
	case DimensionSubject:
		return d.Subject
	case DimensionPrice:
		return d.Price
	case DimensionLocation:
		return d.Location
	case DimensionSchedule:
		return d.Schedule
	case DimensionStyle:
		return d.Style
	case DimensionExperience:
		return d.Experience
	default:
		return 0
	}
}

// Set stores the score of the named dimension. Unknown dimensions are ignored.
func (d *DimensionScores) Set(dim Dimension, v float64) {
	switch dim {
	case DimensionSubject:
		d.Subject = v
	case DimensionPrice:
		d.Price = v
	case DimensionLocation:
		d.Location = v
	case DimensionSchedule:
		d.Schedule = v
	case DimensionStyle:
		d.Style = v
	case DimensionExperience:
		d.Experience = v
	}
}

// Overall returns the mean of the six dimensions rounded to two decimals.
func (d DimensionScores) Overall() float64 {
	sum := 0.0
	for _, dim := range Dimensions {
		sum += d.Get(dim)
	}
	return Round2(sum / float64(len(Dimensions)))
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MatchResult is one entry of a ranked match list.
type MatchResult struct {
	Candidate    Candidate       `json:"candidate"`
	OverallScore float64         `json:"overall_score"`
	Dimensions   DimensionScores `json:"dimension_scores"`
	Reasons      []string        `json:"reasons"`
	Insights     []string        `json:"insights"`
}

// SortResults orders results by overall score descending, breaking ties by candidate id ascending.
func SortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].OverallScore != results[j].OverallScore {
			return results[i].OverallScore > results[j].OverallScore
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})
}

// Truncate returns at most limit results. A non-positive limit keeps everything.
func Truncate(results []MatchResult, limit int) []MatchResult {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
