package tutor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPreferences is returned when a preference set violates the caller contract.
var ErrInvalidPreferences = errors.New("invalid preferences")

// Preferences are the per-search overrides supplied by the seeker.
type Preferences struct {
	SubjectQuery   string         `json:"subject_query,omitempty" mapstructure:"subject-query"`
	MaxPrice       *float64       `json:"max_price,omitempty" mapstructure:"max-price"`
	Location       string         `json:"location,omitempty" mapstructure:"location"`
	MinRating      *float64       `json:"min_rating,omitempty" mapstructure:"min-rating"`
	ExperienceBand ExperienceBand `json:"experience_band,omitempty" mapstructure:"experience-band"`
	// Goals and TeachingStyles are informational only.
	Goals          []string `json:"goals,omitempty" mapstructure:"goals"`
	TeachingStyles []string `json:"teaching_styles,omitempty" mapstructure:"teaching-styles"`
}

// Validate fails fast on values that can only come from a caller bug.
func (p *Preferences) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: preferences are required", ErrInvalidPreferences)
	}
	if p.MaxPrice != nil && *p.MaxPrice < 0 {
		return fmt.Errorf("%w: max price must not be negative, got %v", ErrInvalidPreferences, *p.MaxPrice)
	}
	if p.MinRating != nil && (*p.MinRating < 0 || *p.MinRating > 5) {
		return fmt.Errorf("%w: min rating must be within 0..5, got %v", ErrInvalidPreferences, *p.MinRating)
	}
	if !p.ExperienceBand.Valid() {
		return fmt.Errorf("%w: unknown experience band %q", ErrInvalidPreferences, p.ExperienceBand)
	}
	return nil
}

// Resolve returns a copy of the preferences where absent price, location, rating and
// experience values are taken from the seeker profile. A zero max price counts as absent.
func (p Preferences) Resolve(seeker *Seeker) Preferences {
	resolved := p
	resolved.Goals = append([]string(nil), p.Goals...)
	resolved.TeachingStyles = append([]string(nil), p.TeachingStyles...)

	if seeker == nil {
		return resolved
	}
	if (resolved.MaxPrice == nil || *resolved.MaxPrice == 0) && seeker.BudgetCeiling != nil {
		v := *seeker.BudgetCeiling
		resolved.MaxPrice = &v
	}
	if strings.TrimSpace(resolved.Location) == "" && seeker.Location != nil {
		resolved.Location = *seeker.Location
	}
	if resolved.MinRating == nil && seeker.RatingFloor != nil {
		v := *seeker.RatingFloor
		resolved.MinRating = &v
	}
	if strings.TrimSpace(string(resolved.ExperienceBand)) == "" {
		resolved.ExperienceBand = seeker.ExperienceBand
	}
	return resolved
}

// Constrained reports whether the seeker explicitly restricted the dimension.
// Schedule and style are never constrained.
func (p *Preferences) Constrained(dim Dimension) bool {
	switch dim {
	case DimensionSubject:
		return strings.TrimSpace(p.SubjectQuery) != ""
	case DimensionPrice:
		return p.MaxPrice != nil && *p.MaxPrice > 0
	case DimensionLocation:
		loc := strings.ToLower(strings.TrimSpace(p.Location))
		return loc != "" && loc != LocationAny
	case DimensionExperience:
		return p.ExperienceBand.Normalized() != ExperienceAny
	default:
		return false
	}
}

// ValidateCandidates checks the identity fields the ranking relies on.
// Missing optional attributes are not errors.
func ValidateCandidates(candidates []Candidate) error {
	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return fmt.Errorf("%w: candidate at index %d has no id", ErrInvalidCandidates, i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate candidate id %q", ErrInvalidCandidates, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ErrInvalidCandidates is returned when the candidate pool cannot be ranked deterministically.
var ErrInvalidCandidates = errors.New("invalid candidates")
