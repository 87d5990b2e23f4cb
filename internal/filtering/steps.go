package filtering

import (
	"fmt"

	"github.com/spigell/tutormatch/internal/tutor"
)

const notConstrainedMsg = "not constrained by the seeker"

type dimensionFilter struct {
	dim tutor.Dimension
}

// NewDimension creates a step that drops candidates scoring exactly zero on a constrained dimension.
func NewDimension(dim tutor.Dimension) Filter {
	return &dimensionFilter{dim: dim}
}

func (f *dimensionFilter) Name() string { return string(f.dim) }

func (f *dimensionFilter) IsEnabled(prefs *tutor.Preferences) bool {
	return prefs != nil && prefs.Constrained(f.dim)
}

func (f *dimensionFilter) Allow(scores tutor.DimensionScores) bool {
	return scores.Get(f.dim) > 0
}

func (f *dimensionFilter) Status(prefs *tutor.Preferences) Status {
	enabled := f.IsEnabled(prefs)
	reason := ""
	if !enabled {
		reason = notConstrainedMsg
	}
	return Status{Name: f.Name(), Enabled: enabled, Reason: reason}
}

type minScoreFilter struct {
	min float64
}

// NewMinScore creates a step that drops candidates whose overall score is below min.
func NewMinScore(min float64) Filter {
	return &minScoreFilter{min: min}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) IsEnabled(*tutor.Preferences) bool { return true }

func (f *minScoreFilter) Allow(scores tutor.DimensionScores) bool {
	return scores.Overall() >= f.min
}

func (f *minScoreFilter) Status(*tutor.Preferences) Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"min_score": fmt.Sprintf("%.2f", f.min)},
	}
}
