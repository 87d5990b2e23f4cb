package filtering

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/tutormatch/internal/tutor"
)

// DefaultMinScore is the overall score floor applied when none is configured.
const DefaultMinScore = 0.3

// Filter represents a single eligibility step of the gate.
type Filter interface {
	Name() string
	// IsEnabled reports whether the step applies to the given preferences.
	IsEnabled(prefs *tutor.Preferences) bool
	// Allow reports whether a candidate with these scores passes the step.
	Allow(scores tutor.DimensionScores) bool
}

// Step describes the result of executing a filtering step.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status(prefs *tutor.Preferences) Status
}

// Config contains configuration settings consumed by the gate.
type Config struct {
	MinScore float64
}

// Gate decides whether a scored candidate may appear in the results at all.
type Gate struct {
	steps  []Filter
	logger *zap.Logger
}

// New creates a gate with one step per hard-gating dimension followed by the score floor.
func New(cfg Config, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		steps: []Filter{
			NewDimension(tutor.DimensionSubject),
			NewDimension(tutor.DimensionLocation),
			NewDimension(tutor.DimensionPrice),
			NewDimension(tutor.DimensionExperience),
			NewMinScore(cfg.MinScore),
		},
		logger: logger,
	}
}

// IsEligible reports whether every enabled step allows the scores.
func (g *Gate) IsEligible(prefs *tutor.Preferences, scores tutor.DimensionScores) bool {
	for _, step := range g.steps {
		if !step.IsEnabled(prefs) {
			continue
		}
		if !step.Allow(scores) {
			return false
		}
	}
	return true
}

// Apply runs the enabled steps sequentially over results and returns the survivors in their
// original order together with per-step counts.
func (g *Gate) Apply(prefs *tutor.Preferences, results []*tutor.MatchResult) ([]*tutor.MatchResult, []Step) {
	steps := make([]Step, 0, len(g.steps))
	for _, step := range g.steps {
		if !step.IsEnabled(prefs) {
			g.logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		initial := len(results)
		kept := results[:0:0]
		for _, r := range results {
			if step.Allow(r.Dimensions) {
				kept = append(kept, r)
			}
		}
		results = kept

		info := Step{Name: step.Name(), Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
		steps = append(steps, info)

		g.logger.Debug("filter step",
			zap.String("name", info.Name),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}
	return results, steps
}

// Describe returns status entries for the gate steps under the given preferences.
func (g *Gate) Describe(prefs *tutor.Preferences) []Status {
	statuses := make([]Status, 0, len(g.steps))
	for _, step := range g.steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status(prefs))
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(prefs),
		})
	}
	return statuses
}

// ValidateMinScore rejects score floors outside [0,1].
func ValidateMinScore(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: min score must be within 0..1, got %v", tutor.ErrInvalidPreferences, v)
	}
	return nil
}
