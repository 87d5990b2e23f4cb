package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/tutormatch/internal/scoring"
	"github.com/spigell/tutormatch/internal/tutor"
)

// ErrIncompleteResult is returned when the rule-based path produced a result with unpopulated fields.
var ErrIncompleteResult = errors.New("incomplete match result")

// validateResults checks that every field of every result is populated and the list
// respects the ranking invariants.
func validateResults(results []tutor.MatchResult, limit int) error {
	if limit > 0 && len(results) > limit {
		return fmt.Errorf("got %d results, cap is %d", len(results), limit)
	}

	seen := make(map[string]struct{}, len(results))
	for i, r := range results {
		id := strings.TrimSpace(r.Candidate.ID)
		if id == "" {
			return fmt.Errorf("result %d has no candidate id", i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("candidate %q appears twice", id)
		}
		seen[id] = struct{}{}

		for _, dim := range tutor.Dimensions {
			v := r.Dimensions.Get(dim)
			if math.IsNaN(v) || v < 0 || v > 1 {
				return fmt.Errorf("candidate %q: %s score %v is outside 0..1", id, dim, v)
			}
		}
		if r.OverallScore != r.Dimensions.Overall() {
			return fmt.Errorf("candidate %q: overall score %v does not match dimension mean %v", id, r.OverallScore, r.Dimensions.Overall())
		}
		if err := validateStatements("reasons", r.Reasons, scoring.MaxReasons); err != nil {
			return fmt.Errorf("candidate %q: %w", id, err)
		}
		if err := validateStatements("insights", r.Insights, scoring.MaxInsights); err != nil {
			return fmt.Errorf("candidate %q: %w", id, err)
		}

		if i > 0 {
			prev := results[i-1]
			if prev.OverallScore < r.OverallScore ||
				(prev.OverallScore == r.OverallScore && prev.Candidate.ID > r.Candidate.ID) {
				return fmt.Errorf("results are not ordered at position %d", i)
			}
		}
	}
	return nil
}

func validateStatements(kind string, items []string, limit int) error {
	if len(items) == 0 {
		return fmt.Errorf("%s are empty", kind)
	}
	if len(items) > limit {
		return fmt.Errorf("%d %s exceed the cap of %d", len(items), kind, limit)
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%s contain a blank entry", kind)
		}
	}
	return nil
}
