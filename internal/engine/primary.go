package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/tutormatch/internal/ai"
	"github.com/spigell/tutormatch/internal/scoring"
	"github.com/spigell/tutormatch/internal/tutor"
)

type primaryScorer struct {
	name      string
	scorer    ai.PrimaryScorer
	explainer *scoring.Explainer
}

// NewPrimary adapts a model-based scorer to the Scorer strategy. Its per-dimension
// breakdown replaces the rule-based evaluation; reasons or insights it leaves empty
// are derived from that breakdown.
func NewPrimary(name string, scorer ai.PrimaryScorer, synonyms *scoring.SynonymTable) ai.Scorer {
	if strings.TrimSpace(name) == "" {
		name = "primary"
	}
	return &primaryScorer{
		name:      name,
		scorer:    scorer,
		explainer: scoring.NewExplainer(synonyms),
	}
}

func (p *primaryScorer) Name() string { return p.name }

func (p *primaryScorer) Score(ctx context.Context, req *ai.Request) ([]tutor.MatchResult, error) {
	raw, err := p.scorer.ScoreAll(ctx, req.Seeker, req.Preferences, req.Candidates)
	if err != nil {
		return nil, err
	}
	return p.adapt(raw, req)
}

func (p *primaryScorer) adapt(raw []ai.RawScore, req *ai.Request) ([]tutor.MatchResult, error) {
	byID := make(map[string]*tutor.Candidate, len(req.Candidates))
	for i := range req.Candidates {
		byID[req.Candidates[i].ID] = &req.Candidates[i]
	}

	var resolved tutor.Preferences
	if req.Preferences != nil {
		resolved = req.Preferences.Resolve(req.Seeker)
	}

	seen := make(map[string]struct{}, len(raw))
	results := make([]tutor.MatchResult, 0, len(raw))
	for _, r := range raw {
		id := strings.TrimSpace(r.CandidateID)
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown candidate id %q", ai.ErrMalformedOutput, r.CandidateID)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate candidate id %q", ai.ErrMalformedOutput, id)
		}
		seen[id] = struct{}{}

		scores, err := dimensionScores(r.Scores)
		if err != nil {
			return nil, fmt.Errorf("%w: candidate %q: %v", ai.ErrMalformedOutput, id, err)
		}

		result := tutor.MatchResult{
			Candidate:    *c,
			OverallScore: scores.Overall(),
			Dimensions:   scores,
			Reasons:      scoring.Tidy(r.Reasons, scoring.MaxReasons),
			Insights:     scoring.Tidy(r.Insights, scoring.MaxInsights),
		}
		if len(result.Reasons) == 0 || len(result.Insights) == 0 {
			explanation := p.explainer.Explain(c, scores, &resolved)
			if len(result.Reasons) == 0 {
				result.Reasons = explanation.Reasons
			}
			if len(result.Insights) == 0 {
				result.Insights = explanation.Insights
			}
		}
		results = append(results, result)
	}

	tutor.SortResults(results)
	return tutor.Truncate(results, req.Cap), nil
}

func dimensionScores(raw map[string]float64) (tutor.DimensionScores, error) {
	var scores tutor.DimensionScores
	for _, dim := range tutor.Dimensions {
		v, ok := raw[string(dim)]
		if !ok {
			return scores, fmt.Errorf("missing %s score", dim)
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return scores, fmt.Errorf("%s score %v is outside 0..1", dim, v)
		}
		scores.Set(dim, v)
	}
	return scores, nil
}
