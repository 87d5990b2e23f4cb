package ranking

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/tutormatch/internal/ai"
	"github.com/spigell/tutormatch/internal/filtering"
	"github.com/spigell/tutormatch/internal/metrics"
	"github.com/spigell/tutormatch/internal/scoring"
	"github.com/spigell/tutormatch/internal/tutor"
)

// Name is the scorer name of the rule-based pipeline.
const Name = "fallback"

// Pipeline is the deterministic rule-based scorer: evaluate, gate, sort, truncate, explain.
type Pipeline struct {
	evaluator *scoring.Evaluator
	explainer *scoring.Explainer
	logger    *zap.Logger
	workers   int
}

// New creates a pipeline sharing one synonym table between evaluation and explanation.
func New(synonyms *scoring.SynonymTable, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		evaluator: scoring.NewEvaluator(synonyms),
		explainer: scoring.NewExplainer(synonyms),
		logger:    logger,
		workers:   runtime.GOMAXPROCS(0),
	}
}

var _ ai.Scorer = (*Pipeline)(nil)

func (p *Pipeline) Name() string { return Name }

// Score implements ai.Scorer. The pipeline cannot fail.
func (p *Pipeline) Score(_ context.Context, req *ai.Request) ([]tutor.MatchResult, error) {
	return p.Rank(req.Candidates, req.Seeker, req.Preferences, req.Cap, req.MinScore), nil
}

// Rank scores every candidate, drops the ineligible ones and returns at most limit results
// ordered by overall score descending and candidate id ascending.
func (p *Pipeline) Rank(candidates []tutor.Candidate, seeker *tutor.Seeker, prefs *tutor.Preferences, limit int, minScore float64) []tutor.MatchResult {
	var resolved tutor.Preferences
	if prefs != nil {
		resolved = prefs.Resolve(seeker)
	}

	scored := p.evaluate(candidates, seeker, &resolved)
	metrics.CandidatesEvaluated.Add(float64(len(scored)))

	gate := filtering.New(filtering.Config{MinScore: minScore}, p.logger)
	eligible, _ := gate.Apply(&resolved, scored)

	results := make([]tutor.MatchResult, 0, len(eligible))
	for _, r := range eligible {
		results = append(results, *r)
	}

	tutor.SortResults(results)
	results = tutor.Truncate(results, limit)

	for i := range results {
		explanation := p.explainer.Explain(&results[i].Candidate, results[i].Dimensions, &resolved)
		results[i].Reasons = explanation.Reasons
		results[i].Insights = explanation.Insights
	}

	p.logger.Debug("ranking completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("eligible", len(eligible)),
		zap.Int("returned", len(results)),
	)

	return results
}

// evaluate scores candidates concurrently. Output order matches input order.
func (p *Pipeline) evaluate(candidates []tutor.Candidate, seeker *tutor.Seeker, prefs *tutor.Preferences) []*tutor.MatchResult {
	scored := make([]*tutor.MatchResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range candidates {
		g.Go(func() error {
			c := candidates[i]
			scores := p.evaluator.Evaluate(seeker, prefs, &c)
			scored[i] = &tutor.MatchResult{
				Candidate:    c,
				OverallScore: scores.Overall(),
				Dimensions:   scores,
			}
			return nil
		})
	}
	_ = g.Wait()

	return scored
}
