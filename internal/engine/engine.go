package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/tutormatch/internal/ai"
	"github.com/spigell/tutormatch/internal/filtering"
	"github.com/spigell/tutormatch/internal/logger"
	"github.com/spigell/tutormatch/internal/metrics"
	"github.com/spigell/tutormatch/internal/ranking"
	"github.com/spigell/tutormatch/internal/scoring"
	"github.com/spigell/tutormatch/internal/tutor"
)

var (
	errPrimaryTimeout = errors.New("primary scorer timed out")
	errPrimaryPanic   = errors.New("primary scorer panicked")
)

// Config contains engine-wide defaults. Zero values fall back to the package defaults.
type Config struct {
	Cap            int
	MinScore       *float64
	PrimaryTimeout time.Duration
	// Synonyms extends the built-in subject keyword table.
	Synonyms map[string][]string
}

// Deps aggregates the collaborators of the engine.
type Deps struct {
	Logger *zap.Logger
	// Primary is optional. Without it every run uses the rule-based pipeline.
	Primary     ai.PrimaryScorer
	PrimaryName string
}

// Engine is the matching facade: primary scorer first, rule-based pipeline on failure.
type Engine struct {
	primary  ai.Scorer
	fallback ai.Scorer
	defaults Options
	logger   *zap.Logger
}

// New wires the rule-based pipeline and, when configured, the primary scorer.
func New(cfg Config, deps Deps) *Engine {
	log := logger.WithFields(deps.Logger)
	synonyms := scoring.NewSynonymTable(scoring.MergeSynonyms(scoring.DefaultSynonyms(), cfg.Synonyms))

	var primary ai.Scorer
	if deps.Primary != nil {
		primary = NewPrimary(deps.PrimaryName, deps.Primary, synonyms)
	}

	return NewWithScorers(cfg, primary, ranking.New(synonyms, log), log)
}

// NewWithScorers builds an engine from explicit strategies. primary may be nil.
func NewWithScorers(cfg Config, primary, fallback ai.Scorer, log *zap.Logger) *Engine {
	defaults := Options{
		Cap:            DefaultCap,
		MinScore:       filtering.DefaultMinScore,
		PrimaryTimeout: DefaultPrimaryTimeout,
	}
	if cfg.Cap > 0 {
		defaults.Cap = cfg.Cap
	}
	if cfg.MinScore != nil {
		defaults.MinScore = *cfg.MinScore
	}
	if cfg.PrimaryTimeout > 0 {
		defaults.PrimaryTimeout = cfg.PrimaryTimeout
	}

	return &Engine{
		primary:  primary,
		fallback: fallback,
		defaults: defaults,
		logger:   logger.WithFields(log),
	}
}

// FindMatches returns the ranked match list for the seeker. Invalid preferences or a
// candidate pool without unique ids fail fast; primary scorer failures never reach the caller.
func (e *Engine) FindMatches(ctx context.Context, seeker *tutor.Seeker, prefs *tutor.Preferences, candidates []tutor.Candidate, opts ...Option) ([]tutor.MatchResult, error) {
	o := e.defaults
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	resolved := prefs.Resolve(seeker)
	if err := resolved.Validate(); err != nil {
		return nil, fmt.Errorf("seeker profile: %w", err)
	}
	if err := tutor.ValidateCandidates(candidates); err != nil {
		return nil, err
	}

	log := logger.WithMatchRun(e.logger, uuid.NewString())
	req := &ai.Request{
		Seeker:      seeker,
		Preferences: prefs,
		Candidates:  candidates,
		Cap:         o.Cap,
		MinScore:    o.MinScore,
	}

	if e.primary != nil {
		start := time.Now()
		results, err := e.tryPrimary(ctx, req, o.PrimaryTimeout)
		if err == nil {
			if verr := validateResults(results, o.Cap); verr != nil {
				err = fmt.Errorf("%w: %v", ai.ErrMalformedOutput, verr)
			}
		}
		if err == nil {
			e.record(metrics.PathPrimary, start)
			log.Info("matches found",
				zap.String(logger.FieldScorer, e.primary.Name()),
				zap.Int("candidates", len(candidates)),
				zap.Int("matches", len(results)),
			)
			return results, nil
		}

		reason := failureReason(err)
		metrics.PrimaryFailures.WithLabelValues(reason).Inc()
		log.Warn("primary scorer failed, using fallback",
			zap.String(logger.FieldScorer, e.primary.Name()),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}

	start := time.Now()
	results, err := e.fallback.Score(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s scorer: %w", e.fallback.Name(), err)
	}
	if err := validateResults(results, o.Cap); err != nil {
		log.Error("fallback produced an incomplete result", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrIncompleteResult, err)
	}

	e.record(metrics.PathFallback, start)
	log.Info("matches found",
		zap.String(logger.FieldScorer, e.fallback.Name()),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(results)),
	)
	return results, nil
}

// tryPrimary runs the primary scorer in its own goroutine so a scorer ignoring ctx still
// cannot block the caller past the timeout.
func (e *Engine) tryPrimary(ctx context.Context, req *ai.Request, timeout time.Duration) ([]tutor.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	primaryReq := *req
	primaryReq.Candidates = tutor.CloneCandidates(req.Candidates)

	type outcome struct {
		results []tutor.MatchResult
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", errPrimaryPanic, r)}
			}
		}()
		results, err := e.primary.Score(ctx, &primaryReq)
		done <- outcome{results: results, err: err}
	}()

	select {
	case out := <-done:
		return out.results, out.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w after %s: %w", errPrimaryTimeout, timeout, ctx.Err())
	}
}

func (e *Engine) record(path string, start time.Time) {
	metrics.MatchRuns.WithLabelValues(path).Inc()
	metrics.MatchRunDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errPrimaryTimeout), errors.Is(err, context.DeadlineExceeded):
		return metrics.FailureTimeout
	case errors.Is(err, errPrimaryPanic):
		return metrics.FailurePanic
	case errors.Is(err, ai.ErrMalformedOutput):
		return metrics.FailureMalformed
	default:
		return metrics.FailureError
	}
}
