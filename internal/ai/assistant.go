package ai

import (
	"context"
	"errors"

	"github.com/spigell/tutormatch/internal/tutor"
)

// ErrMalformedOutput marks primary scorer output that cannot be mapped onto match results.
var ErrMalformedOutput = errors.New("malformed primary scorer output")

// Request carries the inputs of one matching run.
type Request struct {
	Seeker      *tutor.Seeker
	Preferences *tutor.Preferences
	Candidates  []tutor.Candidate
	Cap         int
	MinScore    float64
}

// Scorer turns a request into a ranked match list. The model-backed path and the
// rule-based fallback are both Scorers.
type Scorer interface {
	Name() string
	Score(ctx context.Context, req *Request) ([]tutor.MatchResult, error)
}

// RawScore is one candidate assessment as returned by a primary scorer.
type RawScore struct {
	CandidateID string             `mapstructure:"candidate_id"`
	Scores      map[string]float64 `mapstructure:"scores"`
	Reasons     []string           `mapstructure:"reasons"`
	Insights    []string           `mapstructure:"insights"`
}

// PrimaryScorer is a model-based compatibility engine. Candidates it leaves out of
// the returned slice are considered not eligible.
type PrimaryScorer interface {
	ScoreAll(ctx context.Context, seeker *tutor.Seeker, prefs *tutor.Preferences, candidates []tutor.Candidate) ([]RawScore, error)
}
