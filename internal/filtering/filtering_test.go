package filtering

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/tutormatch/internal/tutor"
)

func ptr[T any](v T) *T { return &v }

var strong = tutor.DimensionScores{Subject: 1, Price: 0.9, Location: 1, Schedule: 1, Style: 1, Experience: 1}

func TestIsEligible(t *testing.T) {
	gate := New(Config{MinScore: DefaultMinScore}, nil)

	tests := []struct {
		name   string
		prefs  *tutor.Preferences
		scores tutor.DimensionScores
		expect bool
	}{
		{
			name:   "unconstrained passes above floor",
			prefs:  &tutor.Preferences{},
			scores: tutor.DimensionScores{Subject: 0.5, Price: 1, Location: 1, Schedule: 0, Style: 0.2, Experience: 1},
			expect: true,
		},
		{
			name:   "unconstrained zero subject is fine",
			prefs:  &tutor.Preferences{},
			scores: tutor.DimensionScores{Subject: 0, Price: 1, Location: 1, Schedule: 0.5, Style: 0.2, Experience: 1},
			expect: true,
		},
		{
			name:   "constrained subject at zero",
			prefs:  &tutor.Preferences{SubjectQuery: "fisica"},
			scores: tutor.DimensionScores{Subject: 0, Price: 1, Location: 1, Schedule: 1, Style: 1, Experience: 1},
			expect: false,
		},
		{
			name:   "constrained price at zero",
			prefs:  &tutor.Preferences{MaxPrice: ptr(100.0)},
			scores: tutor.DimensionScores{Subject: 1, Price: 0, Location: 1, Schedule: 1, Style: 1, Experience: 1},
			expect: false,
		},
		{
			name:   "soft location penalty passes",
			prefs:  &tutor.Preferences{Location: "online"},
			scores: tutor.DimensionScores{Subject: 0.5, Price: 1, Location: 0.3, Schedule: 0.5, Style: 0.2, Experience: 1},
			expect: true,
		},
		{
			name:   "schedule and style never gate",
			prefs:  &tutor.Preferences{SubjectQuery: "fisica"},
			scores: tutor.DimensionScores{Subject: 1, Price: 1, Location: 1, Schedule: 0, Style: 0, Experience: 1},
			expect: true,
		},
		{
			name:   "below score floor",
			prefs:  &tutor.Preferences{},
			scores: tutor.DimensionScores{Subject: 0, Price: 0, Location: 0.3, Schedule: 0, Style: 0.2, Experience: 0},
			expect: false,
		},
		{
			name:   "exactly at score floor",
			prefs:  &tutor.Preferences{},
			scores: tutor.DimensionScores{Subject: 0.5, Price: 0, Location: 0.6, Schedule: 0, Style: 0.2, Experience: 0.5},
			expect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.IsEligible(tt.prefs, tt.scores); got != tt.expect {
				t.Fatalf("expected %v, got %v (overall %v)", tt.expect, got, tt.scores.Overall())
			}
		})
	}
}

func TestApplyReportsSteps(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	gate := New(Config{MinScore: 0.5}, zap.New(core))

	prefs := &tutor.Preferences{SubjectQuery: "fisica", MaxPrice: ptr(100.0)}
	results := []*tutor.MatchResult{
		{Candidate: tutor.Candidate{ID: "keep"}, Dimensions: strong},
		{Candidate: tutor.Candidate{ID: "no-subject"}, Dimensions: tutor.DimensionScores{Price: 1, Location: 1, Schedule: 1, Style: 1, Experience: 1}},
		{Candidate: tutor.Candidate{ID: "no-price"}, Dimensions: tutor.DimensionScores{Subject: 1, Location: 1, Schedule: 1, Style: 1, Experience: 1}},
		{Candidate: tutor.Candidate{ID: "weak"}, Dimensions: tutor.DimensionScores{Subject: 0.7, Price: 0.8, Location: 1, Schedule: 0, Style: 0.2, Experience: 0}},
	}

	left, steps := gate.Apply(prefs, results)

	if len(left) != 1 || left[0].Candidate.ID != "keep" {
		t.Fatalf("unexpected survivors: %+v", left)
	}
	if len(results) != 4 || results[1].Candidate.ID != "no-subject" {
		t.Fatalf("input slice must not be modified")
	}

	expect := []Step{
		{Name: "subject", Initial: 4, Dropped: 1, Left: 3},
		{Name: "price", Initial: 3, Dropped: 1, Left: 2},
		{Name: "min_score", Initial: 2, Dropped: 1, Left: 1},
	}
	if len(steps) != len(expect) {
		t.Fatalf("expected %d steps, got %+v", len(expect), steps)
	}
	for i := range expect {
		if steps[i] != expect[i] {
			t.Fatalf("step %d: expected %+v, got %+v", i, expect[i], steps[i])
		}
	}

	if got := observed.FilterMessage("filter step").Len(); got != 3 {
		t.Fatalf("expected 3 filter step logs, got %d", got)
	}
	if got := observed.FilterMessage("filter disabled").Len(); got != 2 {
		t.Fatalf("expected 2 disabled filter logs, got %d", got)
	}
}

func TestDescribe(t *testing.T) {
	gate := New(Config{MinScore: 0.3}, nil)
	statuses := gate.Describe(&tutor.Preferences{Location: "Cali"})

	byName := make(map[string]Status, len(statuses))
	for _, s := range statuses {
		byName[s.Name] = s
	}

	if !byName["location"].Enabled {
		t.Fatalf("expected location step to be enabled")
	}
	if byName["subject"].Enabled || byName["subject"].Reason != notConstrainedMsg {
		t.Fatalf("unexpected subject status: %+v", byName["subject"])
	}
	if byName["min_score"].Details["min_score"] != "0.30" {
		t.Fatalf("unexpected min score details: %+v", byName["min_score"])
	}
}

func TestValidateMinScore(t *testing.T) {
	if err := ValidateMinScore(0.3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateMinScore(1.2); !errors.Is(err, tutor.ErrInvalidPreferences) {
		t.Fatalf("expected ErrInvalidPreferences, got %v", err)
	}
}
