package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/tutormatch/internal/tutor"
)

func ptr[T any](v T) *T { return &v }

func sampleResults() []tutor.MatchResult {
	return []tutor.MatchResult{
		{
			Candidate: tutor.Candidate{
				ID:          "ana",
				Name:        "Ana",
				Subjects:    []string{"Matemáticas"},
				HourlyPrice: ptr(25000.0),
				Location:    ptr("Bogotá, Colombia"),
				Rating:      ptr(4.8),
			},
			OverallScore: 0.97,
			Dimensions:   tutor.DimensionScores{Subject: 1, Price: 0.83, Location: 1, Schedule: 1, Style: 1, Experience: 1},
			Reasons:      []string{"Specialist in Matemáticas"},
			Insights:     []string{"Exceptional match for your needs"},
		},
		{
			Candidate:    tutor.Candidate{ID: "sofia", Location: ptr("Online")},
			OverallScore: 0.67,
			Dimensions:   tutor.DimensionScores{Subject: 0.7, Price: 0.81, Location: 0.2, Schedule: 0.5, Style: 0.8, Experience: 1},
			Reasons:      []string{"Offers online classes"},
			Insights:     []string{"Moderate compatibility with room for improvement"},
		},
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, outputText, sampleResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"2 matching tutors", "Ana", "97%", "Specialist in Matemáticas", "sofia", "Offers online classes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "Ana") > strings.Index(out, "sofia") {
		t.Fatalf("expected ranking order to be kept")
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, outputText, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No tutors match") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, outputJSON, sampleResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []tutor.MatchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Candidate.ID != "ana" || decoded[1].Dimensions.Location != 0.2 {
		t.Fatalf("unexpected decoded results: %+v", decoded)
	}
}

func TestRenderDetails(t *testing.T) {
	results := sampleResults()
	out := renderDetails(&results[1].Candidate, &results[1])

	for _, want := range []string{"sofia", "location: Online", "overall 0.67", "location   0.20"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in details:\n%s", want, out)
		}
	}
}

func TestHandleAction(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	results := sampleResults()

	if err := handleAction(PromptReportByCity, log, nil, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed.Len() != 1 || !strings.Contains(observed.All()[0].Message, "Bogotá") {
		t.Fatalf("expected city report to be logged, got %+v", observed.All())
	}

	if err := handleAction(PromptDumpToFile, log, nil, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dumped := observed.FilterMessage("dumping result to file").All()
	if len(dumped) != 1 {
		t.Fatalf("expected dump to be logged")
	}
	filename, _ := dumped[0].ContextMap()["filename"].(string)
	t.Cleanup(func() { os.Remove(filename) })
	if _, err := os.Stat(filename); err != nil {
		t.Fatalf("expected dump file to exist: %v", err)
	}

	if err := handleAction(PromptExit, log, nil, results); !errors.Is(err, errExit) {
		t.Fatalf("expected exit error, got %v", err)
	}

	if err := handleAction("unknown", log, nil, results); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestFindResult(t *testing.T) {
	results := sampleResults()
	if r := findResult(results, "sofia"); r == nil || r.OverallScore != 0.67 {
		t.Fatalf("unexpected result: %+v", r)
	}
	if findResult(results, "ghost") != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestMatchDetailsUsesPoolProfile(t *testing.T) {
	results := sampleResults()
	pool := &tutor.Pool{Tutors: []tutor.Candidate{
		{ID: "sofia", Name: "Sofía", Subjects: []string{"Álgebra"}, Location: ptr("Online"), Bio: "Licenciada en matemáticas"},
	}}

	out, err := matchDetails(pool, results, "sofia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Sofía", "subjects: Álgebra", "Licenciada en matemáticas", "overall 0.67"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in details:\n%s", want, out)
		}
	}

	out, err = matchDetails(pool, results, "ana")
	if err != nil || !strings.Contains(out, "Ana") {
		t.Fatalf("expected the match profile when the pool lacks the id, got %v:\n%s", err, out)
	}

	if _, err := matchDetails(pool, results, "ghost"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestDescribeGate(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	config := &Config{
		Seeker:   &tutor.Seeker{ID: "s", Location: ptr("Cali")},
		Matching: &MatchingConfig{MinScore: ptr(0.5)},
	}

	describeGate(zap.New(core), config, &tutor.Preferences{SubjectQuery: "fisica"})

	steps := observed.FilterMessage("gate step").All()
	if len(steps) != 5 {
		t.Fatalf("expected one entry per gate step, got %d", len(steps))
	}
	enabled := map[string]bool{}
	for _, entry := range steps {
		fields := entry.ContextMap()
		enabled[fields["name"].(string)] = fields["enabled"].(bool)
	}
	if !enabled["subject"] || !enabled["location"] || enabled["price"] || enabled["experience"] || !enabled["min_score"] {
		t.Fatalf("unexpected gate state: %v", enabled)
	}

	quiet, observedQuiet := observer.New(zapcore.InfoLevel)
	describeGate(zap.New(quiet), config, &tutor.Preferences{})
	if observedQuiet.Len() != 0 {
		t.Fatalf("expected nothing logged above debug level, got %d entries", observedQuiet.Len())
	}
}

func TestNewPrimaryScorerRejectsUnknownProvider(t *testing.T) {
	_, err := newPrimaryScorer(t.Context(), &AIConfig{Enabled: true, Provider: "openai"}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "unsupported ai provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestNewPrimaryScorerRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := newPrimaryScorer(t.Context(), &AIConfig{Enabled: true}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	original := version
	version = "v1.2.3"
	t.Cleanup(func() { version = original })

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)

	if got := buf.String(); got != "tutormatch version: v1.2.3\n" {
		t.Fatalf("unexpected version output: %q", got)
	}
}
