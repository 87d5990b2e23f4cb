package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/tutormatch/internal/ai"
	"github.com/spigell/tutormatch/internal/logger"
	"github.com/spigell/tutormatch/internal/tutor"
	"github.com/spigell/tutormatch/internal/utils"
)

const defaultMaxLogLength = 200

var (
	//go:embed prompt.md
	systemPrompt string

	//go:embed schema.json
	responseSchema string

	compileSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	})
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Scorer asks Gemini for a per-candidate compatibility breakdown.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

type scoringPayload struct {
	Seeker      *tutor.Seeker     `json:"seeker"`
	Preferences tutor.Preferences `json:"preferences"`
	Candidates  []tutor.Candidate `json:"candidates"`
}

type scoringResponse struct {
	Matches []ai.RawScore `mapstructure:"matches"`
}

// NewScorer wires a generator into an ai.PrimaryScorer.
func NewScorer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &Scorer{
		generator: generator,
		logger:    logger.WithCommonFields(log, Provider, model),
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) ScoreAll(ctx context.Context, seeker *tutor.Seeker, prefs *tutor.Preferences, candidates []tutor.Candidate) ([]ai.RawScore, error) {
	if s.generator == nil {
		return nil, errors.New("gemini generator is not configured")
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	payload := scoringPayload{Seeker: seeker, Candidates: candidates}
	if prefs != nil {
		payload.Preferences = prefs.Resolve(seeker)
	}

	message, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scoring payload: %w", err)
	}

	s.logger.Debug("gemini scoring request",
		zap.Int("candidates", len(candidates)),
		zap.Int("message_length", utf8.RuneCount(message)),
		zap.String("message_preview", utils.TruncateForLog(string(message), s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, systemPrompt, string(message))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini scoring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseResponse(raw)
}

func parseResponse(raw string) ([]ai.RawScore, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("%w: parse gemini response: %v", ai.ErrMalformedOutput, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: validate gemini response: %v", ai.ErrMalformedOutput, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: %s", ai.ErrMalformedOutput, strings.Join(errs, "; "))
	}

	var resp scoringResponse
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &resp,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: decode gemini response: %v", ai.ErrMalformedOutput, err)
	}

	return resp.Matches, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
