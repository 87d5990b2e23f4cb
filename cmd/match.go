package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spigell/tutormatch/internal/ai"
	"github.com/spigell/tutormatch/internal/ai/gemini"
	"github.com/spigell/tutormatch/internal/engine"
	"github.com/spigell/tutormatch/internal/filtering"
	"github.com/spigell/tutormatch/internal/logger"
	"github.com/spigell/tutormatch/internal/secrets"
	"github.com/spigell/tutormatch/internal/tutor"
)

const (
	PromptDetails      = "Show match details"
	PromptReportByCity = "Report by city"
	PromptDumpToFile   = "Dump matches to file"
	PromptExit         = "Exit"
	PromptBack         = "back"

	outputText = "text"
	outputJSON = "json"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptDetails, PromptReportByCity, PromptDumpToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the candidate pool against the configured preferences",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	flags := matchCmd.Flags()
	flags.StringP("candidates", "c", "", "candidate pool file (json or yaml)")
	flags.StringP("subject", "s", "", "subject to search for")
	flags.Float64("max-price", 0, "maximum hourly price, 0 means no limit")
	flags.StringP("location", "l", "", "city, \"online\" or \"any\"")
	flags.String("experience", "", "experience band: beginner, intermediate, expert or any")
	flags.Int("cap", engine.DefaultCap, "maximum number of matches")
	flags.Float64("min-score", filtering.DefaultMinScore, "minimum overall score of a match")
	flags.StringP("output", "o", outputText, "output format: text or json")
	flags.BoolP("yes", "y", false, "do not show the interactive menu after printing matches")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address while running, e.g. :9090")

	viper.BindPFlag("candidates-file", flags.Lookup("candidates"))
	viper.BindPFlag("preferences.subject-query", flags.Lookup("subject"))
	viper.BindPFlag("preferences.max-price", flags.Lookup("max-price"))
	viper.BindPFlag("preferences.location", flags.Lookup("location"))
	viper.BindPFlag("preferences.experience-band", flags.Lookup("experience"))
	viper.BindPFlag("matching.cap", flags.Lookup("cap"))
	viper.BindPFlag("matching.min-score", flags.Lookup("min-score"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the tutormatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	output := strings.ToLower(strings.TrimSpace(cmd.Flag("output").Value.String()))
	if output != outputText && output != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", output))
	}

	if addr := strings.TrimSpace(cmd.Flag("metrics-addr").Value.String()); addr != "" {
		serveMetrics(addr, logger)
	}

	pool, err := tutor.LoadPool(config.CandidatesFile)
	if err != nil {
		logger.Fatal("loading candidate pool",
			zap.Error(err),
			zap.String("hint", "set --candidates or the 'candidates-file' key in the configuration file"),
		)
	}

	logger.Info("candidate pool loaded", zap.Int("count", pool.Len()))

	eng := newEngine(ctx, config, logger)

	prefs := config.Preferences
	if prefs == nil {
		prefs = &tutor.Preferences{}
	}

	describeGate(logger, config, prefs)

	results, err := eng.FindMatches(ctx, config.Seeker, prefs, pool.Tutors)
	if err != nil {
		logger.Fatal("finding matches", zap.Error(err))
	}

	if err := render(os.Stdout, output, results); err != nil {
		logger.Fatal("printing matches", zap.Error(err))
	}

	if len(results) == 0 {
		logger.Info("exiting", zap.String("reason", "no matches found"))
		return
	}

	if cmd.Flag("yes").Value.String() == "true" || output == outputJSON {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, pool, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, pool *tutor.Pool, results []tutor.MatchResult) error {
	switch action {
	case PromptDetails:
		return showDetails(os.Stdout, pool, results)
	case PromptReportByCity:
		pretty, _ := json.MarshalIndent(tutor.ReportByCity(results), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", len(results)))
		return nil
	case PromptDumpToFile:
		filename, err := tutor.DumpResultsToTmpFile(results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(w io.Writer, pool *tutor.Pool, results []tutor.MatchResult) error {
	for {
		items := make([]string, 0, len(results)+1)
		for _, r := range results {
			items = append(items, fmt.Sprintf("%s %s / %.2f", r.Candidate.ID, r.Candidate.Name, r.OverallScore))
		}

		detailsPrompt := promptui.Select{
			Label: "Choose a match and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := detailsPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		details, err := matchDetails(pool, results, strings.Split(selected, " ")[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, details)
	}
}

// matchDetails renders the pool profile of a matched tutor next to its score breakdown.
func matchDetails(pool *tutor.Pool, results []tutor.MatchResult, id string) (string, error) {
	result := findResult(results, id)
	if result == nil {
		return "", fmt.Errorf("there is no such match id %s", id)
	}

	profile := &result.Candidate
	if pool != nil {
		if c := pool.FindByID(id); c != nil {
			profile = c
		}
	}
	return renderDetails(profile, result), nil
}

func findResult(results []tutor.MatchResult, id string) *tutor.MatchResult {
	for i := range results {
		if results[i].Candidate.ID == id {
			return &results[i]
		}
	}
	return nil
}

// describeGate logs which eligibility steps the effective preferences switch on.
func describeGate(logger *zap.Logger, config *Config, prefs *tutor.Preferences) {
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}

	minScore := filtering.DefaultMinScore
	if config.Matching != nil && config.Matching.MinScore != nil {
		minScore = *config.Matching.MinScore
	}

	resolved := prefs.Resolve(config.Seeker)
	for _, status := range filtering.New(filtering.Config{MinScore: minScore}, logger).Describe(&resolved) {
		logger.Debug("gate step",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
}

func newEngine(ctx context.Context, config *Config, logger *zap.Logger) *engine.Engine {
	cfg := engine.Config{}
	if config.Matching != nil {
		cfg.Cap = config.Matching.Cap
		cfg.MinScore = config.Matching.MinScore
		cfg.Synonyms = config.Matching.Synonyms
	}

	deps := engine.Deps{Logger: logger}

	if config.AI != nil && config.AI.Enabled {
		cfg.PrimaryTimeout = config.AI.Timeout

		primary, err := newPrimaryScorer(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("skipping primary scorer, using rule-based matching only", zap.Error(err))
		} else {
			deps.Primary = primary
			deps.PrimaryName = gemini.Provider
		}
	}

	return engine.New(cfg, deps)
}

func newPrimaryScorer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.PrimaryScorer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gcfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries,
		logger.With(zap.Int("ai_retry_attempts", gcfg.MaxRetries)),
	)
	if err != nil {
		return nil, err
	}

	return gemini.NewScorer(generator, logger, gcfg.MaxLogLength), nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}
