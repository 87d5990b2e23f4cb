package engine

import (
	"fmt"
	"time"

	"github.com/spigell/tutormatch/internal/filtering"
	"github.com/spigell/tutormatch/internal/tutor"
)

const (
	DefaultCap            = 6
	DefaultPrimaryTimeout = 10 * time.Second
)

// Options tune a single FindMatches call.
type Options struct {
	Cap            int
	MinScore       float64
	PrimaryTimeout time.Duration
}

// Option overrides one field of Options.
type Option func(*Options)

// WithCap limits the number of returned matches.
func WithCap(n int) Option {
	return func(o *Options) { o.Cap = n }
}

// WithMinScore sets the overall score floor of the rule-based gate.
func WithMinScore(v float64) Option {
	return func(o *Options) { o.MinScore = v }
}

// WithPrimaryTimeout bounds the primary scorer call.
func WithPrimaryTimeout(d time.Duration) Option {
	return func(o *Options) { o.PrimaryTimeout = d }
}

func (o Options) validate() error {
	if o.Cap <= 0 {
		return fmt.Errorf("%w: cap must be positive, got %d", tutor.ErrInvalidPreferences, o.Cap)
	}
	if err := filtering.ValidateMinScore(o.MinScore); err != nil {
		return err
	}
	if o.PrimaryTimeout <= 0 {
		return fmt.Errorf("%w: primary timeout must be positive, got %s", tutor.ErrInvalidPreferences, o.PrimaryTimeout)
	}
	return nil
}
