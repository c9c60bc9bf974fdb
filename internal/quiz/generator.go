package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cadetcorps/cadet/internal/llm"
)

// Gate decides whether a generation request may reach the model now.
// Reserve must be atomic per key. *cooldown.Limiter satisfies it.
type Gate interface {
	Reserve(ctx context.Context, key string) (at time.Time, remaining time.Duration, err error)
	Release(ctx context.Context, key string, at time.Time) error
}

// Observer receives generation outcomes for metrics.
type Observer interface {
	GenerationFinished(outcome string)
	BlocksParsed(valid, dropped int)
}

// Config controls question generation.
type Config struct {
	Temperature  float64
	MaxTokens    int
	DefaultCount int
	MinCount     int
	MaxCount     int
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		Temperature:  0.4,
		MaxTokens:    2000,
		DefaultCount: 10,
		MinCount:     1,
		MaxCount:     50,
	}
}

// Request describes one quiz generation.
type Request struct {
	// User keys the cooldown. Empty means a shared key.
	User             string
	Topic            string
	Count            int
	Difficulty       Difficulty
	CertificateLevel CertificateLevel
}

// Generator builds a prompt, calls the model once and parses the result.
// Nothing is retried: every failure is returned to the caller.
type Generator struct {
	provider llm.Provider
	gate     Gate
	observer Observer
	config   Config
}

// Option customizes a Generator.
type Option func(*Generator)

// WithGate enables the cooldown between model calls.
func WithGate(g Gate) Option {
	return func(gen *Generator) { gen.gate = g }
}

// WithObserver reports outcomes to o.
func WithObserver(o Observer) Option {
	return func(gen *Generator) { gen.observer = o }
}

// NewGenerator creates a Generator backed by provider.
func NewGenerator(provider llm.Provider, cfg Config, opts ...Option) *Generator {
	g := &Generator{provider: provider, config: cfg}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the generator's settings.
func (g *Generator) Config() Config {
	return g.config
}

// Generate produces up to req.Count validated questions.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Question, error) {
	qs, err := g.generate(ctx, req)
	if g.observer != nil {
		g.observer.GenerationFinished(Outcome(err))
	}
	return qs, err
}

func (g *Generator) generate(ctx context.Context, req Request) ([]Question, error) {
	count := req.Count
	if count == 0 {
		count = g.config.DefaultCount
	}
	if count < g.config.MinCount || (g.config.MaxCount > 0 && count > g.config.MaxCount) {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCount, count, g.config.MinCount, g.config.MaxCount)
	}

	prompt, err := BuildPrompt(PromptInput{
		Topic:            req.Topic,
		Count:            count,
		Difficulty:       req.Difficulty,
		CertificateLevel: req.CertificateLevel,
	})
	if err != nil {
		return nil, err
	}

	key := req.User
	if key == "" {
		key = "default"
	}
	var reserved time.Time
	if g.gate != nil {
		at, remaining, err := g.gate.Reserve(ctx, key)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "quiz: cooldown lookup failed", "user", key, "error", err)
		case remaining > 0:
			return nil, &RateLimitedError{Remaining: remaining}
		default:
			reserved = at
		}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		if g.gate != nil {
			if rerr := g.gate.Release(context.WithoutCancel(ctx), key, reserved); rerr != nil {
				slog.WarnContext(ctx, "quiz: cooldown release failed", "user", key, "error", rerr)
			}
		}
		if llm.IsQuotaError(err) {
			return nil, &QuotaExceededError{Err: err}
		}
		return nil, &GenerationError{Err: err}
	}

	meta := Metadata{
		Topic:            strings.TrimSpace(req.Topic),
		Difficulty:       string(req.Difficulty),
		CertificateLevel: string(req.CertificateLevel),
	}
	questions, dropped := ParseResponse(resp.Text, meta)
	for _, d := range dropped {
		slog.DebugContext(ctx, "quiz: dropped question block", "index", d.Index, "reason", d.Reason)
	}
	if g.observer != nil {
		g.observer.BlocksParsed(len(questions), len(dropped))
	}

	if len(questions) == 0 {
		return nil, ErrNoValidQuestions
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

// Outcome maps a Generate error to a short label.
func Outcome(err error) string {
	var (
		rl    *RateLimitedError
		quota *QuotaExceededError
		gen   *GenerationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidTopic):
		return "invalid_topic"
	case errors.Is(err, ErrInvalidCount):
		return "invalid_count"
	case errors.Is(err, ErrNoValidQuestions):
		return "no_valid_questions"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &quota):
		return "quota_exceeded"
	case errors.As(err, &gen):
		return "generation_error"
	}
	return "error"
}
