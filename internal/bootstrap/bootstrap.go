// Package bootstrap assembles the cadet services from configuration and
// records which capabilities are usable.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/config"
	"github.com/cadetcorps/cadet/internal/cooldown"
	"github.com/cadetcorps/cadet/internal/event"
	"github.com/cadetcorps/cadet/internal/features"
	"github.com/cadetcorps/cadet/internal/llm"
	"github.com/cadetcorps/cadet/internal/metrics"
	"github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/session"
	"github.com/cadetcorps/cadet/internal/store"
)

// Services is everything a front end needs. Optional parts are nil when
// the registry marks them unavailable.
type Services struct {
	Config   config.Config
	Features *features.Registry
	Store    *store.Store
	Bus      *event.Bus
	Metrics  *metrics.Metrics
	Tracker  *progress.Tracker
	Limiter  *cooldown.Limiter

	// Provider and Generator are nil without a usable model.
	Provider  llm.Provider
	Generator *quiz.Generator

	// Bank holds questions imported from quiz.bank, if any.
	Bank []quiz.Question

	redis    redis.UniversalClient
	provider llm.Provider
}

// Option customizes Build.
type Option func(*Services)

// WithProvider uses p instead of the provider named in the configuration.
// Calls are still recorded in the store and observed by metrics.
func WithProvider(p llm.Provider) Option {
	return func(s *Services) { s.provider = p }
}

// Build opens the store, connects the model and wires the activity
// subscribers. Close releases what Build opened.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Services{
		Config:   cfg,
		Features: features.NewRegistry(),
		Bus:      event.NewBus(),
		Metrics:  metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Features.Register(features.Metrics, true, "prometheus")

	if err := s.initStore(ctx); err != nil {
		return nil, err
	}
	if err := s.initCooldown(ctx); err != nil {
		s.Close()
		return nil, err
	}
	s.initProgress()
	s.initLLM(ctx)
	s.initBank()
	s.applyFlags()
	s.subscribe()

	for _, c := range s.Features.Report() {
		slog.Debug("bootstrap: capability", "name", c.Name, "available", c.Available, "detail", c.Reason)
	}
	return s, nil
}

func (s *Services) initStore(ctx context.Context) error {
	driver, err := store.ParseDriver(s.Config.Store.Driver)
	if err != nil {
		return err
	}
	dsn := s.Config.Store.DSN
	if driver == store.DriverSQLite {
		if dsn == "" {
			if dsn, err = store.DefaultDBPath(); err != nil {
				return fmt.Errorf("resolve database path: %w", err)
			}
		} else if err := store.EnsureDir(dsn); err != nil {
			return err
		}
	}

	st, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	s.Store = st
	s.Features.Register(features.Store, true, string(driver))
	return nil
}

func (s *Services) initCooldown(ctx context.Context) error {
	interval := s.Config.Quiz.Cooldown

	var backend cooldown.Store
	switch s.Config.Cooldown.Backend {
	case "memory":
		backend = cooldown.NewMemoryStore()
	case "sql":
		backend = s.Store.Cooldowns()
	case "redis":
		rc := s.Config.Cooldown.Redis
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    rc.Addrs,
			Password: rc.Password,
		})
		cooldown.LogCommands(client)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("connect redis: %w", err)
		}
		s.redis = client
		backend = cooldown.NewRedisStore(client, rc.Prefix, interval)
	}

	s.Limiter = cooldown.New(backend, interval)
	s.Features.Register(features.Cooldown, true, fmt.Sprintf("%s, %s", s.Config.Cooldown.Backend, interval))
	return nil
}

func (s *Services) initProgress() {
	fs := progress.NewFileStore(s.Config.DataDir)
	if err := os.MkdirAll(fs.Dir(), 0o755); err != nil {
		s.Features.Register(features.Progress, false, err.Error())
		return
	}
	s.Tracker = progress.NewTracker(fs)
	s.Features.Register(features.Progress, true, fs.Dir())
}

func (s *Services) initLLM(ctx context.Context) {
	provider, err := s.newProvider(ctx)
	if err != nil {
		slog.Warn("bootstrap: model unavailable", "error", err)
		s.Features.Register(features.LLM, false, err.Error())
		s.Features.Register(features.Quiz, false, "no model configured")
		s.Features.Register(features.Chat, false, "no model configured")
		s.Features.Register(features.Demo, true, "built-in questions")
		return
	}

	s.Provider = provider
	s.Generator = quiz.NewGenerator(provider, s.generatorConfig(),
		quiz.WithGate(s.Limiter),
		quiz.WithObserver(s.Metrics),
	)
	detail := fmt.Sprintf("%s (%s)", s.Config.LLM.Provider, provider.ModelID())
	s.Features.Register(features.LLM, true, detail)
	s.Features.Register(features.Quiz, true, detail)
	s.Features.Register(features.Chat, true, detail)
	s.Features.Register(features.Demo, true, "built-in questions")
}

func (s *Services) newProvider(ctx context.Context) (llm.Provider, error) {
	if s.provider != nil {
		return llm.WithLogging(s.provider, s.Store.EventRepo(), s.Metrics), nil
	}
	return llm.NewProvider(ctx, s.Config.LLM, s.Store.EventRepo(), s.Metrics)
}

func (s *Services) generatorConfig() quiz.Config {
	q := s.Config.Quiz
	return quiz.Config{
		Temperature:  q.Generation.Temperature,
		MaxTokens:    q.Generation.MaxTokens,
		DefaultCount: q.DefaultCount,
		MinCount:     q.MinCount,
		MaxCount:     q.MaxCount,
	}
}

func (s *Services) initBank() {
	path := s.Config.Quiz.Bank
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("bootstrap: question bank unavailable", "path", path, "error", err)
		return
	}
	defer f.Close()
	qs, err := quiz.ImportQuestions(f)
	if err != nil {
		slog.Warn("bootstrap: question bank rejected", "path", path, "error", err)
		return
	}
	s.Bank = qs
}

func (s *Services) applyFlags() {
	f := s.Config.Features
	if !f.Quiz {
		s.Features.Disable(features.Quiz, "disabled by configuration")
		s.Generator = nil
	}
	if !f.Chat {
		s.Features.Disable(features.Chat, "disabled by configuration")
	}
	if !f.Progress {
		s.Features.Disable(features.Progress, "disabled by configuration")
		s.Tracker = nil
	}

	switch {
	case !f.Telegram:
		s.Features.Register(features.Telegram, false, "disabled by configuration")
	case s.Config.Telegram.Token == "":
		s.Features.Register(features.Telegram, false, "CADET_TELEGRAM_TOKEN not set")
	default:
		s.Features.Register(features.Telegram, true, "token configured")
	}
}

// NewAssistant returns a chat assistant for user, or nil when chat is
// unavailable.
func (s *Services) NewAssistant(user string) *chat.Assistant {
	if s.Provider == nil || !s.Features.Available(features.Chat) {
		return nil
	}
	c := s.Config.Chat
	return chat.New(s.Provider, chat.Config{
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		History:     c.History,
	}, chat.WithUser(user), chat.WithPublisher(s.Bus))
}

// StartQuiz begins a quiz with the configured passing score.
func (s *Services) StartQuiz(questions []quiz.Question, meta session.Meta) (*session.Quiz, error) {
	return session.Begin(questions, meta, session.WithPassingScore(s.Config.Quiz.PassingScore))
}

// ErrQuizUnavailable is returned by GenerateQuiz when no generator is wired.
var ErrQuizUnavailable = errors.New("quiz generation is unavailable")

// GenerateQuiz asks the model for a quiz and announces it on the bus.
func (s *Services) GenerateQuiz(ctx context.Context, req quiz.Request) ([]quiz.Question, error) {
	if s.Generator == nil {
		return nil, ErrQuizUnavailable
	}
	qs, err := s.Generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	topic := strings.TrimSpace(req.Topic)
	s.Bus.Publish(ctx, event.QuizGenerated{User: req.User, Topic: topic, Count: len(qs)})
	s.Bus.Publish(ctx, event.TopicStudied{User: req.User, Topic: topic})
	return qs, nil
}

// FinishQuiz scores q and publishes the results for persistence.
func (s *Services) FinishQuiz(ctx context.Context, q *session.Quiz) (*session.Results, error) {
	r, err := q.Finish()
	if err != nil {
		return nil, err
	}
	s.Bus.Publish(ctx, event.QuizCompleted{User: q.Meta.User, Results: r})
	return r, nil
}

// Close stops the bus and releases connections.
func (s *Services) Close() {
	s.Bus.Stop()
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Warn("bootstrap: close redis", "error", err)
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			slog.Warn("bootstrap: close store", "error", err)
		}
	}
}
