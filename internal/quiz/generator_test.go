package quiz

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cadetcorps/cadet/internal/cooldown"
	"github.com/cadetcorps/cadet/internal/llm"
)

// fakeGate records which keys hold a reservation.
type fakeGate struct {
	remaining time.Duration
	err       error
	marked    []string
	released  []string
}

func (g *fakeGate) Reserve(_ context.Context, key string) (time.Time, time.Duration, error) {
	if g.err != nil {
		return time.Time{}, 0, g.err
	}
	if g.remaining > 0 {
		return time.Time{}, g.remaining, nil
	}
	g.marked = append(g.marked, key)
	return time.Unix(1, 0), 0, nil
}

func (g *fakeGate) Release(_ context.Context, key string, _ time.Time) error {
	g.released = append(g.released, key)
	for i, k := range g.marked {
		if k == key {
			g.marked = append(g.marked[:i], g.marked[i+1:]...)
			break
		}
	}
	return nil
}

// blockingProvider holds every call until release is closed.
type blockingProvider struct {
	calls   atomic.Int32
	release chan struct{}
}

func (p *blockingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.calls.Add(1)
	select {
	case <-p.release:
		return &llm.Response{Text: threeMarkedQuestions}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *blockingProvider) ModelID() string { return "blocking" }

type fakeObserver struct {
	outcomes []string
	valid    int
	dropped  int
}

func (o *fakeObserver) GenerationFinished(outcome string) { o.outcomes = append(o.outcomes, outcome) }

func (o *fakeObserver) BlocksParsed(valid, dropped int) {
	o.valid += valid
	o.dropped += dropped
}

func TestGenerate_ParsesModelOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: threeMarkedQuestions})
	gate := &fakeGate{}
	obs := &fakeObserver{}
	gen := NewGenerator(mock, DefaultConfig(), WithGate(gate), WithObserver(obs))

	qs, err := gen.Generate(context.Background(), Request{
		User:             "cadet-1",
		Topic:            "Drill Commands",
		Count:            3,
		Difficulty:       Beginner,
		CertificateLevel: LevelA,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 3 {
		t.Fatalf("got %d questions, want 3", len(qs))
	}
	for _, q := range qs {
		if q.Topic != "Drill Commands" || q.Difficulty != "Beginner" || q.CertificateLevel != string(LevelA) {
			t.Errorf("metadata not applied: %+v", q)
		}
	}

	req, ok := mock.LastRequest()
	if !ok {
		t.Fatal("no model call recorded")
	}
	if req.System == "" || len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
		t.Errorf("unexpected request shape: %+v", req)
	}
	if !strings.Contains(req.Messages[0].Content, "Drill Commands") {
		t.Errorf("prompt does not mention the topic")
	}
	if req.Temperature != DefaultConfig().Temperature {
		t.Errorf("temperature = %v", req.Temperature)
	}

	if len(gate.marked) != 1 || gate.marked[0] != "cadet-1" {
		t.Errorf("marked = %v, want [cadet-1]", gate.marked)
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != "ok" {
		t.Errorf("outcomes = %v", obs.outcomes)
	}
	if obs.valid != 3 || obs.dropped != 0 {
		t.Errorf("valid=%d dropped=%d", obs.valid, obs.dropped)
	}
}

func TestGenerate_TruncatesExtraQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: threeMarkedQuestions})
	gen := NewGenerator(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), Request{Topic: "Drill", Count: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 2 {
		t.Errorf("got %d questions, want 2", len(qs))
	}
}

func TestGenerate_InvalidTopicMakesNoCall(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := NewGenerator(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), Request{Topic: "  ", Count: 3})
	if !errors.Is(err, ErrInvalidTopic) {
		t.Fatalf("err = %v, want ErrInvalidTopic", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("model called %d times", mock.CallCount())
	}
}

func TestGenerate_InvalidCount(t *testing.T) {
	gen := NewGenerator(llm.NewMockProvider(), DefaultConfig())
	for _, n := range []int{-1, 51} {
		if _, err := gen.Generate(context.Background(), Request{Topic: "Drill", Count: n}); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("count %d: err = %v", n, err)
		}
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: threeMarkedQuestions})
	gate := &fakeGate{remaining: 90 * time.Second}
	gen := NewGenerator(mock, DefaultConfig(), WithGate(gate))

	_, err := gen.Generate(context.Background(), Request{Topic: "Drill", Count: 3})
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want RateLimitedError", err)
	}
	if rl.Remaining != 90*time.Second {
		t.Errorf("remaining = %v", rl.Remaining)
	}
	if mock.CallCount() != 0 {
		t.Error("model called while rate limited")
	}
	if len(gate.marked) != 0 {
		t.Error("cooldown marked on a rejected request")
	}
}

func TestGenerate_GateErrorDoesNotBlock(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: threeMarkedQuestions})
	gen := NewGenerator(mock, DefaultConfig(), WithGate(&fakeGate{err: errors.New("redis down")}))

	if _, err := gen.Generate(context.Background(), Request{Topic: "Drill", Count: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerate_ProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{"quota message", errors.New("googleapi: Error 429: Resource has been exhausted (e.g. check quota)."), "quota_exceeded"},
		{"rate limit type", &llm.ErrRateLimit{RetryAfter: time.Minute}, "quota_exceeded"},
		{"other", errors.New("connection reset"), "generation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Err: tt.err})
			gate := &fakeGate{}
			obs := &fakeObserver{}
			gen := NewGenerator(mock, DefaultConfig(), WithGate(gate), WithObserver(obs))

			qs, err := gen.Generate(context.Background(), Request{Topic: "Drill", Count: 3})
			if err == nil || qs != nil {
				t.Fatalf("expected failure, got %d questions", len(qs))
			}
			if got := Outcome(err); got != tt.outcome {
				t.Errorf("outcome = %q, want %q", got, tt.outcome)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("provider error not wrapped: %v", err)
			}
			if len(gate.marked) != 0 {
				t.Error("cooldown kept after a failed call")
			}
			if len(gate.released) != 1 {
				t.Errorf("released = %v, want one release", gate.released)
			}
			if len(obs.outcomes) != 1 || obs.outcomes[0] != tt.outcome {
				t.Errorf("observer saw %v", obs.outcomes)
			}
		})
	}
}

func TestGenerate_ConcurrentRequestsShareOneCooldown(t *testing.T) {
	p := &blockingProvider{release: make(chan struct{})}
	gen := NewGenerator(p, DefaultConfig(),
		WithGate(cooldown.New(cooldown.NewMemoryStore(), 2*time.Minute)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := gen.Generate(ctx, Request{User: "cadet-1", Topic: "Drill", Count: 3})
			errs <- err
		}()
	}

	// The request that lost the reservation returns without waiting for
	// the model; the winner is still blocked inside it.
	first := <-errs
	close(p.release)
	second := <-errs

	var rl *RateLimitedError
	if !errors.As(first, &rl) || rl.Remaining <= 0 {
		t.Fatalf("first result = %v, want RateLimitedError", first)
	}
	if second != nil {
		t.Fatalf("second result = %v, want success", second)
	}
	if n := p.calls.Load(); n != 1 {
		t.Errorf("model called %d times, want 1", n)
	}
}

func TestGenerate_NoValidQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Sorry, I cannot help with that."})
	gate := &fakeGate{}
	gen := NewGenerator(mock, DefaultConfig(), WithGate(gate))

	_, err := gen.Generate(context.Background(), Request{Topic: "Drill", Count: 3})
	if !errors.Is(err, ErrNoValidQuestions) {
		t.Fatalf("err = %v, want ErrNoValidQuestions", err)
	}
	// The model call itself succeeded.
	if len(gate.marked) != 1 || gate.marked[0] != "default" {
		t.Errorf("marked = %v", gate.marked)
	}
}

func TestOutcome(t *testing.T) {
	tests := map[string]error{
		"ok":                 nil,
		"invalid_topic":      ErrInvalidTopic,
		"invalid_count":      ErrInvalidCount,
		"no_valid_questions": ErrNoValidQuestions,
		"rate_limited":       &RateLimitedError{},
		"error":              errors.New("boom"),
	}
	for want, err := range tests {
		if got := Outcome(err); got != want {
			t.Errorf("Outcome(%v) = %q, want %q", err, got, want)
		}
	}
}
