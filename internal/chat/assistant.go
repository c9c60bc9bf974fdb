// Package chat answers free-form NCC questions through the model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cadetcorps/cadet/internal/event"
	"github.com/cadetcorps/cadet/internal/llm"
	"github.com/cadetcorps/cadet/internal/session"
)

const systemPrompt = `You are an expert NCC (National Cadet Corps) assistant with in-depth knowledge of:
- NCC syllabus for A, B, and C certificates
- Drill commands and procedures
- Map reading and field craft
- Weapon training and safety
- First aid and field engineering
- Military history and current affairs
- Leadership and discipline
- Adventure activities and camps

Provide accurate, helpful, and detailed responses to all NCC-related queries.
Keep responses informative but concise, and include practical examples where relevant.`

// SampleQuestions are suggestions shown in an empty conversation.
var SampleQuestions = []string{
	"What are the basic drill commands in NCC?",
	"Explain the NCC pledge and its significance",
	"What are the different types of NCC certificates?",
	"How to read a military map?",
	"What is the importance of discipline in NCC?",
	"Explain the rank structure in NCC",
}

// ErrEmptyQuestion is returned when the question is blank.
var ErrEmptyQuestion = errors.New("question must not be empty")

// QuotaGuidance is shown when the provider's quota is exhausted.
const QuotaGuidance = `The model API quota has been reached. Please:
1. Wait a few minutes and try again
2. Check your API usage with your provider
3. Consider upgrading your plan if needed

Try asking simpler questions or wait before making more requests.`

// QuotaExceededError wraps a provider quota or 429 failure.
type QuotaExceededError struct {
	Err error
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("model quota exceeded: %v", e.Err)
}

func (e *QuotaExceededError) Unwrap() error { return e.Err }

// Config controls the assistant's requests.
type Config struct {
	Temperature float64
	MaxTokens   int
	// History is the number of earlier turns sent with each question.
	History int
}

// DefaultConfig returns the standard chat settings.
func DefaultConfig() Config {
	return Config{Temperature: 0.3, MaxTokens: 1000, History: 10}
}

// Turn is one exchange in the conversation.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Assistant holds one conversation. It is safe for concurrent use, but
// questions are answered one at a time.
type Assistant struct {
	provider  llm.Provider
	config    Config
	user      string
	publisher event.Publisher

	mu      sync.Mutex
	history []Turn
}

// Option customizes an Assistant.
type Option func(*Assistant)

// WithUser names the cadet the conversation belongs to.
func WithUser(user string) Option {
	return func(a *Assistant) { a.user = user }
}

// WithPublisher reports each answered question on p.
func WithPublisher(p event.Publisher) Option {
	return func(a *Assistant) { a.publisher = p }
}

// New creates an Assistant backed by provider.
func New(provider llm.Provider, cfg Config, opts ...Option) *Assistant {
	a := &Assistant{provider: provider, config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask sends question with the recent history and returns the answer.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx = llm.WithPurpose(ctx, llm.PurposeChat)
	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    a.messages(question),
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	if err != nil {
		if llm.IsQuotaError(err) {
			return "", &QuotaExceededError{Err: err}
		}
		return "", fmt.Errorf("ask assistant: %w", err)
	}

	answer := strings.TrimSpace(resp.Text)
	a.history = append(a.history, Turn{Question: question, Answer: answer})
	if keep := a.config.History; keep >= 0 && len(a.history) > keep {
		a.history = append([]Turn(nil), a.history[len(a.history)-keep:]...)
	}

	if a.publisher != nil {
		a.publisher.Publish(ctx, event.ChatAsked{User: a.user, Question: question})
	}
	return answer, nil
}

func (a *Assistant) messages(question string) []llm.Message {
	msgs := make([]llm.Message, 0, 2*len(a.history)+1)
	for _, t := range a.history {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: t.Question},
			llm.Message{Role: llm.RoleAssistant, Content: t.Answer},
		)
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: question})
}

// History returns a copy of the remembered turns, oldest first.
func (a *Assistant) History() []Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Turn(nil), a.history...)
}

// Clear forgets the conversation.
func (a *Assistant) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// ResultsQuestion builds the follow-up question a cadet asks about a
// finished quiz.
func ResultsQuestion(r *session.Results) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I just completed a quiz on %s and scored %s%% (%d out of %d).",
		r.Topic, r.Percentage.StringFixed(1), r.Correct, r.Total)
	if missed := r.Incorrect(); len(missed) > 0 {
		b.WriteString(" I got these questions wrong:\n")
		for _, d := range missed {
			fmt.Fprintf(&b, "- %s (correct answer: %s) %s\n", d.Question, d.Correct, d.Options[d.Correct])
		}
	}
	b.WriteString(" Can you help me understand the topics I struggled with and suggest how to improve?")
	return b.String()
}

// AskAboutResults asks the assistant to review a finished quiz.
func (a *Assistant) AskAboutResults(ctx context.Context, r *session.Results) (string, error) {
	return a.Ask(ctx, ResultsQuestion(r))
}
