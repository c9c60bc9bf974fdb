package quiz

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTopic is returned when the topic is empty after trimming.
	// No model call is made.
	ErrInvalidTopic = errors.New("topic must not be empty")

	// ErrInvalidCount is returned when the requested question count is
	// outside the configured bounds.
	ErrInvalidCount = errors.New("question count out of range")

	// ErrNoValidQuestions is returned when every parsed block was rejected.
	ErrNoValidQuestions = errors.New("no valid questions generated, try a different topic")
)

// QuotaGuidance is shown to the user when the model provider reports that
// its quota is exhausted.
const QuotaGuidance = `The model API quota has been reached. Please:
1. Wait a few minutes and try again
2. Check your API usage with your provider
3. Consider upgrading your plan if needed`

// RateLimitedError is returned when the local cooldown has not elapsed.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("please wait %s before generating another quiz", e.Remaining.Round(time.Second))
}

// QuotaExceededError wraps a provider failure that reports quota or HTTP
// 429 exhaustion. It is never retried automatically.
type QuotaExceededError struct {
	Err error
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("model quota exceeded: %v", e.Err)
}

func (e *QuotaExceededError) Unwrap() error { return e.Err }

// GenerationError wraps any other failure from the model call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate questions: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MalformedBlockError describes a candidate block that failed validation.
// These are logged and dropped, never returned to the caller of Generate.
type MalformedBlockError struct {
	Index  int
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("malformed question block %d: %s", e.Index, e.Reason)
}
