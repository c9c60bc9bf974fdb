package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/cadetcorps/cadet/internal/bootstrap"
	"github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/session"
)

// Error codes returned in the "code" field of an error body.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeRateLimited     = "rate_limited"
	CodeQuotaExceeded   = "quota_exceeded"
	CodeUpstream        = "upstream_error"
	CodeNoQuestions     = "no_valid_questions"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal"
)

var code2http = map[string]int{
	CodeInvalidArgument: http.StatusBadRequest,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeQuotaExceeded:   http.StatusServiceUnavailable,
	CodeUpstream:        http.StatusBadGateway,
	CodeNoQuestions:     http.StatusUnprocessableEntity,
	CodeUnavailable:     http.StatusServiceUnavailable,
	CodeInternal:        http.StatusInternalServerError,
}

// Error is the JSON body of every failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// RetryAfter is set for rate-limited requests, in whole seconds.
	RetryAfter int `json:"retry_after,omitempty"`
	err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) HTTPStatusCode() int {
	if c, ok := code2http[e.Code]; ok {
		return c
	}
	return http.StatusInternalServerError
}

func newError(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

var errQuizNotFound = newError(CodeNotFound, "quiz not found")

// Convert maps domain errors to an API error.
func Convert(err error) *Error {
	var (
		apiErr    *Error
		rl        *quiz.RateLimitedError
		quota     *quiz.QuotaExceededError
		chatQuota *chat.QuotaExceededError
		gen       *quiz.GenerationError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &rl):
		e := newError(CodeRateLimited, rl.Error())
		e.RetryAfter = int(math.Ceil(rl.Remaining.Seconds()))
		return e
	case errors.As(err, &quota):
		return newError(CodeQuotaExceeded, quiz.QuotaGuidance)
	case errors.As(err, &chatQuota):
		return newError(CodeQuotaExceeded, chat.QuotaGuidance)
	case errors.As(err, &gen):
		return &Error{Code: CodeUpstream, Message: "the model request failed: " + gen.Err.Error(), err: err}
	case errors.Is(err, quiz.ErrNoValidQuestions):
		return newError(CodeNoQuestions, err.Error())
	case errors.Is(err, quiz.ErrInvalidTopic),
		errors.Is(err, quiz.ErrInvalidCount),
		errors.Is(err, chat.ErrEmptyQuestion),
		errors.Is(err, progress.ErrInvalidUser),
		errors.Is(err, session.ErrInvalidIndex),
		errors.Is(err, session.ErrEmptyAnswer):
		return newError(CodeInvalidArgument, err.Error())
	case errors.Is(err, session.ErrNotInProgress),
		errors.Is(err, session.ErrAlreadyStarted),
		errors.Is(err, session.ErrNotCompleted),
		errors.Is(err, session.ErrAtFirstQuestion),
		errors.Is(err, session.ErrAtLastQuestion):
		return newError(CodeConflict, err.Error())
	case errors.Is(err, bootstrap.ErrQuizUnavailable):
		return newError(CodeUnavailable, err.Error())
	}
	return &Error{Code: CodeInternal, Message: "internal error", err: err}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server: encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := Convert(err)
	status := e.HTTPStatusCode()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "server: request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	writeJSON(w, status, e)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &Error{Code: CodeInvalidArgument, Message: "invalid request body: " + err.Error(), err: err}
	}
	return nil
}
