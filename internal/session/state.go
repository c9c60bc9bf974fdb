package session

import "errors"

// Phase is the lifecycle stage of a quiz.
type Phase int

const (
	PhaseNotStarted Phase = iota // Questions loaded, clock not running
	PhaseInProgress              // Accepting answers and navigation
	PhaseCompleted               // Finished; results are frozen
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

var (
	// ErrNoQuestions is returned when a quiz is built from an empty list.
	ErrNoQuestions = errors.New("quiz needs at least one question")

	// ErrNotInProgress is returned by operations that need a running quiz.
	ErrNotInProgress = errors.New("quiz is not in progress")

	// ErrAlreadyStarted is returned by Start on a running or finished quiz.
	ErrAlreadyStarted = errors.New("quiz already started")

	// ErrNotCompleted is returned when results are requested early.
	ErrNotCompleted = errors.New("quiz is not completed")

	// ErrAtFirstQuestion is returned by Previous on the first question.
	ErrAtFirstQuestion = errors.New("already at the first question")

	// ErrAtLastQuestion is returned by Next on the last question.
	ErrAtLastQuestion = errors.New("already at the last question")

	// ErrInvalidIndex is returned for a question index outside the quiz.
	ErrInvalidIndex = errors.New("question index out of range")

	// ErrEmptyAnswer is returned when an answer letter is blank.
	ErrEmptyAnswer = errors.New("answer must not be empty")
)
