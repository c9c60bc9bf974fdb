// Package session runs a single multiple-choice quiz: navigation, answers,
// completion and scoring.
package session

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cadetcorps/cadet/internal/quiz"
)

// DefaultPassingScore is the percentage needed to pass.
const DefaultPassingScore = 70

// Meta describes what the quiz was generated for.
type Meta struct {
	User             string
	Topic            string
	Difficulty       string
	CertificateLevel string
}

// Quiz is one run through a fixed list of questions. It is not safe for
// concurrent use; callers that share a Quiz must lock around it.
type Quiz struct {
	ID   string
	Meta Meta

	questions []quiz.Question
	index     int
	answers   map[int]string
	phase     Phase
	started   time.Time
	ended     time.Time
	results   *Results

	passingScore float64
	now          func() time.Time
}

// Option customizes a Quiz.
type Option func(*Quiz)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Quiz) { q.now = now }
}

// WithPassingScore sets the percentage needed to pass.
func WithPassingScore(pct float64) Option {
	return func(q *Quiz) { q.passingScore = pct }
}

// WithID sets the quiz id instead of generating one.
func WithID(id string) Option {
	return func(q *Quiz) { q.ID = id }
}

// New creates a quiz in PhaseNotStarted. The question list is copied and
// only Reset changes it.
func New(questions []quiz.Question, meta Meta, opts ...Option) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	q := &Quiz{
		ID:           uuid.NewString(),
		Meta:         meta,
		questions:    append([]quiz.Question(nil), questions...),
		answers:      make(map[int]string),
		passingScore: DefaultPassingScore,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Begin creates a quiz and starts it.
func Begin(questions []quiz.Question, meta Meta, opts ...Option) (*Quiz, error) {
	q, err := New(questions, meta, opts...)
	if err != nil {
		return nil, err
	}
	if err := q.Start(); err != nil {
		return nil, err
	}
	return q, nil
}

// Start moves the quiz to PhaseInProgress and starts the clock.
func (q *Quiz) Start() error {
	if q.phase != PhaseNotStarted {
		return ErrAlreadyStarted
	}
	if len(q.questions) == 0 {
		return ErrNoQuestions
	}
	q.phase = PhaseInProgress
	q.started = q.now()
	q.index = 0
	return nil
}

// AnswerCurrent records letter for the current question, replacing any
// earlier answer. Letters that are not option keys score as incorrect.
func (q *Quiz) AnswerCurrent(letter string) error {
	return q.AnswerAt(q.index, letter)
}

// AnswerAt records letter for question i without moving the cursor.
func (q *Quiz) AnswerAt(i int, letter string) error {
	if q.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if i < 0 || i >= len(q.questions) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return ErrEmptyAnswer
	}
	q.answers[i] = letter
	return nil
}

// Next moves to the following question.
func (q *Quiz) Next() error {
	if q.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if q.index >= len(q.questions)-1 {
		return ErrAtLastQuestion
	}
	q.index++
	return nil
}

// Previous moves to the preceding question.
func (q *Quiz) Previous() error {
	if q.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if q.index == 0 {
		return ErrAtFirstQuestion
	}
	q.index--
	return nil
}

// Jump moves the cursor to question i.
func (q *Quiz) Jump(i int) error {
	if q.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if i < 0 || i >= len(q.questions) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	q.index = i
	return nil
}

// Finish completes the quiz, freezes the end time and returns the results.
// Unanswered questions count as incorrect.
func (q *Quiz) Finish() (*Results, error) {
	if q.phase != PhaseInProgress {
		return nil, ErrNotInProgress
	}
	q.phase = PhaseCompleted
	q.ended = q.now()
	q.results = buildResults(q)
	return q.results, nil
}

// Reset clears the questions, answers, index, times and the topic metadata
// and returns the quiz to PhaseNotStarted. The user is kept. A reset quiz
// has nothing to start; build a new one to play again.
func (q *Quiz) Reset() {
	q.Meta = Meta{User: q.Meta.User}
	q.questions = nil
	q.phase = PhaseNotStarted
	q.index = 0
	q.answers = make(map[int]string)
	q.started = time.Time{}
	q.ended = time.Time{}
	q.results = nil
}

// Results returns the frozen results of a completed quiz.
func (q *Quiz) Results() (*Results, error) {
	if q.phase != PhaseCompleted {
		return nil, ErrNotCompleted
	}
	return q.results, nil
}

// Phase returns the lifecycle stage.
func (q *Quiz) Phase() Phase { return q.phase }

// Index returns the current question index.
func (q *Quiz) Index() int { return q.index }

// Len returns the number of questions.
func (q *Quiz) Len() int { return len(q.questions) }

// Current returns the question under the cursor, or the zero question
// after Reset.
func (q *Quiz) Current() quiz.Question {
	if q.index >= len(q.questions) {
		return quiz.Question{}
	}
	return q.questions[q.index]
}

// Question returns question i.
func (q *Quiz) Question(i int) (quiz.Question, error) {
	if i < 0 || i >= len(q.questions) {
		return quiz.Question{}, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	return q.questions[i], nil
}

// Questions returns a copy of the question list.
func (q *Quiz) Questions() []quiz.Question {
	return append([]quiz.Question(nil), q.questions...)
}

// Answer returns the letter recorded for question i.
func (q *Quiz) Answer(i int) (string, bool) {
	a, ok := q.answers[i]
	return a, ok
}

// Answers returns a copy of the recorded answers.
func (q *Quiz) Answers() map[int]string {
	return maps.Clone(q.answers)
}

// Answered returns how many questions have an answer.
func (q *Quiz) Answered() int { return len(q.answers) }

// CorrectCount returns the number of recorded answers that match.
func (q *Quiz) CorrectCount() int {
	n := 0
	for i, a := range q.answers {
		if i < len(q.questions) && q.questions[i].IsCorrect(a) {
			n++
		}
	}
	return n
}

// StartedAt returns when the quiz started, or the zero time.
func (q *Quiz) StartedAt() time.Time { return q.started }

// EndedAt returns when the quiz finished, or the zero time.
func (q *Quiz) EndedAt() time.Time { return q.ended }

// Elapsed is the time spent so far, or the final time once completed.
func (q *Quiz) Elapsed() time.Duration {
	switch q.phase {
	case PhaseInProgress:
		return q.now().Sub(q.started)
	case PhaseCompleted:
		return q.ended.Sub(q.started)
	}
	return 0
}

// PassingScore returns the percentage needed to pass.
func (q *Quiz) PassingScore() float64 { return q.passingScore }
