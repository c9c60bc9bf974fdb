package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestRecord is a stored LLM request event.
type LLMRequestRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates calls per purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates tokens per model for cost estimates.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// QuizAttemptData captures one completed quiz.
type QuizAttemptData struct {
	ID               string
	UserID           string
	Topic            string
	Difficulty       string
	CertificateLevel string
	TotalQuestions   int
	CorrectAnswers   int
	Score            float64
	Passed           bool
	Duration         time.Duration
	CompletedAt      time.Time
}

// QuizAttemptRecord is a stored quiz attempt.
type QuizAttemptRecord struct {
	Sequence int64
	QuizAttemptData
}

// EventRepo provides append and query access to domain events.
type EventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// filter accumulates WHERE clauses with $N placeholders.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) add(clause string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, fmt.Sprintf(clause, len(f.args)))
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

func (f *filter) limit(n int) string {
	if n <= 0 {
		return ""
	}
	f.args = append(f.args, n)
	return fmt.Sprintf(" LIMIT $%d", len(f.args))
}

func (o QueryOpts) filter(timeColumn string) *filter {
	f := &filter{}
	if o.After > 0 {
		f.add("sequence > $%d", o.After)
	}
	if o.Before > 0 {
		f.add("sequence < $%d", o.Before)
	}
	if !o.From.IsZero() {
		f.add(timeColumn+" >= $%d", o.From.UnixMilli())
	}
	if !o.To.IsZero() {
		f.add(timeColumn+" <= $%d", o.To.UnixMilli())
	}
	return f
}
