package session

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Detail is the outcome of one question.
type Detail struct {
	Number      int               `json:"number"`
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Chosen      string            `json:"chosen,omitempty"`
	Correct     string            `json:"correct"`
	IsCorrect   bool              `json:"is_correct"`
	Explanation string            `json:"explanation,omitempty"`
}

// Results is the read-only outcome of a completed quiz.
type Results struct {
	QuizID           string          `json:"quiz_id"`
	User             string          `json:"user,omitempty"`
	Topic            string          `json:"topic"`
	Difficulty       string          `json:"difficulty,omitempty"`
	CertificateLevel string          `json:"certificate_level,omitempty"`
	Total            int             `json:"total_questions"`
	Correct          int             `json:"correct_answers"`
	Answered         int             `json:"answered"`
	Percentage       decimal.Decimal `json:"percentage"`
	Grade            string          `json:"grade"`
	Performance      string          `json:"performance"`
	Passed           bool            `json:"passed"`
	StartedAt        time.Time       `json:"started_at"`
	CompletedAt      time.Time       `json:"completed_at"`
	Elapsed          time.Duration   `json:"elapsed_ns"`
	Details          []Detail        `json:"details"`
	Recommendations  []string        `json:"recommendations"`
}

// Score returns the percentage as a float.
func (r *Results) Score() float64 {
	return r.Percentage.InexactFloat64()
}

// Incorrect returns the details of missed or unanswered questions.
func (r *Results) Incorrect() []Detail {
	var out []Detail
	for _, d := range r.Details {
		if !d.IsCorrect {
			out = append(out, d)
		}
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// Percentage returns 100*correct/total rounded to one decimal place.
func Percentage(correct, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(correct)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}

func buildResults(q *Quiz) *Results {
	r := &Results{
		QuizID:           q.ID,
		User:             q.Meta.User,
		Topic:            q.Meta.Topic,
		Difficulty:       q.Meta.Difficulty,
		CertificateLevel: q.Meta.CertificateLevel,
		Total:            len(q.questions),
		Answered:         len(q.answers),
		StartedAt:        q.started,
		CompletedAt:      q.ended,
		Elapsed:          q.ended.Sub(q.started),
		Details:          make([]Detail, 0, len(q.questions)),
	}
	for i, question := range q.questions {
		chosen := q.answers[i]
		ok := question.IsCorrect(chosen)
		if ok {
			r.Correct++
		}
		r.Details = append(r.Details, Detail{
			Number:      i + 1,
			Question:    question.Text,
			Options:     question.Options,
			Chosen:      chosen,
			Correct:     question.Answer,
			IsCorrect:   ok,
			Explanation: question.Explanation,
		})
	}
	r.Percentage = Percentage(r.Correct, r.Total)
	r.Grade = Grade(r.Percentage)
	r.Performance = Performance(r.Percentage)
	r.Passed = r.Percentage.GreaterThanOrEqual(decimal.NewFromFloat(q.passingScore))
	r.Recommendations = Recommendations(r.Topic, r.Percentage)
	return r
}

// Grade maps a percentage to a letter grade.
func Grade(pct decimal.Decimal) string {
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return "A+"
	case pct.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return "A"
	case pct.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return "B"
	case pct.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return "C"
	}
	return "D"
}

// Performance maps a percentage to a short label.
func Performance(pct decimal.Decimal) string {
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return "Excellent"
	case pct.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return "Good"
	}
	return "Needs Improvement"
}

// Recommendations returns study advice for a score on topic.
func Recommendations(topic string, pct decimal.Decimal) []string {
	if topic == "" {
		topic = "this topic"
	}
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return []string{
			fmt.Sprintf("Excellent mastery of %s! Consider moving to advanced topics.", topic),
			"You're ready for higher difficulty challenges.",
			"Help others by sharing your knowledge.",
		}
	case pct.GreaterThanOrEqual(decimal.NewFromInt(75)):
		return []string{
			fmt.Sprintf("Good understanding of %s. Focus on weak areas for improvement.", topic),
			"Review explanations for incorrect answers.",
			"Practice similar topics to reinforce learning.",
		}
	case pct.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return []string{
			fmt.Sprintf("You have basic knowledge of %s. More study needed.", topic),
			"Focus on fundamentals before moving to advanced concepts.",
			"Create study notes for difficult topics.",
		}
	}
	return []string{
		fmt.Sprintf("%s needs significant attention. Start with basics.", topic),
		"Review NCC syllabus materials thoroughly.",
		"Consider getting help from instructors or peers.",
		"Take practice quizzes regularly.",
	}
}

// FormatDuration renders d as "1h 2m 3s", "2m 3s" or "3s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

type exportDoc struct {
	Timestamp        time.Time       `json:"timestamp"`
	Topic            string          `json:"topic"`
	CertificateLevel string          `json:"certificate_level,omitempty"`
	Difficulty       string          `json:"difficulty,omitempty"`
	Score            decimal.Decimal `json:"score"`
	TotalQuestions   int             `json:"total_questions"`
	CorrectAnswers   int             `json:"correct_answers"`
	TimeTakenSeconds int64           `json:"time_taken_seconds"`
	Grade            string          `json:"grade"`
	Recommendations  []string        `json:"recommendations"`
}

// ExportResults writes a summary of r as indented JSON.
func ExportResults(w io.Writer, r *Results, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportDoc{
		Timestamp:        now.UTC(),
		Topic:            r.Topic,
		CertificateLevel: r.CertificateLevel,
		Difficulty:       r.Difficulty,
		Score:            r.Percentage,
		TotalQuestions:   r.Total,
		CorrectAnswers:   r.Correct,
		TimeTakenSeconds: int64(r.Elapsed / time.Second),
		Grade:            r.Grade,
		Recommendations:  r.Recommendations,
	})
}
