package quiz

import "sort"

// Letters are the option keys a question may carry, in display order.
var Letters = []string{"A", "B", "C", "D"}

// Question is a single validated multiple-choice question.
//
// A Question returned by this package always satisfies: Text is non-empty,
// Options has at least two entries, and Answer is one of the Options keys.
type Question struct {
	Text        string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"correct_answer"`
	Explanation string            `json:"explanation,omitempty"`

	Topic            string `json:"topic,omitempty"`
	Difficulty       string `json:"difficulty,omitempty"`
	CertificateLevel string `json:"certificate_level,omitempty"`
}

// Keys returns the option letters present on the question, sorted.
func (q Question) Keys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WellFormed reports whether the question carries all four options.
func (q Question) WellFormed() bool {
	if len(q.Options) != len(Letters) {
		return false
	}
	for _, l := range Letters {
		if _, ok := q.Options[l]; !ok {
			return false
		}
	}
	return true
}

// IsCorrect reports whether letter is the right answer.
func (q Question) IsCorrect(letter string) bool {
	return letter != "" && letter == q.Answer
}

// Metadata is attached to every question produced by a single generation.
type Metadata struct {
	Topic            string
	Difficulty       string
	CertificateLevel string
}

func (m Metadata) apply(q *Question) {
	if q.Topic == "" {
		q.Topic = m.Topic
	}
	if q.Difficulty == "" {
		q.Difficulty = m.Difficulty
	}
	if q.CertificateLevel == "" {
		q.CertificateLevel = m.CertificateLevel
	}
}
