package quiz

import "fmt"

// MinOptions is the fewest options a usable question may carry.
const MinOptions = 2

// Validate turns a candidate into a Question.
//
// When no question line was found the block's first line stands in for the
// question; this recovers blocks whose "Q:" marker was consumed by
// segmentation. Options and answer are checked either way.
func Validate(c Candidate) (Question, *MalformedBlockError) {
	text := c.Question
	if text == "" {
		text = c.FirstLine
	}
	if text == "" {
		return Question{}, &MalformedBlockError{Reason: "empty block"}
	}
	if len(c.Options) < MinOptions {
		return Question{}, &MalformedBlockError{
			Reason: fmt.Sprintf("found %d options, need at least %d", len(c.Options), MinOptions),
		}
	}
	if c.Answer == "" {
		return Question{}, &MalformedBlockError{Reason: "missing answer"}
	}
	if _, ok := c.Options[c.Answer]; !ok {
		return Question{}, &MalformedBlockError{
			Reason: fmt.Sprintf("answer %s is not one of the options", c.Answer),
		}
	}

	opts := make(map[string]string, len(c.Options))
	for k, v := range c.Options {
		opts[k] = v
	}
	return Question{
		Text:        text,
		Options:     opts,
		Answer:      c.Answer,
		Explanation: c.Explanation,
	}, nil
}

// Check reports whether an already-built question satisfies the same
// invariants Validate enforces.
func Check(q Question) error {
	c := Candidate{
		Question:    q.Text,
		Options:     q.Options,
		Answer:      q.Answer,
		Explanation: q.Explanation,
	}
	if _, err := Validate(c); err != nil {
		return err
	}
	return nil
}
