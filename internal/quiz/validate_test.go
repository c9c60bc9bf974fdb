package quiz

import (
	"strings"
	"testing"
)

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		cand   Candidate
		reason string
	}{
		{
			name:   "empty",
			cand:   Candidate{Options: map[string]string{}},
			reason: "empty block",
		},
		{
			name:   "one option",
			cand:   Candidate{Question: "x?", Options: map[string]string{"A": "only"}, Answer: "A"},
			reason: "found 1 options",
		},
		{
			name:   "missing answer",
			cand:   Candidate{Question: "x?", Options: map[string]string{"A": "a", "B": "b"}},
			reason: "missing answer",
		},
		{
			name:   "dangling answer",
			cand:   Candidate{Question: "x?", Options: map[string]string{"A": "a", "B": "b"}, Answer: "C"},
			reason: "answer C is not one of the options",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.cand)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if !strings.Contains(err.Reason, tt.reason) {
				t.Errorf("reason = %q, want it to contain %q", err.Reason, tt.reason)
			}
		})
	}
}

func TestValidate_FirstLineStandsInForQuestion(t *testing.T) {
	q, err := Validate(Candidate{
		Options:   map[string]string{"A": "a", "B": "b"},
		Answer:    "B",
		FirstLine: "Which wing?",
	})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if q.Text != "Which wing?" {
		t.Errorf("text = %q", q.Text)
	}
}

func TestValidate_CopiesOptions(t *testing.T) {
	opts := map[string]string{"A": "a", "B": "b"}
	q, err := Validate(Candidate{Question: "x?", Options: opts, Answer: "A"})
	if err != nil {
		t.Fatal(err)
	}
	opts["A"] = "changed"
	if q.Options["A"] != "a" {
		t.Errorf("question shares the candidate's option map")
	}
}

func TestCheck(t *testing.T) {
	for _, q := range DemoQuestions() {
		if err := Check(q); err != nil {
			t.Errorf("%q: %v", q.Text, err)
		}
	}
	bad := Question{Text: "x?", Options: map[string]string{"A": "a", "B": "b"}, Answer: "D"}
	if err := Check(bad); err == nil {
		t.Error("expected Check to reject a dangling answer")
	}
}

func TestQuestion_IsCorrect(t *testing.T) {
	q := DemoQuestions()[0]
	if !q.IsCorrect("A") {
		t.Error("A should be correct")
	}
	if q.IsCorrect("B") || q.IsCorrect("") {
		t.Error("only A is correct")
	}
}
