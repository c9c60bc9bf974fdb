package quiz

import (
	"reflect"
	"strings"
	"testing"
)

const threeMarkedQuestions = `QUESTION 1:
Q: What is the word of command to bring a squad to attention?
A) Savdhan
B) Vishram
C) Aaram Se
D) Dahine Mur
ANSWER: A
EXPLANATION: Savdhan brings the squad to the position of attention.

QUESTION 2:
Q: How many wings does the NCC have?
A) Two
B) Three
C) Four
D) Five
ANSWER: B
EXPLANATION: Army, Navy and Air wings.

QUESTION 3:
Q: Which certificate is awarded first?
A) C Certificate
B) B Certificate
C) A Certificate
D) None
ANSWER: C
EXPLANATION: The A certificate is the junior certificate.`

func TestSplitBlocks_QuestionMarkers(t *testing.T) {
	blocks := SplitBlocks(threeMarkedQuestions)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %q", len(blocks), blocks)
	}
	if !strings.HasPrefix(blocks[1], "How many wings") {
		t.Errorf("block 1 starts with %q", blocks[1])
	}
}

func TestSplitBlocks_NumberedQMarkers(t *testing.T) {
	raw := "Q1: First?\nA) a\nB) b\nANSWER: A\nQ2: Second?\nA) a\nB) b\nANSWER: B"
	blocks := SplitBlocks(raw)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[0], "First?") {
		t.Errorf("block 0 = %q", blocks[0])
	}
}

func TestSplitBlocks_SeparatorLines(t *testing.T) {
	raw := "Which wing wears white?\nA) Army\nB) Navy\nANSWER: B\n---\nWho heads the NCC?\nA) DG NCC\nB) A cadet\nANSWER: A\n-----\nThird?\nA) x\nB) y\nANSWER: A"
	blocks := SplitBlocks(raw)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %q", len(blocks), blocks)
	}
}

func TestSplitBlocks_BlankLines(t *testing.T) {
	raw := "One?\nA) x\nB) y\nANSWER: A\n\nTwo?\nA) x\nB) y\nANSWER: B\n  \nThree?\nA) x\nB) y\nANSWER: A"
	blocks := SplitBlocks(raw)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %q", len(blocks), blocks)
	}
}

func TestSplitBlocks_NoMarkers(t *testing.T) {
	raw := "The NCC was raised in 1948 and trains cadets across India in drill and leadership"
	blocks := SplitBlocks(raw)
	if len(blocks) != 1 {
		t.Fatalf("expected exactly 1 block, got %d", len(blocks))
	}
	if blocks[0] != raw {
		t.Errorf("block = %q, want the whole text", blocks[0])
	}
}

func TestSplitBlocks_Empty(t *testing.T) {
	if blocks := SplitBlocks("  \n\n  "); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %q", blocks)
	}
}

func TestSplitBlocks_MarkerBeatsBlankLines(t *testing.T) {
	// The explanation spans a blank line; marker splitting keeps it whole.
	raw := "Q: First?\nA) x\nB) y\nANSWER: A\nEXPLANATION: line one\n\nstill explaining\nQ: Second?\nA) x\nB) y\nANSWER: B"
	blocks := SplitBlocks(raw)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0], "still explaining") {
		t.Errorf("first block lost its tail: %q", blocks[0])
	}
}

func TestExtractFields_WellFormed(t *testing.T) {
	block := `Q: What is the NCC motto?
A) Service Before Self
B) Unity and Discipline
C) Duty, Honor, Country
D) Strength Through Unity
ANSWER: B
EXPLANATION: The motto is Unity and Discipline.`

	c := ExtractFields(block)
	if c.Question != "What is the NCC motto?" {
		t.Errorf("question = %q", c.Question)
	}
	want := map[string]string{
		"A": "Service Before Self",
		"B": "Unity and Discipline",
		"C": "Duty, Honor, Country",
		"D": "Strength Through Unity",
	}
	if !reflect.DeepEqual(c.Options, want) {
		t.Errorf("options = %v, want %v", c.Options, want)
	}
	if c.Answer != "B" {
		t.Errorf("answer = %q, want B", c.Answer)
	}
	if c.Explanation != "The motto is Unity and Discipline." {
		t.Errorf("explanation = %q", c.Explanation)
	}
}

func TestExtractFields_AnswerLetter(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"ANSWER: B", "B"},
		{"answer: d", "D"},
		{"Correct Answer: (c)", "C"},
		{"ANSWER: [A]", "A"},
		{"ANSWER: B) Unity and Discipline", "B"},
		{"ANSWER: Bravo", "B"},
		{"ANSWER: none given", ""},
		{"ANSWER: ?", ""},
	}
	for _, tt := range tests {
		c := ExtractFields("Q: x\nA) one\nB) two\n" + tt.line)
		if c.Answer != tt.want {
			t.Errorf("%q: answer = %q, want %q", tt.line, c.Answer, tt.want)
		}
	}
}

func TestExtractFields_OptionVariants(t *testing.T) {
	c := ExtractFields("Q: x\na) lower\nB. dotted\n  C)   padded  ")
	want := map[string]string{"A": "lower", "B": "dotted", "C": "padded"}
	if !reflect.DeepEqual(c.Options, want) {
		t.Errorf("options = %v, want %v", c.Options, want)
	}
}

func TestExtractFields_ContinuationLines(t *testing.T) {
	block := "Q: Which position?\nA) Savdhan with heels\ntogether\nB) Vishram\nANSWER: A"
	c := ExtractFields(block)
	if got := c.Options["A"]; got != "Savdhan with heels together" {
		t.Errorf("option A = %q", got)
	}
}

func TestExtractFields_LinesBeforeAnyOptionIgnored(t *testing.T) {
	c := ExtractFields("Here is your quiz\nQ: Real question?\nA) x\nB) y\nANSWER: A")
	if c.Question != "Real question?" {
		t.Errorf("question = %q", c.Question)
	}
	if len(c.Options) != 2 {
		t.Errorf("expected 2 options, got %v", c.Options)
	}
}

func TestExtractFields_FirstQuestionWins(t *testing.T) {
	c := ExtractFields("Q: First?\nQ: Second?\nA) x\nB) y\nANSWER: A")
	if c.Question != "First?" {
		t.Errorf("question = %q, want First?", c.Question)
	}
}

func TestExtractFields_EmptyQuestionLineDoesNotBlockLaterOne(t *testing.T) {
	c := ExtractFields("QUESTION 1:\nQ: Real?\nA) x\nB) y\nANSWER: A")
	if c.Question != "Real?" {
		t.Errorf("question = %q, want Real?", c.Question)
	}
}

func TestExtractFields_ExplanationMentioningAnswer(t *testing.T) {
	c := ExtractFields("Q: x\nA) one\nB) two\nC) three\nANSWER: A\nEXPLANATION: the correct answer: C is a trap")
	if c.Answer != "A" {
		t.Errorf("answer = %q, want A", c.Answer)
	}
}

func TestExtractFields_NoteIsExplanation(t *testing.T) {
	c := ExtractFields("Q: x\nA) one\nB) two\nANSWER: A\nNote: remember this")
	if c.Explanation != "remember this" {
		t.Errorf("explanation = %q", c.Explanation)
	}
}

func TestParseResponse_DropsMalformedBlocks(t *testing.T) {
	raw := `Q: Good one?
A) yes
B) no
ANSWER: A
---
Q: Missing answer?
A) yes
B) no
---
Q: Dangling answer?
A) yes
B) no
ANSWER: D`

	qs, dropped := ParseResponse(raw, Metadata{Topic: "Drill"})
	if len(qs) != 1 {
		t.Fatalf("expected 1 valid question, got %d", len(qs))
	}
	if qs[0].Text != "Good one?" {
		t.Errorf("question = %q", qs[0].Text)
	}
	if qs[0].Topic != "Drill" {
		t.Errorf("topic = %q, want Drill", qs[0].Topic)
	}
	if len(dropped) != 2 {
		t.Fatalf("expected 2 dropped blocks, got %d", len(dropped))
	}
	if dropped[0].Index != 1 || dropped[1].Index != 2 {
		t.Errorf("dropped indexes = %d, %d", dropped[0].Index, dropped[1].Index)
	}
}

func TestParseResponse_MarkedQuestions(t *testing.T) {
	qs, dropped := ParseResponse(threeMarkedQuestions, Metadata{})
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped blocks: %v", dropped)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	wantAnswers := []string{"A", "B", "C"}
	for i, q := range qs {
		if q.Answer != wantAnswers[i] {
			t.Errorf("question %d answer = %q, want %q", i, q.Answer, wantAnswers[i])
		}
		if !q.WellFormed() {
			t.Errorf("question %d not well formed: %v", i, q.Options)
		}
	}
	if qs[0].Text != "What is the word of command to bring a squad to attention?" {
		t.Errorf("question 0 text = %q", qs[0].Text)
	}
}

func TestParseResponse_InvariantHolds(t *testing.T) {
	inputs := []string{
		threeMarkedQuestions,
		"",
		"no structure at all",
		"Q: a\nA) x\nANSWER: A",
		"Q: a\nA) x\nB) y\nC) z\nANSWER: C\n\nQ: b\nB) y\nC) z\nANSWER: A",
		"Question 1: a?\nA) x\nB) y\nANSWER: B\nQuestion 2: b?\nC) x\nD) y\nANSWER: D",
		"---\n---\n---",
		"A) x\nB) y\nANSWER: B",
	}
	for _, in := range inputs {
		qs, _ := ParseResponse(in, Metadata{})
		for _, q := range qs {
			if q.Text == "" {
				t.Errorf("input %q: empty question text", in)
			}
			if len(q.Options) < MinOptions {
				t.Errorf("input %q: %d options", in, len(q.Options))
			}
			if _, ok := q.Options[q.Answer]; !ok {
				t.Errorf("input %q: answer %q not in %v", in, q.Answer, q.Options)
			}
		}
	}
}

func TestParseResponse_Idempotent(t *testing.T) {
	for _, q := range DemoQuestions() {
		parsed, dropped := ParseResponse(Format(q), Metadata{})
		if len(dropped) != 0 || len(parsed) != 1 {
			t.Fatalf("%q: parsed %d, dropped %d", q.Text, len(parsed), len(dropped))
		}
		got := parsed[0]
		if got.Text != q.Text {
			t.Errorf("text = %q, want %q", got.Text, q.Text)
		}
		if !reflect.DeepEqual(got.Options, q.Options) {
			t.Errorf("options = %v, want %v", got.Options, q.Options)
		}
		if got.Answer != q.Answer {
			t.Errorf("answer = %q, want %q", got.Answer, q.Answer)
		}
	}
}

func TestParseResponse_FormatAllRoundTrip(t *testing.T) {
	demo := DemoQuestions()
	parsed, dropped := ParseResponse(FormatAll(demo), Metadata{})
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped blocks: %v", dropped)
	}
	if len(parsed) != len(demo) {
		t.Fatalf("parsed %d questions, want %d", len(parsed), len(demo))
	}
	for i := range demo {
		if !reflect.DeepEqual(parsed[i].Options, demo[i].Options) {
			t.Errorf("question %d options = %v, want %v", i, parsed[i].Options, demo[i].Options)
		}
	}
}
