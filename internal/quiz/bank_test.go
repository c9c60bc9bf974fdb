package quiz

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestImportQuestions_Valid(t *testing.T) {
	doc := `{"questions":[{"question":"What does NCC stand for?","options":{"A":"National Cadet Corps","B":"Other"},"correct_answer":"A","topic":"NCC Basics"}]}`
	qs, err := ImportQuestions(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 1 || qs[0].Answer != "A" || qs[0].Topic != "NCC Basics" {
		t.Errorf("imported %+v", qs)
	}
}

func TestImportQuestions_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":         `{`,
		"no questions":     `{"questions":[]}`,
		"one option":       `{"questions":[{"question":"x","options":{"A":"a"},"correct_answer":"A"}]}`,
		"bad option key":   `{"questions":[{"question":"x","options":{"A":"a","E":"e"},"correct_answer":"A"}]}`,
		"dangling answer":  `{"questions":[{"question":"x","options":{"A":"a","B":"b"},"correct_answer":"C"}]}`,
		"missing question": `{"questions":[{"options":{"A":"a","B":"b"},"correct_answer":"A"}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ImportQuestions(strings.NewReader(doc)); err == nil {
				t.Error("expected import to fail")
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	demo := DemoQuestions()
	if err := ExportQuestions(&buf, demo); err != nil {
		t.Fatal(err)
	}
	got, err := ImportQuestions(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, demo) {
		t.Errorf("round trip changed questions:\n got %+v\nwant %+v", got, demo)
	}
}

func TestFallbackQuestions(t *testing.T) {
	if got := FallbackQuestions("Drill", 5); len(got) != 2 {
		t.Errorf("got %d fallback questions, want 2", len(got))
	}
	if got := FallbackQuestions("Drill", 1); len(got) != 1 || !strings.Contains(got[0].Text, "Drill") {
		t.Errorf("got %+v", got)
	}
	if got := FallbackQuestions("Drill", -1); len(got) != 0 {
		t.Errorf("negative count returned %d questions", len(got))
	}
}
