package quizsetup

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/router"
	"github.com/cadetcorps/cadet/internal/screens/summary"
	sess "github.com/cadetcorps/cadet/internal/session"
)

type fakeServices struct {
	requests []quiz.Request
	metas    []sess.Meta
	err      error
}

func (f *fakeServices) GenerateQuiz(_ context.Context, req quiz.Request) ([]quiz.Question, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return quiz.DemoQuestions()[:req.Count], nil
}

func (f *fakeServices) StartQuiz(qs []quiz.Question, meta sess.Meta) (*sess.Quiz, error) {
	f.metas = append(f.metas, meta)
	return sess.Begin(qs, meta)
}

func (f *fakeServices) FinishQuiz(_ context.Context, q *sess.Quiz) (*sess.Results, error) {
	return q.Finish()
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *QuizSetupScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func TestQuizSetup_GeneratesAndStartsQuiz(t *testing.T) {
	svc := &fakeServices{}
	s := New(svc, "asha", Prefill{Count: 3}, summary.Options{})

	typeText(s, "  Foot Drill ")
	s.Update(specialKey(tea.KeyTab)) // certificate
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyTab)) // difficulty
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyRight))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a generate command")
	}
	if !s.generating {
		t.Error("expected generating state")
	}
	if !strings.Contains(s.View(100, 40), "Generating questions") {
		t.Error("expected a progress note while generating")
	}

	_, cmd = s.Update(cmd())
	if len(svc.requests) != 1 {
		t.Fatalf("requests = %d", len(svc.requests))
	}
	req := svc.requests[0]
	if req.User != "asha" || req.Count != 3 {
		t.Errorf("request = %+v", req)
	}
	if req.CertificateLevel != quiz.LevelA || req.Difficulty != quiz.Intermediate {
		t.Errorf("level = %q, difficulty = %q", req.CertificateLevel, req.Difficulty)
	}
	if svc.metas[0].Topic != "Foot Drill" {
		t.Errorf("meta topic = %q", svc.metas[0].Topic)
	}

	if cmd == nil {
		t.Fatal("expected navigation to the quiz")
	}
	replace, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if replace.Screen.Title() != "Quiz: Foot Drill" {
		t.Errorf("replaced with %q", replace.Screen.Title())
	}
}

func TestQuizSetup_EmptyTopic(t *testing.T) {
	svc := &fakeServices{}
	s := New(svc, "asha", Prefill{}, summary.Options{})
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Fatal("expected no generation without a topic")
	}
	if s.errMsg != "Enter a topic to generate a quiz." {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if len(svc.requests) != 0 {
		t.Error("model must not be called")
	}
}

func TestQuizSetup_Prefill(t *testing.T) {
	s := New(&fakeServices{}, "asha", Prefill{
		Topic:            "Map Reading",
		Difficulty:       quiz.Advanced,
		CertificateLevel: quiz.LevelC,
		Count:            7,
	}, summary.Options{})

	req, err := s.request()
	if err != nil {
		t.Fatal(err)
	}
	if req.Topic != "Map Reading" || req.Count != 7 {
		t.Errorf("request = %+v", req)
	}
	if req.Difficulty != quiz.Advanced || req.CertificateLevel != quiz.LevelC {
		t.Errorf("difficulty = %q, level = %q", req.Difficulty, req.CertificateLevel)
	}
}

func TestQuizSetup_SuggestTopic(t *testing.T) {
	s := New(&fakeServices{}, "asha", Prefill{CertificateLevel: quiz.LevelB}, summary.Options{})
	s.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	if got := s.topic.Value(); got != quiz.Topics(quiz.LevelB)[0] {
		t.Errorf("topic = %q", got)
	}
	s.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	if got := s.topic.Value(); got != quiz.Topics(quiz.LevelB)[1] {
		t.Errorf("topic = %q", got)
	}
}

func TestQuizSetup_GenerationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"cooldown", &quiz.RateLimitedError{Remaining: 90 * time.Second}, "Please wait 1m30s"},
		{"quota", &quiz.QuotaExceededError{}, "quota has been reached"},
		{"no questions", quiz.ErrNoValidQuestions, "No valid questions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeServices{err: tt.err}
			s := New(svc, "asha", Prefill{Topic: "Drill", Count: 2}, summary.Options{})
			_, cmd := s.Update(specialKey(tea.KeyEnter))
			_, next := s.Update(cmd())
			if next != nil {
				t.Error("expected no navigation on failure")
			}
			if s.generating {
				t.Error("generating flag left set")
			}
			if !strings.Contains(s.errMsg, tt.want) {
				t.Errorf("errMsg = %q, want it to contain %q", s.errMsg, tt.want)
			}
		})
	}
}
