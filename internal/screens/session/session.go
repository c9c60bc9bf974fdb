package session

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/cadetcorps/cadet/internal/router"
	"github.com/cadetcorps/cadet/internal/screen"
	"github.com/cadetcorps/cadet/internal/screens/summary"
	sess "github.com/cadetcorps/cadet/internal/session"
	"github.com/cadetcorps/cadet/internal/ui/components"
	"github.com/cadetcorps/cadet/internal/ui/layout"
)

// Finisher scores a quiz and records the outcome.
type Finisher interface {
	FinishQuiz(ctx context.Context, q *sess.Quiz) (*sess.Results, error)
}

// SessionScreen runs one quiz: answering, moving between questions and
// finishing.
type SessionScreen struct {
	quiz     *sess.Quiz
	finisher Finisher
	results  summary.Options
	choice   components.MultiChoice

	// confirmFinish is set after f was pressed with questions unanswered.
	confirmFinish bool
	confirmQuit   bool
	errMsg        string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)

// New creates a screen for a started quiz. results configures the results
// screen shown after finishing.
func New(q *sess.Quiz, finisher Finisher, results summary.Options) *SessionScreen {
	s := &SessionScreen{quiz: q, finisher: finisher, results: results}
	s.syncChoice()
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	return nil
}

func (s *SessionScreen) Title() string {
	if s.quiz.Meta.Topic != "" {
		return "Quiz: " + s.quiz.Meta.Topic
	}
	return "Quiz"
}

func (s *SessionScreen) HandlesEscape() bool { return true }

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Abandon quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case s.confirmFinish:
		return []layout.KeyHint{
			{Key: "F", Description: "Finish anyway"},
			{Key: "any key", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "←→", Description: "Prev/Next"},
		{Key: "F", Description: "Finish"},
		{Key: "Esc", Description: "Quit"},
	}
}

// syncChoice rebuilds the option selector for the current question.
func (s *SessionScreen) syncChoice() {
	chosen, _ := s.quiz.Answer(s.quiz.Index())
	s.choice = components.NewMultiChoice(s.quiz.Current(), chosen)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.PickedMsg:
		return s.handlePicked(msg.Letter)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y":
			s.quiz.Reset()
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "n", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.confirmFinish {
		s.confirmFinish = false
		if key == "f" {
			return s.finish()
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "f":
		if s.quiz.Answered() < s.quiz.Len() {
			s.confirmFinish = true
			return s, nil
		}
		return s.finish()
	case "right", "n", "l", "tab":
		if s.quiz.Next() == nil {
			s.syncChoice()
		}
		return s, nil
	case "left", "p", "h", "shift+tab":
		if s.quiz.Previous() == nil {
			s.syncChoice()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	return s, cmd
}

// handlePicked records the answer and moves on to the next question.
func (s *SessionScreen) handlePicked(letter string) (screen.Screen, tea.Cmd) {
	if err := s.quiz.AnswerCurrent(letter); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.errMsg = ""
	if s.quiz.Next() == nil {
		s.syncChoice()
		return s, nil
	}
	s.choice.Chosen = letter
	return s, nil
}

func (s *SessionScreen) finish() (screen.Screen, tea.Cmd) {
	r, err := s.finisher.FinishQuiz(context.Background(), s.quiz)
	if err != nil {
		s.errMsg = fmt.Sprintf("Could not finish the quiz: %v", err)
		return s, nil
	}
	next := summary.New(r, s.results)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}
