package quizsetup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/router"
	"github.com/cadetcorps/cadet/internal/screen"
	sessionscreen "github.com/cadetcorps/cadet/internal/screens/session"
	"github.com/cadetcorps/cadet/internal/screens/summary"
	sess "github.com/cadetcorps/cadet/internal/session"
	"github.com/cadetcorps/cadet/internal/ui/components"
	"github.com/cadetcorps/cadet/internal/ui/layout"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// Services generates, starts and finishes quizzes.
type Services interface {
	sessionscreen.Finisher
	GenerateQuiz(ctx context.Context, req quiz.Request) ([]quiz.Question, error)
	StartQuiz(questions []quiz.Question, meta sess.Meta) (*sess.Quiz, error)
}

// Prefill seeds the form, e.g. from command line flags.
type Prefill struct {
	Topic            string
	Difficulty       quiz.Difficulty
	CertificateLevel quiz.CertificateLevel
	Count            int
}

const (
	fieldTopic = iota
	fieldLevel
	fieldDifficulty
	fieldCount
	fieldSubmit
	numFields
)

const anyOption = "Any"

type generatedMsg struct {
	questions []quiz.Question
	err       error
}

// QuizSetupScreen collects the quiz parameters and generates the quiz.
type QuizSetupScreen struct {
	svc     Services
	user    string
	results summary.Options

	topic      components.TextInput
	count      components.TextInput
	level      components.Selector
	difficulty components.Selector
	focus      int
	suggestion int

	generating bool
	pending    quiz.Request
	errMsg     string
}

var _ screen.Screen = (*QuizSetupScreen)(nil)
var _ screen.KeyHintProvider = (*QuizSetupScreen)(nil)

// New creates the setup form for user.
func New(svc Services, user string, prefill Prefill, results summary.Options) *QuizSetupScreen {
	levels := []string{anyOption}
	for _, l := range quiz.Levels {
		levels = append(levels, string(l))
	}
	difficulties := []string{anyOption}
	for _, d := range quiz.Difficulties {
		difficulties = append(difficulties, string(d))
	}

	s := &QuizSetupScreen{
		svc:        svc,
		user:       user,
		results:    results,
		topic:      components.NewTextInput("e.g. Map Reading Fundamentals", false, 120),
		count:      components.NewTextInput("10", true, 2),
		level:      components.Selector{Label: "Certificate", Options: levels},
		difficulty: components.Selector{Label: "Difficulty", Options: difficulties},
		suggestion: -1,
	}
	s.topic.SetValue(prefill.Topic)
	s.level.Select(string(prefill.CertificateLevel))
	s.difficulty.Select(string(prefill.Difficulty))
	count := prefill.Count
	if count <= 0 {
		count = 10
	}
	s.count.SetValue(strconv.Itoa(count))
	s.count.Blur()
	return s
}

func (s *QuizSetupScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizSetupScreen) Title() string {
	return "New Quiz"
}

func (s *QuizSetupScreen) KeyHints() []layout.KeyHint {
	if s.generating {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	hints := []layout.KeyHint{{Key: "Tab/↑↓", Description: "Field"}}
	switch s.focus {
	case fieldTopic:
		hints = append(hints, layout.KeyHint{Key: "Ctrl+T", Description: "Suggest topic"})
	case fieldLevel, fieldDifficulty:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Change"})
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Generate"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *QuizSetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		return s.handleGenerated(msg)
	case tea.KeyMsg:
		if s.generating {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s.forward(msg)
}

func (s *QuizSetupScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return s, s.setFocus((s.focus + 1) % numFields)
	case "shift+tab", "up":
		return s, s.setFocus((s.focus - 1 + numFields) % numFields)
	case "enter":
		return s, s.generate()
	case "ctrl+t":
		s.suggestTopic()
		return s, nil
	case "left":
		if s.cycle(-1) {
			return s, nil
		}
	case "right":
		if s.cycle(1) {
			return s, nil
		}
	}
	return s.forward(msg)
}

func (s *QuizSetupScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.focus {
	case fieldTopic:
		s.topic, cmd = s.topic.Update(msg)
	case fieldCount:
		s.count, cmd = s.count.Update(msg)
	}
	return s, cmd
}

func (s *QuizSetupScreen) cycle(step int) bool {
	var sel *components.Selector
	switch s.focus {
	case fieldLevel:
		sel = &s.level
	case fieldDifficulty:
		sel = &s.difficulty
	default:
		return false
	}
	if step > 0 {
		sel.Next()
	} else {
		sel.Prev()
	}
	return true
}

func (s *QuizSetupScreen) setFocus(f int) tea.Cmd {
	s.focus = f
	s.topic.Blur()
	s.count.Blur()
	switch f {
	case fieldTopic:
		return s.topic.Focus()
	case fieldCount:
		return s.count.Focus()
	}
	return nil
}

// suggestTopic fills the topic with the next suggestion for the selected
// certificate level.
func (s *QuizSetupScreen) suggestTopic() {
	topics := s.suggestions()
	if len(topics) == 0 {
		return
	}
	s.suggestion = (s.suggestion + 1) % len(topics)
	s.topic.SetValue(topics[s.suggestion])
}

func (s *QuizSetupScreen) suggestions() []string {
	if v := s.level.Value(); v != anyOption {
		return quiz.Topics(quiz.CertificateLevel(v))
	}
	return quiz.DefaultCategories
}

func (s *QuizSetupScreen) request() (quiz.Request, error) {
	req := quiz.Request{User: s.user, Topic: s.topic.Value()}
	if strings.TrimSpace(req.Topic) == "" {
		return req, quiz.ErrInvalidTopic
	}
	n, err := s.count.NumericValue()
	if err != nil {
		return req, fmt.Errorf("%w: enter a number of questions", quiz.ErrInvalidCount)
	}
	req.Count = n
	if v := s.level.Value(); v != anyOption {
		req.CertificateLevel = quiz.CertificateLevel(v)
	}
	if v := s.difficulty.Value(); v != anyOption {
		req.Difficulty = quiz.Difficulty(v)
	}
	return req, nil
}

func (s *QuizSetupScreen) generate() tea.Cmd {
	req, err := s.request()
	if err != nil {
		s.errMsg = errorText(err)
		return nil
	}
	s.errMsg = ""
	s.generating = true
	s.pending = req
	svc := s.svc
	return func() tea.Msg {
		qs, err := svc.GenerateQuiz(context.Background(), req)
		return generatedMsg{questions: qs, err: err}
	}
}

func (s *QuizSetupScreen) handleGenerated(msg generatedMsg) (screen.Screen, tea.Cmd) {
	s.generating = false
	if msg.err != nil {
		s.errMsg = errorText(msg.err)
		return s, nil
	}
	req := s.pending
	q, err := s.svc.StartQuiz(msg.questions, sess.Meta{
		User:             s.user,
		Topic:            strings.TrimSpace(req.Topic),
		Difficulty:       string(req.Difficulty),
		CertificateLevel: string(req.CertificateLevel),
	})
	if err != nil {
		s.errMsg = errorText(err)
		return s, nil
	}
	next := sessionscreen.New(q, s.svc, s.results)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func errorText(err error) string {
	var (
		rl    *quiz.RateLimitedError
		quota *quiz.QuotaExceededError
	)
	switch {
	case errors.As(err, &rl):
		return "Please wait " + rl.Remaining.Round(time.Second).String() + " before generating another quiz."
	case errors.As(err, &quota):
		return quiz.QuotaGuidance
	case errors.Is(err, quiz.ErrInvalidTopic):
		return "Enter a topic to generate a quiz."
	case errors.Is(err, quiz.ErrInvalidCount):
		return "The number of questions is out of range."
	case errors.Is(err, quiz.ErrNoValidQuestions):
		return "No valid questions came back for that topic. Try rephrasing it."
	}
	return "Could not generate the quiz: " + err.Error()
}

func (s *QuizSetupScreen) View(width, height int) string {
	cw := components.ContentWidth(width, 80)

	label := func(field int, text string) string {
		if s.focus == field {
			return theme.Selected.Render("▸ " + text)
		}
		return theme.Label.Render("  " + text)
	}

	var b strings.Builder
	b.WriteString(label(fieldTopic, "Topic") + "\n  " + s.topic.View() + "\n")
	b.WriteString(theme.Hint.Width(cw-4).Render("  Suggested: "+strings.Join(s.suggestions(), ", ")) + "\n\n")
	b.WriteString(label(fieldLevel, "Certificate  ") + s.level.View(s.focus == fieldLevel) + "\n\n")
	b.WriteString(label(fieldDifficulty, "Difficulty   ") + s.difficulty.View(s.focus == fieldDifficulty) + "\n\n")
	b.WriteString(label(fieldCount, "Questions    ") + s.count.View() + "\n\n")
	b.WriteString("  " + components.NewButton("Generate quiz", s.focus == fieldSubmit).View())

	switch {
	case s.generating:
		b.WriteString("\n\n" + theme.Hint.Render("Generating questions, this can take a few seconds..."))
	case s.errMsg != "":
		b.WriteString("\n\n" + theme.ErrorText.Width(cw-4).Render(s.errMsg))
	}

	return layout.Center(components.Card("Build a quiz", b.String(), cw), width, height)
}
