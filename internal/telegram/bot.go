// Package telegram serves quizzes, chat and progress through a Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cadetcorps/cadet/internal/bootstrap"
	"github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/features"
	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/session"
)

// sender is the part of *tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot serves quizzes, the assistant and progress over Telegram, with one
// quiz per chat.
type Bot struct {
	api    *tgbotapi.BotAPI
	client sender
	svc    *bootstrap.Services
	length int

	mu         sync.Mutex
	quizzes    map[int64]*session.Quiz
	assistants map[int64]*chat.Assistant
}

// NewBot connects to Telegram with the configured token.
func NewBot(svc *bootstrap.Services) (*Bot, error) {
	c := svc.Config.Telegram
	api, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	api.Debug = c.Debug

	b := newBot(api, svc)
	b.api = api
	return b, nil
}

func newBot(client sender, svc *bootstrap.Services) *Bot {
	length := svc.Config.Telegram.QuizLength
	if length <= 0 {
		length = 5
	}
	return &Bot{
		client:     client,
		svc:        svc,
		length:     length,
		quizzes:    make(map[int64]*session.Quiz),
		assistants: make(map[int64]*chat.Assistant),
	}
}

// Run polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "telegram: authorised", "account", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// userID names a Telegram user in the progress store.
func userID(u *tgbotapi.User) string {
	return "tg-" + strconv.FormatInt(u.ID, 10)
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	user := userID(m.From)
	args := strings.TrimSpace(m.CommandArguments())

	switch m.Command() {
	case "start", "help":
		b.sendMenu(chatID)
	case "quiz":
		b.startGeneratedQuiz(ctx, chatID, user, args)
	case "demo":
		b.startQuiz(chatID, quiz.DemoQuestions(), session.Meta{User: user, Topic: quiz.DemoTopic})
	case "ask":
		b.ask(ctx, chatID, user, args)
	case "progress":
		b.sendProgress(chatID, user)
	case "quit":
		b.quit(chatID)
	case "":
		// Plain text is treated as a question for the assistant.
		b.ask(ctx, chatID, user, m.Text)
	default:
		b.send(chatID, "Unknown command. Send /help to see what I can do.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	user := userID(cb.From)

	notice := ""
	switch data := cb.Data; {
	case data == "demo":
		b.startQuiz(chatID, quiz.DemoQuestions(), session.Meta{User: user, Topic: quiz.DemoTopic})
	case data == "progress":
		b.sendProgress(chatID, user)
	case data == "menu":
		b.sendMenu(chatID)
	case data == "quit":
		b.quit(chatID)
	case strings.HasPrefix(data, "ans_"):
		notice = b.answer(ctx, chatID, data)
	}

	if _, err := b.client.Request(tgbotapi.NewCallback(cb.ID, notice)); err != nil {
		slog.Warn("telegram: answer callback", "error", err)
	}
}

func (b *Bot) sendMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, menuText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Demo quiz", "demo"),
			tgbotapi.NewInlineKeyboardButtonData("My progress", "progress"),
		),
	)
	b.sendConfig(msg)
}

func (b *Bot) startGeneratedQuiz(ctx context.Context, chatID int64, user, topic string) {
	if topic == "" {
		b.send(chatID, topicHelp())
		return
	}
	if !b.svc.Features.Available(features.Quiz) {
		b.send(chatID, "Quiz generation is unavailable right now. Try /demo instead.")
		return
	}

	b.send(chatID, fmt.Sprintf("Generating %d questions about %s...", b.length, topic))
	questions, err := b.svc.GenerateQuiz(ctx, quiz.Request{User: user, Topic: topic, Count: b.length})
	if err != nil {
		slog.WarnContext(ctx, "telegram: generate quiz", "user", user, "topic", topic, "error", err)
		b.send(chatID, generationErrorText(err))
		return
	}
	b.startQuiz(chatID, questions, session.Meta{User: user, Topic: topic})
}

func (b *Bot) startQuiz(chatID int64, questions []quiz.Question, meta session.Meta) {
	q, err := b.svc.StartQuiz(questions, meta)
	if err != nil {
		slog.Error("telegram: start quiz", "error", err)
		b.send(chatID, "Could not start the quiz.")
		return
	}

	b.mu.Lock()
	b.quizzes[chatID] = q
	b.mu.Unlock()

	b.sendQuestion(chatID, q, 0)
}

func (b *Bot) sendQuestion(chatID int64, q *session.Quiz, i int) {
	question, err := q.Question(i)
	if err != nil {
		return
	}

	msg := tgbotapi.NewMessage(chatID, questionText(question, i, q.Len()))
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(question.Options))
	for _, letter := range question.Keys() {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(letter, fmt.Sprintf("ans_%d_%s", i, letter)))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(buttons...),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Quit quiz", "quit")),
	)
	b.sendConfig(msg)
}

// answer records an "ans_<index>_<letter>" callback and returns the short
// notice shown on the button press.
func (b *Bot) answer(ctx context.Context, chatID int64, data string) string {
	i, letter, ok := parseAnswer(data)
	if !ok {
		return ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	q, exists := b.quizzes[chatID]
	if !exists || q.Phase() != session.PhaseInProgress {
		return "No quiz running. Send /demo or /quiz <topic>."
	}
	if i != q.Index() {
		return "That question was already answered."
	}
	if err := q.AnswerAt(i, letter); err != nil {
		return "That answer was not accepted."
	}

	question, _ := q.Question(i)
	b.send(chatID, feedbackText(question, letter))

	if err := q.Next(); err == nil {
		b.sendQuestion(chatID, q, q.Index())
		return ""
	}

	delete(b.quizzes, chatID)
	r, err := b.svc.FinishQuiz(ctx, q)
	if err != nil {
		slog.ErrorContext(ctx, "telegram: finish quiz", "error", err)
		return ""
	}
	msg := tgbotapi.NewMessage(chatID, resultsText(r))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Another demo", "demo"),
			tgbotapi.NewInlineKeyboardButtonData("My progress", "progress"),
		),
	)
	b.sendConfig(msg)
	return ""
}

func parseAnswer(data string) (int, string, bool) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 || parts[0] != "ans" {
		return 0, "", false
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil || parts[2] == "" {
		return 0, "", false
	}
	return i, parts[2], true
}

func (b *Bot) quit(chatID int64) {
	b.mu.Lock()
	_, ok := b.quizzes[chatID]
	delete(b.quizzes, chatID)
	b.mu.Unlock()

	if !ok {
		b.send(chatID, "No quiz is running.")
		return
	}
	b.send(chatID, "Quiz abandoned. Your result was not saved.")
}

func (b *Bot) ask(ctx context.Context, chatID int64, user, question string) {
	if strings.TrimSpace(question) == "" {
		b.send(chatID, "Ask me anything about NCC, for example:\n/ask "+chat.SampleQuestions[0])
		return
	}

	b.mu.Lock()
	a, ok := b.assistants[chatID]
	if !ok {
		a = b.svc.NewAssistant(user)
		if a != nil {
			b.assistants[chatID] = a
		}
	}
	b.mu.Unlock()

	if a == nil {
		b.send(chatID, "The assistant is unavailable right now.")
		return
	}
	answer, err := a.Ask(ctx, question)
	if err != nil {
		slog.WarnContext(ctx, "telegram: ask", "user", user, "error", err)
		b.send(chatID, chatErrorText(err))
		return
	}
	b.send(chatID, answer)
}

func (b *Bot) sendProgress(chatID int64, user string) {
	if b.svc.Tracker == nil {
		b.send(chatID, "Progress tracking is disabled.")
		return
	}
	report, err := b.svc.Tracker.Report(user)
	if err != nil {
		slog.Error("telegram: load progress", "user", user, "error", err)
		b.send(chatID, "Could not load your progress.")
		return
	}
	b.send(chatID, progressText(report))
}

func (b *Bot) send(chatID int64, text string) {
	b.sendConfig(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendConfig(msg tgbotapi.MessageConfig) {
	if _, err := b.client.Send(msg); err != nil {
		slog.Warn("telegram: send message", "chat", msg.ChatID, "error", err)
	}
}
