package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cadetcorps/cadet/internal/event"
	"github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/store"
)

func (s *Services) subscribe() {
	s.Bus.Subscribe(event.NameQuizGenerated, s.onQuizGenerated)
	s.Bus.Subscribe(event.NameQuizCompleted, s.onQuizCompleted)
	s.Bus.Subscribe(event.NameChatAsked, s.onChatAsked)
	s.Bus.Subscribe(event.NameTopicStudied, s.onTopicStudied)
	s.Bus.Subscribe(event.NameStudySession, s.onStudySession)
}

func (s *Services) onQuizGenerated(ctx context.Context, e event.Event) error {
	ev, ok := e.(event.QuizGenerated)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	slog.InfoContext(ctx, "quiz generated", "user", ev.User, "topic", ev.Topic, "questions", ev.Count)
	return nil
}

func (s *Services) onQuizCompleted(ctx context.Context, e event.Event) error {
	ev, ok := e.(event.QuizCompleted)
	if !ok || ev.Results == nil {
		return fmt.Errorf("unexpected event %T", e)
	}
	r := ev.Results
	s.Metrics.QuizCompleted(r.Score())

	err := s.Store.EventRepo().AppendQuizAttempt(ctx, store.QuizAttemptData{
		ID:               uuid.NewString(),
		UserID:           ev.User,
		Topic:            r.Topic,
		Difficulty:       r.Difficulty,
		CertificateLevel: r.CertificateLevel,
		TotalQuestions:   r.Total,
		CorrectAnswers:   r.Correct,
		Score:            r.Score(),
		Passed:           r.Passed,
		Duration:         r.Elapsed,
		CompletedAt:      r.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("record quiz attempt: %w", err)
	}

	return s.record(ev.User, progress.Activity{
		Kind:       progress.ActivityQuizCompleted,
		Score:      r.Score(),
		Topic:      r.Topic,
		Difficulty: r.Difficulty,
	})
}

func (s *Services) onChatAsked(_ context.Context, e event.Event) error {
	ev, ok := e.(event.ChatAsked)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	s.Metrics.ChatAsked()
	return s.record(ev.User, progress.Activity{Kind: progress.ActivityQuestionAsked})
}

func (s *Services) onTopicStudied(_ context.Context, e event.Event) error {
	ev, ok := e.(event.TopicStudied)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	return s.record(ev.User, progress.Activity{Kind: progress.ActivityTopicStudied, Topic: ev.Topic})
}

func (s *Services) onStudySession(_ context.Context, e event.Event) error {
	ev, ok := e.(event.StudySession)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}
	if ev.Minutes <= 0 {
		return nil
	}
	return s.record(ev.User, progress.Activity{Kind: progress.ActivityStudySession, Minutes: ev.Minutes})
}

func (s *Services) record(user string, a progress.Activity) error {
	if s.Tracker == nil || user == "" {
		return nil
	}
	if _, err := s.Tracker.Record(user, a); err != nil {
		return fmt.Errorf("record %s for %s: %w", a.Kind, user, err)
	}
	return nil
}
