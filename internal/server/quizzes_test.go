package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/session"
)

func newSessionQuiz(t *testing.T) *session.Quiz {
	t.Helper()
	q, err := session.New(quiz.DemoQuestions(), session.Meta{Topic: quiz.DemoTopic})
	require.NoError(t, err)
	return q
}

func TestQuizzes_SweepsIdleEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	qs := newQuizzes()
	qs.now = func() time.Time { return now }

	idle := newSessionQuiz(t)
	active := newSessionQuiz(t)
	qs.put(idle)
	qs.put(active)

	now = now.Add(quizTTL - time.Minute)
	require.NoError(t, qs.with(active.ID, func(*session.Quiz) error { return nil }))

	now = now.Add(2 * time.Minute)
	qs.put(newSessionQuiz(t))

	assert.Equal(t, 2, qs.len())
	assert.ErrorIs(t, qs.with(idle.ID, func(*session.Quiz) error { return nil }), errQuizNotFound)
	assert.NoError(t, qs.with(active.ID, func(*session.Quiz) error { return nil }))
}

func TestQuizzes_NoTTLKeepsEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	qs := newQuizzes()
	qs.ttl = 0
	qs.now = func() time.Time { return now }

	first := newSessionQuiz(t)
	qs.put(first)
	now = now.Add(48 * time.Hour)
	qs.put(newSessionQuiz(t))

	assert.Equal(t, 2, qs.len())
	assert.NoError(t, qs.with(first.ID, func(*session.Quiz) error { return nil }))
}
