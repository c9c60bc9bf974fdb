package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/session"
)

const menuText = `NCC Cadet study companion

/quiz <topic> - generate a quiz on a topic
/demo - take the built-in NCC basics quiz
/ask <question> - ask the NCC assistant
/progress - see your study stats
/quit - abandon the running quiz`

func topicHelp() string {
	var sb strings.Builder
	sb.WriteString("Tell me a topic, for example /quiz Drill Commands\n\nSuggested topics:\n")
	for _, t := range quiz.Topics(quiz.LevelA) {
		sb.WriteString("- " + t + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func questionText(q quiz.Question, i, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question %d/%d\n\n%s\n", i+1, total, q.Text)
	for _, letter := range q.Keys() {
		fmt.Fprintf(&sb, "\n%s) %s", letter, q.Options[letter])
	}
	return sb.String()
}

func feedbackText(q quiz.Question, letter string) string {
	var s string
	if q.IsCorrect(letter) {
		s = "Correct!"
	} else {
		s = fmt.Sprintf("Incorrect. The answer is %s) %s", q.Answer, q.Options[q.Answer])
	}
	if q.Explanation != "" {
		s += "\n" + q.Explanation
	}
	return s
}

func resultsText(r *session.Results) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Quiz complete: %s\n\n", r.Topic)
	fmt.Fprintf(&sb, "Score: %d/%d (%s%%)\n", r.Correct, r.Total, r.Percentage.StringFixed(1))
	fmt.Fprintf(&sb, "Grade: %s, %s\n", r.Grade, r.Performance)
	fmt.Fprintf(&sb, "Time: %s\n", session.FormatDuration(r.Elapsed))
	if len(r.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			sb.WriteString("- " + rec + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func progressText(r progress.Report) string {
	s := r.Stats
	perf := r.Progress.QuizPerformance
	var sb strings.Builder
	sb.WriteString("Your progress\n\n")
	fmt.Fprintf(&sb, "Questions asked: %d\n", s.QuestionsAsked)
	fmt.Fprintf(&sb, "Quizzes taken: %d\n", s.QuizzesTaken)
	fmt.Fprintf(&sb, "Average score: %s%%\n", s.AverageQuizScore.StringFixed(1))
	fmt.Fprintf(&sb, "Best score: %.1f%%\n", perf.Best)
	fmt.Fprintf(&sb, "Trend: %s\n", strings.ReplaceAll(perf.Trend, "_", " "))
	fmt.Fprintf(&sb, "Study streak: %d days (best %d)\n", s.CurrentStreak, s.LongestStreak)
	fmt.Fprintf(&sb, "Achievements: %d", s.AchievementsCount)
	for _, a := range r.Achievements {
		fmt.Fprintf(&sb, "\n- %s", a.Title)
	}
	return sb.String()
}

func generationErrorText(err error) string {
	var (
		rl    *quiz.RateLimitedError
		quota *quiz.QuotaExceededError
		gen   *quiz.GenerationError
	)
	switch {
	case errors.As(err, &rl):
		return rl.Error() + "."
	case errors.As(err, &quota):
		return quiz.QuotaGuidance
	case errors.Is(err, quiz.ErrNoValidQuestions):
		return "I could not build valid questions for that topic. Try rephrasing it."
	case errors.Is(err, quiz.ErrInvalidTopic):
		return topicHelp()
	case errors.As(err, &gen):
		return "Quiz generation failed: " + gen.Err.Error() + ". Please try again later."
	}
	return "Something went wrong while generating your quiz. Please try again later."
}

func chatErrorText(err error) string {
	var quota *chat.QuotaExceededError
	if errors.As(err, &quota) {
		return chat.QuotaGuidance
	}
	return "Sorry, I could not answer that right now. Please try again."
}
