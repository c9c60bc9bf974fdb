package progress

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend labels for recent quiz scores.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// trendWindow is the number of recent scores compared against the ones
// before them.
const trendWindow = 5

var trendThreshold = decimal.NewFromInt(5)

// Stats is the summary shown on the progress screen.
type Stats struct {
	QuestionsAsked     int             `json:"questions_asked"`
	QuizzesTaken       int             `json:"quizzes_taken"`
	TotalStudyTime     int             `json:"total_study_time"`
	TodayStudyTime     int             `json:"today_study_time"`
	AverageQuizScore   decimal.Decimal `json:"average_quiz_score"`
	TopicsStudiedCount int             `json:"topics_studied_count"`
	CurrentStreak      int             `json:"current_streak"`
	LongestStreak      int             `json:"longest_streak"`
	AchievementsCount  int             `json:"achievements_count"`
	CertificateLevel   string          `json:"certificate_level"`
	PreferredWing      string          `json:"preferred_wing"`
}

// QuizPerformance summarises quiz scores.
type QuizPerformance struct {
	Average      decimal.Decimal `json:"average"`
	Best         float64         `json:"best"`
	TotalQuizzes int             `json:"total_quizzes"`
	Trend        string          `json:"recent_trend"`
}

// StudyProgress is the detailed progress view.
type StudyProgress struct {
	OverallProgress decimal.Decimal `json:"overall_progress"`
	TopicsCompleted map[string]int  `json:"topics_completed"`
	CurrentStreak   int             `json:"current_streak"`
	LongestStreak   int             `json:"longest_streak"`
	RecentTopics    []string        `json:"recent_topics"`
	QuizPerformance QuizPerformance `json:"quiz_performance"`
}

// Report combines everything the progress views show.
type Report struct {
	UserID       string        `json:"user_id"`
	Stats        Stats         `json:"stats"`
	Progress     StudyProgress `json:"progress"`
	Achievements []Achievement `json:"achievements"`
	Preferences  Preferences   `json:"preferences"`
}

// Report builds the combined view at time now.
func (p *Profile) Report(now time.Time) Report {
	return Report{
		UserID:       p.UserID,
		Stats:        p.Stats(now),
		Progress:     p.StudyProgress(),
		Achievements: append([]Achievement{}, p.Achievements...),
		Preferences:  p.Preferences,
	}
}

// Stats returns the headline counters.
func (p *Profile) Stats(now time.Time) Stats {
	return Stats{
		QuestionsAsked:     p.QuestionsAsked,
		QuizzesTaken:       p.QuizzesTaken,
		TotalStudyTime:     p.TotalStudyTime,
		TodayStudyTime:     p.DailyProgress[now.Format(dateLayout)],
		AverageQuizScore:   averageScore(p.QuizScores),
		TopicsStudiedCount: len(p.TopicsStudied),
		CurrentStreak:      p.Progress.CurrentStreak,
		LongestStreak:      p.Progress.LongestStreak,
		AchievementsCount:  len(p.Achievements),
		CertificateLevel:   p.CurrentCertificateLevel,
		PreferredWing:      p.PreferredWing,
	}
}

// StudyProgress returns overall progress, streaks, recent topics and quiz
// performance.
func (p *Profile) StudyProgress() StudyProgress {
	recent := p.TopicsStudied
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	completed := make(map[string]int, len(p.Progress.TopicsCompleted))
	for k, v := range p.Progress.TopicsCompleted {
		completed[k] = v
	}
	return StudyProgress{
		OverallProgress: overallProgress(len(p.TopicsStudied)),
		TopicsCompleted: completed,
		CurrentStreak:   p.Progress.CurrentStreak,
		LongestStreak:   p.Progress.LongestStreak,
		RecentTopics:    append([]string{}, recent...),
		QuizPerformance: p.QuizPerformance(),
	}
}

// QuizPerformance returns average, best and the recent trend.
func (p *Profile) QuizPerformance() QuizPerformance {
	if len(p.QuizScores) == 0 {
		return QuizPerformance{Average: decimal.Zero, Trend: TrendStable}
	}
	best := p.QuizScores[0].Score
	for _, s := range p.QuizScores[1:] {
		best = max(best, s.Score)
	}
	return QuizPerformance{
		Average:      averageScore(p.QuizScores),
		Best:         best,
		TotalQuizzes: len(p.QuizScores),
		Trend:        trend(p.QuizScores),
	}
}

func trend(scores []QuizScore) string {
	n := len(scores)
	if n < 2*trendWindow {
		return TrendInsufficientData
	}
	recent := meanScore(scores[n-trendWindow:])
	previous := meanScore(scores[n-2*trendWindow : n-trendWindow])
	switch {
	case recent.GreaterThan(previous.Add(trendThreshold)):
		return TrendImproving
	case recent.LessThan(previous.Sub(trendThreshold)):
		return TrendDeclining
	}
	return TrendStable
}

func averageScore(scores []QuizScore) decimal.Decimal {
	return meanScore(scores).Round(1)
}

func meanScore(scores []QuizScore) decimal.Decimal {
	if len(scores) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(decimal.NewFromFloat(s.Score))
	}
	return sum.Div(decimal.NewFromInt(int64(len(scores))))
}

func overallProgress(topics int) decimal.Decimal {
	pct := decimal.NewFromInt(int64(topics)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(TotalTopics)).
		Round(1)
	return decimal.Min(pct, decimal.NewFromInt(100))
}
