// Package progress keeps each cadet's study profile: quiz scores, topics,
// achievements, streaks and preferences.
package progress

import (
	"slices"
	"time"
)

// TotalTopics approximates the number of topics in the NCC syllabus and
// scales overall progress.
const TotalTopics = 50

// QuizScore is one completed quiz.
type QuizScore struct {
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
}

// Achievement is a badge earned once.
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Preferences are user-editable study settings.
type Preferences struct {
	DifficultyLevel  string `json:"difficulty_level"`
	QuizLength       int    `json:"quiz_length"`
	ShowExplanations bool   `json:"show_explanations"`
	DailyGoalMinutes int    `json:"daily_goal_minutes"`
}

// Progress holds derived counters that are persisted with the profile.
type Progress struct {
	// TopicsCompleted counts finished quizzes per topic.
	TopicsCompleted map[string]int `json:"topics_completed"`
	OverallProgress float64        `json:"overall_progress"`
	CurrentStreak   int            `json:"current_streak"`
	LongestStreak   int            `json:"longest_streak"`
}

// Profile is the persisted document for one user.
type Profile struct {
	UserID         string         `json:"user_id"`
	LastSaved      time.Time      `json:"last_saved"`
	QuizScores     []QuizScore    `json:"quiz_scores"`
	TopicsStudied  []string       `json:"topics_studied"`
	Achievements   []Achievement  `json:"achievements"`
	Preferences    Preferences    `json:"preferences"`
	Progress       Progress       `json:"progress"`
	StudyGoals     map[string]any `json:"study_goals"`
	TotalStudyTime int            `json:"total_study_time"`

	// DailyProgress maps an ISO date to minutes studied that day.
	DailyProgress map[string]int `json:"daily_progress"`

	QuestionsAsked          int    `json:"questions_asked"`
	QuizzesTaken            int    `json:"quizzes_taken"`
	CurrentCertificateLevel string `json:"current_certificate_level"`
	PreferredWing           string `json:"preferred_wing"`
}

// DefaultPreferences returns the settings of a new profile.
func DefaultPreferences() Preferences {
	return Preferences{
		DifficultyLevel:  "medium",
		QuizLength:       10,
		ShowExplanations: true,
		DailyGoalMinutes: 30,
	}
}

// Default returns an empty profile for userID.
func Default(userID string) *Profile {
	return &Profile{
		UserID:                  userID,
		QuizScores:              []QuizScore{},
		TopicsStudied:           []string{},
		Achievements:            []Achievement{},
		Preferences:             DefaultPreferences(),
		Progress:                Progress{TopicsCompleted: map[string]int{}},
		StudyGoals:              map[string]any{},
		DailyProgress:           map[string]int{},
		CurrentCertificateLevel: "JD/JW",
		PreferredWing:           "common",
	}
}

// HasAchievement reports whether id was already earned.
func (p *Profile) HasAchievement(id string) bool {
	return slices.ContainsFunc(p.Achievements, func(a Achievement) bool { return a.ID == id })
}

// ResetKind selects how much of a profile Reset discards.
type ResetKind string

const (
	// ResetPartial keeps preferences and achievements.
	ResetPartial ResetKind = "partial"
	// ResetComplete discards everything except the user id.
	ResetComplete ResetKind = "complete"
)

// ParseResetKind accepts "partial" and "complete"; empty means partial.
func ParseResetKind(s string) (ResetKind, bool) {
	switch ResetKind(s) {
	case "", ResetPartial:
		return ResetPartial, true
	case ResetComplete:
		return ResetComplete, true
	}
	return "", false
}

// Reset returns a fresh profile for the same user, carrying over what kind
// keeps.
func (p *Profile) Reset(kind ResetKind) *Profile {
	fresh := Default(p.UserID)
	if kind != ResetComplete {
		fresh.Preferences = p.Preferences
		fresh.Achievements = append([]Achievement{}, p.Achievements...)
	}
	return fresh
}

// PreferencesPatch updates the non-nil fields of Preferences.
type PreferencesPatch struct {
	DifficultyLevel  *string `json:"difficulty_level,omitempty"`
	QuizLength       *int    `json:"quiz_length,omitempty"`
	ShowExplanations *bool   `json:"show_explanations,omitempty"`
	DailyGoalMinutes *int    `json:"daily_goal_minutes,omitempty"`
}

// Apply merges the patch into prefs.
func (pp PreferencesPatch) Apply(prefs Preferences) Preferences {
	if pp.DifficultyLevel != nil {
		prefs.DifficultyLevel = *pp.DifficultyLevel
	}
	if pp.QuizLength != nil {
		prefs.QuizLength = *pp.QuizLength
	}
	if pp.ShowExplanations != nil {
		prefs.ShowExplanations = *pp.ShowExplanations
	}
	if pp.DailyGoalMinutes != nil {
		prefs.DailyGoalMinutes = *pp.DailyGoalMinutes
	}
	return prefs
}
