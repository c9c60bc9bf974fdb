package progress

import (
	"slices"
	"sort"
	"time"
)

// ActivityKind names something a cadet did.
type ActivityKind string

const (
	ActivityQuestionAsked ActivityKind = "question_asked"
	ActivityQuizCompleted ActivityKind = "quiz_completed"
	ActivityTopicStudied  ActivityKind = "topic_studied"
	ActivityStudySession  ActivityKind = "study_session"
)

// Activity is one event applied to a profile. Only the fields relevant to
// Kind are read.
type Activity struct {
	Kind       ActivityKind
	Score      float64
	Topic      string
	Difficulty string
	Minutes    int
}

const dateLayout = "2006-01-02"

// Apply updates the profile for a and returns any achievements it earned.
func (p *Profile) Apply(a Activity, now time.Time) []Achievement {
	switch a.Kind {
	case ActivityQuestionAsked:
		p.QuestionsAsked++

	case ActivityQuizCompleted:
		p.QuizzesTaken++
		topic := a.Topic
		if topic == "" {
			topic = "mixed"
		}
		difficulty := a.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		p.QuizScores = append(p.QuizScores, QuizScore{
			Score:      a.Score,
			Timestamp:  now,
			Topic:      topic,
			Difficulty: difficulty,
		})
		if p.Progress.TopicsCompleted == nil {
			p.Progress.TopicsCompleted = map[string]int{}
		}
		p.Progress.TopicsCompleted[topic]++

	case ActivityTopicStudied:
		topic := a.Topic
		if topic == "" {
			topic = "unknown"
		}
		if !slices.Contains(p.TopicsStudied, topic) {
			p.TopicsStudied = append(p.TopicsStudied, topic)
		}
		p.Progress.OverallProgress = overallProgress(len(p.TopicsStudied)).InexactFloat64()

	case ActivityStudySession:
		p.TotalStudyTime += a.Minutes
		if p.DailyProgress == nil {
			p.DailyProgress = map[string]int{}
		}
		p.DailyProgress[now.Format(dateLayout)] += a.Minutes
		p.updateStreak()
	}

	return p.awardAchievements(now)
}

// updateStreak counts consecutive recorded days, newest first, that met
// the daily goal.
func (p *Profile) updateStreak() {
	dates := make([]string, 0, len(p.DailyProgress))
	for d := range p.DailyProgress {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	streak := 0
	for _, d := range dates {
		if p.DailyProgress[d] < p.Preferences.DailyGoalMinutes {
			break
		}
		streak++
	}
	p.Progress.CurrentStreak = streak
	if streak > p.Progress.LongestStreak {
		p.Progress.LongestStreak = streak
	}
}

type achievementRule struct {
	id          string
	title       string
	description string
	earned      func(*Profile) bool
}

var achievementRules = []achievementRule{
	{
		id:          "first_quiz",
		title:       "First Quiz Completed",
		description: "Completed your first NCC quiz",
		earned:      func(p *Profile) bool { return p.QuizzesTaken >= 1 },
	},
	{
		id:          "quiz_master",
		title:       "Quiz Master",
		description: "Completed 10 quizzes",
		earned:      func(p *Profile) bool { return p.QuizzesTaken >= 10 },
	},
	{
		id:          "curious_cadet",
		title:       "Curious Cadet",
		description: "Asked 25 questions",
		earned:      func(p *Profile) bool { return p.QuestionsAsked >= 25 },
	},
	{
		id:          "study_streak_7",
		title:       "Week Warrior",
		description: "7-day study streak",
		earned:      func(p *Profile) bool { return p.Progress.CurrentStreak >= 7 },
	},
	{
		id:          "high_scorer",
		title:       "High Scorer",
		description: "Scored 90% or higher in a quiz",
		earned: func(p *Profile) bool {
			return slices.ContainsFunc(p.QuizScores, func(s QuizScore) bool { return s.Score >= 90 })
		},
	},
}

func (p *Profile) awardAchievements(now time.Time) []Achievement {
	var earned []Achievement
	for _, r := range achievementRules {
		if p.HasAchievement(r.id) || !r.earned(p) {
			continue
		}
		a := Achievement{ID: r.id, Title: r.title, Description: r.description, EarnedAt: now}
		p.Achievements = append(p.Achievements, a)
		earned = append(earned, a)
	}
	return earned
}
