package event

import "github.com/cadetcorps/cadet/internal/session"

const (
	NameQuizGenerated = "quiz.generated"
	NameQuizCompleted = "quiz.completed"
	NameChatAsked     = "chat.asked"
	NameTopicStudied  = "topic.studied"
	NameStudySession  = "study.session"
)

// QuizGenerated is published after a quiz was built from model output.
type QuizGenerated struct {
	User  string
	Topic string
	Count int
}

func (QuizGenerated) Name() string { return NameQuizGenerated }

// QuizCompleted is published when a cadet finishes a quiz.
type QuizCompleted struct {
	User    string
	Results *session.Results
}

func (QuizCompleted) Name() string { return NameQuizCompleted }

// ChatAsked is published when the assistant answered a question.
type ChatAsked struct {
	User     string
	Question string
}

func (ChatAsked) Name() string { return NameChatAsked }

// TopicStudied is published when a cadet opens a topic to study it.
type TopicStudied struct {
	User  string
	Topic string
}

func (TopicStudied) Name() string { return NameTopicStudied }

// StudySession is published when an interactive session ends.
type StudySession struct {
	User    string
	Minutes int
}

func (StudySession) Name() string { return NameStudySession }
