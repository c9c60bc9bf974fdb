package server

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/session"
)

// quizTTL is how long a quiz may sit untouched before the registry
// drops it.
const quizTTL = 2 * time.Hour

// quizzes holds running quizzes by id. Each entry has its own lock since
// a session.Quiz is not safe for concurrent use. Entries idle for longer
// than ttl are swept on put.
type quizzes struct {
	mu  sync.RWMutex
	m   map[string]*quizEntry
	ttl time.Duration
	now func() time.Time
}

type quizEntry struct {
	mu   sync.Mutex
	quiz *session.Quiz
	// seen is the unix nano time of the last access.
	seen atomic.Int64
}

func newQuizzes() *quizzes {
	return &quizzes{m: make(map[string]*quizEntry), ttl: quizTTL, now: time.Now}
}

func (qs *quizzes) put(q *session.Quiz) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	now := qs.now()
	qs.sweep(now)
	e := &quizEntry{quiz: q}
	e.seen.Store(now.UnixNano())
	qs.m[q.ID] = e
}

// sweep drops idle entries. qs.mu must be held for writing.
func (qs *quizzes) sweep(now time.Time) {
	if qs.ttl <= 0 {
		return
	}
	cutoff := now.Add(-qs.ttl).UnixNano()
	for id, e := range qs.m {
		if e.seen.Load() < cutoff {
			delete(qs.m, id)
		}
	}
}

func (qs *quizzes) remove(id string) bool {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	_, ok := qs.m[id]
	delete(qs.m, id)
	return ok
}

func (qs *quizzes) len() int {
	qs.mu.RLock()
	defer qs.mu.RUnlock()

	return len(qs.m)
}

// with runs fn on the quiz under its lock.
func (qs *quizzes) with(id string, fn func(q *session.Quiz) error) error {
	qs.mu.RLock()
	e, ok := qs.m[id]
	qs.mu.RUnlock()
	if !ok {
		return errQuizNotFound
	}
	e.seen.Store(qs.now().UnixNano())

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.quiz)
}

// QuestionView is one question as shown to the client. The answer and
// explanation are only filled once the quiz is completed.
type QuestionView struct {
	Number      int               `json:"number"`
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Chosen      string            `json:"chosen,omitempty"`
	Answer      string            `json:"correct_answer,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
}

// QuizView is the client representation of a quiz.
type QuizView struct {
	ID               string           `json:"id"`
	User             string           `json:"user,omitempty"`
	Topic            string           `json:"topic"`
	Difficulty       string           `json:"difficulty,omitempty"`
	CertificateLevel string           `json:"certificate_level,omitempty"`
	Phase            string           `json:"phase"`
	Index            int              `json:"index"`
	Total            int              `json:"total"`
	Answered         int              `json:"answered"`
	Questions        []QuestionView   `json:"questions"`
	Results          *session.Results `json:"results,omitempty"`
}

func viewOf(q *session.Quiz) QuizView {
	completed := q.Phase() == session.PhaseCompleted
	v := QuizView{
		ID:               q.ID,
		User:             q.Meta.User,
		Topic:            q.Meta.Topic,
		Difficulty:       q.Meta.Difficulty,
		CertificateLevel: q.Meta.CertificateLevel,
		Phase:            q.Phase().String(),
		Index:            q.Index(),
		Total:            q.Len(),
		Answered:         q.Answered(),
		Questions:        make([]QuestionView, 0, q.Len()),
	}
	for i, question := range q.Questions() {
		qv := QuestionView{
			Number:   i + 1,
			Question: question.Text,
			Options:  question.Options,
		}
		qv.Chosen, _ = q.Answer(i)
		if completed {
			qv.Answer = question.Answer
			qv.Explanation = question.Explanation
		}
		v.Questions = append(v.Questions, qv)
	}
	if completed {
		v.Results, _ = q.Results()
	}
	return v
}

type createQuizRequest struct {
	User             string `json:"user"`
	Topic            string `json:"topic"`
	Count            int    `json:"count"`
	Difficulty       string `json:"difficulty"`
	CertificateLevel string `json:"certificate_level"`
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkUser(req.User); err != nil {
		writeError(w, r, err)
		return
	}
	difficulty, err := quiz.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, r, newError(CodeInvalidArgument, err.Error()))
		return
	}
	level, err := quiz.ParseCertificateLevel(req.CertificateLevel)
	if err != nil {
		writeError(w, r, newError(CodeInvalidArgument, err.Error()))
		return
	}

	questions, err := s.svc.GenerateQuiz(r.Context(), quiz.Request{
		User:             req.User,
		Topic:            req.Topic,
		Count:            req.Count,
		Difficulty:       difficulty,
		CertificateLevel: level,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.startQuiz(w, r, questions, session.Meta{
		User:             req.User,
		Topic:            strings.TrimSpace(req.Topic),
		Difficulty:       string(difficulty),
		CertificateLevel: string(level),
	})
}

type demoQuizRequest struct {
	User string `json:"user"`
}

func (s *Server) createDemoQuiz(w http.ResponseWriter, r *http.Request) {
	var req demoQuizRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := checkUser(req.User); err != nil {
		writeError(w, r, err)
		return
	}
	s.startQuiz(w, r, quiz.DemoQuestions(), session.Meta{User: req.User, Topic: quiz.DemoTopic})
}

func (s *Server) startQuiz(w http.ResponseWriter, r *http.Request, questions []quiz.Question, meta session.Meta) {
	q, err := s.svc.StartQuiz(questions, meta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.quizzes.put(q)
	writeJSON(w, http.StatusCreated, viewOf(q))
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	s.onQuiz(w, r, func(*session.Quiz) error { return nil })
}

type answerRequest struct {
	Letter string `json:"letter"`
	// Index answers a specific question instead of the current one.
	Index *int `json:"index,omitempty"`
}

func (s *Server) answerQuiz(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.onQuiz(w, r, func(q *session.Quiz) error {
		if req.Index != nil {
			return q.AnswerAt(*req.Index, req.Letter)
		}
		return q.AnswerCurrent(req.Letter)
	})
}

func (s *Server) nextQuestion(w http.ResponseWriter, r *http.Request) {
	s.onQuiz(w, r, (*session.Quiz).Next)
}

func (s *Server) previousQuestion(w http.ResponseWriter, r *http.Request) {
	s.onQuiz(w, r, (*session.Quiz).Previous)
}

func (s *Server) finishQuiz(w http.ResponseWriter, r *http.Request) {
	s.onQuiz(w, r, func(q *session.Quiz) error {
		_, err := s.svc.FinishQuiz(r.Context(), q)
		return err
	})
}

func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.quizzes.with(id, func(q *session.Quiz) error {
		q.Reset()
		return nil
	})
	if err != nil || !s.quizzes.remove(id) {
		writeError(w, r, errQuizNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// onQuiz applies fn to the quiz named in the URL and responds with its view.
func (s *Server) onQuiz(w http.ResponseWriter, r *http.Request, fn func(q *session.Quiz) error) {
	var view QuizView
	err := s.quizzes.with(chi.URLParam(r, "id"), func(q *session.Quiz) error {
		if err := fn(q); err != nil {
			return err
		}
		view = viewOf(q)
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// checkUser accepts an empty user, which disables progress tracking.
func checkUser(user string) error {
	if user != "" && !progress.ValidUserID(user) {
		return newError(CodeInvalidArgument, "invalid user id")
	}
	return nil
}
