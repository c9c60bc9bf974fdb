package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/features"
	"github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/quiz"
)

var (
	errChatUnavailable     = newError(CodeUnavailable, "chat is unavailable: no model configured")
	errProgressUnavailable = newError(CodeUnavailable, "progress tracking is disabled")
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFeatures(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Features.Report())
}

type topicsResponse struct {
	Levels       []levelTopics `json:"levels"`
	Categories   []string      `json:"categories"`
	Difficulties []string      `json:"difficulties"`
}

type levelTopics struct {
	Level  string   `json:"level"`
	Short  string   `json:"short"`
	Topics []string `json:"topics"`
}

func (s *Server) listTopics(w http.ResponseWriter, _ *http.Request) {
	resp := topicsResponse{
		Categories:   s.svc.Config.Quiz.Categories,
		Difficulties: s.svc.Config.Quiz.Difficulties,
	}
	for _, l := range quiz.Levels {
		resp.Levels = append(resp.Levels, levelTopics{
			Level:  string(l),
			Short:  l.Short(),
			Topics: quiz.Topics(l),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// assistants keeps one conversation per user so follow-up questions see
// the earlier turns.
type assistants struct {
	mu sync.Mutex
	m  map[string]*chat.Assistant
}

func (as *assistants) get(user string, build func() *chat.Assistant) *chat.Assistant {
	if user == "" {
		return build()
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	if a, ok := as.m[user]; ok {
		return a
	}
	a := build()
	if a != nil {
		as.m[user] = a
	}
	return a
}

type chatRequest struct {
	User     string `json:"user"`
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) askChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkUser(req.User); err != nil {
		writeError(w, r, err)
		return
	}

	a := s.assistants.get(req.User, func() *chat.Assistant { return s.svc.NewAssistant(req.User) })
	if a == nil {
		writeError(w, r, errChatUnavailable)
		return
	}
	answer, err := a.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) tracker() (*progress.Tracker, error) {
	if s.svc.Tracker == nil || !s.svc.Features.Available(features.Progress) {
		return nil, errProgressUnavailable
	}
	return s.svc.Tracker, nil
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	t, err := s.tracker()
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := t.Report(chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) resetProgress(w http.ResponseWriter, r *http.Request) {
	t, err := s.tracker()
	if err != nil {
		writeError(w, r, err)
		return
	}

	v := r.URL.Query().Get("type")
	kind, ok := progress.ParseResetKind(v)
	if !ok {
		writeError(w, r, newError(CodeInvalidArgument, fmt.Sprintf("unknown reset type %q", v)))
		return
	}

	user := chi.URLParam(r, "user")
	if err := t.Reset(user, kind); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user": user, "reset": string(kind)})
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	t, err := s.tracker()
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch progress.PreferencesPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	prefs, err := t.UpdatePreferences(chi.URLParam(r, "user"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) exportProgress(w http.ResponseWriter, r *http.Request) {
	t, err := s.tracker()
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := chi.URLParam(r, "user")
	if !progress.ValidUserID(user) {
		writeError(w, r, progress.ErrInvalidUser)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", user+"_progress.json"))
	if err := t.Export(user, w); err != nil {
		writeError(w, r, err)
	}
}
