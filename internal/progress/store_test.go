package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFileStore_MissingFileGivesDefaults(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p, err := s.Load("cadet-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.UserID != "cadet-1" || p.Preferences != DefaultPreferences() {
		t.Errorf("profile = %+v", p)
	}
}

func TestFileStore_MergesIntoDefaults(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	doc := `{
  "quiz_scores": [{"score": 80, "timestamp": "2026-01-02T03:04:05Z", "topic": "Drill", "difficulty": "easy"}],
  "preferences": {"quiz_length": 5},
  "some_future_key": {"x": 1}
}`
	if err := os.WriteFile(s.Path("cadet"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := s.Load("cadet")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.QuizScores) != 1 || p.QuizScores[0].Topic != "Drill" {
		t.Errorf("scores = %+v", p.QuizScores)
	}
	if p.Preferences.QuizLength != 5 {
		t.Errorf("quiz length = %d", p.Preferences.QuizLength)
	}
	if p.Preferences.DailyGoalMinutes != 30 || !p.Preferences.ShowExplanations {
		t.Errorf("missing preference keys lost their defaults: %+v", p.Preferences)
	}
	if p.PreferredWing != "common" || p.TopicsStudied == nil {
		t.Errorf("missing keys lost their defaults")
	}
}

func TestFileStore_SaveOverwritesPretty(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p := Default("cadet")
	p.TopicsStudied = []string{"Drill", "First Aid"}
	if err := s.Save(p); err != nil {
		t.Fatal(err)
	}
	p.TopicsStudied = []string{"Map Reading"}
	if err := s.Save(p); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "cadet.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"user_id\": \"cadet\"") {
		t.Errorf("not indented with two spaces:\n%s", data)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"quiz_scores", "topics_studied", "achievements", "preferences", "progress", "study_goals"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("saved document lacks %q", key)
		}
	}
	if topics := doc["topics_studied"].([]any); len(topics) != 1 {
		t.Errorf("topics = %v, want full overwrite", topics)
	}

	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileStore_RejectsBadUserIDs(t *testing.T) {
	s := NewFileStore(t.TempDir())
	for _, id := range []string{"", "..", "../etc/passwd", "a/b", ".hidden"} {
		if _, err := s.Load(id); !errors.Is(err, ErrInvalidUser) {
			t.Errorf("Load(%q): err = %v", id, err)
		}
		if err := s.Save(Default(id)); !errors.Is(err, ErrInvalidUser) {
			t.Errorf("Save(%q): err = %v", id, err)
		}
	}
}

func TestTracker_RecordPersists(t *testing.T) {
	s := NewFileStore(t.TempDir())
	clock := day0
	tr := NewTracker(s, WithClock(func() time.Time { return clock }))

	earned, err := tr.Record("cadet", Activity{Kind: ActivityQuizCompleted, Score: 92, Topic: "Drill"})
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 2 {
		t.Errorf("earned = %v", earned)
	}

	reloaded, err := s.Load("cadet")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.QuizzesTaken != 1 || len(reloaded.Achievements) != 2 {
		t.Errorf("reloaded = %+v", reloaded)
	}
	if !reloaded.LastSaved.Equal(day0) {
		t.Errorf("last saved = %v", reloaded.LastSaved)
	}
}

func TestTracker_ConcurrentRecords(t *testing.T) {
	tr := NewTracker(NewFileStore(t.TempDir()))
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Record("cadet", Activity{Kind: ActivityQuestionAsked}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	p, err := tr.Profile("cadet")
	if err != nil {
		t.Fatal(err)
	}
	if p.QuestionsAsked != 20 {
		t.Errorf("questions asked = %d, want 20", p.QuestionsAsked)
	}
}

func TestTracker_ResetAndPreferences(t *testing.T) {
	tr := NewTracker(NewFileStore(t.TempDir()))
	if _, err := tr.Record("cadet", Activity{Kind: ActivityQuizCompleted, Score: 40}); err != nil {
		t.Fatal(err)
	}
	goal := 45
	prefs, err := tr.UpdatePreferences("cadet", PreferencesPatch{DailyGoalMinutes: &goal})
	if err != nil {
		t.Fatal(err)
	}
	if prefs.DailyGoalMinutes != 45 {
		t.Errorf("goal = %d", prefs.DailyGoalMinutes)
	}

	if err := tr.Reset("cadet", ResetPartial); err != nil {
		t.Fatal(err)
	}
	report, err := tr.Report("cadet")
	if err != nil {
		t.Fatal(err)
	}
	if report.Stats.QuizzesTaken != 0 || report.Preferences.DailyGoalMinutes != 45 || len(report.Achievements) != 1 {
		t.Errorf("report after partial reset = %+v", report)
	}

	var buf bytes.Buffer
	if err := tr.Export("cadet", &buf); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Errorf("export is not JSON: %s", buf.String())
	}
}
