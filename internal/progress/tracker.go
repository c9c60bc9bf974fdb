package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Tracker applies activities to stored profiles. Calls for the same user
// are serialized.
type Tracker struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// TrackerOption customizes a Tracker.
type TrackerOption func(*Tracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a Tracker over s.
func NewTracker(s Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{store: s, now: time.Now, locks: make(map[string]*sync.Mutex)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) lock(userID string) func() {
	t.mu.Lock()
	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	t.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// update loads, mutates and saves userID's profile under its lock.
func (t *Tracker) update(userID string, fn func(p *Profile) *Profile) (*Profile, error) {
	defer t.lock(userID)()

	p, err := t.store.Load(userID)
	if err != nil {
		return nil, err
	}
	if next := fn(p); next != nil {
		p = next
	}
	p.LastSaved = t.now()
	if err := t.store.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Record applies a to userID's profile, saves it and returns the
// achievements it earned.
func (t *Tracker) Record(userID string, a Activity) ([]Achievement, error) {
	var earned []Achievement
	_, err := t.update(userID, func(p *Profile) *Profile {
		earned = p.Apply(a, t.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record %s for %s: %w", a.Kind, userID, err)
	}
	for _, e := range earned {
		slog.Info("progress: achievement unlocked", "user", userID, "achievement", e.ID)
	}
	return earned, nil
}

// Profile returns userID's stored profile.
func (t *Tracker) Profile(userID string) (*Profile, error) {
	defer t.lock(userID)()
	return t.store.Load(userID)
}

// Report returns the combined progress view for userID.
func (t *Tracker) Report(userID string) (Report, error) {
	p, err := t.Profile(userID)
	if err != nil {
		return Report{}, err
	}
	return p.Report(t.now()), nil
}

// Reset clears userID's progress and saves the result.
func (t *Tracker) Reset(userID string, kind ResetKind) error {
	_, err := t.update(userID, func(p *Profile) *Profile { return p.Reset(kind) })
	if err != nil {
		return fmt.Errorf("reset progress for %s: %w", userID, err)
	}
	slog.Info("progress: reset", "user", userID, "kind", kind)
	return nil
}

// UpdatePreferences merges patch into userID's preferences and saves.
func (t *Tracker) UpdatePreferences(userID string, patch PreferencesPatch) (Preferences, error) {
	p, err := t.update(userID, func(p *Profile) *Profile {
		p.Preferences = patch.Apply(p.Preferences)
		return nil
	})
	if err != nil {
		return Preferences{}, fmt.Errorf("update preferences for %s: %w", userID, err)
	}
	return p.Preferences, nil
}

// Export writes userID's profile as indented JSON.
func (t *Tracker) Export(userID string, w io.Writer) error {
	p, err := t.Profile(userID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
