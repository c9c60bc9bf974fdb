package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrInvalidUser is returned for user ids that cannot name a file.
var ErrInvalidUser = errors.New("invalid user id")

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{0,127}$`)

// ValidUserID reports whether id may be used as a profile key.
func ValidUserID(id string) bool {
	return userIDPattern.MatchString(id) && id != "." && id != ".."
}

// Store loads and saves profiles.
type Store interface {
	Load(userID string) (*Profile, error)
	Save(p *Profile) error
}

// FileStore keeps one JSON document per user under <dir>/sessions.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dataDir.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dir: filepath.Join(dataDir, "sessions")}
}

// Dir returns the directory holding profile files.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file that holds userID's profile.
func (s *FileStore) Path(userID string) string {
	return filepath.Join(s.dir, userID+".json")
}

// Load reads the profile for userID. A missing file yields the defaults.
// Keys present in the file replace the defaults; missing keys keep them
// and unknown keys are ignored.
func (s *FileStore) Load(userID string) (*Profile, error) {
	if !ValidUserID(userID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	p := Default(userID)
	data, err := os.ReadFile(s.Path(userID))
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", s.Path(userID), err)
	}
	p.UserID = userID
	return p, nil
}

// Save overwrites the whole profile file with indented JSON. The write
// goes through a temp file so readers never see a partial document.
func (s *FileStore) Save(p *Profile) error {
	if !ValidUserID(p.UserID) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, p.UserID)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, p.UserID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp profile: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(p.UserID)); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}
