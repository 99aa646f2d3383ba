package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const appDirName = "stillpath-journey"

// FileStore keeps one JSON file per user under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// (with parents) on the first Save if it does not exist. Pass an empty
// string to use the default XDG state path.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &FileStore{dir: dir}
}

// Dir returns the directory holding the progress files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path for userID. IDs that are not UUIDs have no
// path, which keeps arbitrary input from escaping the directory.
func (s *FileStore) Path(userID string) (string, bool) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", false
	}
	return filepath.Join(s.dir, id.String()+".json"), true
}

func (s *FileStore) Load(_ context.Context, userID string) (*Progress, error) {
	path, ok := s.Path(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, userID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("reading progress: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing progress: %w", err)
	}
	p.initSlices()
	return &p, nil
}

// Save writes p using an atomic temp-file-then-rename pattern.
func (s *FileStore) Save(_ context.Context, p *Progress) error {
	path, ok := s.Path(p.UserID)
	if !ok {
		return fmt.Errorf("invalid user id %q", p.UserID)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating progress dir: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling progress: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming progress file: %w", err)
	}
	committed = true
	return nil
}

func (s *FileStore) Delete(_ context.Context, userID string) error {
	path, ok := s.Path(userID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, userID)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, userID)
		}
		return fmt.Errorf("removing progress: %w", err)
	}
	return nil
}

// defaultStateDir returns ~/.local/state/stillpath-journey, respecting
// XDG_STATE_HOME if set.
func defaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
