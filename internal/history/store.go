package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CorruptError reports a history file that exists but cannot be parsed.
// There is no auto-repair: the operator must fix or delete the file, because
// silently resetting it would lose every recorded change.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt history file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Store persists a History as a single JSON file.
//
// The whole file is rewritten on every save: the dataset is bounded by
// tracked courses times actual record changes, which stays small even over
// weeks, and a full rewrite paired with atomic replace is simpler to reason
// about than incremental appends.
type Store struct {
	path string
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the history file.
func (s *Store) Path() string { return s.path }

// Load reads the persisted history. If the file does not exist, Load returns
// an empty History and persists it immediately, so the operator can see the
// file before the first successful poll. A file that exists but does not
// parse is returned as a CorruptError.
func (s *Store) Load() (History, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		h := History{}
		if err := s.Save(h); err != nil {
			return nil, err
		}
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	if h == nil {
		h = History{}
	}
	return h, nil
}

// Save serializes the full history and atomically replaces the file (write
// to a temp file, then rename), so a kill mid-write never leaves a torn file
// behind.
func (s *Store) Save(h History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
