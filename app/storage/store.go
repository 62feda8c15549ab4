package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vidai-studio/app/logger"
	"vidai-studio/app/model"
)

// Settings is the user-editable configuration kept in settings.json.
type Settings struct {
	APIKey       string `json:"api_key"`
	DefaultModel string `json:"default_model"`
	DefaultLang  string `json:"default_lang"`
	DefaultStyle string `json:"default_style"`
}

// Store persists settings and the generation history as JSON documents.
// Every write goes through a temp file followed by an atomic rename, so a
// crash can never leave a half-written document behind. Writes from this
// process are serialized by an internal mutex.
type Store struct {
	mu           sync.Mutex
	settingsPath string
	historyPath  string
	maxHistory   int
	log          *logger.Logger
}

// New creates a store rooted at dataDir, creating the directory if needed.
func New(dataDir string, maxHistory int, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		settingsPath: filepath.Join(dataDir, "settings.json"),
		historyPath:  filepath.Join(dataDir, "history.json"),
		maxHistory:   maxHistory,
		log:          log,
	}, nil
}

// LoadSettings reads settings from disk. A missing or unreadable file yields
// zero-value settings rather than an error.
func (s *Store) LoadSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cfg Settings
	s.readDocument(s.settingsPath, &cfg)
	return cfg
}

// UpdateSettings applies a mutation to the current settings and writes the
// result back atomically.
func (s *Store) UpdateSettings(apply func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cfg Settings
	s.readDocument(s.settingsPath, &cfg)
	apply(&cfg)
	return writeDocument(s.settingsPath, cfg)
}

// History returns all entries, most recent first.
func (s *Store) History() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readHistory()
}

// AppendHistory prepends an entry and truncates the list to the cap.
func (s *Store) AppendHistory(entry model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append([]model.HistoryEntry{entry}, s.readHistory()...)
	if len(history) > s.maxHistory {
		history = history[:s.maxHistory]
	}
	return writeDocument(s.historyPath, history)
}

// DeleteHistory removes the entry with the given id, if present.
func (s *Store) DeleteHistory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.readHistory()
	kept := history[:0]
	for _, h := range history {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	return writeDocument(s.historyPath, kept)
}

// ClearHistory empties the history document.
func (s *Store) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeDocument(s.historyPath, []model.HistoryEntry{})
}

func (s *Store) readHistory() []model.HistoryEntry {
	history := []model.HistoryEntry{}
	s.readDocument(s.historyPath, &history)
	return history
}

// readDocument fills out from the JSON file at path, leaving it untouched
// when the file is absent and logging a warning when it is corrupt.
func (s *Store) readDocument(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) && s.log != nil {
			s.log.Warnf("could not read %s, using default: %v", path, err)
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil && s.log != nil {
		s.log.Warnf("could not parse %s, using default: %v", path, err)
	}
}

// writeDocument marshals v and replaces path atomically.
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
