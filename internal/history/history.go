// Package history persists per-run sync summaries to a JSON file, so the CLI
// can show what was added or skipped in recent runs.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/locnguyen/uel-calendar-sync/internal/syncer"
)

const historyFilename = "history.json"

// maxRecords caps the history file; older records are discarded first.
const maxRecords = 100

// Record is one completed sync run.
type Record struct {
	SyncedAt string         `json:"synced_at"` // RFC3339
	UserID   string         `json:"user_id,omitempty"`
	Summary  syncer.Summary `json:"summary"`
}

// Storage handles persistence of sync history
type Storage struct {
	dataDir string
}

// New creates a new Storage instance rooted at dataDir, creating it if needed.
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

func (s *Storage) path() string {
	return filepath.Join(s.dataDir, historyFilename)
}

// Load reads all recorded sync runs, newest last. A missing file is an empty
// history, not an error.
func (s *Storage) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return records, nil
}

// Append records one sync run, trimming the file to the newest maxRecords.
func (s *Storage) Append(userID string, summary syncer.Summary) error {
	records, err := s.Load()
	if err != nil {
		return err
	}

	records = append(records, Record{
		SyncedAt: time.Now().UTC().Format(time.RFC3339),
		UserID:   userID,
		Summary:  summary,
	})
	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	if err := os.WriteFile(s.path(), data, 0644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	return nil
}
