package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/storage"
)

const stateVersion = 1

// RunState records the progress of the latest crawl run next to the snapshot
type RunState struct {
	Source         string    `json:"source"`
	Store          string    `json:"store"`
	StartPage      int       `json:"start_page"`
	LastPage       int       `json:"last_page"`
	PagesVisited   int       `json:"pages_visited"`
	RecordsAdded   int       `json:"records_added"`
	RecordsSkipped int       `json:"records_skipped"`
	EnrichFailures int       `json:"enrich_failures"`
	TotalRecords   int       `json:"total_records"`
	Finished       bool      `json:"finished"`
	StopReason     string    `json:"stop_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// PageProgress is the per-page delta applied by RecordPage
type PageProgress struct {
	Page           int
	Added          int
	Skipped        int
	EnrichFailures int
	TotalRecords   int
}

// Manager reads and writes the run-state file
type Manager struct {
	path   string
	logger logger.Logger
	now    func() time.Time
}

// NewManager creates a manager for the state file at path
func NewManager(path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		path:   path,
		logger: log.WithField("state", path),
		now:    time.Now,
	}
}

// Path returns the state file location
func (m *Manager) Path() string {
	return m.path
}

// Create starts a new run state, keeping the previous one as a backup
func (m *Manager) Create(source, store string, startPage, totalRecords int) (*RunState, error) {
	if err := m.Backup(); err != nil {
		m.logger.WithError(err).Warn("Failed to back up previous run state")
	}

	now := m.now()
	state := &RunState{
		Source:       source,
		Store:        store,
		StartPage:    startPage,
		LastPage:     0,
		TotalRecords: totalRecords,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      stateVersion,
	}

	if err := m.Save(state); err != nil {
		return nil, fmt.Errorf("failed to save initial run state: %w", err)
	}

	m.logger.InfoWithFields("Run state created", map[string]interface{}{
		"source":     source,
		"start_page": startPage,
	})
	return state, nil
}

// Load reads the state file. It returns nil, nil when none exists.
func (m *Manager) Load() (*RunState, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode run state: %w", err)
	}
	if state.Version > stateVersion {
		return nil, fmt.Errorf("run state version %d is newer than supported version %d", state.Version, stateVersion)
	}

	return &state, nil
}

// Save writes the state file atomically
func (m *Manager) Save(state *RunState) error {
	state.UpdatedAt = m.now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run state: %w", err)
	}

	if err := storage.WriteFileAtomic(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run state: %w", err)
	}

	m.logger.DebugWithFields("Run state saved", map[string]interface{}{
		"last_page":     state.LastPage,
		"total_records": state.TotalRecords,
	})
	return nil
}

// RecordPage folds one persisted page into state and saves it
func (m *Manager) RecordPage(state *RunState, p PageProgress) error {
	state.LastPage = p.Page
	state.PagesVisited++
	state.RecordsAdded += p.Added
	state.RecordsSkipped += p.Skipped
	state.EnrichFailures += p.EnrichFailures
	state.TotalRecords = p.TotalRecords
	return m.Save(state)
}

// Finish marks the run as complete with the reason the walk stopped
func (m *Manager) Finish(state *RunState, reason string) error {
	state.Finished = true
	state.StopReason = reason
	return m.Save(state)
}

// Interrupt records why an unfinished run stopped. The state stays
// unfinished so status reports it as interrupted.
func (m *Manager) Interrupt(state *RunState, reason string) error {
	state.Finished = false
	state.StopReason = reason
	return m.Save(state)
}

// Delete removes the state file
func (m *Manager) Delete() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run state: %w", err)
	}
	return nil
}

// Exists checks if a state file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Backup copies the current state file to path + ".backup"
func (m *Manager) Backup() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read run state for backup: %w", err)
	}
	return storage.WriteFileAtomic(m.path+".backup", data, 0644)
}

// GetCheckpointInfo returns a summary of the stored state, or nil when none exists
func (m *Manager) GetCheckpointInfo() (map[string]interface{}, error) {
	state, err := m.Load()
	if err != nil || state == nil {
		return nil, err
	}

	return map[string]interface{}{
		"source":          state.Source,
		"store":           state.Store,
		"last_page":       state.LastPage,
		"pages_visited":   state.PagesVisited,
		"records_added":   state.RecordsAdded,
		"enrich_failures": state.EnrichFailures,
		"total_records":   state.TotalRecords,
		"finished":        state.Finished,
		"stop_reason":     state.StopReason,
		"updated_at":      state.UpdatedAt,
		"age":             m.now().Sub(state.UpdatedAt),
	}, nil
}
