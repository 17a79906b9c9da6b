// Package snapshot stores the canonical output of suite expressions and
// compares later runs against it.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// SnapshotDir is the directory name for storing snapshots
	SnapshotDir = "__snapshots__"
	// SnapshotExt is the file extension for snapshot files
	SnapshotExt = ".snap.json"
)

// Entry is the stored output of one expression.
type Entry struct {
	// Kind is the XPath result kind, e.g. "node-set" or "number".
	Kind string `json:"kind"`
	// Value is the canonical XML of a node set or the string form of a scalar.
	Value string `json:"value"`
}

// Manager handles snapshot storage and comparison. It is safe for
// concurrent use.
type Manager struct {
	updateMode bool

	mu    sync.Mutex
	files map[string]map[string]Entry // snapshot file -> {case name -> entry}
}

// NewManager creates a new snapshot manager. In update mode missing and
// mismatching snapshots are written instead of failing.
func NewManager(updateMode bool) *Manager {
	return &Manager{
		updateMode: updateMode,
		files:      make(map[string]map[string]Entry),
	}
}

// Result represents the result of a snapshot comparison.
type Result struct {
	Passed     bool
	Message    string
	Expected   Entry
	Actual     Entry
	Missing    bool
	IsNew      bool
	WasUpdated bool
}

// Compare compares actual against the snapshot stored for caseName next to
// suiteFile.
func (m *Manager) Compare(suiteFile, caseName string, actual Entry) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &Result{Actual: actual}
	path := FilePath(suiteFile)

	snapshots, err := m.load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	expected, exists := snapshots[caseName]
	switch {
	case exists && expected == actual:
		result.Expected = expected
		result.Passed = true
		return result, nil

	case !m.updateMode && !exists:
		result.Missing = true
		result.Message = "snapshot does not exist (run with --update-snapshots to create)"
		return result, nil

	case !m.updateMode:
		result.Expected = expected
		result.Message = "snapshot mismatch"
		return result, nil
	}

	snapshots[caseName] = actual
	if err := m.save(path, snapshots); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	result.Expected = actual
	result.Passed = true
	if exists {
		result.WasUpdated = true
		result.Message = "snapshot updated"
	} else {
		result.IsNew = true
		result.Message = "new snapshot created"
	}
	return result, nil
}

// FilePath returns the path of the snapshot file for a suite file.
func FilePath(suiteFile string) string {
	dir := filepath.Dir(suiteFile)
	base := filepath.Base(suiteFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(dir, SnapshotDir, name+SnapshotExt)
}

func (m *Manager) load(path string) (map[string]Entry, error) {
	if cached, ok := m.files[path]; ok {
		return cached, nil
	}

	snapshots := make(map[string]Entry)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.files[path] = snapshots
			return snapshots, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.files[path] = snapshots
	return snapshots, nil
}

func (m *Manager) save(path string, snapshots map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
