package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/factcheck/internal/model"
)

const (
	filePrefix      = "fact_check_"
	timestampLayout = "20060102_150405"
)

// DiskArchive writes each run as a JSON array of results
type DiskArchive struct {
	dir string
}

// NewDiskArchive creates a disk archive rooted at dir
func NewDiskArchive(dir string) *DiskArchive {
	return &DiskArchive{dir: dir}
}

// Dir returns the archive directory
func (a *DiskArchive) Dir() string {
	return a.dir
}

// Save writes <dir>/fact_check_<YYYYmmdd_HHMMSS>_<runID>.json and returns its path
func (a *DiskArchive) Save(run *model.Run) (string, error) {
	results := run.Results
	if results == nil {
		results = []model.FactCheckResult{}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	name := fmt.Sprintf("%s%s_%s.json", filePrefix, savedAt(run).Format(timestampLayout), run.ID)
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}

	return path, nil
}

// Get finds the archive file for a run ID
func (a *DiskArchive) Get(runID string) (*Entry, error) {
	if !validRunID(runID) {
		return nil, ErrNotFound
	}

	matches, err := filepath.Glob(filepath.Join(a.dir, filePrefix+"*_"+runID+".json"))
	if err != nil {
		return nil, fmt.Errorf("glob archive: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	// timestamps sort lexically; the newest write wins
	path := matches[len(matches)-1]
	results, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &Entry{
		RunID:   runID,
		Path:    path,
		SavedAt: timestampFromName(filepath.Base(path), runID),
		Results: results,
	}, nil
}

// Load reads an archive file
func Load(path string) ([]model.FactCheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive file: %w", err)
	}

	var results []model.FactCheckResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode archive file %s: %w", path, err)
	}
	return results, nil
}

func timestampFromName(name, runID string) time.Time {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), "_"+runID+".json")
	t, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
