package archive

import (
	"errors"
	"time"

	"github.com/ppiankov/factcheck/internal/model"
)

// LayeredArchive writes to disk and indexes recent runs in memory
type LayeredArchive struct {
	memory *MemoryArchive
	disk   *DiskArchive
}

// NewLayeredArchive creates a new layered archive
func NewLayeredArchive(dir string, memoryTTL time.Duration) *LayeredArchive {
	return &LayeredArchive{
		memory: NewMemoryArchive(memoryTTL, 10*time.Minute),
		disk:   NewDiskArchive(dir),
	}
}

// Save writes the run to disk, then indexes it in memory
func (a *LayeredArchive) Save(run *model.Run) (string, error) {
	path, err := a.disk.Save(run)
	if err != nil {
		return "", err
	}

	a.memory.put(&Entry{
		RunID:   run.ID,
		Path:    path,
		SavedAt: savedAt(run),
		Results: run.Results,
	})
	return path, nil
}

// Get checks memory first, then disk
func (a *LayeredArchive) Get(runID string) (*Entry, error) {
	if entry, err := a.memory.Get(runID); err == nil {
		return entry, nil
	}

	entry, err := a.disk.Get(runID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Promote to memory
	a.memory.put(entry)
	return entry, nil
}

// Recent reports how many runs are held in memory
func (a *LayeredArchive) Recent() int {
	return a.memory.Len()
}
