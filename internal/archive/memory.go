package archive

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/factcheck/internal/model"
)

// MemoryArchive keeps recent runs in memory for a limited time
type MemoryArchive struct {
	cache *gocache.Cache
}

// NewMemoryArchive creates a memory archive. Entries expire after ttl.
func NewMemoryArchive(ttl time.Duration, cleanupInterval time.Duration) *MemoryArchive {
	return &MemoryArchive{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Save indexes the run; memory entries have no path
func (a *MemoryArchive) Save(run *model.Run) (string, error) {
	a.put(&Entry{
		RunID:   run.ID,
		Path:    run.ArchivePath,
		SavedAt: savedAt(run),
		Results: run.Results,
	})
	return "", nil
}

// Get returns an unexpired entry
func (a *MemoryArchive) Get(runID string) (*Entry, error) {
	if val, found := a.cache.Get(runID); found {
		return val.(*Entry), nil
	}
	return nil, ErrNotFound
}

// Len reports how many runs are indexed
func (a *MemoryArchive) Len() int {
	return a.cache.ItemCount()
}

func (a *MemoryArchive) put(entry *Entry) {
	a.cache.SetDefault(entry.RunID, entry)
}
