package archive

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/factcheck/internal/model"
)

// ErrNotFound is returned when no archived run matches an ID
var ErrNotFound = errors.New("archived run not found")

// Archive stores completed runs and finds them again by run ID
type Archive interface {
	Save(run *model.Run) (string, error)
	Get(runID string) (*Entry, error)
}

// Entry is an archived run
type Entry struct {
	RunID   string                  `json:"id"`
	Path    string                  `json:"archive_path,omitempty"`
	SavedAt time.Time               `json:"saved_at"`
	Results []model.FactCheckResult `json:"results"`
}

// validRunID guards file lookups against IDs that are not ours
func validRunID(runID string) bool {
	_, err := uuid.Parse(runID)
	return err == nil
}

func savedAt(run *model.Run) time.Time {
	if !run.FinishedAt.IsZero() {
		return run.FinishedAt
	}
	return time.Now()
}
