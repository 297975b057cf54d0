package archive

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factcheck/internal/model"
)

func sampleRun() *model.Run {
	return &model.Run{
		ID:         uuid.NewString(),
		Status:     model.RunCompleted,
		StartedAt:  time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local),
		FinishedAt: time.Date(2024, 3, 9, 14, 5, 9, 0, time.Local),
		Results: []model.FactCheckResult{
			{
				Claim:       "The speed of light is 299,792,458 m/s",
				Query:       "speed of light in m/s",
				Evidence:    model.UsableEvidence("299792458 m/s"),
				Verdict:     model.VerdictTrue,
				Explanation: "Matches the defined value.",
			},
			{
				Claim:       "Pi is exactly 3",
				Query:       "pi",
				Evidence:    model.NoPodEvidence(),
				Verdict:     model.VerdictFalse,
				Explanation: "Pi is irrational.",
			},
			{
				Claim:       "Mount Everest is 8,849 m tall",
				Query:       "height of Mount Everest",
				Evidence:    model.StatusErrorEvidence(500),
				Verdict:     model.VerdictApproximatelyTrue,
				Explanation: "Commonly cited height.",
			},
		},
	}
}

func TestDiskArchive_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := NewDiskArchive(dir)
	run := sampleRun()

	path, err := a.Save(run)
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.Regexp(t, regexp.MustCompile(`^fact_check_\d{8}_\d{6}_`+run.ID+`\.json$`), name)
	assert.Equal(t, "fact_check_20240309_140509_"+run.ID+".json", name)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, run.Results, loaded)

	entry, err := a.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, path, entry.Path)
	assert.True(t, run.FinishedAt.Equal(entry.SavedAt))
	assert.Equal(t, run.Results, entry.Results)
}

func TestDiskArchive_FileFormat(t *testing.T) {
	dir := t.TempDir()
	run := sampleRun()

	path, err := NewDiskArchive(dir).Save(run)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), "[\n  {\n    \"claim\": ")

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 3)
	assert.Equal(t, "No 'Result' pod found in WolframAlpha response.", raw[1]["wolfram_response"])
	assert.Equal(t, "Error: WolframAlpha API returned status code 500", raw[2]["wolfram_response"])
	for _, obj := range raw {
		assert.Len(t, obj, 5)
	}
}

func TestDiskArchive_EmptyRunWritesEmptyArray(t *testing.T) {
	run := sampleRun()
	run.Results = nil

	path, err := NewDiskArchive(t.TempDir()).Save(run)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDiskArchive_NotFound(t *testing.T) {
	a := NewDiskArchive(t.TempDir())

	_, err := a.Get(uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = a.Get("../../etc/passwd")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryArchive_Expiry(t *testing.T) {
	a := NewMemoryArchive(50*time.Millisecond, time.Minute)
	run := sampleRun()

	path, err := a.Save(run)
	require.NoError(t, err)
	assert.Empty(t, path)

	entry, err := a.Get(run.ID)
	require.NoError(t, err)
	assert.Len(t, entry.Results, 3)

	time.Sleep(100 * time.Millisecond)
	_, err = a.Get(run.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLayeredArchive_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	run := sampleRun()

	// written by an earlier process
	path, err := NewDiskArchive(dir).Save(run)
	require.NoError(t, err)

	a := NewLayeredArchive(dir, time.Hour)
	assert.Equal(t, 0, a.Recent())

	entry, err := a.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, path, entry.Path)
	assert.Equal(t, 1, a.Recent())
}

func TestLayeredArchive_SaveIndexes(t *testing.T) {
	a := NewLayeredArchive(t.TempDir(), time.Hour)
	run := sampleRun()

	path, err := a.Save(run)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 1, a.Recent())

	entry, err := a.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, path, entry.Path)
}
