package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// Checker runs the fact-check pipeline over one text
type Checker interface {
	Run(ctx context.Context, text string) (*model.Run, error)
}

// TextJob fact-checks one input text
type TextJob struct {
	Index   int
	Text    string
	Checker Checker
}

// Execute executes the text job
func (j *TextJob) Execute(ctx context.Context) Result {
	run, err := j.Checker.Run(ctx, j.Text)
	return &TextResult{
		Index: j.Index,
		Text:  j.Text,
		Run:   run,
		Error: err,
	}
}

// TextResult represents the result of a text job
type TextResult struct {
	Index int
	Text  string
	Run   *model.Run
	Error error
}

// GetError returns the error from the text result
func (r *TextResult) GetError() error {
	return r.Error
}

// BatchProcessor fact-checks multiple texts concurrently.
// A failed text does not stop the others.
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessTexts processes texts concurrently, returning results in input order
func (b *BatchProcessor) ProcessTexts(ctx context.Context, texts []string) []*TextResult {
	if len(texts) == 0 {
		return []*TextResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, text := range texts {
		job := &TextJob{
			Index:   i,
			Text:    text,
			Checker: b.checker,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	textResults := make([]*TextResult, len(texts))
	for i := range texts {
		if i < len(results) && results[i] != nil {
			textResults[i] = results[i].(*TextResult)
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		textResults[i] = &TextResult{Index: i, Text: texts[i], Error: err}
	}

	return textResults
}

// ProcessFile reads texts from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*TextResult, error) {
	texts, err := ReadTextsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read texts: %w", err)
	}

	return b.ProcessTexts(ctx, texts), nil
}

// ReadTextsFromFile reads texts from a file, one per line
func ReadTextsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var texts []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate texts
		if !seen[line] {
			seen[line] = true
			texts = append(texts, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return texts, nil
}
