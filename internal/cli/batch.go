package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/worker"
)

var (
	batchWorkers int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fact-check many texts from a file in parallel",
	Long: `Batch processes multiple texts concurrently:
- Read texts from input file (one per line, # starts a comment)
- Check texts in parallel with a configurable worker count
- Write one results file per text, in input order
- A failing text is reported and does not stop the others

Example:
  factcheck batch claims.txt
  factcheck batch claims.txt --workers 4 --output-dir ./results-batch
  factcheck batch claims.txt --workers 2 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 2, "number of texts checked at once")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factcheck-batch", "output directory for per-text results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not archive results")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noArchive {
		cfg.Archive.Enabled = false
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  factcheck Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", batchWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	p, _, err := pipeline.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(p, batchWorkers)

	fmt.Fprintf(os.Stderr, "⚙️  Reading texts from file...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d texts\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")

	renderer := pipeline.NewRenderer()
	successCount := 0
	failureCount := 0
	claimCount := 0

	for _, result := range results {
		label := preview(result.Text, 60)
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ #%d %s: %v\n", result.Index+1, label, result.Error)
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("text_%03d.json", result.Index+1))
		if err := renderer.RenderJSONFile(result.Run.Results, path); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ #%d %s: failed to write JSON: %v\n", result.Index+1, label, err)
			continue
		}

		successCount++
		claimCount += len(result.Run.Results)
		summary := renderer.Summarize(result.Run.Results)
		fmt.Fprintf(os.Stderr, "✓ #%d %s (%d claims, confidence %s)\n", result.Index+1, label, summary.Total, summary.Confidence)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d texts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Claims:    %d\n", claimCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d texts failed", failureCount)
	}
	return nil
}

// preview shortens text to at most n runes for progress lines
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return fmt.Sprintf("%q", text)
	}
	return fmt.Sprintf("%q", string(runes[:n])+"...")
}
