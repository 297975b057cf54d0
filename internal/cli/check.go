package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/extract"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
)

var (
	inputFile    string
	inputURL     string
	jsonOutput   bool
	outputPath   string
	noArchive    bool
	checkTimeout time.Duration
	maxChars     int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Fact-check a piece of text",
	Long: `Check extracts verifiable claims from text and verifies each one:
- Ask the LLM for claims that can be checked computationally
- Rewrite each claim as a WolframAlpha query
- Look the query up on WolframAlpha
- Ask the LLM for a verdict grounded in the result

Text comes from the argument, --file, --url or standard input.

Example:
  factcheck check "The speed of light is 299,792,458 m/s."
  factcheck check --file article.txt --json
  factcheck check --url https://en.wikipedia.org/wiki/Speed_of_light
  echo "Mount Everest is 8,849 m tall." | factcheck check`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&inputFile, "file", "f", "", "read text from file")
	checkCmd.Flags().StringVar(&inputURL, "url", "", "fetch a web page and check its visible text")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	checkCmd.Flags().StringVarP(&outputPath, "output", "o", "", "also write results JSON to this path")
	checkCmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not archive results")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "total timeout for the run")
	checkCmd.Flags().IntVar(&maxChars, "max-chars", 20000, "truncate page text fetched with --url to this many characters")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noArchive {
		cfg.Archive.Enabled = false
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	text, source, err := readInput(ctx, cmd, cfg, args)
	if err != nil {
		return err
	}

	p, _, err := pipeline.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  factcheck\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Source:       %s (%d chars)\n", source, len(text))
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Concurrency:  %d\n", cfg.Pipeline.Concurrency)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Checking claims...\n")

	run, err := p.Run(ctx, text)
	if err != nil {
		return fmt.Errorf("fact-check failed: %w", err)
	}
	if run.Error != "" {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", run.Error)
	}
	fmt.Fprintf(os.Stderr, "✓ Checked %d claims\n\n", len(run.Results))

	renderer := pipeline.NewRenderer()
	if outputPath != "" {
		if err := renderer.RenderJSONFile(run.Results, outputPath); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Results written to %s\n", outputPath)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return renderer.RenderJSON(out, run.Results)
	}
	return renderer.RenderText(out, run)
}

// readInput resolves the text to check and a label describing where it came from
func readInput(ctx context.Context, cmd *cobra.Command, cfg *model.Config, args []string) (string, string, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, inputFile != "", inputURL != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", "", fmt.Errorf("use only one of: text argument, --file, --url")
	}

	var text, source string
	switch {
	case len(args) > 0:
		text, source = args[0], "argument"
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", "", fmt.Errorf("read input file: %w", err)
		}
		text, source = string(data), inputFile
	case inputURL != "":
		fetcher := pipeline.NewFetcher(
			cfg.HTTP.Timeout,
			cfg.HTTP.UserAgent,
			cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.RespectRobots,
			cfg.HTTP.HTTPProxy,
			cfg.HTTP.HTTPSProxy,
			cfg.HTTP.NoProxy,
		).WithLogger(logger)
		logger.Debug("fetching page", zap.String("url", inputURL))
		fetched, err := fetcher.FetchText(ctx, inputURL, extract.NewTextExtractor(maxChars))
		if err != nil {
			return "", "", err
		}
		text, source = fetched, inputURL
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		text, source = string(data), "stdin"
	}

	if strings.TrimSpace(text) == "" {
		return "", "", pipeline.ErrEmptyInput
	}
	return text, source, nil
}
