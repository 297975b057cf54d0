package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factcheck/internal/model"
)

// Version is set at build time with -ldflags "-X ...cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile   string
	verbose   bool
	logFormat string
	logger    = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factcheck",
	Short: "factcheck - verify quantitative claims against WolframAlpha",
	Long: `factcheck extracts computationally verifiable claims from text, looks each
one up on WolframAlpha and asks a language model for a verdict grounded in
the result.

Verdicts are one of: True, False, Approximately True, Approximately False,
Inconclusive. When WolframAlpha has no usable answer the verdict is reasoned
from the claim and its context alone, and the result says so.

Required environment:
  OPENAI_API_KEY     (or ANTHROPIC_API_KEY with --llm-provider anthropic)
  WOLFRAM_APPID`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := newLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "factcheck v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factcheck/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVar(&logFormat, "log-format", "", "log encoding: json or console")
	pf.String("llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	pf.String("llm-model", "", "LLM model name")
	pf.String("llm-base-url", "", "LLM API base URL (Ollama or OpenAI-compatible endpoint)")
	pf.Int("concurrency", 0, "claims processed at once (1 = sequential)")
	pf.String("archive-dir", "", "directory for archived results")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("llm.provider", pf.Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", pf.Lookup("llm-model"))
	_ = viper.BindPFlag("llm.base_url", pf.Lookup("llm-base-url"))
	_ = viper.BindPFlag("pipeline.concurrency", pf.Lookup("concurrency"))
	_ = viper.BindPFlag("archive.dir", pf.Lookup("archive-dir"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".factcheck"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	registerDefaults(viper.GetViper(), model.DefaultConfig())

	// FACTCHECK_LLM_MODEL, FACTCHECK_KNOWLEDGE_TIMEOUT, ...
	viper.SetEnvPrefix("FACTCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindCredentialEnv(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so that env
// variables can override nested keys
func registerDefaults(v *viper.Viper, cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, val := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, full, sub)
			continue
		}
		v.SetDefault(full, val)
	}
}

// bindCredentialEnv maps the conventional credential variables onto config
// keys. FACTCHECK_* forms take precedence.
func bindCredentialEnv(v *viper.Viper) {
	_ = v.BindEnv("llm.api_key", "FACTCHECK_LLM_API_KEY")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("ollama_base_url", "OLLAMA_BASE_URL")
	_ = v.BindEnv("knowledge.app_id", "FACTCHECK_KNOWLEDGE_APP_ID", "WOLFRAM_APPID")
	_ = v.BindEnv("http.http_proxy", "FACTCHECK_HTTP_HTTP_PROXY", "HTTP_PROXY")
	_ = v.BindEnv("http.https_proxy", "FACTCHECK_HTTP_HTTPS_PROXY", "HTTPS_PROXY")
	_ = v.BindEnv("http.no_proxy", "FACTCHECK_HTTP_NO_PROXY", "NO_PROXY")
}

// loadConfig merges defaults, config file, env and flags into a Config.
// Credentials are not validated here; commands that call out do that.
func loadConfig() (*model.Config, error) {
	return configFrom(viper.GetViper())
}

func configFrom(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = v.GetString("openai_api_key")
		case "anthropic", "claude":
			cfg.LLM.APIKey = v.GetString("anthropic_api_key")
		}
	}
	if cfg.LLM.BaseURL == "" && strings.ToLower(cfg.LLM.Provider) == "ollama" {
		cfg.LLM.BaseURL = v.GetString("ollama_base_url")
	}
	if v.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}

// newLogger builds the process logger the way production services do,
// writing to stderr so stdout stays clean for results
func newLogger(cfg model.LogConfig) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)
	if cfg.Format == "console" {
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}
