package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	registerDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("FACTCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindCredentialEnv(v)
	return v
}

func TestConfigFrom_Defaults(t *testing.T) {
	cfg, err := configFrom(newTestViper())
	require.NoError(t, err)

	def := model.DefaultConfig()
	assert.Equal(t, def.LLM.Provider, cfg.LLM.Provider)
	assert.Equal(t, def.Knowledge.Timeout, cfg.Knowledge.Timeout)
	assert.Equal(t, def.Archive.MemoryTTL, cfg.Archive.MemoryTTL)
	assert.Equal(t, def.Server.Addr, cfg.Server.Addr)
	assert.Equal(t, def.Pipeline.Concurrency, cfg.Pipeline.Concurrency)
}

func TestConfigFrom_Env(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WOLFRAM_APPID", "APPID-1")
	t.Setenv("FACTCHECK_PIPELINE_CONCURRENCY", "4")
	t.Setenv("FACTCHECK_KNOWLEDGE_TIMEOUT", "3s")

	cfg, err := configFrom(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "APPID-1", cfg.Knowledge.AppID)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Knowledge.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFrom_ProviderSelectsCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")

	v := newTestViper()
	v.Set("llm.provider", "anthropic")
	cfg, err := configFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)

	v = newTestViper()
	v.Set("llm.provider", "ollama")
	cfg, err = configFrom(v)
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.BaseURL)
}

func TestConfigFrom_ExplicitKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("FACTCHECK_LLM_API_KEY", "sk-explicit")

	cfg, err := configFrom(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, "sk-explicit", cfg.LLM.APIKey)
}

func TestConfigFrom_Verbose(t *testing.T) {
	v := newTestViper()
	v.Set("verbose", true)
	cfg, err := configFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := newLogger(model.LogConfig{Level: "warn", Format: format})
		require.NoError(t, err, format)
		assert.False(t, l.Core().Enabled(-1), "debug must be disabled at warn")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, *model.DefaultConfig(), cfg)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRedacted(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-1234567890"
	cfg.Knowledge.AppID = "ABC"

	r := redacted(cfg)
	assert.Equal(t, "sk-1****", r.LLM.APIKey)
	assert.Equal(t, "****", r.Knowledge.AppID)
	assert.Equal(t, "sk-1234567890", cfg.LLM.APIKey, "original must be untouched")
	assert.Empty(t, mask(""))
}

func resetInputFlags(t *testing.T) {
	t.Helper()
	inputFile, inputURL = "", ""
	t.Cleanup(func() { inputFile, inputURL = "", "" })
}

func TestReadInput(t *testing.T) {
	cfg := model.DefaultConfig()
	ctx := context.Background()

	t.Run("argument", func(t *testing.T) {
		resetInputFlags(t)
		text, source, err := readInput(ctx, &cobra.Command{}, cfg, []string{"Water boils at 100 C."})
		require.NoError(t, err)
		assert.Equal(t, "Water boils at 100 C.", text)
		assert.Equal(t, "argument", source)
	})

	t.Run("file", func(t *testing.T) {
		resetInputFlags(t)
		inputFile = filepath.Join(t.TempDir(), "in.txt")
		require.NoError(t, os.WriteFile(inputFile, []byte("Pi is about 3.14."), 0644))

		text, source, err := readInput(ctx, &cobra.Command{}, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "Pi is about 3.14.", text)
		assert.Equal(t, inputFile, source)
	})

	t.Run("stdin", func(t *testing.T) {
		resetInputFlags(t)
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader("Everest is 8849 m tall.\n"))

		text, source, err := readInput(ctx, cmd, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "Everest is 8849 m tall.\n", text)
		assert.Equal(t, "stdin", source)
	})

	t.Run("blank stdin", func(t *testing.T) {
		resetInputFlags(t)
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader("  \n"))

		_, _, err := readInput(ctx, cmd, cfg, nil)
		assert.ErrorIs(t, err, pipeline.ErrEmptyInput)
	})

	t.Run("conflicting sources", func(t *testing.T) {
		resetInputFlags(t)
		inputURL = "https://example.com"

		_, _, err := readInput(ctx, &cobra.Command{}, cfg, []string{"text"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only one of")
	})
}

func TestPreview(t *testing.T) {
	assert.Equal(t, `"short"`, preview("short", 10))
	assert.Equal(t, `"abc..."`, preview("abcdef", 3))
	assert.Equal(t, `"日本..."`, preview("日本語です", 2))
}

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"check", "batch", "serve", "config", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
