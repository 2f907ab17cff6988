package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/bethropolis/tidemark/internal/history"
	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	f := &Flags{}
	f.DefineFlags(flag.NewFlagSet("test", flag.ContinueOnError))
	_, err := f.ParseFlags(args)
	require.NoError(t, err)
	return f
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Empty(t, cfg.validate())
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, persist.DefaultSlot, cfg.Storage.Slot)
	assert.Equal(t, history.DefaultMaxEntries, cfg.Editor.MaxHistory)
}

func TestLoadFileAndFlags(t *testing.T) {
	path := writeConfig(t, `
[logger]
log_level = "debug"

[editor]
max_history = 5
theme = "Tidemark Light"

[storage]
backend = "redis"
slot = "work"
format = "md"
redis_db = 2

[plugins.autosave]
enabled = true
interval = "1s"
`)
	cfg, warnings, err := Load(path, parseFlags(t, "-slot", "other", "-log-tags", "session, persist"))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, []string{"session", "persist"}, cfg.Logger.EnabledTags)
	assert.Equal(t, 5, cfg.Editor.MaxHistory)
	assert.Equal(t, history.DefaultMaxRun, cfg.Editor.CoalesceMaxRun)
	assert.Equal(t, "Tidemark Light", cfg.Editor.Theme)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "other", cfg.Storage.Slot)
	assert.Equal(t, FormatMarkdown, cfg.Storage.Format)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, true, cfg.Plugins["autosave"]["enabled"])
	assert.Equal(t, "1s", cfg.Plugins["autosave"]["interval"])
}

func TestInvalidValuesAreReset(t *testing.T) {
	path := writeConfig(t, `
[editor]
tab_width = -1

[storage]
backend = "ftp"
slot = "../escape"
`)
	cfg, warnings, err := Load(path, nil)
	require.NoError(t, err)
	assert.Len(t, warnings, 3)
	assert.Equal(t, DefaultTabWidth, cfg.Editor.TabWidth)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, persist.DefaultSlot, cfg.Storage.Slot)
}

func TestHTTPBackendNeedsURL(t *testing.T) {
	cfg, warnings, err := Load(filepath.Join(t.TempDir(), "missing.toml"), parseFlags(t, "-storage", "http"))
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)

	cfg, _, err = Load(filepath.Join(t.TempDir(), "missing.toml"), parseFlags(t, "-storage", "http", "-http-url", "http://localhost:7878"))
	require.NoError(t, err)
	assert.Equal(t, BackendHTTP, cfg.Storage.Backend)
}

func TestBadTOMLIsReported(t *testing.T) {
	_, _, err := Load(writeConfig(t, "[editor\nmax_history = "), nil)
	assert.Error(t, err)
}

func TestUnsetFlagsDoNotOverride(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_width = 8\n")
	cfg, _, err := Load(path, parseFlags(t, "-serve"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Editor.TabWidth)
}

func TestSplitCommaList(t *testing.T) {
	assert.Nil(t, splitCommaList(""))
	assert.Equal(t, []string{"a", "b"}, splitCommaList(" a, ,b "))
}
