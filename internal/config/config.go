// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/tidemark/internal/history"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/persist"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config `toml:"logger"` // [logger] table
	Editor  EditorConfig  `toml:"editor"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	// Plugins holds one table per plugin, e.g. [plugins.autosave].
	Plugins map[string]map[string]interface{} `toml:"plugins"`
}

// EditorConfig holds editor-specific settings.
type EditorConfig struct {
	TabWidth        int    `toml:"tab_width"`
	ScrollOff       int    `toml:"scroll_off"`
	SystemClipboard bool   `toml:"system_clipboard"`
	MaxHistory      int    `toml:"max_history"`
	CoalesceMaxRun  int    `toml:"coalesce_max_run"`
	Theme           string `toml:"theme"`
	ThemesDir       string `toml:"themes_dir"`
	CodeLanguage    string `toml:"code_language"` // Language used to highlight code blocks
}

// StorageConfig selects where the document is persisted.
type StorageConfig struct {
	Backend   string `toml:"backend"` // file, memory, redis or http
	Dir       string `toml:"dir"`     // file backend directory
	Slot      string `toml:"slot"`
	Format    string `toml:"format"` // html or markdown
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	HTTPURL   string `toml:"http_url"`
}

// ServerConfig holds slot server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Editor: EditorConfig{
			TabWidth:        DefaultTabWidth,
			ScrollOff:       DefaultScrollOff,
			SystemClipboard: SystemClipboard,
			MaxHistory:      history.DefaultMaxEntries,
			CoalesceMaxRun:  history.DefaultMaxRun,
			ThemesDir:       defaultDir(os.UserConfigDir, ThemesDirName),
			CodeLanguage:    DefaultCodeLanguage,
		},
		Storage: StorageConfig{
			Backend:   BackendFile,
			Dir:       defaultDir(userDataDir, SlotsDirName),
			Slot:      persist.DefaultSlot,
			Format:    FormatHTML,
			RedisAddr: DefaultRedisAddr,
		},
		Server:  ServerConfig{Addr: DefaultServerAddr},
		Plugins: make(map[string]map[string]interface{}),
	}
}

// userDataDir follows XDG_DATA_HOME, falling back to ~/.local/share.
func userDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

func defaultDir(base func() (string, error), name string) string {
	dir, err := base()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, name)
}

// DefaultLogPath is where the terminal editor logs when no log file is
// configured, since stderr belongs to the screen.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), DefaultLogFileName)
	}
	return filepath.Join(dir, AppName, DefaultLogFileName)
}

// loadFromFile decodes filePath over cfg. A missing file is not an error.
func loadFromFile(filePath string, cfg *Config, verbose bool) error {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		if verbose {
			logger.Debugf("Config file not found: %s", filePath)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if len(metadata.Undecoded()) > 0 && verbose {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, metadata.Undecoded())
	}
	if verbose {
		logger.Infof("Successfully loaded configuration from: %s", filePath)
	}
	return nil
}

// validate checks config values and resets invalid ones to defaults. It
// returns a description of every reset.
func (c *Config) validate() []string {
	defaults := NewDefaultConfig()
	var resets []string
	reset := func(field string, bad interface{}) {
		resets = append(resets, fmt.Sprintf("%s: invalid value %v, using default", field, bad))
	}

	if c.Editor.TabWidth <= 0 {
		reset("editor.tab_width", c.Editor.TabWidth)
		c.Editor.TabWidth = defaults.Editor.TabWidth
	}
	if c.Editor.ScrollOff < 0 { // Allow 0
		reset("editor.scroll_off", c.Editor.ScrollOff)
		c.Editor.ScrollOff = defaults.Editor.ScrollOff
	}
	if c.Editor.MaxHistory <= 0 {
		reset("editor.max_history", c.Editor.MaxHistory)
		c.Editor.MaxHistory = defaults.Editor.MaxHistory
	}
	if c.Editor.CoalesceMaxRun <= 0 {
		reset("editor.coalesce_max_run", c.Editor.CoalesceMaxRun)
		c.Editor.CoalesceMaxRun = defaults.Editor.CoalesceMaxRun
	}

	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendHTTP:
	default:
		reset("storage.backend", c.Storage.Backend)
		c.Storage.Backend = defaults.Storage.Backend
	}
	switch c.Storage.Format {
	case FormatHTML, FormatMarkdown:
	case "md":
		c.Storage.Format = FormatMarkdown
	default:
		reset("storage.format", c.Storage.Format)
		c.Storage.Format = defaults.Storage.Format
	}
	if err := persist.ValidateSlot(c.Storage.Slot); err != nil {
		reset("storage.slot", c.Storage.Slot)
		c.Storage.Slot = defaults.Storage.Slot
	}
	if c.Storage.RedisDB < 0 {
		reset("storage.redis_db", c.Storage.RedisDB)
		c.Storage.RedisDB = 0
	}
	if c.Storage.Backend == BackendHTTP && c.Storage.HTTPURL == "" {
		resets = append(resets, "storage.http_url: required by the http backend, using memory storage")
		c.Storage.Backend = BackendMemory
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Plugins == nil {
		c.Plugins = make(map[string]map[string]interface{})
	}
	return resets
}

// Load builds a configuration from defaults, the file at configFilePath
// (or the default location when empty), and flag overrides. Resets made
// by validation are returned as warnings, since the logger is usually not
// initialized yet.
func Load(configFilePath string, flags *Flags) (*Config, []string, error) {
	cfg := NewDefaultConfig()

	effectivePath := configFilePath
	if effectivePath == "" {
		if configDir, err := os.UserConfigDir(); err == nil {
			effectivePath = filepath.Join(configDir, AppName, DefaultConfigFileName)
		}
	}

	var err error
	if effectivePath != "" {
		err = loadFromFile(effectivePath, cfg, false)
	}
	if flags != nil {
		flags.ApplyOverrides(cfg, false)
	}
	warnings := cfg.validate()
	return cfg, warnings, err
}

// LoadConfig loads the process-wide configuration once. It should be
// called only once, typically from main.
func LoadConfig(configFilePath string, flags *Flags) (*Config, []string, error) {
	var warnings []string
	loadOnce.Do(func() {
		loadedConfig, warnings, loadErr = Load(configFilePath, flags)
	})
	return loadedConfig, warnings, loadErr
}
