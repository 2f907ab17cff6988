// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/bethropolis/tidemark/internal/logger"
)

// Flags holds values parsed from command-line flags.
// Use pointers to distinguish between unset flags and zero-value flags.
type Flags struct {
	fs *flag.FlagSet

	ConfigFilePath *string
	Version        *bool
	Serve          *bool
	Export         *string
	LogLevel       *string
	LogFilePath    *string
	TabWidth       *int
	ScrollOff      *int
	EnableTags     *string
	DisableTags    *string
	EnablePkgs     *string
	DisablePkgs    *string
	Theme          *string
	Backend        *string
	StorageDir     *string
	Slot           *string
	Format         *string
	RedisAddr      *string
	HTTPURL        *string
	Addr           *string

	SystemClipboard *bool
}

// DefineFlags sets up the flags on fs, or on the command line when fs is nil.
func (f *Flags) DefineFlags(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	f.fs = fs
	f.ConfigFilePath = fs.String("config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	f.Version = fs.Bool("version", false, "Show version information and exit")
	f.Serve = fs.Bool("serve", false, "Run the slot server instead of the editor")
	f.Export = fs.String("export", "", "Write the slot to stdout as md or html and exit")
	f.LogLevel = fs.String("loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	f.LogFilePath = fs.String("logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	f.TabWidth = fs.Int("tabwidth", 0, "Number of cells per tab - Overrides config file")                    // Use 0 to indicate unset
	f.ScrollOff = fs.Int("scrolloff", -1, "Blocks of context above/below the caret - Overrides config file") // Use -1 to indicate unset
	f.EnableTags = fs.String("log-tags", "", "Comma-separated list of tags to enable - Overrides config file")
	f.DisableTags = fs.String("log-disable-tags", "", "Comma-separated list of tags to disable - Overrides config file")
	f.EnablePkgs = fs.String("log-packages", "", "Comma-separated list of packages to enable - Overrides config file")
	f.DisablePkgs = fs.String("log-disable-packages", "", "Comma-separated list of packages to disable - Overrides config file")
	f.SystemClipboard = fs.Bool("system-clipboard", false, "Use system clipboard instead of internal clipboard")
	f.Theme = fs.String("theme", "", "Theme name - Overrides config file")
	f.Backend = fs.String("storage", "", "Storage backend (file, memory, redis, http) - Overrides config file")
	f.StorageDir = fs.String("storage-dir", "", "Directory for the file backend - Overrides config file")
	f.Slot = fs.String("slot", "", "Persistence slot name - Overrides config file")
	f.Format = fs.String("format", "", "Stored format (html, markdown) - Overrides config file")
	f.RedisAddr = fs.String("redis-addr", "", "Redis address for the redis backend - Overrides config file")
	f.HTTPURL = fs.String("http-url", "", "Slot server URL for the http backend - Overrides config file")
	f.Addr = fs.String("addr", "", "Listen address for -serve - Overrides config file")
}

// ParseFlags defines the flags on the command line and parses args (usually
// os.Args[1:]). It returns the remaining non-flag arguments.
func (f *Flags) ParseFlags(args []string) ([]string, error) {
	if f.fs == nil {
		f.DefineFlags(nil)
	}
	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	return f.fs.Args(), nil
}

// ApplyOverrides updates the Config struct with values from flags *if* they were set.
func (f *Flags) ApplyOverrides(cfg *Config, verbose bool) {
	if f.fs == nil || !f.fs.Parsed() {
		return
	}
	setString := func(dst *string, src *string, name string) {
		if src != nil && *src != "" {
			if verbose {
				logger.DebugTagf("config", "Setting %s from flag: %s", name, *src)
			}
			*dst = *src
		}
	}
	setList := func(dst *[]string, src *string) {
		if src != nil && *src != "" {
			*dst = splitCommaList(*src)
		}
	}

	// Visit only processes flags that were actually set
	f.fs.Visit(func(fl *flag.Flag) {
		if verbose {
			logger.DebugTagf("config", "Applying flag override: %s", fl.Name)
		}
		switch fl.Name {
		case "loglevel":
			setString(&cfg.Logger.LogLevel, f.LogLevel, "log level")
		case "logfile":
			if f.LogFilePath != nil { // "-" is valid
				cfg.Logger.LogFilePath = *f.LogFilePath
			}
		case "tabwidth":
			if f.TabWidth != nil && *f.TabWidth > 0 {
				cfg.Editor.TabWidth = *f.TabWidth // Only override if positive
			}
		case "scrolloff":
			if f.ScrollOff != nil && *f.ScrollOff >= 0 {
				cfg.Editor.ScrollOff = *f.ScrollOff // Only override if non-negative
			}
		case "system-clipboard":
			if f.SystemClipboard != nil {
				cfg.Editor.SystemClipboard = *f.SystemClipboard
			}
		case "log-tags":
			setList(&cfg.Logger.EnabledTags, f.EnableTags)
		case "log-disable-tags":
			setList(&cfg.Logger.DisabledTags, f.DisableTags)
		case "log-packages":
			setList(&cfg.Logger.EnabledPackages, f.EnablePkgs)
		case "log-disable-packages":
			setList(&cfg.Logger.DisabledPackages, f.DisablePkgs)
		case "theme":
			setString(&cfg.Editor.Theme, f.Theme, "theme")
		case "storage":
			setString(&cfg.Storage.Backend, f.Backend, "storage backend")
		case "storage-dir":
			setString(&cfg.Storage.Dir, f.StorageDir, "storage dir")
		case "slot":
			setString(&cfg.Storage.Slot, f.Slot, "slot")
		case "format":
			setString(&cfg.Storage.Format, f.Format, "format")
		case "redis-addr":
			setString(&cfg.Storage.RedisAddr, f.RedisAddr, "redis address")
		case "http-url":
			setString(&cfg.Storage.HTTPURL, f.HTTPURL, "http url")
		case "addr":
			setString(&cfg.Server.Addr, f.Addr, "server address")
		}
	})
}

// Helper function to split comma-separated list
func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
