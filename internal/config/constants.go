package config

// Base application details
const AppName = "tidemark"
const ThemesDirName = "themes"
const SlotsDirName = "slots"
const DefaultConfigFileName = "config.toml" // Main config file
const DefaultLogFileName = "tidemark.log"

// Storage backends
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendHTTP   = "http"
)

// Storage formats
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// These could be moved to NewDefaultConfig(), keeping here for now
const DefaultTabWidth = 4
const DefaultScrollOff = 3
const SystemClipboard = true
const DefaultCodeLanguage = "go"
const DefaultRedisAddr = "localhost:6379"
const DefaultServerAddr = "127.0.0.1:7878"
