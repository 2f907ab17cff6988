// internal/plugin/plugin.go
package plugin

import (
	"context"

	"github.com/bethropolis/tidemark/internal/event"
	"github.com/bethropolis/tidemark/internal/transform"
)

// CommandFunc defines the signature for commands registered by plugins.
// It takes the arguments typed after the command name.
type CommandFunc func(args []string) error

// EditorAPI defines the methods plugins can use to interact with the editor.
// Plugins only read the document; edits go through the session.
type EditorAPI interface {
	// --- Document Access (Read-Only) ---
	Snapshot() transform.State // Current document, selection and mode
	IsModified() bool          // Unsaved changes since the last save or load
	Slot() string              // Persistence slot name

	// --- Persistence ---
	Save(ctx context.Context) error

	// --- Event Bus Interaction ---
	DispatchEvent(eventType event.Type, data interface{})
	SubscribeEvent(eventType event.Type, handler event.Handler)

	// --- Command Registration ---
	RegisterCommand(name string, cmdFunc CommandFunc) error

	// --- Status Bar ---
	SetStatusMessage(format string, args ...interface{})

	// --- Configuration ---
	// GetPluginConfigValue reads [plugins.<name>] <key> from the config file.
	GetPluginConfigValue(pluginName, key string) (interface{}, bool)
}

// Plugin defines the interface that all plugins must implement.
type Plugin interface {
	// Name returns the unique identifier name of the plugin.
	Name() string

	// Initialize is called once when the plugin is loaded.
	// Used for setup, subscribing to events, registering commands.
	Initialize(api EditorAPI) error

	// Shutdown is called once when the editor is closing.
	Shutdown() error
}
