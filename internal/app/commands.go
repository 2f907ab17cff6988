package app

import (
	"fmt"
	"strings"

	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/plugin"
)

// registerAppCommands registers built-in commands like :theme.
func registerAppCommands(app *App) {
	api := app.editorAPI

	themeCmdFunc := func(args []string) error {
		if len(args) == 0 {
			api.SetStatusMessage("Current theme: %s", app.GetTheme().Name)
			return nil
		}

		themeName := strings.Join(args, " ") // Allow theme names with spaces
		if err := app.SetTheme(themeName); err != nil {
			themeList := strings.Join(app.themeManager.ListThemes(), ", ")
			return fmt.Errorf("theme '%s' not found. Available: %s", themeName, themeList)
		}
		api.SetStatusMessage("Theme set to: %s", app.GetTheme().Name)
		return nil
	}

	themeListCmdFunc := func(args []string) error {
		api.SetStatusMessage("Available themes: %s", strings.Join(app.themeManager.ListThemes(), ", "))
		return nil
	}

	pluginsCmdFunc := func(args []string) error {
		api.SetStatusMessage("Plugins: %s", strings.Join(app.pluginManager.Names(), ", "))
		return nil
	}

	for name, fn := range map[string]plugin.CommandFunc{
		"theme":   themeCmdFunc,
		"themes":  themeListCmdFunc,
		"plugins": pluginsCmdFunc,
	} {
		if err := api.RegisterCommand(name, fn); err != nil {
			logger.Warnf("Failed to register ':%s' command: %v", name, err)
		}
	}
}
