// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mvtag/internal/config"
	"github.com/aidanlsb/mvtag/internal/logging"
	"github.com/aidanlsb/mvtag/internal/ui"
)

var (
	// Global flags
	configPath   string
	libraryFlag  string
	logLevelFlag string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config

	// out receives all user output; set from the running command.
	out io.Writer = os.Stdout
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mvtag",
	Short: "Add and remove values in multi-valued music tags",
	Long: `mvtag keeps a library of your music files and edits their tags.

Multi-valued fields such as artists or a comma-separated genre can be
changed one value at a time:

  mvtag multivalue artist:Dolphy genre+=Jazz artists-=Guest

Changes are stored in the library, written to the files' tags and,
optionally, the files are moved to match the path format.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		out = cmd.OutOrStdout()

		// init creates the config; version and help need none
		switch cmd.Name() {
		case "init", "version", "help", "completion":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		loaded, err := loadConfig()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Run 'mvtag init' to create a default config")
		}
		cfg = loaded

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		logger := logging.New(cmd.ErrOrStderr(), level)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		logger.Debug("loaded config", "path", resolvedConfigPath, "library", cfg.Library)

		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&libraryFlag, "library", "", "Path to the library database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
}

// loadConfig loads the global config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	resolvedConfigPath = config.ResolvePath(configPath)

	loaded, err := config.LoadPath(configPath)
	if err != nil {
		return nil, err
	}
	if p := strings.TrimSpace(libraryFlag); p != "" {
		loaded.Library = config.ExpandHome(p)
	}
	if l := strings.TrimSpace(logLevelFlag); l != "" {
		loaded.LogLevel = l
	}
	return loaded, nil
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}
