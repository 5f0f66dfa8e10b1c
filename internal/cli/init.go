package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mvtag/internal/config"
	"github.com/aidanlsb/mvtag/internal/library"
	"github.com/aidanlsb/mvtag/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config and an empty library",
	Long: `Write a commented default config (unless one exists) and create the
library database it points to. Existing files are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path, created, err := config.CreateDefault(config.ResolvePath(configPath))
	if err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	loaded, err := loadConfig()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	lib, err := library.Open(loaded.Library)
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	stats, err := lib.Stats()
	lib.Close()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"config":         path,
			"config_created": created,
			"library":        loaded.Library,
			"items":          stats.Items,
			"albums":         stats.Albums,
		}, nil)
		return nil
	}

	if created {
		fmt.Fprintln(out, ui.Successf("Created config %s", ui.FilePath(path)))
	} else {
		fmt.Fprintln(out, ui.Infof("Using existing config %s", ui.FilePath(path)))
	}
	fmt.Fprintln(out, ui.Successf("Library ready at %s (%s, %s)", ui.FilePath(loaded.Library),
		ui.Count(stats.Items, "item", "items"), ui.Count(stats.Albums, "album", "albums")))
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
