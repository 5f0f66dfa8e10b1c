package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/mvtag/internal/config"
)

// syncFlags are the paired switches deciding whether changed records are
// written to file tags and moved to their formatted path.
type syncFlags struct {
	write   bool
	nowrite bool
	move    bool
	nomove  bool
}

func (s *syncFlags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&s.write, "write", "w", false, "Write new tags to files (default from config)")
	fs.BoolVarP(&s.nowrite, "nowrite", "W", false, "Don't write tags to files")
	fs.BoolVarP(&s.move, "move", "m", false, "Move files to match the path format (default from config)")
	fs.BoolVarP(&s.nomove, "nomove", "M", false, "Don't move files")
}

func (s *syncFlags) markExclusive(cmd *cobra.Command) {
	cmd.MarkFlagsMutuallyExclusive("write", "nowrite")
	cmd.MarkFlagsMutuallyExclusive("move", "nomove")
}

// resolve applies the flags over the config defaults.
func (s *syncFlags) resolve(c *config.Config) (write, move bool) {
	write, move = c.Write, c.Move
	switch {
	case s.write:
		write = true
	case s.nowrite:
		write = false
	}
	switch {
	case s.move:
		move = true
	case s.nomove:
		move = false
	}
	return write, move
}
