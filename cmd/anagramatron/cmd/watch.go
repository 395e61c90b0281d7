package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/fsnotify"
	"github.com/corey/anagramatron/internal/ports"
)

var (
	watchFlags matchFlags
	watchDir   string
	watchOnce  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Find anagrams in saved dump files",
	Long: `Replays every dump file in the save directory in name order, then keeps
watching it and processes each new dump file as the saver writes it.

With --once the command exits after the existing files.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchFlags.register(watchCmd, formatTweet)
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "dump directory (overrides save.dir)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "replay existing files and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := watchFlags.apply(cmd); err != nil {
		return err
	}
	dir := cfg.Save.Dir
	if watchDir != "" {
		dir = watchDir
	}
	opts := fsnotify.DirOptions{Follow: !watchOnce, Logger: logger}

	if watchFlags.format == formatTweet {
		src, err := fsnotify.NewDirSource[*ports.Tweet](dir, opts)
		if err != nil {
			return err
		}
		return runMatch(cmd.Context(), runOptions[*ports.Tweet]{
			command: "watch", source: src, filter: tweetFilter(), flags: &watchFlags,
			tweet: tweetOf,
		})
	}
	src, err := fsnotify.NewDirSource[ports.Line](dir, opts)
	if err != nil {
		return err
	}
	return runMatch(cmd.Context(), runOptions[ports.Line]{
		command: "watch", source: src, filter: lineFilter(), flags: &watchFlags,
	})
}
