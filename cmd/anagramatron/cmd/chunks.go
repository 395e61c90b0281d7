package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/bbolt"
	"github.com/corey/anagramatron/internal/app"
	"github.com/corey/anagramatron/internal/domain/status"
)

var chunksPath string

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Show the persistent store's chunk files",
	Long:  "Lists chunk files in lookup order with their creation time and entry count, then the last run's status. The store must not be in use by another process.",
	Args:  cobra.NoArgs,
	RunE:  runChunks,
}

func init() {
	chunksCmd.Flags().StringVarP(&chunksPath, "path", "p", "", "data directory (overrides data_path)")
}

func runChunks(cmd *cobra.Command, args []string) error {
	if chunksPath != "" {
		cfg.DataPath = chunksPath
	}
	paths := app.NewPaths(cfg.DataPath)
	if _, err := os.Stat(paths.Chunks); err != nil {
		return fmt.Errorf("no store at %s: %w", paths.Root, err)
	}

	// Values are never decoded here, so the item type does not matter.
	s, err := bbolt.Open[struct{}](paths.Chunks, bbolt.Options{Logger: logger})
	if err != nil {
		if isStoreLockError(err) {
			return errors.New(diagnoseStoreLock(paths.Chunks))
		}
		return err
	}
	defer s.Close()

	fmt.Print(formatChunks(paths.Chunks, s.Chunks(), s.CacheLen()))

	snap, err := status.ReadJSON(paths.Status)
	switch {
	case err == nil:
		fmt.Print(formatLastRun(snap))
	case !os.IsNotExist(err):
		return err
	}
	return nil
}
