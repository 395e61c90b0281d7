package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/config"
	"github.com/corey/anagramatron/internal/logging"
)

var (
	configPath string
	verbose    bool
	logJSON    bool

	// Resolved in PersistentPreRunE, before any subcommand runs.
	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "anagramatron",
	Short: "Find anagram pairs in text streams",
	Long: `Fingerprints every incoming text by its letter counts, keeps one candidate
per fingerprint, and reports a pair when a new text and the stored candidate
are the same letters in a genuinely different arrangement.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	c.ApplyEnv()
	if cmd.Flags().Changed("verbose") {
		c.Log.Verbose = verbose
	}
	if cmd.Flags().Changed("log-json") {
		c.Log.JSON = logJSON
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg = c

	level := slog.LevelInfo
	if cfg.Log.Verbose {
		level = slog.LevelDebug
	}
	if cfg.Log.JSON {
		logger = logging.NewJSONLogger(os.Stderr, level)
	} else {
		logger = logging.NewTextLogger(os.Stderr, level)
	}
	return nil
}

// Execute runs the root command until it finishes or the process is
// interrupted. An interrupt cancels the command's context so stores are
// flushed on the way out.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "anagramatron.yaml", "config file (missing file means defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(chunksCmd)
	rootCmd.AddCommand(hitsCmd)
	rootCmd.AddCommand(configCmd)
}
