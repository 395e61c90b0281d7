package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Prints the effective configuration (defaults, then config file, then environment) as YAML, followed by the resolved data paths.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	out, err := cfg.Marshal()
	if err != nil {
		return err
	}
	paths := app.NewPaths(cfg.DataPath)

	fmt.Printf("%s\n", bold("⚡ anagramatron config"))
	fmt.Printf("  Config:  %s\n", configPath)
	fmt.Printf("  Chunks:  %s\n", paths.Chunks)
	fmt.Printf("  Status:  %s\n", paths.Status)
	fmt.Println()
	fmt.Print(string(out))
	return nil
}
