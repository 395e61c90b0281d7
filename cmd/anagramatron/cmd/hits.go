package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/postgres"
)

var hitsFlags struct {
	status string
	after  int
	limit  int
}

var hitsCmd = &cobra.Command{
	Use:   "hits",
	Short: "Review stored hits",
	Long:  "Lists, shows and updates hits in the Postgres hit store (postgres.url or DATABASE_URL).",
}

var hitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hits with a given status",
	Args:  cobra.NoArgs,
	RunE:  runHitsList,
}

var hitsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one hit",
	Args:  cobra.ExactArgs(1),
	RunE:  runHitsShow,
}

var hitsSetCmd = &cobra.Command{
	Use:   "set <id> <status>",
	Short: "Move a hit to another status",
	Long:  "Statuses: new, fetch-failed, approved, rejected, posted, post-failed.",
	Args:  cobra.ExactArgs(2),
	RunE:  runHitsSet,
}

var hitsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the hit tables",
	Args:  cobra.NoArgs,
	RunE:  runHitsInit,
}

func init() {
	hitsListCmd.Flags().StringVar(&hitsFlags.status, "status", "new", "status to list")
	hitsListCmd.Flags().IntVar(&hitsFlags.after, "after", 0, "only hits with a greater id")
	hitsListCmd.Flags().IntVar(&hitsFlags.limit, "limit", 20, "maximum hits to list")

	hitsCmd.AddCommand(hitsListCmd)
	hitsCmd.AddCommand(hitsShowCmd)
	hitsCmd.AddCommand(hitsSetCmd)
	hitsCmd.AddCommand(hitsInitCmd)
}

func openHits(cmd *cobra.Command) (*postgres.HitStore, error) {
	if cfg.Postgres.URL == "" {
		return nil, errors.New("no hit database configured: set postgres.url or DATABASE_URL")
	}
	return postgres.Open(cmd.Context(), cfg.Postgres.URL)
}

func runHitsList(cmd *cobra.Command, args []string) error {
	st, err := postgres.ParseHitStatus(hitsFlags.status)
	if err != nil {
		return err
	}
	s, err := openHits(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	hits, err := s.GetHits(cmd.Context(), st, hitsFlags.after, hitsFlags.limit)
	if err != nil {
		return err
	}
	fmt.Print(formatHits(hits))
	return nil
}

func parseHitID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid hit id %q", arg)
	}
	return id, nil
}

func runHitsShow(cmd *cobra.Command, args []string) error {
	id, err := parseHitID(args[0])
	if err != nil {
		return err
	}
	s, err := openHits(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	h, err := s.GetHit(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Print(formatHitDetail(h))
	return nil
}

func runHitsSet(cmd *cobra.Command, args []string) error {
	id, err := parseHitID(args[0])
	if err != nil {
		return err
	}
	st, err := postgres.ParseHitStatus(args[1])
	if err != nil {
		return err
	}
	s, err := openHits(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.UpdateStatus(cmd.Context(), id, st); err != nil {
		return err
	}
	fmt.Printf("#%d → %s\n", id, statusColor(st))
	return nil
}

func runHitsInit(cmd *cobra.Command, args []string) error {
	s, err := openHits(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	fmt.Println(green("✓"), "hit tables ready")
	return nil
}
