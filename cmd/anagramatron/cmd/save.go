package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/dump"
	"github.com/corey/anagramatron/internal/adapters/kafka"
	"github.com/corey/anagramatron/internal/adapters/lines"
	"github.com/corey/anagramatron/internal/app"
	"github.com/corey/anagramatron/internal/domain/filter"
	"github.com/corey/anagramatron/internal/ports"
)

var saveFlags struct {
	dir       string
	batch     int
	gzip      bool
	format    string
	fromKafka bool
}

var saveCmd = &cobra.Command{
	Use:   "save [file]",
	Short: "Filter a stream and save it as dump files",
	Long: `Applies the stream filters and writes the surviving items to the save
directory, one JSON array file per batch. Files appear atomically, so a
concurrent 'anagramatron watch' never reads a partial batch.

Reads file (or stdin), or the Kafka item topic with --kafka.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveFlags.dir, "dir", "", "dump directory (overrides save.dir)")
	saveCmd.Flags().IntVar(&saveFlags.batch, "batch", 0, "items per file (overrides save.batch)")
	saveCmd.Flags().BoolVar(&saveFlags.gzip, "gzip", false, "write .json.gz files (overrides save.gzip)")
	saveCmd.Flags().StringVar(&saveFlags.format, "format", formatTweet, "item format: text or tweet")
	saveCmd.Flags().BoolVar(&saveFlags.fromKafka, "kafka", false, "read from the Kafka item topic")
	registerKafkaFlags(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	if saveFlags.dir != "" {
		cfg.Save.Dir = saveFlags.dir
	}
	if saveFlags.batch > 0 {
		cfg.Save.Batch = saveFlags.batch
	}
	if cmd.Flags().Changed("gzip") {
		cfg.Save.Gzip = saveFlags.gzip
	}

	switch saveFlags.format {
	case formatTweet:
		src, err := saveSource[*ports.Tweet](cmd, args, lines.DecodeTweet, func(r *os.File) ports.Source[*ports.Tweet] {
			return lines.NewTweetSource(r)
		})
		if err != nil {
			return err
		}
		return saveItems(cmd.Context(), src, tweetFilter())
	case formatText:
		src, err := saveSource[ports.Line](cmd, args, lines.DecodeLine, func(r *os.File) ports.Source[ports.Line] {
			return lines.NewTextSource(r)
		})
		if err != nil {
			return err
		}
		return saveItems(cmd.Context(), src, lineFilter())
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", saveFlags.format, formatText, formatTweet)
	}
}

func saveSource[T any](cmd *cobra.Command, args []string, decode kafka.DecodeFunc[T], fromFile func(*os.File) ports.Source[T]) (ports.Source[T], error) {
	if saveFlags.fromKafka {
		return kafka.NewSource(kafkaConfig(cmd), decode, logger)
	}
	if len(args) == 0 || args[0] == "-" {
		return fromFile(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	return fromFile(f), nil
}

func saveItems[T ports.Item](ctx context.Context, src ports.Source[T], keep filter.Func[T]) (err error) {
	defer src.Close()

	w, err := dump.NewWriter[T](cfg.Save.Dir, dump.Options{Batch: cfg.Save.Batch, Gzip: cfg.Save.Gzip, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("write final batch: %w", cerr))
		}
		fmt.Fprintf(os.Stderr, "  %d files in %s\n", len(w.Files()), cyan(cfg.Save.Dir))
	}()

	progress, _ := cfg.ProgressInterval()
	p := &app.Pipeline[T]{
		Source:   src,
		Filter:   keep,
		Save:     w.Add,
		Logger:   logger,
		Progress: progress,
	}
	res, err := p.Run(ctx)
	fmt.Fprint(os.Stderr, formatRunSummary("save", res))
	return err
}
