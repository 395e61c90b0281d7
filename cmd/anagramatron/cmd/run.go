package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/ahocorasick"
	"github.com/corey/anagramatron/internal/adapters/memory"
	"github.com/corey/anagramatron/internal/adapters/postgres"
	"github.com/corey/anagramatron/internal/app"
	"github.com/corey/anagramatron/internal/config"
	"github.com/corey/anagramatron/internal/domain/filter"
	"github.com/corey/anagramatron/internal/domain/matcher"
	"github.com/corey/anagramatron/internal/domain/status"
	"github.com/corey/anagramatron/internal/ports"
)

const (
	formatText  = "text"
	formatTweet = "tweet"
)

// matchFlags are shared by every command that runs the dispatcher.
type matchFlags struct {
	path      string
	memory    bool
	noWrite   bool
	minDist   float64
	minLength int
	format    string
	quiet     bool
}

func (f *matchFlags) register(cmd *cobra.Command, defaultFormat string) {
	cmd.Flags().StringVarP(&f.path, "path", "p", "", "data directory (overrides data_path)")
	cmd.Flags().BoolVar(&f.memory, "memory", false, "use the in-memory store; nothing is persisted")
	cmd.Flags().BoolVarP(&f.noWrite, "no-write", "n", false, "check items against the store without inserting them")
	cmd.Flags().Float64Var(&f.minDist, "min-dist", 0, "distance ratio threshold (overrides match.min_dist)")
	cmd.Flags().IntVar(&f.minLength, "min-length", 0, "shortest text line considered (overrides match.min_length)")
	cmd.Flags().StringVar(&f.format, "format", defaultFormat, "item format: text or tweet")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "print only the summary, not each pair")
}

// apply folds changed flags into cfg.
func (f *matchFlags) apply(cmd *cobra.Command) error {
	if f.format != formatText && f.format != formatTweet {
		return fmt.Errorf("unknown format %q (want %s or %s)", f.format, formatText, formatTweet)
	}
	if cmd.Flags().Changed("min-dist") {
		cfg.Match.MinDist = f.minDist
	}
	if cmd.Flags().Changed("min-length") {
		cfg.Match.MinLength = f.minLength
	}
	if f.path != "" {
		cfg.DataPath = f.path
	}
	return cfg.Validate()
}

func lineFilter() filter.Func[ports.Line] {
	return filter.LineDefaults(cfg.Match.MinLength)
}

func tweetFilter() filter.Func[*ports.Tweet] {
	return filter.TweetDefaults(ahocorasick.NewMatcher(cfg.Match.Blocklist))
}

func tweetOf(t *ports.Tweet) *ports.Tweet { return t }

// runOptions describes one dispatcher run.
type runOptions[T ports.Item] struct {
	command string
	source  ports.Source[T]
	filter  filter.Func[T]
	flags   *matchFlags

	// tweet exposes the tweet behind an item for hit storage; nil for
	// plain lines.
	tweet func(T) *ports.Tweet

	// tempByDefault runs against a throwaway directory unless a data path
	// was given by flag, environment or config file.
	tempByDefault bool
}

// runMatch opens the store and sinks, runs the pipeline, and reports. The
// store is closed (and so flushed) before runMatch returns, also on error.
func runMatch[T ports.Item](ctx context.Context, o runOptions[T]) (err error) {
	defer o.source.Close()

	dataPath, temp := cfg.DataPath, false
	if o.tempByDefault && !o.flags.memory && o.flags.path == "" && cfg.DataPath == config.DefaultDataPath {
		tmp, err := os.MkdirTemp("", "anagrams_")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		dataPath, temp = tmp, true
	}
	paths := app.NewPaths(dataPath)
	if !o.flags.memory {
		if err := paths.EnsureDirs(); err != nil {
			return fmt.Errorf("data dir: %w", err)
		}
		if n, err := paths.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		} else if n > 0 {
			logger.Info("moved chunk files", "count", n, "dir", paths.Chunks)
		}
	}

	store, err := app.OpenStore[T](app.StoreOptions{
		Memory:        o.flags.memory,
		Dir:           paths.Chunks,
		ChunkSize:     cfg.Store.ChunkSize,
		CacheCapacity: cfg.Store.CacheCapacity,
		Codec:         cfg.Store.Codec,
		Logger:        logger,
	})
	if err != nil {
		if isStoreLockError(err) {
			return errors.New(diagnoseStoreLock(paths.Chunks))
		}
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
		}
	}()

	counting := memory.NewCountingSink[T]()
	sinks := app.MultiSink[T]{counting, app.LogSink[T]{Logger: logger}}
	if cfg.Postgres.URL != "" {
		hits, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer hits.Close()
		if err := hits.EnsureSchema(ctx); err != nil {
			return err
		}
		timeout, _ := cfg.PostgresTimeout()
		hitSink := postgres.NewSink[T](hits, timeout, logger)
		if o.tweet != nil {
			hitSink.WithTweets(o.tweet)
		}
		sinks = append(sinks, hitSink)
	}

	progress, _ := cfg.ProgressInterval()
	p := &app.Pipeline[T]{
		Source:   o.source,
		Filter:   o.filter,
		Store:    store,
		Sink:     sinks,
		Tester:   matcher.NewAsciiTester(cfg.Match.MinDist),
		DryRun:   o.flags.noWrite,
		Logger:   logger,
		Progress: progress,
	}
	res, runErr := p.Run(ctx)

	if !o.flags.quiet {
		if err := counting.PrintResults(os.Stdout); err != nil {
			return err
		}
	}
	fmt.Fprint(os.Stderr, formatRunSummary(o.command, res))

	if !o.flags.memory && !temp {
		snap := status.Generate(o.command, res.Started, res.Finished, res.Counts(), store.Status(), runErr)
		if err := status.WriteJSON(paths.Status, snap); err != nil {
			logger.Warn("status not written", "path", paths.Status, "error", err)
		}
	}
	return runErr
}
