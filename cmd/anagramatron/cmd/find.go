package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/lines"
	"github.com/corey/anagramatron/internal/ports"
)

var findFlags matchFlags

var findCmd = &cobra.Command{
	Use:   "find [file]",
	Short: "Find anagrams in a file or stdin",
	Long: `Reads one item per line from file (or stdin when file is omitted or "-")
and prints every anagram pair found.

Without --path, and with no data_path configured, the store lives in a
temporary directory that is removed afterwards.

Examples:
  anagramatron find corpus.txt
  zcat tweets.json.gz | anagramatron find --format tweet -p ./anagram-data`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

func init() {
	findFlags.register(findCmd, formatText)
}

func runFind(cmd *cobra.Command, args []string) error {
	if err := findFlags.apply(cmd); err != nil {
		return err
	}
	r, err := openInput(args)
	if err != nil {
		return err
	}

	if findFlags.format == formatTweet {
		return runMatch(cmd.Context(), runOptions[*ports.Tweet]{
			command: "find", source: lines.NewTweetSource(r), filter: tweetFilter(),
			flags: &findFlags, tempByDefault: true, tweet: tweetOf,
		})
	}
	return runMatch(cmd.Context(), runOptions[ports.Line]{
		command: "find", source: lines.NewTextSource(r), filter: lineFilter(),
		flags: &findFlags, tempByDefault: true,
	})
}

// openInput opens args[0], or stdin when there is no argument or it is "-".
func openInput(args []string) (io.Reader, error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, nil
	}
	return os.Open(args[0])
}
