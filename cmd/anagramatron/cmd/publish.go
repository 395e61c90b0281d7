package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/kafka"
	"github.com/corey/anagramatron/internal/adapters/lines"
	"github.com/corey/anagramatron/internal/domain/fingerprint"
	"github.com/corey/anagramatron/internal/ports"
)

var publishFormat string

var publishCmd = &cobra.Command{
	Use:   "publish [file]",
	Short: "Publish items to the Kafka item topic",
	Long: `Sends one record per input line to the item topic. Records are keyed by
the item's fingerprint hash, so every candidate for a bucket lands on the
same partition and is seen by the same store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishFormat, "format", formatTweet, "item format: text or tweet")
	registerKafkaFlags(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if publishFormat != formatText && publishFormat != formatTweet {
		return fmt.Errorf("unknown format %q (want %s or %s)", publishFormat, formatText, formatTweet)
	}
	r, err := openInput(args)
	if err != nil {
		return err
	}
	src := lines.NewTextSource(r)
	defer src.Close()

	kc := kafkaConfig(cmd)
	pub, err := kafka.NewPublisher(kc.Brokers, kc.Topic)
	if err != nil {
		return err
	}
	defer pub.Close()

	ctx := cmd.Context()
	sent, skipped := 0, 0
	for {
		line, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if ports.IsMalformed(err) {
			logger.LogSkip("malformed", err)
			skipped++
			continue
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		text := string(line)
		if publishFormat == formatTweet {
			t, err := lines.DecodeTweet([]byte(line))
			if err != nil {
				logger.LogSkip("malformed", err)
				skipped++
				continue
			}
			text = t.Text()
		}
		key := fingerprint.Of(text).Hash()
		if err := pub.Publish(ctx, key, []byte(line)); err != nil {
			return err
		}
		sent++
	}
	fmt.Fprintf(os.Stderr, "%s published %d records to %s (%d skipped)\n", bold("⚡"), sent, cyan(kc.Topic), skipped)
	return nil
}
