package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corey/anagramatron/internal/adapters/kafka"
	"github.com/corey/anagramatron/internal/adapters/lines"
	"github.com/corey/anagramatron/internal/ports"
)

var (
	streamFlags matchFlags
	kafkaFlags  struct {
		brokers   []string
		topic     string
		group     string
		fromStart bool
	}
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Find anagrams in a Kafka topic",
	Long: `Joins a consumer group on the item topic and runs every record through the
store until interrupted. Each consumer owns its own data directory; run one
process per data directory.

Examples:
  anagramatron stream --brokers localhost:9092 --format tweet
  KAFKA_BROKERS=k1:9092,k2:9092 anagramatron stream --topic lines --format text`,
	Args: cobra.NoArgs,
	RunE: runStream,
}

func init() {
	streamFlags.register(streamCmd, formatTweet)
	registerKafkaFlags(streamCmd)
}

func registerKafkaFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&kafkaFlags.brokers, "brokers", nil, "Kafka seed brokers (overrides kafka.brokers)")
	cmd.Flags().StringVar(&kafkaFlags.topic, "topic", "", "topic (overrides kafka.topic)")
	cmd.Flags().StringVar(&kafkaFlags.group, "group", "", "consumer group (overrides kafka.group)")
	cmd.Flags().BoolVar(&kafkaFlags.fromStart, "from-start", false, "read from the earliest offset when the group has none")
}

// kafkaConfig merges the Kafka flags over cfg.Kafka.
func kafkaConfig(cmd *cobra.Command) kafka.Config {
	kc := kafka.Config{
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Group:     cfg.Kafka.Group,
		FromStart: cfg.Kafka.FromStart,
	}
	if len(kafkaFlags.brokers) > 0 {
		kc.Brokers = kafkaFlags.brokers
	}
	if kafkaFlags.topic != "" {
		kc.Topic = kafkaFlags.topic
	}
	if kafkaFlags.group != "" {
		kc.Group = kafkaFlags.group
	}
	if cmd.Flags().Changed("from-start") {
		kc.FromStart = kafkaFlags.fromStart
	}
	return kc
}

func runStream(cmd *cobra.Command, args []string) error {
	if err := streamFlags.apply(cmd); err != nil {
		return err
	}
	kc := kafkaConfig(cmd)

	if streamFlags.format == formatTweet {
		src, err := kafka.NewSource[*ports.Tweet](kc, lines.DecodeTweet, logger)
		if err != nil {
			return err
		}
		return runMatch(cmd.Context(), runOptions[*ports.Tweet]{
			command: "stream", source: src, filter: tweetFilter(), flags: &streamFlags,
			tweet: tweetOf,
		})
	}
	src, err := kafka.NewSource[ports.Line](kc, lines.DecodeLine, logger)
	if err != nil {
		return err
	}
	return runMatch(cmd.Context(), runOptions[ports.Line]{
		command: "stream", source: src, filter: lineFilter(), flags: &streamFlags,
	})
}
