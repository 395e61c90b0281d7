package kafka

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/corey/anagramatron/internal/adapters/lines"
	"github.com/corey/anagramatron/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Source[ports.Line] = (*Source[ports.Line])(nil)

func TestDecodeRecord_WrapsFailures(t *testing.T) {
	_, err := decodeRecord(lines.DecodeTweet, []byte("{nope"))
	assert.True(t, ports.IsMalformed(err))

	plain := func([]byte) (ports.Line, error) { return "", errors.New("bad bytes") }
	_, err = decodeRecord(plain, nil)
	assert.True(t, ports.IsMalformed(err))
	assert.ErrorContains(t, err, "bad bytes")

	l, err := decodeRecord(lines.DecodeLine, []byte("tomorrow is mine"))
	require.NoError(t, err)
	assert.Equal(t, ports.Line("tomorrow is mine"), l)
}

func TestNewSource_Validates(t *testing.T) {
	_, err := NewSource(Config{Topic: "t", Group: "g"}, lines.DecodeLine, nil)
	assert.Error(t, err)
	_, err = NewSource(Config{Brokers: []string{"localhost:9092"}}, lines.DecodeLine, nil)
	assert.Error(t, err)
	_, err = NewPublisher(nil, "t")
	assert.Error(t, err)
}

// Runs against a real broker when ANAGRAM_TEST_KAFKA_BROKERS is set.
func TestSource_RoundTrip(t *testing.T) {
	brokers := os.Getenv("ANAGRAM_TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("ANAGRAM_TEST_KAFKA_BROKERS not set")
	}
	seeds := strings.Split(brokers, ",")
	topic := fmt.Sprintf("anagram-test-%d", time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pub, err := NewPublisher(seeds, topic)
	require.NoError(t, err)
	defer pub.Close()
	require.NoError(t, pub.Publish(ctx, nil, []byte("mine istomorrow")))
	require.NoError(t, pub.Publish(ctx, nil, []byte("tomorrow is mine")))

	src, err := NewSource(Config{Brokers: seeds, Topic: topic, Group: topic, FromStart: true}, lines.DecodeLine, nil)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.Next(ctx)
	require.NoError(t, err)
	second, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ports.Line{"mine istomorrow", "tomorrow is mine"}, []ports.Line{first, second})
}
