package memory

import (
	"bytes"
	"testing"

	"github.com/corey/anagramatron/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.CandidateStore[ports.Line] = (*Store[ports.Line])(nil)
var _ ports.ResultSink[ports.Line] = (*CountingSink[ports.Line])(nil)

func key(n uint32) ports.Fingerprint {
	var fp ports.Fingerprint
	fp[0] = n
	return fp
}

func TestStore_LookupInsertRemove(t *testing.T) {
	s := NewStore[ports.Line]()

	_, ok, err := s.Lookup(key(1))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Insert(key(1), "first"))
	require.NoError(t, s.Insert(key(1), "second"))
	got, ok, err := s.Lookup(key(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ports.Line("second"), got)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Remove(key(1)))
	_, ok, _ = s.Lookup(key(1))
	assert.False(t, ok)
	require.NoError(t, s.Remove(key(2)), "removing an empty bucket is a no-op")
}

func TestStore_ZeroFingerprintIsAKey(t *testing.T) {
	s := NewStore[ports.Line]()
	require.NoError(t, s.Insert(ports.Fingerprint{}, "123"))
	got, ok, _ := s.Lookup(ports.Fingerprint{})
	assert.True(t, ok)
	assert.Equal(t, ports.Line("123"), got)
}

func TestCountingSink(t *testing.T) {
	s := NewCountingSink[ports.Line]()
	s.ItemSeen()
	s.ItemSeen()
	s.PossibleMatch()
	require.NoError(t, s.Match("tomorrow is mine", "mine istomorrow", key(3)))

	assert.Equal(t, "saw 2 items, tested 1 pairs, found 1 anagrams.", s.Summary())

	var buf bytes.Buffer
	require.NoError(t, s.PrintResults(&buf))
	assert.Equal(t,
		"saw 2 items, tested 1 pairs, found 1 anagrams.\n"+
			"---------\ntomorrow is mine\n--↕︎--\nmine istomorrow\n",
		buf.String())
}
