package app

import (
	"testing"

	"github.com/corey/anagramatron/internal/domain/fingerprint"
	"github.com/corey/anagramatron/internal/domain/status"
	"github.com/corey/anagramatron/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memory(t *testing.T) {
	s, err := OpenStore[ports.Line](StoreOptions{Memory: true, Dir: "/nonexistent"})
	require.NoError(t, err)
	defer s.Close()

	fp := fingerprint.Of("listen")
	require.NoError(t, s.Insert(fp, "listen"))
	got, ok, err := s.Lookup(fp)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ports.Line("listen"), got)
	assert.Nil(t, s.Status())
}

func TestOpenStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore[ports.Line](StoreOptions{Dir: dir, ChunkSize: 2, CacheCapacity: 100, Codec: "gob"})
	require.NoError(t, err)
	assert.Equal(t, &status.Store{}, s.Status(), "a fresh directory has no chunks")

	for _, text := range []string{"listen", "tomorrow", "apple", "pear"} {
		require.NoError(t, s.Insert(fingerprint.Of(text), ports.Line(text)))
	}
	require.NoError(t, s.Close())

	s, err = OpenStore[ports.Line](StoreOptions{Dir: dir, ChunkSize: 2, CacheCapacity: 100, Codec: "gob"})
	require.NoError(t, err)
	defer s.Close()

	st := s.Status()
	require.NotNil(t, st)
	assert.Equal(t, 2, st.Chunks)
	assert.Equal(t, 4, st.Entries)
	assert.Equal(t, 0, st.Cached)

	got, ok, err := s.Lookup(fingerprint.Of("silent"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ports.Line("listen"), got)
}

func TestOpenStore_UnknownCodec(t *testing.T) {
	_, err := OpenStore[ports.Line](StoreOptions{Dir: t.TempDir(), Codec: "xml"})
	assert.ErrorContains(t, err, `unknown codec "xml"`)
}
