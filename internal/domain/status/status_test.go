package status

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2018, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGenerate_Basic(t *testing.T) {
	s := Generate("find", t0, t0.Add(4*time.Second), Counts{Seen: 400, Passed: 100, Skipped: 2, Possible: 10, Hits: 1}, nil, nil)

	assert.Equal(t, "find", s.Command)
	assert.Equal(t, 400, s.Seen)
	assert.Equal(t, 4*time.Second, s.Duration())
	assert.InDelta(t, 100.0, s.PerSecond, 1e-9)
	assert.InDelta(t, 25.0, s.PassedPct, 1e-9)
	assert.InDelta(t, 10_000.0, s.HitsPerMil, 1e-9)
	assert.Nil(t, s.Store)
	assert.Empty(t, s.Error)
}

func TestGenerate_ZeroDenominators(t *testing.T) {
	s := Generate("find", t0, t0, Counts{}, nil, nil)
	assert.Zero(t, s.PerSecond)
	assert.Zero(t, s.PassedPct)
	assert.Zero(t, s.HitsPerMil)
}

func TestGenerate_RecordsError(t *testing.T) {
	s := Generate("stream", t0, t0.Add(time.Second), Counts{Seen: 1}, &Store{Chunks: 2}, errors.New("lookup: disk full"))
	assert.Equal(t, "lookup: disk full", s.Error)
	require.NotNil(t, s.Store)
	assert.Equal(t, 2, s.Store.Chunks)
}

func TestWriteReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), StatusFile)
	in := Generate("watch", t0, t0.Add(time.Minute), Counts{Seen: 60, Passed: 30, Hits: 3}, &Store{Chunks: 1, Entries: 27, Cached: 27}, nil)

	require.NoError(t, WriteJSON(path, in))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	out, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// a second write replaces the first
	in.Hits = 4
	require.NoError(t, WriteJSON(path, in))
	out, err = ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Hits)
}

func TestReadJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadJSON(filepath.Join(dir, "missing.json"))
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(dir, StatusFile)
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = ReadJSON(bad)
	assert.ErrorContains(t, err, "decode status.json")
}
