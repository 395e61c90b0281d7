package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/anagramatron/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2018, 3, 1, 12, 0, 0, 0, time.Local)
	return func() time.Time { return t }
}

func TestWriter_BatchesAndTail(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter[ports.Line](dir, Options{Batch: 3, Now: fixedClock()})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		require.NoError(t, w.Add(ports.Line(fmt.Sprintf("line %d", i))))
	}
	assert.Len(t, w.Files(), 2)
	assert.Len(t, w.pending, 1)
	require.NoError(t, w.Close())

	files := w.Files()
	require.Len(t, files, 3)
	assert.Equal(t, "2018-03-01_12:00:00.json", filepath.Base(files[0]))
	assert.Equal(t, "2018-03-01_12:00:00_001.json", filepath.Base(files[1]))

	listed, err := ListFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, files, listed)

	var all []ports.Line
	for _, f := range files {
		items, err := ReadFile[ports.Line](f)
		require.NoError(t, err)
		all = append(all, items...)
	}
	require.Len(t, all, 7)
	assert.Equal(t, ports.Line("line 6"), all[6])
}

func TestWriter_GzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter[*ports.Tweet](dir, Options{Gzip: true, Now: fixedClock()})
	require.NoError(t, err)
	require.NoError(t, w.Add(&ports.Tweet{Body: "tomorrow is mine", Lang: "en"}))
	require.NoError(t, w.Close())

	files := w.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "2018-03-01_12:00:00.json.gz", filepath.Base(files[0]))

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2], "gzip magic")

	items, err := ReadFile[*ports.Tweet](files[0])
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "tomorrow is mine", items[0].Body)
}

func TestWriter_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter[ports.Line](dir, Options{Batch: 1})
	require.NoError(t, err)
	require.NoError(t, w.Add("x"))
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, IsDumpFile(entries[0].Name()))
}

func TestWriter_CloseEmptyWritesNothing(t *testing.T) {
	w, err := NewWriter[ports.Line](t.TempDir(), Options{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Empty(t, w.Files())
	assert.Error(t, w.Add("late"))
}

func TestIsDumpFile(t *testing.T) {
	assert.True(t, IsDumpFile("/x/2018-03-01_12:00:00.json"))
	assert.True(t, IsDumpFile("2018-03-01_12:00:00.json.gz"))
	assert.False(t, IsDumpFile(".dump-12345"))
	assert.False(t, IsDumpFile(".hidden.json"))
	assert.False(t, IsDumpFile("chunk.db"))
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFile[ports.Line](filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1, 2"), 0644))
	_, err = ReadFile[ports.Line](bad)
	assert.ErrorContains(t, err, "bad.json")

	notGz := filepath.Join(dir, "plain.json.gz")
	require.NoError(t, os.WriteFile(notGz, []byte("[]"), 0644))
	_, err = ReadFile[ports.Line](notGz)
	assert.Error(t, err)
}
