// Package status builds the run summary written to the data directory.
//
// The pipeline writes a JSON status file when a run ends. The `chunks`
// command and external scripts read it to report on the last run without
// opening the store.
package status

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// StatusFile is the filename within the data directory where status JSON is written.
const StatusFile = "status.json"

// Snapshot is the JSON payload describing one finished run.
type Snapshot struct {
	Command  string    `json:"command"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	Seen     int `json:"seen"`
	Passed   int `json:"passed"`
	Skipped  int `json:"skipped"`
	Possible int `json:"possible"`
	Hits     int `json:"hits"`

	PerSecond  float64 `json:"per_second"`
	PassedPct  float64 `json:"passed_pct"`
	HitsPerMil float64 `json:"hits_per_million"`

	Store *Store `json:"store,omitempty"`
	Error string `json:"error,omitempty"`
}

// Store describes the persistent store after the run.
type Store struct {
	Chunks  int `json:"chunks"`
	Entries int `json:"entries"`
	Cached  int `json:"cached"`
}

// Counts is the raw input to Generate.
type Counts struct {
	Seen, Passed, Skipped, Possible, Hits int
}

// Generate derives a Snapshot from run counts. Rates are zero when their
// denominator is.
func Generate(command string, started, finished time.Time, c Counts, store *Store, runErr error) *Snapshot {
	s := &Snapshot{
		Command:  command,
		Started:  started.UTC(),
		Finished: finished.UTC(),
		Seen:     c.Seen,
		Passed:   c.Passed,
		Skipped:  c.Skipped,
		Possible: c.Possible,
		Hits:     c.Hits,
		Store:    store,
	}
	if secs := finished.Sub(started).Seconds(); secs > 0 {
		s.PerSecond = float64(c.Seen) / secs
	}
	if c.Seen > 0 {
		s.PassedPct = 100 * float64(c.Passed) / float64(c.Seen)
	}
	if c.Passed > 0 {
		s.HitsPerMil = 1e6 * float64(c.Hits) / float64(c.Passed)
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	return s
}

// Duration is the wall time of the run.
func (s *Snapshot) Duration() time.Duration { return s.Finished.Sub(s.Started) }

// WriteJSON writes the snapshot as JSON to path, replacing any earlier file.
func WriteJSON(path string, data *Snapshot) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadJSON loads a snapshot written by WriteJSON.
func ReadJSON(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}
