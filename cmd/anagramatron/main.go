// anagramatron finds anagram pairs in streams of short texts.
// Items are fingerprinted by letter counts, bucketed in a chunked on-disk
// store, and verified with a two-stage edit-distance test.
package main

import (
	"os"

	"github.com/corey/anagramatron/cmd/anagramatron/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
