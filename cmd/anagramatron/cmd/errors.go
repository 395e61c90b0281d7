package cmd

import (
	"fmt"
	"strings"
)

// isStoreLockError returns true if the error chain contains a bbolt lock
// timeout. bbolt returns the string "timeout" when it cannot acquire the
// file lock within the configured deadline.
func isStoreLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseStoreLock explains a locked chunk file. Only one process may own a
// data directory at a time.
func diagnoseStoreLock(dir string) string {
	return fmt.Sprintf("store is locked: another anagramatron process owns %s\n"+
		"  → find it:         ps aux | grep anagramatron\n"+
		"  → or run against another directory:  --path <dir>", dir)
}
