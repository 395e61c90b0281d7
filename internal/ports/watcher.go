package ports

// Watcher monitors a directory for newly completed files.
// The adapter (fsnotify) filters out temp files before invoking onFile.
// Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring dir (non-recursive). onFile is called with the
	// absolute path of each file that was created or renamed into place. The
	// callback may be invoked from any goroutine. Returns an error if the
	// directory doesn't exist or permissions are insufficient.
	Watch(dir string, onFile func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onFile calls will fire. Safe to call multiple times.
	Stop() error
}
