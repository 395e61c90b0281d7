package ports

import (
	"context"
	"errors"
)

// ErrMalformed marks a single unusable input record. Consumers skip it and
// keep reading; it never ends a stream.
var ErrMalformed = errors.New("malformed item")

// Source yields items one at a time from a finite or infinite stream.
//
// Next blocks until an item is available, the stream ends (io.EOF), or ctx
// is done. An error wrapping ErrMalformed means only that record was bad;
// any other error ends the stream. Reconnect and retry policy belongs to the
// adapter, not to callers.
type Source[T any] interface {
	Next(ctx context.Context) (T, error)
	Close() error
}

// IsMalformed reports whether err only concerns a single bad record.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
