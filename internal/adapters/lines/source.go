// Package lines reads items from an io.Reader: plain text one item per line,
// or activity-stream tweets one JSON object per record.
package lines

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/corey/anagramatron/internal/ports"
)

// maxRecord bounds one line or record. Longer ones are dropped as malformed.
const maxRecord = 1 << 20

// recordReader splits a stream into records at '\n', and also at '\r' when
// cr is set. The returned slice is only valid until the next call.
type recordReader struct {
	r   *bufio.Reader
	cr  bool
	buf []byte
}

func newRecordReader(r io.Reader, cr bool) *recordReader {
	return &recordReader{r: bufio.NewReaderSize(r, 64*1024), cr: cr}
}

// next returns the next record without its terminator, or io.EOF. A record
// over maxRecord is read to its end and reported as ErrMalformed.
func (rr *recordReader) next() ([]byte, error) {
	rr.buf = rr.buf[:0]
	overlong := false
	for {
		c, err := rr.r.ReadByte()
		if err == io.EOF {
			switch {
			case overlong:
				return nil, errOverlong
			case len(rr.buf) > 0:
				return rr.buf, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		if c == '\n' || (rr.cr && c == '\r') {
			if overlong {
				return nil, errOverlong
			}
			return rr.buf, nil
		}
		if overlong {
			continue
		}
		if len(rr.buf) == maxRecord {
			overlong = true
			rr.buf = rr.buf[:0]
			continue
		}
		rr.buf = append(rr.buf, c)
	}
}

var errOverlong = fmt.Errorf("%w: record longer than %d bytes", ports.ErrMalformed, maxRecord)

// TextSource yields each line of r as a ports.Line. Line endings are
// stripped; empty lines are yielded too and left to the filters.
type TextSource struct {
	rc io.Closer
	rr *recordReader
}

// NewTextSource reads lines from r. If r is an io.Closer, Close closes it.
func NewTextSource(r io.Reader) *TextSource {
	s := &TextSource{rr: newRecordReader(r, false)}
	if c, ok := r.(io.Closer); ok {
		s.rc = c
	}
	return s
}

// Next returns the next line, or io.EOF. An overlong line is returned as an
// ErrMalformed error and the source stays usable.
func (s *TextSource) Next(ctx context.Context) (ports.Line, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := s.rr.next()
	if err == io.EOF || ports.IsMalformed(err) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	return ports.Line(bytes.TrimSuffix(line, []byte("\r"))), nil
}

func (s *TextSource) Close() error {
	if s.rc != nil {
		return s.rc.Close()
	}
	return nil
}

// TweetSource decodes one tweet per record. Records end at '\n' or '\r',
// which covers both dump-style lines and the firehose's CRLF framing.
type TweetSource struct {
	rc io.Closer
	rr *recordReader
}

// NewTweetSource reads tweet records from r. If r is an io.Closer, Close
// closes it.
func NewTweetSource(r io.Reader) *TweetSource {
	s := &TweetSource{rr: newRecordReader(r, true)}
	if c, ok := r.(io.Closer); ok {
		s.rc = c
	}
	return s
}

// Next returns the next decodable tweet. Blank records are skipped; a
// record that does not decode, or is overlong, is returned as an
// ErrMalformed error and the source stays usable.
func (s *TweetSource) Next(ctx context.Context) (*ports.Tweet, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.rr.next()
		if err == io.EOF || ports.IsMalformed(err) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rec = bytes.TrimSpace(rec)
		if len(rec) == 0 {
			continue
		}
		return DecodeTweet(rec)
	}
}

func (s *TweetSource) Close() error {
	if s.rc != nil {
		return s.rc.Close()
	}
	return nil
}

// DecodeTweet parses one activity-stream JSON object.
func DecodeTweet(data []byte) (*ports.Tweet, error) {
	var t ports.Tweet
	if err := gojson.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrMalformed, err)
	}
	return &t, nil
}

// DecodeLine turns raw bytes into a Line. It never fails.
func DecodeLine(data []byte) (ports.Line, error) {
	return ports.Line(bytes.TrimRight(data, "\r\n")), nil
}
