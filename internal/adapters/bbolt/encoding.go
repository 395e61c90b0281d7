package bbolt

import (
	"bytes"
	"encoding/gob"
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Codec encodes stored values. Changing codecs on an existing directory
// makes its chunks unreadable; the store does not record which one was used.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// JSON is the default codec, backed by github.com/goccy/go-json.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// Gob encodes with encoding/gob. Smaller than JSON for struct-heavy values,
// but only readable from Go.
type Gob struct{}

func (Gob) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Gob) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (Gob) Name() string { return "gob" }

// DefaultCodec is used when Options.Codec is nil.
var DefaultCodec Codec = JSON{}

// CodecByName returns a built-in codec by name.
func CodecByName(name string) (Codec, bool) {
	switch name {
	case "", "json":
		return JSON{}, true
	case "gob":
		return Gob{}, true
	default:
		return nil, false
	}
}

// CodecError reports a value that failed to encode or decode.
type CodecError struct {
	Codec string
	Op    string // "encode" or "decode"
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Codec, e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

func encode(c Codec, v any) ([]byte, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return nil, &CodecError{Codec: c.Name(), Op: "encode", Err: err}
	}
	return b, nil
}

func decode(c Codec, data []byte, v any) error {
	if err := c.Unmarshal(data, v); err != nil {
		return &CodecError{Codec: c.Name(), Op: "decode", Err: err}
	}
	return nil
}
