// Package responseformat encodes result documents as JSON or MessagePack.
package responseformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Supported encodings
const (
	JSON    = "json"
	MsgPack = "msgpack"
)

// Formatter encodes result documents as JSON or MessagePack
type Formatter struct {
	format string
}

// NewFormatter creates a formatter for the named encoding. An empty name
// selects JSON.
func NewFormatter(format string) (*Formatter, error) {
	switch format {
	case "", JSON:
		return &Formatter{format: JSON}, nil
	case MsgPack:
		return &Formatter{format: MsgPack}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Format returns the encoding name
func (f *Formatter) Format() string {
	return f.format
}

// Encode renders data in the configured encoding. JSON comes out as a single
// newline-terminated line.
func (f *Formatter) Encode(data any) ([]byte, error) {
	if f.format == MsgPack {
		return f.encodeMsgPack(data)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Write encodes data and writes it to w in one call, so a failed encoding
// leaves w untouched
func (f *Formatter) Write(w io.Writer, data any) error {
	b, err := f.Encode(data)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func (f *Formatter) encodeMsgPack(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := msgpack.NewEncoder(&buf)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	if err := encoder.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
