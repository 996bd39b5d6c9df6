// Package lz4codec provides LZ4 content-coding codecs backed by
// github.com/pierrec/lz4. Importing it, typically with a blank import,
// registers the lz4 capability with the registry:
//
//	import _ "github.com/logicossoftware/go-codecreg/codec/lz4codec"
package lz4codec

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/pierrec/lz4/v4"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func init() {
	codecreg.RegisterProvider(codecreg.CapabilityLZ4, codecreg.Provider{
		NewDecoder: func() codecreg.Decoder { return NewDecoder() },
		NewEncoder: func() codecreg.Encoder { return NewEncoder() },
	})
}

var mimeTypes = []string{"application/lz4", "application/x-lz4"}

var bytesType = reflect.TypeOf([]byte(nil))

// Decoder decompresses LZ4-framed payloads into []byte. The max-in-memory
// size caps the decompressed output to guard against decompression bombs.
type Decoder struct {
	codecreg.MemoryLimit
}

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) CanDecode(t reflect.Type, contentType string) bool {
	return t == bytesType && codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (d *Decoder) Decode(data []byte, t reflect.Type) (any, error) {
	zr := lz4.NewReader(bytes.NewReader(data))
	limit := d.MaxInMemorySize()
	if limit < 0 {
		return io.ReadAll(zr)
	}
	out, err := io.ReadAll(io.LimitReader(zr, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codecreg.ErrInvalidMessage, err)
	}
	if len(out) > limit {
		return nil, codecreg.ErrLimitExceeded
	}
	return out, nil
}

// Encoder compresses []byte payloads using the LZ4 frame format.
type Encoder struct{}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) CanEncode(t reflect.Type, contentType string) bool {
	return t == bytesType && codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (e *Encoder) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %T", codecreg.ErrUnsupportedType, v)
	}
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
