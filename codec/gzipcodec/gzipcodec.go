// Package gzipcodec provides gzip content-coding codecs backed by
// github.com/klauspost/compress, the optimized alternative to the stdlib
// fallback built into the registry. Importing it, typically with a blank
// import, registers the gzip capability; the registry then uses these
// codecs instead of the stdlib pair:
//
//	import _ "github.com/logicossoftware/go-codecreg/codec/gzipcodec"
package gzipcodec

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/klauspost/compress/gzip"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func init() {
	codecreg.RegisterProvider(codecreg.CapabilityGzip, codecreg.Provider{
		NewDecoder: func() codecreg.Decoder { return NewDecoder() },
		NewEncoder: func() codecreg.Encoder { return NewEncoder() },
	})
}

var mimeTypes = []string{"application/gzip", "application/x-gzip"}

var bytesType = reflect.TypeOf([]byte(nil))

// Decoder decompresses application/gzip payloads into []byte. The
// max-in-memory size caps the decompressed output to guard against
// decompression bombs.
type Decoder struct {
	codecreg.MemoryLimit
}

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) CanDecode(t reflect.Type, contentType string) bool {
	return t == bytesType && codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (d *Decoder) Decode(data []byte, t reflect.Type) (any, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codecreg.ErrInvalidMessage, err)
	}
	defer zr.Close()
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

// Encoder compresses []byte payloads as application/gzip.
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
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
