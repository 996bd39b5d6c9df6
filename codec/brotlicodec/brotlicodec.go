// Package brotlicodec provides Brotli content-coding codecs backed by
// github.com/andybalholm/brotli. Importing it, typically with a blank
// import, registers the brotli capability with the registry:
//
//	import _ "github.com/logicossoftware/go-codecreg/codec/brotlicodec"
package brotlicodec

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/andybalholm/brotli"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func init() {
	codecreg.RegisterProvider(codecreg.CapabilityBrotli, codecreg.Provider{
		NewDecoder: func() codecreg.Decoder { return NewDecoder() },
		NewEncoder: func() codecreg.Encoder { return NewEncoder() },
	})
}

var mimeTypes = []string{"application/brotli", "application/x-br"}

var bytesType = reflect.TypeOf([]byte(nil))

// Decoder decompresses Brotli payloads into []byte. The max-in-memory size
// caps the decompressed output to guard against decompression bombs.
type Decoder struct {
	codecreg.MemoryLimit
}

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) CanDecode(t reflect.Type, contentType string) bool {
	return t == bytesType && codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (d *Decoder) Decode(data []byte, t reflect.Type) (any, error) {
	zr := brotli.NewReader(bytes.NewReader(data))
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

// Encoder compresses []byte payloads as Brotli.
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
	zw := brotli.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
