// Package zstdcodec provides Zstandard content-coding codecs backed by
// github.com/klauspost/compress. Importing it, typically with a blank
// import, registers the zstd capability with the registry:
//
//	import _ "github.com/logicossoftware/go-codecreg/codec/zstdcodec"
package zstdcodec

import (
	"fmt"
	"reflect"

	"github.com/klauspost/compress/zstd"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func init() {
	codecreg.RegisterProvider(codecreg.CapabilityZstd, codecreg.Provider{
		NewDecoder: func() codecreg.Decoder { return NewDecoder() },
		NewEncoder: func() codecreg.Encoder { return NewEncoder() },
	})
}

var mimeTypes = []string{"application/zstd"}

var bytesType = reflect.TypeOf([]byte(nil))

// Decoder decompresses application/zstd payloads into []byte. The
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
	opts := []zstd.DOption{}
	if limit := d.MaxInMemorySize(); limit > 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(uint64(limit)))
	}
	dec, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codecreg.ErrInvalidMessage, err)
	}
	if limit := d.MaxInMemorySize(); limit > 0 && len(out) > limit {
		return nil, codecreg.ErrLimitExceeded
	}
	return out, nil
}

// Encoder compresses []byte payloads as application/zstd.
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
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b, nil), nil
}
