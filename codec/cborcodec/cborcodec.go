// Package cborcodec provides CBOR default codecs backed by
// github.com/fxamacker/cbor. Importing it, typically with a blank import,
// registers the cbor capability with the registry:
//
//	import _ "github.com/logicossoftware/go-codecreg/codec/cborcodec"
package cborcodec

import (
	"fmt"
	"reflect"

	cbor "github.com/fxamacker/cbor/v2"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func init() {
	codecreg.RegisterProvider(codecreg.CapabilityCBOR, codecreg.Provider{
		NewDecoder: func() codecreg.Decoder { return NewDecoder() },
		NewEncoder: func() codecreg.Encoder { return NewEncoder() },
	})
}

var mimeTypes = []string{"application/cbor", "application/*+cbor"}

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// Decoder decodes application/cbor payloads into arbitrary Go values.
type Decoder struct {
	codecreg.MemoryLimit
}

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) CanDecode(t reflect.Type, contentType string) bool {
	if codecreg.IsRawShape(t) {
		return false
	}
	return codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (d *Decoder) Decode(data []byte, t reflect.Type) (any, error) {
	v := reflect.New(t)
	if err := decMode.Unmarshal(data, v.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %v", codecreg.ErrInvalidMessage, err)
	}
	return v.Elem().Interface(), nil
}

// Encoder encodes arbitrary Go values as deterministic (canonical) CBOR.
type Encoder struct{}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) CanEncode(t reflect.Type, contentType string) bool {
	if codecreg.IsRawShape(t) {
		return false
	}
	return codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (e *Encoder) Encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}
