// Package protocodec provides Protocol Buffers default codecs backed by
// google.golang.org/protobuf. Importing it, typically with a blank import,
// registers the protobuf capability with the registry:
//
//	import _ "github.com/logicossoftware/go-codecreg/codec/protocodec"
package protocodec

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func init() {
	codecreg.RegisterProvider(codecreg.CapabilityProtobuf, codecreg.Provider{
		NewDecoder: func() codecreg.Decoder { return NewDecoder() },
		NewEncoder: func() codecreg.Encoder { return NewEncoder() },
	})
}

var mimeTypes = []string{"application/x-protobuf", "application/protobuf"}

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// Decoder decodes protobuf payloads into generated message types. Targets
// must be pointer types implementing proto.Message.
type Decoder struct {
	codecreg.MemoryLimit
	opts proto.UnmarshalOptions
}

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) CanDecode(t reflect.Type, contentType string) bool {
	if t.Kind() != reflect.Ptr || !t.Implements(protoMessageType) {
		return false
	}
	return codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (d *Decoder) Decode(data []byte, t reflect.Type) (any, error) {
	if t.Kind() != reflect.Ptr || !t.Implements(protoMessageType) {
		return nil, fmt.Errorf("%w: %s does not implement proto.Message", codecreg.ErrUnsupportedType, t)
	}
	msg := reflect.New(t.Elem()).Interface().(proto.Message)
	if err := d.opts.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", codecreg.ErrInvalidMessage, err)
	}
	return msg, nil
}

// Encoder encodes proto.Message values with deterministic marshaling.
type Encoder struct {
	opts proto.MarshalOptions
}

func NewEncoder() *Encoder { return &Encoder{opts: proto.MarshalOptions{Deterministic: true}} }

func (e *Encoder) CanEncode(t reflect.Type, contentType string) bool {
	if !t.Implements(protoMessageType) {
		return false
	}
	return codecreg.MatchesAnyMIMEType(mimeTypes, contentType)
}

func (e *Encoder) Encode(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement proto.Message", codecreg.ErrUnsupportedType, v)
	}
	return e.opts.Marshal(msg)
}
