package codecreg

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"reflect"
)

// Built-in codecs that need no optional library. Capability-gated codecs
// live in the subpackages under codec/.

// BytesDecoder passes a raw payload through as []byte for any content type.
type BytesDecoder struct {
	MemoryLimit
}

func NewBytesDecoder() *BytesDecoder { return &BytesDecoder{} }

func (d *BytesDecoder) CanDecode(t reflect.Type, contentType string) bool {
	return t == bytesType
}

func (d *BytesDecoder) Decode(data []byte, t reflect.Type) (any, error) {
	return data, nil
}

// BytesEncoder writes a []byte value as-is.
type BytesEncoder struct{}

func NewBytesEncoder() *BytesEncoder { return &BytesEncoder{} }

func (e *BytesEncoder) CanEncode(t reflect.Type, contentType string) bool {
	return t == bytesType
}

func (e *BytesEncoder) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return b, nil
}

// BufferDecoder produces a *bytes.Buffer holding the raw payload.
type BufferDecoder struct {
	MemoryLimit
}

func NewBufferDecoder() *BufferDecoder { return &BufferDecoder{} }

func (d *BufferDecoder) CanDecode(t reflect.Type, contentType string) bool {
	return t == bufferType
}

func (d *BufferDecoder) Decode(data []byte, t reflect.Type) (any, error) {
	return bytes.NewBuffer(data), nil
}

// BufferEncoder writes the contents of a *bytes.Buffer.
type BufferEncoder struct{}

func NewBufferEncoder() *BufferEncoder { return &BufferEncoder{} }

func (e *BufferEncoder) CanEncode(t reflect.Type, contentType string) bool {
	return t == bufferType
}

func (e *BufferEncoder) Encode(v any) ([]byte, error) {
	b, ok := v.(*bytes.Buffer)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return b.Bytes(), nil
}

// TextDecoder decodes a payload into a string. The default instance
// handles text/plain only; the all-MIME instance backs the catch-all
// reader category and accepts any content type.
type TextDecoder struct {
	MemoryLimit
	allMIME bool
}

func NewTextDecoder() *TextDecoder { return &TextDecoder{} }

func NewAllMIMETextDecoder() *TextDecoder { return &TextDecoder{allMIME: true} }

func (d *TextDecoder) CanDecode(t reflect.Type, contentType string) bool {
	if t != stringType {
		return false
	}
	if d.allMIME {
		return true
	}
	return MatchesMIMEType("text/plain", contentType)
}

func (d *TextDecoder) Decode(data []byte, t reflect.Type) (any, error) {
	return string(data), nil
}

// TextEncoder encodes a string value. As with TextDecoder there is a
// text/plain-only instance and an all-MIME instance for the catch-all
// writer category.
type TextEncoder struct {
	allMIME bool
}

func NewTextEncoder() *TextEncoder { return &TextEncoder{} }

func NewAllMIMETextEncoder() *TextEncoder { return &TextEncoder{allMIME: true} }

func (e *TextEncoder) CanEncode(t reflect.Type, contentType string) bool {
	if t != stringType {
		return false
	}
	if e.allMIME {
		return true
	}
	return MatchesMIMEType("text/plain", contentType)
}

func (e *TextEncoder) Encode(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return []byte(s), nil
}

var jsonMIMETypes = []string{"application/json", "application/*+json"}

// JSONDecoder decodes application/json payloads into arbitrary Go values
// using encoding/json.
type JSONDecoder struct {
	MemoryLimit
}

func NewJSONDecoder() *JSONDecoder { return &JSONDecoder{} }

func (d *JSONDecoder) CanDecode(t reflect.Type, contentType string) bool {
	if IsRawShape(t) {
		return false
	}
	return MatchesAnyMIMEType(jsonMIMETypes, contentType)
}

func (d *JSONDecoder) Decode(data []byte, t reflect.Type) (any, error) {
	v := reflect.New(t)
	if err := json.Unmarshal(data, v.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return v.Elem().Interface(), nil
}

// JSONEncoder encodes arbitrary Go values as application/json.
type JSONEncoder struct{}

func NewJSONEncoder() *JSONEncoder { return &JSONEncoder{} }

func (e *JSONEncoder) CanEncode(t reflect.Type, contentType string) bool {
	if IsRawShape(t) {
		return false
	}
	return MatchesAnyMIMEType(jsonMIMETypes, contentType)
}

func (e *JSONEncoder) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

var xmlMIMETypes = []string{"application/xml", "text/xml", "application/*+xml"}

// XMLDecoder decodes XML payloads into struct values using encoding/xml.
type XMLDecoder struct {
	MemoryLimit
}

func NewXMLDecoder() *XMLDecoder { return &XMLDecoder{} }

func (d *XMLDecoder) CanDecode(t reflect.Type, contentType string) bool {
	if !isXMLTarget(t) {
		return false
	}
	return MatchesAnyMIMEType(xmlMIMETypes, contentType)
}

func (d *XMLDecoder) Decode(data []byte, t reflect.Type) (any, error) {
	v := reflect.New(t)
	if err := xml.Unmarshal(data, v.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return v.Elem().Interface(), nil
}

// XMLEncoder encodes struct values as XML.
type XMLEncoder struct{}

func NewXMLEncoder() *XMLEncoder { return &XMLEncoder{} }

func (e *XMLEncoder) CanEncode(t reflect.Type, contentType string) bool {
	if !isXMLTarget(t) {
		return false
	}
	return MatchesAnyMIMEType(xmlMIMETypes, contentType)
}

func (e *XMLEncoder) Encode(v any) ([]byte, error) {
	return xml.Marshal(v)
}

var gzipMIMETypes = []string{"application/gzip", "application/x-gzip"}

// GzipDecoder decompresses application/gzip payloads into []byte using
// compress/gzip from the standard library. It is the fallback half of the
// gzip alternative pair; when the optimized implementation is available
// (CapabilityGzip) that one is registered instead.
type GzipDecoder struct {
	MemoryLimit
}

func NewGzipDecoder() *GzipDecoder { return &GzipDecoder{} }

func (d *GzipDecoder) CanDecode(t reflect.Type, contentType string) bool {
	return t == bytesType && MatchesAnyMIMEType(gzipMIMETypes, contentType)
}

func (d *GzipDecoder) Decode(data []byte, t reflect.Type) (any, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	defer zr.Close()
	return readAllLimited(zr, d.MaxInMemorySize())
}

// GzipEncoder compresses []byte payloads as application/gzip using the
// standard library.
type GzipEncoder struct{}

func NewGzipEncoder() *GzipEncoder { return &GzipEncoder{} }

func (e *GzipEncoder) CanEncode(t reflect.Type, contentType string) bool {
	return t == bytesType && MatchesAnyMIMEType(gzipMIMETypes, contentType)
}

func (e *GzipEncoder) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
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

// IsRawShape reports whether t is one of the raw payload shapes claimed by
// the typed categories, which the structured object codecs must not touch.
func IsRawShape(t reflect.Type) bool {
	switch t {
	case bytesType, bufferType, stringType, valuesType, partsType, eventsType:
		return true
	}
	return false
}

// isXMLTarget restricts the XML codecs to struct shapes, the only targets
// encoding/xml can round-trip.
func isXMLTarget(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
