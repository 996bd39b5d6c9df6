package codecreg

import (
	"bytes"
	"io"
	"mime"
	"net/url"
	"net/textproto"
	"reflect"
	"strings"
)

// DefaultMaxInMemorySize is the buffering cap applied to decoders and
// wrapper readers when no explicit limit is configured.
const DefaultMaxInMemorySize = 256 << 10 // 256 KiB

// Decoder converts a fully buffered payload into a value of the requested
// target type.
type Decoder interface {
	// CanDecode reports whether this decoder supports the given target
	// type and content type. An empty contentType means "any".
	CanDecode(t reflect.Type, contentType string) bool
	// Decode deserializes data into a new value of type t.
	Decode(data []byte, t reflect.Type) (any, error)
}

// Encoder converts a value into a serialized payload.
type Encoder interface {
	// CanEncode reports whether this encoder supports the given source
	// type and content type. An empty contentType means "any".
	CanEncode(t reflect.Type, contentType string) bool
	// Encode serializes v.
	Encode(v any) ([]byte, error)
}

// MessageReader reads a message body and produces a value of the requested
// target type. It is the transport-level handle consulted during content
// negotiation; order within a category determines priority.
type MessageReader interface {
	CanRead(t reflect.Type, contentType string) bool
	Read(t reflect.Type, contentType string, body io.Reader) (any, error)
}

// MessageWriter serializes a value onto a message body.
type MessageWriter interface {
	CanWrite(t reflect.Type, contentType string) bool
	Write(w io.Writer, contentType string, v any) error
}

// SizeLimited is implemented by codecs that buffer an entire payload in
// memory and accept a cap on that buffer. The configuration propagator
// applies Registry.SetMaxInMemorySize through this interface; codecs that
// do not implement it are silently skipped.
type SizeLimited interface {
	SetMaxInMemorySize(byteCount int)
}

// LoggingDetailed is implemented by codecs that can log potentially
// sensitive message details (form fields, part headers) at DEBUG level.
type LoggingDetailed interface {
	EnableLoggingDetails(enable bool)
}

// Composite is implemented by codecs that delegate to nested codecs. The
// configuration propagator recurses into every nested codec so that
// settings reach the innermost decoder or encoder.
type Composite interface {
	NestedCodecs() []any
}

// CodecMutator is a caller-supplied configuration hook applied to every
// codec during a rebuild, after size-limit and logging settings and before
// recursion into nested codecs. Mutators run in registration order.
type CodecMutator func(codec any)

// Category identifies one of the six ordered codec groupings consulted
// during content negotiation.
type Category int

const (
	TypedReaders Category = iota
	ObjectReaders
	CatchAllReaders
	TypedWriters
	ObjectWriters
	CatchAllWriters
)

// MemoryLimit holds a max-in-memory-size setting with the package default
// as the zero value. A negative value means unlimited. It is embedded by
// buffering decoders and wrapper readers.
type MemoryLimit struct {
	max int
}

func (m *MemoryLimit) SetMaxInMemorySize(byteCount int) { m.max = byteCount }

// MaxInMemorySize returns the configured cap, DefaultMaxInMemorySize when
// unset, or -1 for unlimited.
func (m *MemoryLimit) MaxInMemorySize() int {
	if m.max == 0 {
		return DefaultMaxInMemorySize
	}
	if m.max < 0 {
		return -1
	}
	return m.max
}

// readAllLimited buffers body, failing with ErrLimitExceeded once more than
// limit bytes have been read. A negative limit disables the cap.
func readAllLimited(body io.Reader, limit int) ([]byte, error) {
	if limit < 0 {
		return io.ReadAll(body)
	}
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(body, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if n > int64(limit) {
		return nil, ErrLimitExceeded
	}
	return buf.Bytes(), nil
}

// MatchesMIMEType reports whether contentType matches pattern. Patterns are
// bare media types ("application/json"), subtype wildcards
// ("application/*"), structured-syntax suffix wildcards
// ("application/*+json"), or "*/*". Parameters on contentType are ignored;
// an empty contentType matches every pattern.
func MatchesMIMEType(pattern, contentType string) bool {
	if contentType == "" || pattern == "*/*" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	if pattern == mt {
		return true
	}
	if i := strings.Index(pattern, "/*+"); i >= 0 {
		return strings.HasPrefix(mt, pattern[:i]+"/") && strings.HasSuffix(mt, pattern[i+2:])
	}
	if major, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(mt, major+"/")
	}
	return false
}

// MatchesAnyMIMEType reports whether contentType matches any of patterns.
func MatchesAnyMIMEType(patterns []string, contentType string) bool {
	for _, p := range patterns {
		if MatchesMIMEType(p, contentType) {
			return true
		}
	}
	return false
}

// Commonly negotiated shapes.
var (
	bytesType  = reflect.TypeOf([]byte(nil))
	bufferType = reflect.TypeOf((*bytes.Buffer)(nil))
	stringType = reflect.TypeOf("")
	valuesType = reflect.TypeOf(url.Values(nil))
	partsType  = reflect.TypeOf([]Part(nil))
	eventsType = reflect.TypeOf([]ServerSentEvent(nil))
)

// Part is a single decoded part of a multipart message.
type Part struct {
	Name     string
	FileName string
	Header   textproto.MIMEHeader
	Data     []byte
}

// ServerSentEvent is one event of a text/event-stream message. Data holds
// the decoded payload of the data field: the inner decoder's output when
// one applies, otherwise the raw string.
type ServerSentEvent struct {
	ID    string
	Event string
	Retry string
	Data  any
}
