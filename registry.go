package codecreg

import (
	"fmt"
	"io"
	"reflect"
	"slices"
)

// Registry assembles the ordered reader and writer categories consulted
// during content negotiation. All mutating calls rebuild the affected
// categories synchronously before returning, so getters always observe a
// fully assembled state.
//
// A Registry is meant to be configured during application setup and
// treated as read-only afterwards; it is not safe for concurrent
// mutation.
type Registry struct {
	caps capabilitySet

	// Role slots: a caller override when set, otherwise the lazily
	// memoized default for the role.
	jsonDecoder  Decoder
	jsonEncoder  Encoder
	cborDecoder  Decoder
	cborEncoder  Encoder
	protoDecoder Decoder
	protoEncoder Encoder
	xmlDecoder   Decoder
	xmlEncoder   Encoder

	codecMutators []CodecMutator

	maxInMemorySize  *int
	loggingDetails   *bool
	registerDefaults bool

	// Hooks for client/server-specific entries. They run on every
	// rebuild, regardless of registerDefaults.
	extendTypedReaders  func(*Registry, *[]MessageReader)
	extendObjectReaders func(*Registry, *[]MessageReader)
	extendTypedWriters  func(*Registry, *[]MessageWriter)
	extendObjectWriters func(*Registry, *[]MessageWriter)

	customTypedReaders  []customReader
	customObjectReaders []customReader
	customTypedWriters  []customWriter
	customObjectWriters []customWriter

	typedReaders  []MessageReader
	objectReaders []MessageReader
	typedWriters  []MessageWriter
	objectWriters []MessageWriter
}

type customReader struct {
	reader             MessageReader
	applyDefaultConfig bool
}

type customWriter struct {
	writer             MessageWriter
	applyDefaultConfig bool
}

// NewRegistry returns a registry with the base default codecs and no
// client- or server-specific entries.
func NewRegistry() *Registry { return newRegistry(snapshotProviders()) }

func newRegistry(caps capabilitySet) *Registry {
	r := &Registry{caps: caps, registerDefaults: true}
	r.initReaders()
	r.initWriters()
	return r
}

// SetJSONDecoder overrides the default JSON decoder.
func (r *Registry) SetJSONDecoder(d Decoder) {
	if d == nil {
		panic("codecreg: nil decoder")
	}
	r.jsonDecoder = d
	r.initObjectReaders()
}

// SetJSONEncoder overrides the default JSON encoder.
func (r *Registry) SetJSONEncoder(e Encoder) {
	if e == nil {
		panic("codecreg: nil encoder")
	}
	r.jsonEncoder = e
	r.initObjectWriters()
	r.initTypedWriters()
}

// SetCBORDecoder overrides the default CBOR decoder.
func (r *Registry) SetCBORDecoder(d Decoder) {
	if d == nil {
		panic("codecreg: nil decoder")
	}
	r.cborDecoder = d
	r.initObjectReaders()
}

// SetCBOREncoder overrides the default CBOR encoder.
func (r *Registry) SetCBOREncoder(e Encoder) {
	if e == nil {
		panic("codecreg: nil encoder")
	}
	r.cborEncoder = e
	r.initObjectWriters()
}

// SetProtobufDecoder overrides the default protobuf decoder.
func (r *Registry) SetProtobufDecoder(d Decoder) {
	if d == nil {
		panic("codecreg: nil decoder")
	}
	r.protoDecoder = d
	r.initTypedReaders()
}

// SetProtobufEncoder overrides the default protobuf encoder.
func (r *Registry) SetProtobufEncoder(e Encoder) {
	if e == nil {
		panic("codecreg: nil encoder")
	}
	r.protoEncoder = e
	r.initTypedWriters()
}

// SetXMLDecoder overrides the default XML decoder.
func (r *Registry) SetXMLDecoder(d Decoder) {
	if d == nil {
		panic("codecreg: nil decoder")
	}
	r.xmlDecoder = d
	r.initObjectReaders()
}

// SetXMLEncoder overrides the default XML encoder.
func (r *Registry) SetXMLEncoder(e Encoder) {
	if e == nil {
		panic("codecreg: nil encoder")
	}
	r.xmlEncoder = e
	r.initObjectWriters()
}

// AddCodecMutator appends a configuration hook that runs against every
// codec on each rebuild, in registration order.
func (r *Registry) AddCodecMutator(fn CodecMutator) {
	if fn == nil {
		panic("codecreg: nil codec mutator")
	}
	r.codecMutators = append(r.codecMutators, fn)
	r.initReaders()
	r.initWriters()
}

// SetMaxInMemorySize caps how many bytes a decoder may buffer in memory.
// Setting the current value again is a no-op.
func (r *Registry) SetMaxInMemorySize(byteCount int) {
	if r.maxInMemorySize != nil && *r.maxInMemorySize == byteCount {
		return
	}
	r.maxInMemorySize = &byteCount
	r.initReaders()
}

// MaxInMemorySize returns the configured size limit, if any.
func (r *Registry) MaxInMemorySize() (int, bool) {
	if r.maxInMemorySize == nil {
		return 0, false
	}
	return *r.maxInMemorySize, true
}

// SetLoggingDetails controls whether codecs may log potentially sensitive
// message details. Setting the current value again is a no-op.
func (r *Registry) SetLoggingDetails(enable bool) {
	if r.loggingDetails != nil && *r.loggingDetails == enable {
		return
	}
	r.loggingDetails = &enable
	r.initReaders()
	r.initWriters()
}

// LoggingDetails returns the configured logging-details flag, if any.
func (r *Registry) LoggingDetails() (bool, bool) {
	if r.loggingDetails == nil {
		return false, false
	}
	return *r.loggingDetails, true
}

// SetRegisterDefaults controls whether the default codecs are registered
// at all. When disabled, only extension-hook and custom entries populate
// the categories. Setting the current value again is a no-op.
func (r *Registry) SetRegisterDefaults(register bool) {
	if r.registerDefaults == register {
		return
	}
	r.registerDefaults = register
	r.initReaders()
	r.initWriters()
}

// RegisterCustomReader appends a caller-supplied reader to the given
// category, after all default entries. cat must be TypedReaders or
// ObjectReaders.
func (r *Registry) RegisterCustomReader(cat Category, reader MessageReader) {
	r.registerCustomReader(cat, reader, false)
}

// RegisterCustomReaderWithDefaultConfig is like RegisterCustomReader but
// also applies the registry's size-limit, logging and mutator
// configuration to the reader on every rebuild.
func (r *Registry) RegisterCustomReaderWithDefaultConfig(cat Category, reader MessageReader) {
	r.registerCustomReader(cat, reader, true)
}

func (r *Registry) registerCustomReader(cat Category, reader MessageReader, applyDefaultConfig bool) {
	if reader == nil {
		panic("codecreg: nil reader")
	}
	entry := customReader{reader: reader, applyDefaultConfig: applyDefaultConfig}
	switch cat {
	case TypedReaders:
		r.customTypedReaders = append(r.customTypedReaders, entry)
		r.initTypedReaders()
	case ObjectReaders:
		r.customObjectReaders = append(r.customObjectReaders, entry)
		r.initObjectReaders()
	default:
		panic("codecreg: category cannot take custom readers")
	}
}

// RegisterCustomWriter appends a caller-supplied writer to the given
// category, after all default entries. cat must be TypedWriters or
// ObjectWriters.
func (r *Registry) RegisterCustomWriter(cat Category, writer MessageWriter) {
	r.registerCustomWriter(cat, writer, false)
}

// RegisterCustomWriterWithDefaultConfig is like RegisterCustomWriter but
// also applies the registry's configuration to the writer on every
// rebuild.
func (r *Registry) RegisterCustomWriterWithDefaultConfig(cat Category, writer MessageWriter) {
	r.registerCustomWriter(cat, writer, true)
}

func (r *Registry) registerCustomWriter(cat Category, writer MessageWriter, applyDefaultConfig bool) {
	if writer == nil {
		panic("codecreg: nil writer")
	}
	entry := customWriter{writer: writer, applyDefaultConfig: applyDefaultConfig}
	switch cat {
	case TypedWriters:
		r.customTypedWriters = append(r.customTypedWriters, entry)
		r.initTypedWriters()
	case ObjectWriters:
		r.customObjectWriters = append(r.customObjectWriters, entry)
		r.initObjectWriters()
	default:
		panic("codecreg: category cannot take custom writers")
	}
}

// TypedReaders returns the readers for raw and format-specific shapes, in
// negotiation priority order. Callers must not modify the returned slice.
func (r *Registry) TypedReaders() []MessageReader { return r.typedReaders }

// ObjectReaders returns the readers for structured domain objects.
func (r *Registry) ObjectReaders() []MessageReader { return r.objectReaders }

// CatchAllReaders returns the readers consulted after all others.
func (r *Registry) CatchAllReaders() []MessageReader {
	if !r.registerDefaults {
		return nil
	}
	var readers []MessageReader
	r.addReader(&readers, NewDecoderReader(NewAllMIMETextDecoder()))
	return readers
}

// TypedWriters returns the writers for raw and format-specific shapes.
func (r *Registry) TypedWriters() []MessageWriter { return r.typedWriters }

// ObjectWriters returns the writers for structured domain objects.
func (r *Registry) ObjectWriters() []MessageWriter { return r.objectWriters }

// CatchAllWriters returns the writers consulted after all others.
func (r *Registry) CatchAllWriters() []MessageWriter {
	if !r.registerDefaults {
		return nil
	}
	var writers []MessageWriter
	r.addWriter(&writers, NewEncoderWriter(NewAllMIMETextEncoder()))
	return writers
}

// Readers returns every reader in overall negotiation order: typed, then
// object, then catch-all.
func (r *Registry) Readers() []MessageReader {
	readers := make([]MessageReader, 0, len(r.typedReaders)+len(r.objectReaders)+1)
	readers = append(readers, r.typedReaders...)
	readers = append(readers, r.objectReaders...)
	return append(readers, r.CatchAllReaders()...)
}

// Writers returns every writer in overall negotiation order: typed, then
// object, then catch-all.
func (r *Registry) Writers() []MessageWriter {
	writers := make([]MessageWriter, 0, len(r.typedWriters)+len(r.objectWriters)+1)
	writers = append(writers, r.typedWriters...)
	writers = append(writers, r.objectWriters...)
	return append(writers, r.CatchAllWriters()...)
}

// ReadValue decodes body into a value of type t using the first reader,
// in negotiation order, that can handle the target type and content type.
// It fails with ErrUnsupportedContent when no reader matches.
func (r *Registry) ReadValue(t reflect.Type, contentType string, body io.Reader) (any, error) {
	for _, reader := range r.Readers() {
		if reader.CanRead(t, contentType) {
			return reader.Read(t, contentType, body)
		}
	}
	return nil, fmt.Errorf("%w: no reader for %s as %s", ErrUnsupportedContent, t, contentType)
}

// WriteValue serializes v onto w using the first writer, in negotiation
// order, that can handle the value's type and content type. It fails with
// ErrUnsupportedContent when no writer matches.
func (r *Registry) WriteValue(w io.Writer, contentType string, v any) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return fmt.Errorf("%w: no writer for nil value as %s", ErrUnsupportedContent, contentType)
	}
	for _, writer := range r.Writers() {
		if writer.CanWrite(t, contentType) {
			return writer.Write(w, contentType, v)
		}
	}
	return fmt.Errorf("%w: no writer for %s as %s", ErrUnsupportedContent, t, contentType)
}

// Clone returns an independent registry with the same override state,
// scalar configuration and already-built category lists. Later mutations
// of either registry do not affect the other.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		caps:             r.caps,
		jsonDecoder:      r.jsonDecoder,
		jsonEncoder:      r.jsonEncoder,
		cborDecoder:      r.cborDecoder,
		cborEncoder:      r.cborEncoder,
		protoDecoder:     r.protoDecoder,
		protoEncoder:     r.protoEncoder,
		xmlDecoder:       r.xmlDecoder,
		xmlEncoder:       r.xmlEncoder,
		registerDefaults: r.registerDefaults,

		extendTypedReaders:  r.extendTypedReaders,
		extendObjectReaders: r.extendObjectReaders,
		extendTypedWriters:  r.extendTypedWriters,
		extendObjectWriters: r.extendObjectWriters,

		codecMutators:       slices.Clone(r.codecMutators),
		customTypedReaders:  slices.Clone(r.customTypedReaders),
		customObjectReaders: slices.Clone(r.customObjectReaders),
		customTypedWriters:  slices.Clone(r.customTypedWriters),
		customObjectWriters: slices.Clone(r.customObjectWriters),

		typedReaders:  slices.Clone(r.typedReaders),
		objectReaders: slices.Clone(r.objectReaders),
		typedWriters:  slices.Clone(r.typedWriters),
		objectWriters: slices.Clone(r.objectWriters),
	}
	if r.maxInMemorySize != nil {
		v := *r.maxInMemorySize
		c.maxInMemorySize = &v
	}
	if r.loggingDetails != nil {
		v := *r.loggingDetails
		c.loggingDetails = &v
	}
	return c
}
