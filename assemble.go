package codecreg

// Category assembly. Every init method fully clears and rebuilds its
// category; a rebuild with unchanged inputs produces an identical ordered
// sequence.

// initReaders rebuilds the typed and object reader categories.
func (r *Registry) initReaders() {
	r.initTypedReaders()
	r.initObjectReaders()
}

// initWriters rebuilds the typed and object writer categories.
func (r *Registry) initWriters() {
	r.initTypedWriters()
	r.initObjectWriters()
}

// initTypedReaders rebuilds the readers for raw and format-specific
// shapes. Default priority order: bytes, buffer, text/plain, gzip
// (optimized implementation preferred over the stdlib fallback, never
// both), zstd, lz4, brotli, protobuf, form.
func (r *Registry) initTypedReaders() {
	r.typedReaders = nil
	if r.registerDefaults {
		r.addReader(&r.typedReaders, NewDecoderReader(NewBytesDecoder()))
		r.addReader(&r.typedReaders, NewDecoderReader(NewBufferDecoder()))
		r.addReader(&r.typedReaders, NewDecoderReader(NewTextDecoder()))
		if p, ok := r.caps.provider(CapabilityGzip); ok && p.NewDecoder != nil {
			r.addReader(&r.typedReaders, NewDecoderReader(p.NewDecoder()))
		} else {
			r.addReader(&r.typedReaders, NewDecoderReader(NewGzipDecoder()))
		}
		if p, ok := r.caps.provider(CapabilityZstd); ok && p.NewDecoder != nil {
			r.addReader(&r.typedReaders, NewDecoderReader(p.NewDecoder()))
		}
		if p, ok := r.caps.provider(CapabilityLZ4); ok && p.NewDecoder != nil {
			r.addReader(&r.typedReaders, NewDecoderReader(p.NewDecoder()))
		}
		if p, ok := r.caps.provider(CapabilityBrotli); ok && p.NewDecoder != nil {
			r.addReader(&r.typedReaders, NewDecoderReader(p.NewDecoder()))
		}
		if p, ok := r.caps.provider(CapabilityProtobuf); ok && p.NewDecoder != nil {
			r.addReader(&r.typedReaders, NewDecoderReader(r.protobufDecoderOrDefault(p)))
		}
		r.addReader(&r.typedReaders, NewFormReader())
	}
	if r.extendTypedReaders != nil {
		r.extendTypedReaders(r, &r.typedReaders)
	}
	r.mergeCustomReaders(&r.typedReaders, r.customTypedReaders)
}

// initObjectReaders rebuilds the readers for structured domain objects.
// Default priority order: CBOR, JSON, XML.
func (r *Registry) initObjectReaders() {
	r.objectReaders = nil
	if r.registerDefaults {
		if p, ok := r.caps.provider(CapabilityCBOR); ok && p.NewDecoder != nil {
			r.addReader(&r.objectReaders, NewDecoderReader(r.cborDecoderOrDefault(p)))
		}
		r.addReader(&r.objectReaders, NewDecoderReader(r.jsonDecoderOrDefault()))
		if !shouldIgnoreXML {
			r.addReader(&r.objectReaders, NewDecoderReader(r.xmlDecoderOrDefault()))
		}
	}
	if r.extendObjectReaders != nil {
		r.extendObjectReaders(r, &r.objectReaders)
	}
	r.mergeCustomReaders(&r.objectReaders, r.customObjectReaders)
}

// initTypedWriters rebuilds the writers for raw and format-specific
// shapes, mirroring the typed reader order.
func (r *Registry) initTypedWriters() {
	r.typedWriters = nil
	if r.registerDefaults {
		r.addWriter(&r.typedWriters, NewEncoderWriter(NewBytesEncoder()))
		r.addWriter(&r.typedWriters, NewEncoderWriter(NewBufferEncoder()))
		r.addWriter(&r.typedWriters, NewEncoderWriter(NewTextEncoder()))
		if p, ok := r.caps.provider(CapabilityGzip); ok && p.NewEncoder != nil {
			r.addWriter(&r.typedWriters, NewEncoderWriter(p.NewEncoder()))
		} else {
			r.addWriter(&r.typedWriters, NewEncoderWriter(NewGzipEncoder()))
		}
		if p, ok := r.caps.provider(CapabilityZstd); ok && p.NewEncoder != nil {
			r.addWriter(&r.typedWriters, NewEncoderWriter(p.NewEncoder()))
		}
		if p, ok := r.caps.provider(CapabilityLZ4); ok && p.NewEncoder != nil {
			r.addWriter(&r.typedWriters, NewEncoderWriter(p.NewEncoder()))
		}
		if p, ok := r.caps.provider(CapabilityBrotli); ok && p.NewEncoder != nil {
			r.addWriter(&r.typedWriters, NewEncoderWriter(p.NewEncoder()))
		}
		if p, ok := r.caps.provider(CapabilityProtobuf); ok && p.NewEncoder != nil {
			r.addWriter(&r.typedWriters, NewEncoderWriter(r.protobufEncoderOrDefault(p)))
		}
	}
	if r.extendTypedWriters != nil {
		r.extendTypedWriters(r, &r.typedWriters)
	}
	r.mergeCustomWriters(&r.typedWriters, r.customTypedWriters)
}

// initObjectWriters rebuilds the writers for structured domain objects.
// Default priority order: CBOR, JSON, XML.
func (r *Registry) initObjectWriters() {
	r.objectWriters = nil
	if r.registerDefaults {
		if p, ok := r.caps.provider(CapabilityCBOR); ok && p.NewEncoder != nil {
			r.addWriter(&r.objectWriters, NewEncoderWriter(r.cborEncoderOrDefault(p)))
		}
		r.addWriter(&r.objectWriters, NewEncoderWriter(r.jsonEncoderOrDefault()))
		if !shouldIgnoreXML {
			r.addWriter(&r.objectWriters, NewEncoderWriter(r.xmlEncoderOrDefault()))
		}
	}
	if r.extendObjectWriters != nil {
		r.extendObjectWriters(r, &r.objectWriters)
	}
	r.mergeCustomWriters(&r.objectWriters, r.customObjectWriters)
}

// addReader applies the registry configuration to reader and appends it.
func (r *Registry) addReader(readers *[]MessageReader, reader MessageReader) {
	r.applyCodecConfig(reader)
	*readers = append(*readers, reader)
}

// addWriter applies the registry configuration to writer and appends it.
func (r *Registry) addWriter(writers *[]MessageWriter, writer MessageWriter) {
	r.applyCodecConfig(writer)
	*writers = append(*writers, writer)
}

// mergeCustomReaders appends the caller-registered overlay entries in
// registration order, after all default and extension entries.
func (r *Registry) mergeCustomReaders(readers *[]MessageReader, custom []customReader) {
	for _, entry := range custom {
		if entry.applyDefaultConfig {
			r.applyCodecConfig(entry.reader)
		}
		*readers = append(*readers, entry.reader)
	}
}

func (r *Registry) mergeCustomWriters(writers *[]MessageWriter, custom []customWriter) {
	for _, entry := range custom {
		if entry.applyDefaultConfig {
			r.applyCodecConfig(entry.writer)
		}
		*writers = append(*writers, entry.writer)
	}
}

// Role slot accessors: the caller override when present, otherwise a
// default constructed at most once and reused across rebuilds.

func (r *Registry) jsonDecoderOrDefault() Decoder {
	if r.jsonDecoder == nil {
		r.jsonDecoder = NewJSONDecoder()
	}
	return r.jsonDecoder
}

func (r *Registry) jsonEncoderOrDefault() Encoder {
	if r.jsonEncoder == nil {
		r.jsonEncoder = NewJSONEncoder()
	}
	return r.jsonEncoder
}

func (r *Registry) xmlDecoderOrDefault() Decoder {
	if r.xmlDecoder == nil {
		r.xmlDecoder = NewXMLDecoder()
	}
	return r.xmlDecoder
}

func (r *Registry) xmlEncoderOrDefault() Encoder {
	if r.xmlEncoder == nil {
		r.xmlEncoder = NewXMLEncoder()
	}
	return r.xmlEncoder
}

func (r *Registry) cborDecoderOrDefault(p Provider) Decoder {
	if r.cborDecoder == nil {
		r.cborDecoder = p.NewDecoder()
	}
	return r.cborDecoder
}

func (r *Registry) cborEncoderOrDefault(p Provider) Encoder {
	if r.cborEncoder == nil {
		r.cborEncoder = p.NewEncoder()
	}
	return r.cborEncoder
}

func (r *Registry) protobufDecoderOrDefault(p Provider) Decoder {
	if r.protoDecoder == nil {
		r.protoDecoder = p.NewDecoder()
	}
	return r.protoDecoder
}

func (r *Registry) protobufEncoderOrDefault(p Provider) Encoder {
	if r.protoEncoder == nil {
		r.protoEncoder = p.NewEncoder()
	}
	return r.protoEncoder
}

// NewClientRegistry returns a registry with client-specific entries: an
// SSE reader (reusing the JSON decoder role) among the object readers and
// a multipart writer among the typed writers.
func NewClientRegistry() *Registry {
	return newClientRegistry(snapshotProviders())
}

func newClientRegistry(caps capabilitySet) *Registry {
	r := &Registry{caps: caps, registerDefaults: true}
	r.extendObjectReaders = func(r *Registry, readers *[]MessageReader) {
		r.addReader(readers, NewSSEReader(r.jsonDecoderOrDefault()))
	}
	r.extendTypedWriters = func(r *Registry, writers *[]MessageWriter) {
		r.addWriter(writers, NewMultipartWriter(NewFormWriter()))
	}
	r.initReaders()
	r.initWriters()
	return r
}

// NewServerRegistry returns a registry with server-specific entries: a
// part reader and a multipart reader among the typed readers, and an SSE
// writer (reusing the JSON encoder role) among the object writers.
func NewServerRegistry() *Registry {
	return newServerRegistry(snapshotProviders())
}

func newServerRegistry(caps capabilitySet) *Registry {
	r := &Registry{caps: caps, registerDefaults: true}
	r.extendTypedReaders = func(r *Registry, readers *[]MessageReader) {
		partReader := NewPartReader()
		r.addReader(readers, partReader)
		r.addReader(readers, NewMultipartReader(partReader))
	}
	r.extendObjectWriters = func(r *Registry, writers *[]MessageWriter) {
		r.addWriter(writers, NewSSEWriter(r.jsonEncoderOrDefault()))
	}
	r.initReaders()
	r.initWriters()
	return r
}
