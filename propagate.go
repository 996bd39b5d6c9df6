package codecreg

// applyCodecConfig fans the registry's cross-cutting configuration out to
// a codec:
//
//  1. Unwrap DecoderReader/EncoderWriter handles so the settings reach the
//     serialization codec rather than the transport wrapper. Wrapper types
//     with settings of their own (form, multipart, part, SSE) are not
//     wrapped and receive the settings directly.
//  2. Apply the max-in-memory size to codecs that expose one.
//  3. Apply the logging-details flag to codecs that expose one.
//  4. Run the caller-registered mutators, in registration order, so caller
//     customization can override the settings above.
//  5. Recurse into nested codecs of composites (multipart reader's part
//     reader, multipart writer's form writer, the SSE codecs' inner
//     decoder/encoder).
//
// Codecs lacking a given setting are skipped for that setting; the method
// never fails.
func (r *Registry) applyCodecConfig(codec any) {
	if reader, ok := codec.(*DecoderReader); ok {
		codec = reader.Decoder()
	} else if writer, ok := codec.(*EncoderWriter); ok {
		codec = writer.Encoder()
	}
	if codec == nil {
		return
	}

	if r.maxInMemorySize != nil {
		if limited, ok := codec.(SizeLimited); ok {
			limited.SetMaxInMemorySize(*r.maxInMemorySize)
		}
	}

	if r.loggingDetails != nil {
		if logged, ok := codec.(LoggingDetailed); ok {
			logged.EnableLoggingDetails(*r.loggingDetails)
		}
	}

	for _, mutate := range r.codecMutators {
		mutate(codec)
	}

	if composite, ok := codec.(Composite); ok {
		for _, nested := range composite.NestedCodecs() {
			r.applyCodecConfig(nested)
		}
	}
}
