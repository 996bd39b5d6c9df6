// Package codecreg implements a codec registry and content-negotiation
// configuration engine for HTTP-style message handling.
//
// The registry assembles six ordered categories of message readers and
// writers (typed and object variants plus two catch-all groups) that a
// transport layer consults to pick a codec for a given content type and
// target shape. Ordering determines negotiation priority: the first
// reader or writer whose CanRead/CanWrite reports true wins.
//
// # Capabilities
//
// Optional serialization and compression libraries are modeled as
// capabilities. Each optional codec lives in a subpackage under codec/
// that registers itself during init, so importing the subpackage enables
// the corresponding defaults:
//
//	import (
//		_ "github.com/logicossoftware/go-codecreg/codec/cborcodec"
//		_ "github.com/logicossoftware/go-codecreg/codec/protocodec"
//	)
//
// Absent capabilities are not errors; their codecs are simply omitted
// from the assembled categories.
//
// # Basic Usage
//
// A server wires the registry during setup and hands it, read-only, to
// its serving infrastructure:
//
//	reg := codecreg.NewServerRegistry()
//	reg.SetMaxInMemorySize(1 << 20)
//	reg.SetJSONDecoder(myDecoder)
//	for _, r := range reg.Readers() {
//		if r.CanRead(targetType, contentType) {
//			v, err := r.Read(targetType, contentType, body)
//			...
//		}
//	}
//
// Every setter rebuilds the affected categories in full before
// returning; rebuilds are deterministic and idempotent. Cross-cutting
// settings (the max-in-memory size, the logging-details flag and any
// registered mutators) are propagated to every codec on each rebuild,
// recursing into composite codecs such as the multipart and
// server-sent-event readers and writers.
//
// # Security Considerations
//
// Decoders that buffer a payload in memory enforce a configurable
// max-in-memory size (256 KiB unless changed), and the compression codecs
// apply the same cap to decompressed output to prevent decompression
// bombs.
package codecreg
