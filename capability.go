package codecreg

import (
	"os"
	"sync"
)

// Capability identifies an optional serialization or compression library.
// A capability is present once its codec package has registered a Provider,
// which the optional codec packages under codec/ do from init(). Importing
// such a package (typically with a blank import) therefore enables the
// corresponding default codecs:
//
//	import _ "github.com/logicossoftware/go-codecreg/codec/cborcodec"
//
// The capability table is expected to be fully populated during program
// initialization and is treated as immutable afterwards; a Registry
// snapshots it at construction time.
type Capability string

const (
	CapabilityCBOR     Capability = "cbor"
	CapabilityProtobuf Capability = "protobuf"
	CapabilityZstd     Capability = "zstd"
	CapabilityLZ4      Capability = "lz4"
	CapabilityBrotli   Capability = "brotli"
	// CapabilityGzip is the optimized gzip implementation. A stdlib
	// fallback codec is always available; when both are present the
	// optimized one is used, never both.
	CapabilityGzip Capability = "gzip"
)

// Provider supplies factories for the codecs a capability contributes.
// Either factory may be nil when the capability only provides one side.
type Provider struct {
	NewDecoder func() Decoder
	NewEncoder func() Encoder
}

var (
	providersMu sync.RWMutex
	providers   = make(map[Capability]Provider)
)

// RegisterProvider makes a capability available process-wide. It is
// intended to be called from the init function of an optional codec
// package. Registering the same capability twice panics.
func RegisterProvider(c Capability, p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if _, dup := providers[c]; dup {
		panic("codecreg: RegisterProvider called twice for capability " + string(c))
	}
	providers[c] = p
}

// Available reports whether a capability has been registered.
func Available(c Capability) bool {
	providersMu.RLock()
	defer providersMu.RUnlock()
	_, ok := providers[c]
	return ok
}

// capabilitySet is an immutable snapshot of the provider table.
type capabilitySet map[Capability]Provider

func snapshotProviders() capabilitySet {
	providersMu.RLock()
	defer providersMu.RUnlock()
	caps := make(capabilitySet, len(providers))
	for c, p := range providers {
		caps[c] = p
	}
	return caps
}

func (s capabilitySet) provider(c Capability) (Provider, bool) {
	p, ok := s[c]
	return p, ok
}

// shouldIgnoreXML disables the XML default codecs process-wide when the
// CODECREG_IGNORE_XML environment variable is set to "true".
var shouldIgnoreXML = os.Getenv("CODECREG_IGNORE_XML") == "true"
