package codecreg

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

// fakeDecoder stands in for a capability-provided decoder in tests.
type fakeDecoder struct {
	MemoryLimit
	name string
}

func (d *fakeDecoder) CanDecode(t reflect.Type, contentType string) bool { return true }

func (d *fakeDecoder) Decode(data []byte, t reflect.Type) (any, error) { return data, nil }

type fakeEncoder struct {
	name string
}

func (e *fakeEncoder) CanEncode(t reflect.Type, contentType string) bool { return true }

func (e *fakeEncoder) Encode(v any) ([]byte, error) { return nil, nil }

// decoderTypes flattens a reader category into a comparable shape:
// the wrapped decoder type for DecoderReader handles, the reader type
// otherwise.
func decoderTypes(readers []MessageReader) []string {
	var names []string
	for _, r := range readers {
		if dr, ok := r.(*DecoderReader); ok {
			names = append(names, reflect.TypeOf(dr.Decoder()).String())
			continue
		}
		names = append(names, reflect.TypeOf(r).String())
	}
	return names
}

func encoderTypes(writers []MessageWriter) []string {
	var names []string
	for _, w := range writers {
		if ew, ok := w.(*EncoderWriter); ok {
			names = append(names, reflect.TypeOf(ew.Encoder()).String())
			continue
		}
		names = append(names, reflect.TypeOf(w).String())
	}
	return names
}

func TestDefaultTypedReaderOrder(t *testing.T) {
	r := newRegistry(capabilitySet{})
	want := []string{
		"*codecreg.BytesDecoder",
		"*codecreg.BufferDecoder",
		"*codecreg.TextDecoder",
		"*codecreg.GzipDecoder",
		"*codecreg.FormReader",
	}
	if got := decoderTypes(r.TypedReaders()); !reflect.DeepEqual(got, want) {
		t.Fatalf("typed readers = %v, want %v", got, want)
	}
}

func TestDefaultObjectReaderOrder(t *testing.T) {
	r := newRegistry(capabilitySet{})
	want := []string{"*codecreg.JSONDecoder", "*codecreg.XMLDecoder"}
	if got := decoderTypes(r.ObjectReaders()); !reflect.DeepEqual(got, want) {
		t.Fatalf("object readers = %v, want %v", got, want)
	}
}

func TestRebuildDeterminism(t *testing.T) {
	caps := capabilitySet{
		CapabilityCBOR: {NewDecoder: func() Decoder { return &fakeDecoder{name: "cbor"} }},
	}
	a := newServerRegistry(caps)
	b := newServerRegistry(caps)
	if !reflect.DeepEqual(decoderTypes(a.Readers()), decoderTypes(b.Readers())) {
		t.Fatal("two identically configured registries disagree on reader order")
	}

	// Toggling registerDefaults off and back on must restore the exact
	// same sequence.
	before := decoderTypes(a.Readers())
	a.SetRegisterDefaults(false)
	a.SetRegisterDefaults(true)
	if got := decoderTypes(a.Readers()); !reflect.DeepEqual(got, before) {
		t.Fatalf("rebuild not idempotent: %v != %v", got, before)
	}
}

func TestOverridePrecedence(t *testing.T) {
	r := newRegistry(capabilitySet{})
	custom := &fakeDecoder{name: "custom-json"}
	r.SetJSONDecoder(custom)

	readers := r.ObjectReaders()
	dr, ok := readers[0].(*DecoderReader)
	if !ok {
		t.Fatalf("expected DecoderReader first, got %T", readers[0])
	}
	if dr.Decoder() != Decoder(custom) {
		t.Fatalf("JSON slot holds %T, want the override instance", dr.Decoder())
	}
}

func TestOverrideSurvivesUnrelatedRebuild(t *testing.T) {
	r := newRegistry(capabilitySet{})
	custom := &fakeDecoder{name: "custom-json"}
	r.SetJSONDecoder(custom)
	r.SetMaxInMemorySize(1024)

	dr := r.ObjectReaders()[0].(*DecoderReader)
	if dr.Decoder() != Decoder(custom) {
		t.Fatal("override lost across rebuild")
	}
}

func TestCapabilityGating(t *testing.T) {
	absent := newRegistry(capabilitySet{})
	for _, name := range decoderTypes(absent.ObjectReaders()) {
		if name == "*codecreg.fakeDecoder" {
			t.Fatal("capability-gated codec present without capability")
		}
	}

	present := newRegistry(capabilitySet{
		CapabilityCBOR: {NewDecoder: func() Decoder { return &fakeDecoder{name: "cbor"} }},
	})
	got := decoderTypes(present.ObjectReaders())
	want := []string{"*codecreg.fakeDecoder", "*codecreg.JSONDecoder", "*codecreg.XMLDecoder"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("object readers = %v, want %v", got, want)
	}
}

func TestGzipAlternativePair(t *testing.T) {
	t.Run("fallback", func(t *testing.T) {
		r := newRegistry(capabilitySet{})
		names := decoderTypes(r.TypedReaders())
		if !contains(names, "*codecreg.GzipDecoder") {
			t.Fatalf("stdlib gzip fallback missing: %v", names)
		}
	})
	t.Run("optimized preferred", func(t *testing.T) {
		r := newRegistry(capabilitySet{
			CapabilityGzip: {NewDecoder: func() Decoder { return &fakeDecoder{name: "gzip"} }},
		})
		names := decoderTypes(r.TypedReaders())
		if contains(names, "*codecreg.GzipDecoder") {
			t.Fatalf("stdlib fallback registered alongside the optimized codec: %v", names)
		}
		if !contains(names, "*codecreg.fakeDecoder") {
			t.Fatalf("optimized gzip codec missing: %v", names)
		}
	})
}

func TestRegisterDefaultsFalse(t *testing.T) {
	r := newServerRegistry(capabilitySet{})
	r.SetRegisterDefaults(false)

	// Extension-hook entries survive; defaults do not.
	want := []string{"*codecreg.PartReader", "*codecreg.MultipartReader"}
	if got := decoderTypes(r.TypedReaders()); !reflect.DeepEqual(got, want) {
		t.Fatalf("typed readers = %v, want only the server extension entries %v", got, want)
	}
	if got := r.ObjectReaders(); len(got) != 0 {
		t.Fatalf("object readers not empty: %v", decoderTypes(got))
	}
	if got := r.CatchAllReaders(); len(got) != 0 {
		t.Fatalf("catch-all readers not empty: %v", decoderTypes(got))
	}
	if got := r.CatchAllWriters(); len(got) != 0 {
		t.Fatalf("catch-all writers not empty: %v", encoderTypes(got))
	}

	// Overlay entries still appear.
	custom := &fakeReader{}
	r.RegisterCustomReader(ObjectReaders, custom)
	got := r.ObjectReaders()
	if len(got) != 1 || got[0] != MessageReader(custom) {
		t.Fatalf("custom reader missing with defaults disabled: %v", decoderTypes(got))
	}
}

func TestOverlayOrdering(t *testing.T) {
	r := newRegistry(capabilitySet{})
	defaults := len(r.ObjectReaders())
	o1 := &fakeReader{}
	o2 := &fakeReader{}
	r.RegisterCustomReader(ObjectReaders, o1)
	r.RegisterCustomReader(ObjectReaders, o2)

	got := r.ObjectReaders()
	if len(got) != defaults+2 {
		t.Fatalf("expected %d readers, got %d", defaults+2, len(got))
	}
	if got[defaults] != MessageReader(o1) || got[defaults+1] != MessageReader(o2) {
		t.Fatal("overlay entries not appended in registration order after defaults")
	}
}

func TestOverlayCategoryValidation(t *testing.T) {
	r := newRegistry(capabilitySet{})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for catch-all custom reader")
		}
	}()
	r.RegisterCustomReader(CatchAllReaders, &fakeReader{})
}

func TestNilCodecPanics(t *testing.T) {
	r := newRegistry(capabilitySet{})
	for name, fn := range map[string]func(){
		"decoder": func() { r.SetJSONDecoder(nil) },
		"encoder": func() { r.SetJSONEncoder(nil) },
		"reader":  func() { r.RegisterCustomReader(TypedReaders, nil) },
		"writer":  func() { r.RegisterCustomWriter(TypedWriters, nil) },
		"mutator": func() { r.AddCodecMutator(nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestNoopScalarSetters(t *testing.T) {
	r := newRegistry(capabilitySet{})
	var calls int
	r.AddCodecMutator(func(codec any) { calls++ })

	calls = 0
	r.SetMaxInMemorySize(1 << 20)
	first := calls
	if first == 0 {
		t.Fatal("setter did not trigger a rebuild")
	}
	r.SetMaxInMemorySize(1 << 20)
	if calls != first {
		t.Fatalf("duplicate-value setter triggered another rebuild (%d mutator calls, want %d)", calls, first)
	}

	calls = 0
	r.SetLoggingDetails(true)
	first = calls
	r.SetLoggingDetails(true)
	if calls != first {
		t.Fatal("duplicate logging setter triggered another rebuild")
	}

	calls = 0
	r.SetRegisterDefaults(true) // already true
	if calls != 0 {
		t.Fatal("no-op registerDefaults setter triggered a rebuild")
	}
}

func TestScalarGetters(t *testing.T) {
	r := newRegistry(capabilitySet{})
	if _, ok := r.MaxInMemorySize(); ok {
		t.Fatal("size limit reported as set before any setter call")
	}
	if _, ok := r.LoggingDetails(); ok {
		t.Fatal("logging details reported as set before any setter call")
	}
	r.SetMaxInMemorySize(4096)
	if n, ok := r.MaxInMemorySize(); !ok || n != 4096 {
		t.Fatalf("MaxInMemorySize = %d, %v", n, ok)
	}
	r.SetLoggingDetails(true)
	if b, ok := r.LoggingDetails(); !ok || !b {
		t.Fatalf("LoggingDetails = %v, %v", b, ok)
	}
}

func TestClone(t *testing.T) {
	r := newServerRegistry(capabilitySet{})
	custom := &fakeDecoder{name: "json"}
	r.SetJSONDecoder(custom)
	r.SetMaxInMemorySize(2048)

	c := r.Clone()
	if !reflect.DeepEqual(decoderTypes(c.Readers()), decoderTypes(r.Readers())) {
		t.Fatal("clone categories differ from the original")
	}
	if n, ok := c.MaxInMemorySize(); !ok || n != 2048 {
		t.Fatal("clone lost scalar configuration")
	}
	if c.ObjectReaders()[0].(*DecoderReader).Decoder() != Decoder(custom) {
		t.Fatal("clone lost the override instance")
	}

	// Mutating the clone must not leak into the original.
	c.SetRegisterDefaults(false)
	if len(r.ObjectReaders()) == 0 {
		t.Fatal("mutating the clone affected the original")
	}
	r.SetMaxInMemorySize(1)
	if n, _ := c.MaxInMemorySize(); n != 2048 {
		t.Fatal("mutating the original affected the clone")
	}
}

func TestClientRegistryExtensions(t *testing.T) {
	r := newClientRegistry(capabilitySet{})
	readers := r.ObjectReaders()
	last := readers[len(readers)-1]
	sse, ok := last.(*SSEReader)
	if !ok {
		t.Fatalf("expected SSEReader last in client object readers, got %T", last)
	}
	// The SSE reader reuses the JSON decoder role instance.
	jsonReader := readers[0].(*DecoderReader)
	if sse.Decoder() != jsonReader.Decoder() {
		t.Fatal("SSE reader does not share the JSON decoder role instance")
	}

	writers := r.TypedWriters()
	if _, ok := writers[len(writers)-1].(*MultipartWriter); !ok {
		t.Fatalf("expected MultipartWriter last in client typed writers, got %T", writers[len(writers)-1])
	}
}

func TestServerRegistryExtensions(t *testing.T) {
	r := newServerRegistry(capabilitySet{})
	readers := r.TypedReaders()
	mp, ok := readers[len(readers)-1].(*MultipartReader)
	if !ok {
		t.Fatalf("expected MultipartReader last in server typed readers, got %T", readers[len(readers)-1])
	}
	pr, ok := readers[len(readers)-2].(*PartReader)
	if !ok {
		t.Fatalf("expected PartReader before MultipartReader, got %T", readers[len(readers)-2])
	}
	if mp.PartReader() != pr {
		t.Fatal("multipart reader does not share the registered part reader")
	}

	writers := r.ObjectWriters()
	if _, ok := writers[len(writers)-1].(*SSEWriter); !ok {
		t.Fatalf("expected SSEWriter last in server object writers, got %T", writers[len(writers)-1])
	}
}

func TestReadWriteValueNegotiation(t *testing.T) {
	r := newRegistry(capabilitySet{})

	var buf bytes.Buffer
	if err := r.WriteValue(&buf, "application/json", sample{Name: "a", Count: 2}); err != nil {
		t.Fatal(err)
	}
	v, err := r.ReadValue(sampleType, "application/json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v, sample{Name: "a", Count: 2}) {
		t.Fatalf("round trip mismatch: %#v", v)
	}

	chanType := reflect.TypeOf(make(chan int))
	if _, err := r.ReadValue(chanType, "application/msgpack", strings.NewReader("")); !errors.Is(err, ErrUnsupportedContent) {
		t.Fatalf("expected ErrUnsupportedContent, got %v", err)
	}
	if err := r.WriteValue(&buf, "application/msgpack", make(chan int)); !errors.Is(err, ErrUnsupportedContent) {
		t.Fatalf("expected ErrUnsupportedContent, got %v", err)
	}
}

func TestWriteValueNilValue(t *testing.T) {
	for _, contentType := range []string{
		"application/xml",
		"application/x-protobuf",
		"application/json",
	} {
		t.Run(contentType, func(t *testing.T) {
			r := newRegistry(capabilitySet{})
			if err := r.WriteValue(io.Discard, contentType, nil); !errors.Is(err, ErrUnsupportedContent) {
				t.Fatalf("expected ErrUnsupportedContent, got %v", err)
			}
		})
	}
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
