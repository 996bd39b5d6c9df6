package gzipcodec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("gzip payload ", 100))
	data, err := NewEncoder().Encode(payload)
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewDecoder().Decode(data, bytesType)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(v.([]byte), payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestStdlibInterop(t *testing.T) {
	// Payloads produced by the stdlib fallback must decode here and vice
	// versa; both halves of the alternative pair speak the same format.
	payload := []byte("interop payload")
	data, err := codecreg.NewGzipEncoder().Encode(payload)
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewDecoder().Decode(data, bytesType)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(v.([]byte), payload) {
		t.Fatal("stdlib-encoded payload did not decode")
	}
}

func TestBombGuard(t *testing.T) {
	data, err := NewEncoder().Encode(bytes.Repeat([]byte{0}, 1<<20))
	if err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder()
	dec.SetMaxInMemorySize(1024)
	if _, err := dec.Decode(data, bytesType); !errors.Is(err, codecreg.ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}
