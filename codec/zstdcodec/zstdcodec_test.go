package zstdcodec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("zstd payload ", 100))
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

func TestBombGuard(t *testing.T) {
	data, err := NewEncoder().Encode(bytes.Repeat([]byte{0}, 1<<20))
	if err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder()
	dec.SetMaxInMemorySize(1024)
	if _, err := dec.Decode(data, bytesType); err == nil {
		t.Fatal("expected an error decoding past the limit")
	}
}

func TestEncodeWrongType(t *testing.T) {
	if _, err := NewEncoder().Encode(42); !errors.Is(err, codecreg.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
