package brotlicodec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	codecreg "github.com/logicossoftware/go-codecreg"
)

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("brotli payload ", 100))
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
	if _, err := dec.Decode(data, bytesType); !errors.Is(err, codecreg.ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}
