package applier

import (
	"bytes"
	"strings"
	"testing"

	"github.com/avalonkit/fcdelta/differ"
	"github.com/avalonkit/fcdelta/fastcdc"
)

func mustParams(t *testing.T, min, avg, max int) fastcdc.Params {
	t.Helper()
	p, err := fastcdc.NewParams(min, avg, max, nil)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func roundTrip(t *testing.T, a, b []byte, params fastcdc.Params) []byte {
	t.Helper()
	var diffBuf bytes.Buffer
	if err := differ.Diff(bytes.NewReader(a), bytes.NewReader(b), &diffBuf, params); err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var out bytes.Buffer
	if err := Apply(bytes.NewReader(diffBuf.Bytes()), bytes.NewReader(a), int64(len(a)), &out); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return out.Bytes()
}

func TestApply_RoundTripIdentity(t *testing.T) {
	params := mustParams(t, 64, 64, 64)
	data := bytes.Repeat([]byte{0x5}, 64*20)
	got := roundTrip(t, data, data, params)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestApply_RoundTripSingleByteFlip(t *testing.T) {
	params := mustParams(t, 16, 32, 64)
	a := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 50)
	b := append([]byte{}, a...)
	b[len(b)/2] ^= 0xFF

	got := roundTrip(t, a, b, params)
	if !bytes.Equal(got, b) {
		t.Fatalf("round trip mismatch after single-byte flip")
	}
}

func TestApply_RoundTripInsertionAtStart(t *testing.T) {
	params := mustParams(t, 16, 32, 64)
	a := []byte(strings.Repeat("payload-data-", 200))
	b := append([]byte("PREPENDED-HEADER-"), a...)

	got := roundTrip(t, a, b, params)
	if !bytes.Equal(got, b) {
		t.Fatalf("round trip mismatch after prepend")
	}
}

func TestApply_RoundTripEmptyA(t *testing.T) {
	params := mustParams(t, 4, 8, 16)
	b := []byte("brand new content")
	got := roundTrip(t, nil, b, params)
	if !bytes.Equal(got, b) {
		t.Fatalf("round trip mismatch for empty A")
	}
}

func TestApply_RoundTripEmptyB(t *testing.T) {
	params := mustParams(t, 16, 32, 64)
	a := bytes.Repeat([]byte{9}, 500)
	got := roundTrip(t, a, nil, params)
	if len(got) != 0 {
		t.Fatalf("expected empty reconstruction, got %d bytes", len(got))
	}
}

func TestApply_RejectsCopyBeyondSourceBounds(t *testing.T) {
	params := mustParams(t, 16, 32, 64)
	a := bytes.Repeat([]byte{1}, 100)

	var diffBuf bytes.Buffer
	if err := differ.Diff(bytes.NewReader(a), bytes.NewReader(a), &diffBuf, params); err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var out bytes.Buffer
	// Apply against a source reported as smaller than what the diff actually needs.
	err := Apply(bytes.NewReader(diffBuf.Bytes()), bytes.NewReader(a), 10, &out)
	if err == nil {
		t.Fatalf("expected out-of-bounds Copy to be rejected")
	}
}
