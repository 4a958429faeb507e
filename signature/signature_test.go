package signature

import (
	"bytes"
	"math/rand"
	"testing"

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

func TestSign_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	data := make([]byte, 1<<20)
	r.Read(data)

	params := mustParams(t, 4*1024, 8*1024, 16*1024)

	sig1, err := Sign(bytes.NewReader(data), params)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig2, err := Sign(bytes.NewReader(data), params)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if len(sig1.Entries) != len(sig2.Entries) {
		t.Fatalf("entry count differs: %d vs %d", len(sig1.Entries), len(sig2.Entries))
	}
	for i := range sig1.Entries {
		if sig1.Entries[i] != sig2.Entries[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, sig1.Entries[i], sig2.Entries[i])
		}
	}
}

func TestSign_TotalLengthMatchesInput(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox "), 10000)
	params := mustParams(t, 1024, 4096, 16384)

	sig, err := Sign(bytes.NewReader(data), params)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig.TotalLength() != int64(len(data)) {
		t.Fatalf("signature total length %d, want %d", sig.TotalLength(), len(data))
	}
}

func TestSign_EmptyStream(t *testing.T) {
	params := fastcdc.DefaultParams()
	sig, err := Sign(bytes.NewReader(nil), params)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig.Entries) != 0 {
		t.Fatalf("expected no entries for empty stream, got %d", len(sig.Entries))
	}
}

func TestSign_IdenticalStreamsProduceIdenticalSignatures(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	data := make([]byte, 1<<19)
	r.Read(data)
	params := mustParams(t, 2048, 4096, 8192)

	a, err := Sign(bytes.NewReader(data), params)
	if err != nil {
		t.Fatalf("Sign a: %v", err)
	}
	b, err := Sign(bytes.NewReader(append([]byte(nil), data...)), params)
	if err != nil {
		t.Fatalf("Sign b: %v", err)
	}

	if len(a.Entries) != len(b.Entries) {
		t.Fatalf("entry counts differ")
	}
	for i := range a.Entries {
		if a.Entries[i] != b.Entries[i] {
			t.Fatalf("entry %d differs", i)
		}
	}
}

func TestSignParallel_MatchesSign(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	data := make([]byte, 1<<20)
	r.Read(data)
	params := mustParams(t, 4096, 8192, 16384)

	serial, err := Sign(bytes.NewReader(data), params)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parallel, err := SignParallel(bytes.NewReader(data), params, 4)
	if err != nil {
		t.Fatalf("SignParallel: %v", err)
	}

	if len(serial.Entries) != len(parallel.Entries) {
		t.Fatalf("entry counts differ: %d vs %d", len(serial.Entries), len(parallel.Entries))
	}
	for i := range serial.Entries {
		if serial.Entries[i] != parallel.Entries[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, serial.Entries[i], parallel.Entries[i])
		}
	}
}

func TestSignToFile_WritesWireFormat(t *testing.T) {
	data := bytes.Repeat([]byte{0x9}, 50000)
	params := mustParams(t, 1024, 4096, 16384)

	var buf bytes.Buffer
	if err := SignToFile(bytes.NewReader(data), &buf, params); err != nil {
		t.Fatalf("SignToFile: %v", err)
	}

	if buf.Len() < 28 {
		t.Fatalf("expected at least a header's worth of bytes, got %d", buf.Len())
	}
}
