package fastcdc

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
)

func mustParams(t *testing.T, min, avg, max int) Params {
	t.Helper()
	p, err := NewParams(min, avg, max, nil)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func TestCutPoint_RespectsBounds(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 1000)
	params := mustParams(t, 50, 100, 200)

	offset := 0
	for offset < len(data) {
		cut := CutPoint(data[offset:], params)
		remaining := len(data) - offset
		if cut < params.MinSize && cut < remaining {
			t.Errorf("chunk too small: got %d, min %d", cut, params.MinSize)
		}
		if cut > params.MaxSize {
			t.Errorf("chunk too big: got %d, max %d", cut, params.MaxSize)
		}
		offset += cut
	}
}

func TestCutPoint_Deterministic(t *testing.T) {
	data := bytes.Repeat([]byte{0x01, 0x02, 0x03}, 500)
	params := mustParams(t, 50, 100, 200)

	var firstCuts, secondCuts []int
	for _, dst := range []*[]int{&firstCuts, &secondCuts} {
		offset := 0
		for offset < len(data) {
			cut := CutPoint(data[offset:], params)
			*dst = append(*dst, cut)
			offset += cut
		}
	}

	if len(firstCuts) != len(secondCuts) {
		t.Fatalf("chunk counts differ: %d vs %d", len(firstCuts), len(secondCuts))
	}
	for i := range firstCuts {
		if firstCuts[i] != secondCuts[i] {
			t.Errorf("cuts not deterministic at chunk %d: %d vs %d", i, firstCuts[i], secondCuts[i])
		}
	}
}

func TestCutPoint_FixedSizeWhenMinAvgMaxEqual(t *testing.T) {
	params := mustParams(t, 64, 64, 64)
	data := bytes.Repeat([]byte{0x42}, 64*5)

	offset := 0
	var cuts int
	for offset < len(data) {
		cut := CutPoint(data[offset:], params)
		if cut != 64 {
			t.Fatalf("expected fixed-size cut of 64, got %d", cut)
		}
		offset += cut
		cuts++
	}
	if cuts != 5 {
		t.Fatalf("expected 5 chunks, got %d", cuts)
	}
}

func TestChunker_TilesStream(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	data := make([]byte, 5*1024*1024)
	r.Read(data)

	params := mustParams(t, 16*1024, 32*1024, 64*1024)
	c := NewChunker(bytes.NewReader(data), params)

	var total int64
	var lastEnd int64
	for {
		b, chunkData, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Offset != lastEnd {
			t.Fatalf("gap or overlap: offset %d, expected %d", b.Offset, lastEnd)
		}
		if int(b.Length) != len(chunkData) {
			t.Fatalf("boundary length %d != chunk data length %d", b.Length, len(chunkData))
		}
		total += int64(b.Length)
		lastEnd = b.Offset + int64(b.Length)
	}

	if total != int64(len(data)) {
		t.Fatalf("chunk lengths sum to %d, want %d", total, len(data))
	}
}

func TestChunker_SizeBounds(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	data := make([]byte, 2*1024*1024)
	r.Read(data)

	params := mustParams(t, 16*1024, 32*1024, 64*1024)
	c := NewChunker(bytes.NewReader(data), params)

	var boundaries []Boundary
	for {
		b, _, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		boundaries = append(boundaries, b)
	}

	for i, b := range boundaries {
		isLast := i == len(boundaries)-1
		if !isLast && (int(b.Length) < params.MinSize || int(b.Length) > params.MaxSize) {
			t.Errorf("chunk %d out of bounds: %d", i, b.Length)
		}
		if isLast && int(b.Length) > params.MaxSize {
			t.Errorf("final chunk exceeds max: %d", b.Length)
		}
	}
}

func TestChunker_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	data := make([]byte, 1024*1024)
	r.Read(data)

	params := mustParams(t, 8*1024, 16*1024, 32*1024)

	boundaries := func() []Boundary {
		c := NewChunker(bytes.NewReader(data), params)
		var out []Boundary
		for {
			b, _, err := c.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out = append(out, b)
		}
		return out
	}

	first := boundaries()
	second := boundaries()

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("boundary %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestChunker_TinyStreamBelowMinSize(t *testing.T) {
	params := mustParams(t, 100, 200, 400)
	c := NewChunker(bytes.NewReader([]byte("short")), params)

	b, data, err := c.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int(b.Length) != 5 || len(data) != 5 {
		t.Fatalf("expected single 5-byte chunk, got length %d", b.Length)
	}

	if _, _, err := c.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestChunker_EmptyStream(t *testing.T) {
	params := DefaultParams()
	c := NewChunker(bytes.NewReader(nil), params)

	if _, _, err := c.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF for empty stream, got %v", err)
	}
}

func TestNewParams_RejectsBadParameters(t *testing.T) {
	cases := []struct {
		name           string
		min, avg, max int
	}{
		{"zero min", 0, 10, 20},
		{"zero avg", 10, 0, 20},
		{"zero max", 10, 20, 0},
		{"min greater than avg", 30, 20, 40},
		{"avg greater than max", 10, 50, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewParams(tc.min, tc.avg, tc.max, nil); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestNewGearTableFromSeed_Deterministic(t *testing.T) {
	a := NewGearTableFromSeed(42)
	b := NewGearTableFromSeed(42)
	if a != b {
		t.Fatalf("expected identical tables for the same seed")
	}

	c := NewGearTableFromSeed(43)
	if a == c {
		t.Fatalf("expected different tables for different seeds")
	}
}
