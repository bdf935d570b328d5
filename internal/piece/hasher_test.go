package piece

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func sum(b []byte) []byte {
	s := sha1.Sum(b)
	return s[:]
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

func TestPieceCountLaw(t *testing.T) {
	tests := []struct {
		size, length int
		pieces       int
	}{
		{0, 400, 0},
		{1, 400, 1},
		{399, 400, 1},
		{400, 400, 1},
		{401, 400, 2},
		{800, 400, 2},
		{1000, 400, 3},
	}
	for _, tt := range tests {
		h := NewHasher(tt.length)
		if _, err := h.Write(pattern(tt.size, 1)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got := h.Sum()
		if len(got) != tt.pieces*HashSize {
			t.Errorf("size %d / length %d: len(pieces) = %d, want %d", tt.size, tt.length, len(got), tt.pieces*HashSize)
		}
	}
}

func TestStraddlingSources(t *testing.T) {
	a := pattern(300, 1)
	b := pattern(500, 2)

	h := NewHasher(400)
	if _, err := h.ReadFrom(bytes.NewReader(a)); err != nil {
		t.Fatalf("ReadFrom a: %v", err)
	}
	if _, err := h.ReadFrom(bytes.NewReader(b)); err != nil {
		t.Fatalf("ReadFrom b: %v", err)
	}
	got := h.Sum()
	if len(got) != 2*HashSize {
		t.Fatalf("len(pieces) = %d, want %d", len(got), 2*HashSize)
	}
	first := append(append([]byte(nil), a...), b[:100]...)
	if !bytes.Equal(got[:HashSize], sum(first)) {
		t.Error("first piece does not cover a plus the first 100 bytes of b")
	}
	if !bytes.Equal(got[HashSize:], sum(b[100:])) {
		t.Error("second piece does not cover the last 400 bytes of b")
	}
}

func TestWriteSplitsIndependently(t *testing.T) {
	data := pattern(10000, 3)
	whole := NewHasher(1024)
	whole.Write(data)
	want := whole.Sum()

	for _, chunk := range []int{1, 7, 1023, 1024, 1025, 4096} {
		h := NewHasher(1024)
		for off := 0; off < len(data); off += chunk {
			end := off + chunk
			if end > len(data) {
				end = len(data)
			}
			h.Write(data[off:end])
		}
		if got := h.Sum(); !bytes.Equal(got, want) {
			t.Errorf("chunk %d: digests differ from single write", chunk)
		}
	}

	h := NewHasher(1024)
	if _, err := h.ReadFrom(iotest.OneByteReader(bytes.NewReader(data))); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if !bytes.Equal(h.Sum(), want) {
		t.Error("one-byte reads give different digests")
	}
}

func TestSumFinishes(t *testing.T) {
	h := NewHasher(4)
	h.Write([]byte("abcdef"))
	first := h.Sum()
	if !bytes.Equal(first, append(sum([]byte("abcd")), sum([]byte("ef"))...)) {
		t.Errorf("Sum = %x", first)
	}
	if _, err := h.Write([]byte("x")); !errors.Is(err, ErrFinished) {
		t.Errorf("Write after Sum: err = %v, want ErrFinished", err)
	}
	if !bytes.Equal(h.Sum(), first) {
		t.Error("second Sum differs")
	}
	if h.Len() != 6 || h.Count() != 2 {
		t.Errorf("Len, Count = %d, %d; want 6, 2", h.Len(), h.Count())
	}
}

func TestRewindDropsFailedSource(t *testing.T) {
	a := pattern(300, 1)
	bad := pattern(700, 9)
	b := pattern(500, 2)

	h := NewHasher(400)
	h.Write(a)
	cp := h.Checkpoint()
	_, err := h.ReadFrom(io.MultiReader(bytes.NewReader(bad), iotest.ErrReader(io.ErrUnexpectedEOF)))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadFrom err = %v", err)
	}
	h.Rewind(cp)
	h.Write(b)

	ref := NewHasher(400)
	ref.Write(a)
	ref.Write(b)
	if !bytes.Equal(h.Sum(), ref.Sum()) {
		t.Error("rewound hasher differs from one that never saw the failed source")
	}
	if h.Len() != 800 {
		t.Errorf("Len = %d, want 800", h.Len())
	}
}

func TestRewindManySources(t *testing.T) {
	h := NewHasher(64)
	ref := NewHasher(64)
	for i := 0; i < 200; i++ {
		src := pattern(1+i%50, byte(i))
		cp := h.Checkpoint()
		h.Write(src)
		if i%3 == 0 {
			// dropped source, some within the window and some spanning it
			h.Rewind(cp)
			continue
		}
		ref.Write(src)
	}
	if h.Len() != ref.Len() {
		t.Errorf("Len = %d, want %d", h.Len(), ref.Len())
	}
	if !bytes.Equal(h.Sum(), ref.Sum()) {
		t.Error("digests differ from a hasher that never saw the dropped sources")
	}
}

func TestRewindStaleCheckpointPanics(t *testing.T) {
	h := NewHasher(8)
	old := h.Checkpoint()
	h.Checkpoint()
	defer func() {
		if recover() == nil {
			t.Error("Rewind to a stale checkpoint did not panic")
		}
	}()
	h.Rewind(old)
}

func TestNewHasherPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewHasher(0) did not panic")
		}
	}()
	NewHasher(0)
}
